// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/gewnthar/statbel-downloader/app"
	"github.com/gewnthar/statbel-downloader/handlers"
	"github.com/gewnthar/statbel-downloader/scheduler"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "statbel-downloader"
	cliApp.Usage = "serve the admin API and run the calendar refresh and download check on a schedule"
	cliApp.HideVersion = true
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "path to config.yaml", EnvVar: "STATBEL_CONFIG"},
		cli.StringFlag{Name: "env", Usage: "path to an optional .env file", Value: ".env"},
	}
	cliApp.Action = serve
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	log.Println("Starting Statbel downloader...")

	a, err := app.Bootstrap(c.String("config"), c.String("env"))
	if err != nil {
		return cli.NewExitError("Error loading configuration: "+err.Error(), 1)
	}
	defer a.Close()
	cfg := a.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jobs []scheduler.Job
	if cfg.Schedule.Yearly != "" {
		jobs = append(jobs, scheduler.Job{Name: "calendar refresh", Expr: cfg.Schedule.Yearly, Run: func(ctx context.Context) {
			if _, _, err := a.Pipeline.RefreshCalendar(ctx); err != nil {
				log.Printf("ERROR Scheduler: Calendar refresh failed: %v\n", err)
			}
		}})
	}
	if cfg.Schedule.Daily != "" {
		jobs = append(jobs, scheduler.Job{Name: "download check", Expr: cfg.Schedule.Daily, Run: func(ctx context.Context) {
			report, err := a.Pipeline.CheckAndDownload(ctx, a.Pipeline.Today())
			if err != nil {
				log.Printf("ERROR Scheduler: Download check aborted: %v\n", err)
				return
			}
			if report.Failed > 0 {
				log.Printf("WARN Scheduler: Download check %s finished with %d failures\n", report.RunID, report.Failed)
			}
		}})
	}
	sched, err := scheduler.New(cfg.Location, jobs...)
	if err != nil {
		return cli.NewExitError("Error configuring schedule: "+err.Error(), 1)
	}
	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("ERROR Scheduler: %v\n", err)
		}
	}()

	// --- Setup HTTP routes ---
	mux := http.NewServeMux()
	handlers.NewAdminHandler(a.Pipeline, a.History()).Register(mux)

	server := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Server starting on http://localhost%s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return cli.NewExitError("Error starting server: "+err.Error(), 1)
	}
	log.Println("Server stopped.")
	return nil
}
