// app/commands.go
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/gewnthar/statbel-downloader/models"
	"github.com/gewnthar/statbel-downloader/services"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "path to config.yaml (default: config/config.yaml, then config.yaml)",
			EnvVar: "STATBEL_CONFIG",
		},
		cli.StringFlag{
			Name:  "env",
			Usage: "path to an optional .env file",
			Value: ".env",
		},
	}
}

// NewFetchCalendarApp builds the yearly calendar refresh command.
func NewFetchCalendarApp() *cli.App {
	app := cli.NewApp()
	app.Name = "fetch-calendar"
	app.Usage = "scrape the Statbel publication calendar and store a snapshot"
	app.UsageText = "fetch-calendar [--config FILE]"
	app.HideVersion = true
	app.Flags = commonFlags()
	app.Action = fetchCalendar
	return app
}

// NewCheckDownloadApp builds the daily check-and-download command.
func NewCheckDownloadApp() *cli.App {
	app := cli.NewApp()
	app.Name = "check-download"
	app.Usage = "download every tracked statistic whose release date has passed"
	app.UsageText = "check-download [--config FILE] [--today YYYY-MM-DD]"
	app.HideVersion = true
	app.Flags = append(commonFlags(), cli.StringFlag{
		Name:  "today",
		Usage: "evaluate releases as of this date instead of the current date",
	})
	app.Action = checkDownload
	return app
}

func fetchCalendar(c *cli.Context) error {
	a, err := Bootstrap(c.String("config"), c.String("env"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("ERROR: %v", err), 1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshot, path, err := a.Pipeline.RefreshCalendar(ctx)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("ERROR: %v", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "Saved %d calendar entries for %d to %s\n", snapshot.TotalEntries, snapshot.Year, path)
	return nil
}

func checkDownload(c *cli.Context) error {
	a, err := Bootstrap(c.String("config"), c.String("env"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("ERROR: %v", err), 1)
	}
	defer a.Close()

	today := a.Pipeline.Today()
	if v := c.String("today"); v != "" {
		today, err = models.ParseDate(v)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("ERROR: invalid --today %q: %v", v, err), 1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := a.Pipeline.CheckAndDownload(ctx, today)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("ERROR: %v", err), 1)
	}
	printReport(c.App.Writer, report)
	if report.Failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d statistics failed", report.Failed), 1)
	}
	return nil
}

func printReport(w io.Writer, report *services.RunReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSTATISTIC\tRELEASE\tDETAIL")
	for _, out := range report.Outcomes {
		detail := out.Reason
		switch out.Status {
		case models.StatusDownloaded:
			detail = out.Path
		case models.StatusFailed:
			detail = out.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", out.Status, out.Statistic, out.ReleaseDate, detail)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s: %d downloaded, %d skipped, %d failed (run %s)\n",
		report.Today, report.Downloaded, report.Skipped, report.Failed, report.RunID)
	if report.ReportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", report.ReportPath)
	}
}
