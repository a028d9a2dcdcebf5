// cmd/fetch-calendar/main.go
package main

import (
	"log"
	"os"

	"github.com/gewnthar/statbel-downloader/app"
)

func main() {
	if err := app.NewFetchCalendarApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
