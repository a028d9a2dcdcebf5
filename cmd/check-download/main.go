// cmd/check-download/main.go
package main

import (
	"log"
	"os"

	"github.com/gewnthar/statbel-downloader/app"
)

func main() {
	if err := app.NewCheckDownloadApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
