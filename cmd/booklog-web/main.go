// Command booklog-web runs the web front end of the book catalog.
package main

import (
	"log"

	"booklog/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
