package main

import (
	"geosift/internal/app"

	"github.com/charmbracelet/log"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal("run terminated", "error", err)
	}
}
