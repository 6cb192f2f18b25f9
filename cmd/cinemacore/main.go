package main

import (
	"log/slog"
	"os"

	"github.com/metinatakli/cinema-operations/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		slog.Error("cinema core stopped", "error", err)
		os.Exit(1)
	}
}
