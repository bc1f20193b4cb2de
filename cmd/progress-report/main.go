package main

import (
	"context"
	"flag"
	"os"

	"github.com/okian/curriculum/internal/report"
	"github.com/okian/curriculum/pkg/logger"
)

func main() {
	var (
		file        = flag.String("file", "", `Exported progress file, "-" for stdin`)
		catalogPath = flag.String("catalog", "", "Plan of studies YAML (default: embedded plan)")
		filter      = flag.String("filter", "all", "Course list filter: all, approved, enrollable, pending")
		verbose     = flag.Bool("verbose", false, "Show missing prerequisites and debug logs")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		report.ShowHelp(os.Stdout)
		return
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithLevel(level)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := &report.Config{
		File:        *file,
		CatalogPath: *catalogPath,
		Filter:      *filter,
		Verbose:     *verbose,
	}
	if err := report.Run(context.Background(), cfg, os.Stdin, os.Stdout, logger.Get()); err != nil {
		os.Stderr.WriteString("progress-report: " + err.Error() + "\n")
		os.Exit(1)
	}
}
