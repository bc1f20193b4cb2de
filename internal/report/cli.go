package report

import (
	"io"
)

// ShowHelp prints usage information for the report tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Curriculum Progress Report
==========================

Validates an exported progress file against the plan of studies and prints
its summary and course list.

Usage:
  go run ./cmd/progress-report -file progreso-carrera-2025-03-01.json [options]

Options:
  -file string
        Exported progress file, "-" for stdin (required)
  -catalog string
        Plan of studies YAML (default: embedded plan)
  -filter string
        Course list filter: all, approved, enrollable, pending (default "all")
  -verbose
        Show missing prerequisites and debug logs
  -help
        Show this help message

Exit status is 1 when the file is not a valid progress file.
`)
}
