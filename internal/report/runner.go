// Package report renders an offline progress report from an exported
// progress file.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/okian/curriculum/internal/domain/catalog"
	"github.com/okian/curriculum/internal/domain/eligibility"
	"github.com/okian/curriculum/internal/domain/importer"
	"github.com/okian/curriculum/internal/domain/stats"
	"github.com/okian/curriculum/internal/domain/types"
	"github.com/okian/curriculum/pkg/logger"
)

// Sentinel error kinds for report runs.
var (
	ErrMissingFile   = errors.New("missing -file")
	ErrInvalidFormat = errors.New("invalid progress file")
)

// Run reads cfg.File, validates it and writes the report to out.
func Run(ctx context.Context, cfg *Config, in io.Reader, out io.Writer, log logger.Logger) error {
	if strings.TrimSpace(cfg.File) == "" {
		return ErrMissingFile
	}
	filter, err := eligibility.ParseFilter(cfg.Filter)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	data, err := readInput(cfg.File, in)
	if err != nil {
		return err
	}
	log.Debug(ctx, "progress file read", logger.String("file", cfg.File), logger.Int("bytes", len(data)))

	res, err := importer.NewValidator(cat).Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	log.Debug(ctx, "progress file validated",
		logger.Int("accepted", res.Accepted),
		logger.Int("dropped", res.Dropped),
	)

	engine := eligibility.New(cat)
	sum := stats.Compute(engine, res.Progress)
	views := types.CourseViews(engine, res.Progress, engine.Filter(res.Progress, filter))

	return render(out, cfg, res, sum, filter, views)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func readInput(file string, in io.Reader) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}

func render(out io.Writer, cfg *Config, res importer.Result, sum stats.Summary, filter eligibility.Filter, views []types.CourseView) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "File:\t%s\n", cfg.File)
	fmt.Fprintf(tw, "Entries:\t%d accepted, %d dropped\n", res.Accepted, res.Dropped)
	fmt.Fprintf(tw, "Approved:\t%d/%d (%d%%)\n", sum.Approved, sum.Total, sum.Percentage)
	fmt.Fprintf(tw, "Regular:\t%d\n", sum.Regular)
	fmt.Fprintf(tw, "Pending:\t%d\n", sum.Pending)
	fmt.Fprintf(tw, "Enrollable:\t%d\n", sum.Enrollable)
	fmt.Fprintf(tw, "Exam ready:\t%d\n", sum.ExamReady)
	fmt.Fprintf(tw, "Average:\t%s\n", formatGrade(sum.Average))
	fmt.Fprintf(tw, "Hours:\t%d/%d\n", sum.Hours.Approved, sum.Hours.Total)
	if sum.Graduated {
		fmt.Fprintf(tw, "Graduated:\tyes\n")
	}
	fmt.Fprintln(tw)

	for _, y := range sum.Years {
		fmt.Fprintf(tw, "Year %d:\t%d courses\t%d approved\t%d regular\n", y.Year, y.Total, y.Approved, y.Regular)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Courses (%s): %d\n", filter, len(views))
	header := "CODE\tNAME\tSTATUS\tGRADE\tENROLL\tEXAM"
	if cfg.Verbose {
		header += "\tMISSING"
	}
	fmt.Fprintln(tw, header)
	for _, v := range views {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s",
			v.Code, v.Name, v.Status, formatGrade(v.Grade), yesNo(v.CanEnroll), yesNo(v.CanTakeExam))
		if cfg.Verbose {
			line += "\t" + strings.Join(v.Missing, ",")
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func formatGrade(g *float64) string {
	if g == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *g)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
