// FILE: cmd/meridian/cli/validate.go
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"meridian/internal/deal"
	"meridian/internal/solver"
	"meridian/internal/storage"
	"meridian/internal/validation"
)

func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", "", "Record certifications in this database (optional)")
	solve := fs.Bool("solve", false, "Also solve valid deals and grade their difficulty")
	maxNodes := fs.Int("max-nodes", solver.DefaultMaxNodes, "Solver node limit")
	quiet := fs.Bool("quiet", false, "Only print invalid deals and the summary")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("at least one deal file or directory required")
	}

	files, err := deal.Files(fs.Args()...)
	if err != nil {
		return err
	}

	var store *storage.Store
	runID := storage.NewRunID()
	if *dbPath != "" {
		store, err = storage.NewStore(*dbPath, false)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()
		if err := store.InitDB(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	log := slog.Default()
	c := colors(out)
	valid, invalid := 0, 0
	for _, f := range files {
		rec := storage.CertificationRecord{RunID: runID, Source: f, CheckedUTC: time.Now().UTC()}

		d, err := deal.Load(f)
		if err != nil {
			invalid++
			rec.DealID = strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
			rec.Errors = 1
			fmt.Fprintf(out, "%sINVALID%s %s\n  [parse] %v\n", c.red, c.reset, f, err)
			record(log, store, rec)
			continue
		}

		report := validation.ValidateDeal(d)
		rec.DealID = d.Metadata.ID
		if rec.DealID == "" {
			rec.DealID = strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		}
		rec.Mode = d.Metadata.Mode
		rec.Valid = report.IsValid
		rec.Errors = len(report.Errors)
		rec.Warnings = len(report.Warnings)

		if report.IsValid {
			valid++
			if *solve {
				certify(d, *maxNodes, &rec)
			}
			if !*quiet {
				fmt.Fprintf(out, "%sVALID%s   %s%s\n", c.green, c.reset, f, solveNote(rec))
				printIssues(out, c.yellow, c.reset, report.Warnings)
			}
		} else {
			invalid++
			fmt.Fprintf(out, "%sINVALID%s %s\n", c.red, c.reset, f)
			printIssues(out, c.red, c.reset, report.Errors)
			printIssues(out, c.yellow, c.reset, report.Warnings)
		}
		record(log, store, rec)
	}

	total := valid + invalid
	fmt.Fprintf(out, "\n%sSummary%s\n", c.bold, c.reset)
	fmt.Fprintf(out, "  Total:   %d\n", total)
	fmt.Fprintf(out, "  Valid:   %d\n", valid)
	fmt.Fprintf(out, "  Invalid: %d\n", invalid)
	fmt.Fprintf(out, "  Success rate: %.1f%%\n", 100*float64(valid)/float64(total))

	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Sync(ctx); err != nil {
			return fmt.Errorf("failed to record certifications: %w", err)
		}
		fmt.Fprintf(out, "  Run ID:  %s\n", runID)
	}

	if invalid > 0 {
		return ErrInvalidDeals
	}
	return nil
}

func printIssues(out io.Writer, color, reset string, issues []validation.Issue) {
	for _, is := range issues {
		fmt.Fprintf(out, "  %s%s%s\n", color, is, reset)
	}
}

// certify solves d within the node limit and fills the solver columns
func certify(d *deal.Deal, maxNodes int, rec *storage.CertificationRecord) {
	b, err := d.ToBoard()
	if err != nil {
		return
	}
	res, err := solver.Solve(context.Background(), b, solver.Options{MaxNodes: maxNodes})
	if err != nil {
		return
	}
	if res.Winnable || !res.Exhausted {
		rec.Winnable = sql.NullBool{Bool: res.Winnable, Valid: true}
	}
	if !res.Winnable {
		return
	}
	m := solver.Analyze(b, res)
	rec.SolutionMoves = sql.NullInt64{Int64: int64(m.SolutionMoves), Valid: true}
	rec.Score = sql.NullFloat64{Float64: m.Score, Valid: true}
	rec.Tier = m.Tier
}

func solveNote(rec storage.CertificationRecord) string {
	switch {
	case rec.SolutionMoves.Valid:
		return fmt.Sprintf("  winnable in %d, %s (%.1f)", rec.SolutionMoves.Int64, rec.Tier, rec.Score.Float64)
	case rec.Winnable.Valid:
		return "  not winnable"
	default:
		return ""
	}
}

func record(log *slog.Logger, store *storage.Store, rec storage.CertificationRecord) {
	if store == nil {
		return
	}
	if err := store.RecordCertification(rec); err != nil {
		log.Warn("failed to record certification", "deal", rec.DealID, "source", rec.Source, "err", err)
	}
}
