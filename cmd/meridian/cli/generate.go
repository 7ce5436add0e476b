// FILE: cmd/meridian/cli/generate.go
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"meridian/internal/board"
	"meridian/internal/deal"
)

func runGenerate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(out)
	mode := fs.String("mode", string(board.ModeClassic), "Game mode")
	difficulty := fs.String("difficulty", deal.DifficultyEasy, "Difficulty label: easy, moderate or hard")
	seed := fs.Int64("seed", 1, "Shuffle seed, batch deals use seed, seed+1, ...")
	count := fs.Int("count", 1, "Number of deals")
	outDir := fs.String("out", "", "Output directory (required for count > 1)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("count must be positive")
	}
	if *count > 1 && *outDir == "" {
		return fmt.Errorf("-out is required when generating more than one deal")
	}

	// Single deal without a directory goes to stdout
	if *outDir == "" {
		d, err := deal.Generate(deal.GenerateOptions{
			Mode:       board.Mode(*mode),
			Difficulty: *difficulty,
			Seed:       *seed,
		})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	for i := 0; i < *count; i++ {
		opts := deal.GenerateOptions{
			Mode:       board.Mode(*mode),
			Difficulty: *difficulty,
			Seed:       *seed + int64(i),
		}
		if *count > 1 {
			opts.Index = i + 1
		}
		d, err := deal.Generate(opts)
		if err != nil {
			return err
		}
		path := filepath.Join(*outDir, deal.FileName(d))
		if err := deal.Save(path, d); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}
