// FILE: cmd/meridian/cli/db.go
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"meridian/internal/storage"
)

func runDB(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, actions or certs")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], out)
	case "query":
		return runQuery(args[1:], out)
	case "actions":
		return runActions(args[1:], out)
	case "certs":
		return runCerts(args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(fs *flag.FlagSet, args []string, path *string) (*storage.Store, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}
	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := fs.String("playerId", "", "Player ID to filter (optional, * for all)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tDeal\tMode\tPlayer\tOutcome\tMoves\tCycles\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			short(g.GameID),
			g.DealID,
			g.Mode,
			g.PlayerName,
			g.Outcome,
			g.Moves,
			g.StockCycles,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func runActions(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("actions", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID (required)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	defer store.Close()

	if *gameID == "" {
		return fmt.Errorf("game ID required")
	}
	actions, err := store.QueryActions(*gameID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(actions) == 0 {
		fmt.Fprintln(out, "No actions found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Seq\tAction\tNotation\tCycles\tStalemate\tTime")
	for _, a := range actions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			a.Seq,
			a.ActionType,
			a.Notation,
			a.StockCycles,
			a.StalemateTier,
			a.ActionTimeUTC.Format("15:04:05.000"),
		)
	}
	return w.Flush()
}

func runCerts(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certs", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	runID := fs.String("runId", "", "Validation run to filter (optional, * for all)")
	dealID := fs.String("dealId", "", "Deal ID to filter (optional, * for all)")

	store, err := openStore(fs, args, path)
	if err != nil {
		return err
	}
	defer store.Close()

	certs, err := store.QueryCertifications(*runID, *dealID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(certs) == 0 {
		fmt.Fprintln(out, "No certifications found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Run\tDeal\tMode\tValid\tErrors\tWarnings\tWinnable\tMoves\tTier")
	for _, c := range certs {
		winnable, moves := "-", "-"
		if c.Winnable.Valid {
			winnable = fmt.Sprintf("%t", c.Winnable.Bool)
		}
		if c.SolutionMoves.Valid {
			moves = fmt.Sprintf("%d", c.SolutionMoves.Int64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%d\t%s\t%s\t%s\n",
			short(c.RunID), c.DealID, c.Mode, c.Valid, c.Errors, c.Warnings, winnable, moves, c.Tier)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d certification(s)\n", len(certs))
	return nil
}

func short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
