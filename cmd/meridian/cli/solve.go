// FILE: cmd/meridian/cli/solve.go
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"meridian/internal/deal"
	"meridian/internal/solver"
)

func runSolve(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	fs.SetOutput(out)
	maxNodes := fs.Int("max-nodes", solver.DefaultMaxNodes, "Stop after exploring this many positions")
	maxTime := fs.Duration("max-time", solver.DefaultMaxTime, "Stop after this long per deal")
	steps := fs.Bool("steps", true, "Print the solution steps")
	report := fs.Bool("report", false, "Print the difficulty report of each solved deal")

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := colors(out)
	opts := solver.Options{MaxNodes: *maxNodes, MaxTime: *maxTime}
	var graded []solver.Metrics
	for _, f := range files {
		d, err := deal.Load(f)
		if err != nil {
			fmt.Fprintf(out, "%s%s%s: %v\n", c.red, f, c.reset, err)
			continue
		}
		b, err := d.ToBoard()
		if err != nil {
			fmt.Fprintf(out, "%s%s%s: %v\n", c.red, f, c.reset, err)
			continue
		}

		res, err := solver.Solve(ctx, b, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		fmt.Fprintf(out, "%s%s%s: %s, %d nodes, %d dead ends, %dms\n",
			c.bold, f, c.reset, res, res.Nodes, res.DeadEnds, res.Elapsed.Milliseconds())
		if !res.Winnable {
			continue
		}

		if *steps {
			for i, s := range res.Solution {
				fmt.Fprintf(out, "  %3d. %s\n", i+1, s)
			}
		}
		m := solver.Analyze(b, res)
		graded = append(graded, m)
		if *report {
			fmt.Fprintln(out, solver.Report(m))
		}
	}

	if len(graded) == 0 {
		return nil
	}
	dist := solver.Distribution(graded)
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Tier\tDeals")
	for _, tier := range deal.Difficulties {
		fmt.Fprintf(w, "%s\t%d\n", tier, dist[tier])
	}
	return w.Flush()
}
