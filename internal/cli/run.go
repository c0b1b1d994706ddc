package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/entropy/internal/engine"
	"github.com/lazypower/entropy/internal/ledger"
	"github.com/lazypower/entropy/internal/store"
	"github.com/lazypower/entropy/internal/telemetry"
)

var (
	runDryRun bool
	runEvery  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a decay and transaction cycle",
	Long: "Run ages every living item by one tick, then scans recent payments to the treasury " +
		"and applies creates and refreshes. With --every, cycles repeat on an interval until interrupted.",
	Args: cobra.NoArgs,
	RunE: runCycle,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Run the cycle without saving")
	runCmd.Flags().DurationVar(&runEvery, "every", 0, "Repeat the cycle on this interval (e.g. 1h)")
}

func runCycle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "entropy", VersionString(), cfg.Tracing.Endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: tracing disabled (%v)\n", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown(ctx)
	}()

	st, err := store.New(cfg.Store, nil)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cycle := &engine.Cycle{
		Engine:  engine.New(engine.RulesFrom(cfg.Rules), ledger.HexDecoder{}, nil),
		Store:   st,
		Source:  ledger.NewExplorer(cfg.Ledger.ExplorerURL, cfg.Ledger.ExplorerAPIKey, cfg.Ledger.HTTPTimeout),
		Address: cfg.Ledger.TreasuryAddress,
		Window:  cfg.Ledger.FetchWindow,
		DryRun:  runDryRun,
	}

	out := cmd.OutOrStdout()
	if runEvery <= 0 {
		return runOnce(ctx, out, cycle)
	}

	// Cycles never overlap: the next tick is only read after Run returns.
	ticker := time.NewTicker(runEvery)
	defer ticker.Stop()
	for {
		if err := runOnce(ctx, out, cycle); err != nil {
			return err
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "stopping")
			return nil
		}
	}
}

func runOnce(ctx context.Context, out io.Writer, cycle *engine.Cycle) error {
	rep, err := cycle.Run(ctx)
	if err != nil {
		return err
	}
	printReport(out, rep)
	return nil
}

func printReport(w io.Writer, rep engine.Report) {
	fmt.Fprintf(w, "decay: %d aged, %d died\n", rep.Decay.Aged, rep.Decay.Died)
	if rep.FetchErr != nil {
		fmt.Fprintf(w, "fetch: failed (%v)\n", rep.FetchErr)
	} else {
		fmt.Fprintf(w, "fetch: %d transactions\n", rep.Fetched)
	}
	a := rep.Apply
	fmt.Fprintf(w, "apply: %d created, %d refreshed, %d mercy healed, %d no effect, %d ignored, %d duplicates\n",
		a.Created, a.Refreshed, a.MercyHealed, a.NoEffect, a.Ignored, a.Duplicates)
	state := "saved"
	if !rep.Saved {
		state = "not saved (dry run)"
	}
	fmt.Fprintf(w, "items: %d total, %d alive, %s\n", rep.Total, rep.Alive, state)
}
