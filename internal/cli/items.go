package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/entropy/internal/item"
	"github.com/lazypower/entropy/internal/store"
)

var (
	itemsAll  bool
	itemsJSON bool
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List stored items",
	Long:  "List the stored collection. Only living items are shown unless --all is given.",
	Args:  cobra.NoArgs,
	RunE:  runItems,
}

func init() {
	itemsCmd.Flags().BoolVarP(&itemsAll, "all", "a", false, "Include dead items")
	itemsCmd.Flags().BoolVar(&itemsJSON, "json", false, "Print records as JSON")
}

func runItems(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Store, nil)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	c, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	records := make([]item.Record, 0, c.Len())
	for _, it := range c.Items() {
		if !itemsAll && !it.IsAlive() {
			continue
		}
		records = append(records, it.ToRecord())
	}

	out := cmd.OutOrStdout()
	if itemsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No items.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTYPE\tENTROPY\tLAST REFRESH\tCONTENT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			shortID(r.ID), r.Status, r.Type, r.Entropy, cfg.Rules.MaxEntropy,
			time.Unix(r.LastHealedTS, 0).UTC().Format(time.RFC3339), clip(r.Content, 40))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) <= 14 {
		return id
	}
	return id[:8] + "…" + id[len(id)-4:]
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
