package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/keepsake/snapshot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pendingOnly bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List snapshot files under a directory",
	Long: `List walks a directory tree and prints every snapshot it finds:
accepted baselines (.snap) and pending proposals (.snap.new).

Example:
  keepsake list
  keepsake list ./internal --pending
  keepsake list -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&pendingOnly, "pending", false, "show only pending snapshots")
}

func runList(cmd *cobra.Command, args []string) error {
	root := scanRoot(args)
	store := snapshot.NewStore(nil)

	pending, err := snapshot.FindPending(store.Fs(), root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	var baselines []string
	if !pendingOnly {
		baselines, err = snapshot.FindBaselines(store.Fs(), root)
		if err != nil {
			return fmt.Errorf("scan %s: %w", root, err)
		}
	}

	workers := viper.GetInt("workers")
	ctx := context.Background()

	for _, entry := range snapshot.LoadAll(ctx, store, baselines, workers) {
		printEntry("baseline", entry)
	}
	for _, entry := range snapshot.LoadAll(ctx, store, pending, workers) {
		printEntry("pending", entry)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\n%d baseline(s), %d pending\n", len(baselines), len(pending))
	}

	return nil
}

func printEntry(kind string, entry snapshot.Entry) {
	if entry.Err != nil {
		fmt.Printf("%-8s  %-6s  %s  (%v)\n", kind, "?", entry.Path, entry.Err)
		return
	}
	format := entry.File.Meta.Format
	if format == "" {
		format = "?"
	}
	fmt.Printf("%-8s  %-6s  %s\n", kind, format, entry.Path)
	if verbose && entry.File.Meta.Expression != "" {
		fmt.Printf("%-8s  %-6s    from %s:%d  %s\n", "", "", entry.File.Meta.Source, entry.File.Meta.Line, entry.File.Meta.Expression)
	}
}
