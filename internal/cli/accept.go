package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/keepsake/snapshot"
	"github.com/spf13/cobra"
)

var (
	acceptDryRun bool
	rejectDryRun bool
)

// acceptCmd represents the accept command
var acceptCmd = &cobra.Command{
	Use:   "accept [dir]",
	Short: "Accept every pending snapshot under a directory",
	Long: `Accept promotes all pending snapshots to baselines without review.

Example:
  keepsake accept
  keepsake accept ./internal --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAccept,
}

// rejectCmd represents the reject command
var rejectCmd = &cobra.Command{
	Use:   "reject [dir]",
	Short: "Delete every pending snapshot under a directory",
	Long: `Reject discards all pending snapshots. Baselines are never touched.

Example:
  keepsake reject
  keepsake reject ./internal --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReject,
}

func init() {
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(rejectCmd)

	acceptCmd.Flags().BoolVar(&acceptDryRun, "dry-run", false, "print what would be accepted without touching files")
	rejectCmd.Flags().BoolVar(&rejectDryRun, "dry-run", false, "print what would be deleted without touching files")
}

func runAccept(cmd *cobra.Command, args []string) error {
	root := scanRoot(args)
	store := snapshot.NewStore(nil)

	pending, err := snapshot.FindPending(store.Fs(), root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	for _, path := range pending {
		if acceptDryRun {
			fmt.Printf("would accept %s\n", snapshot.BaselinePath(path))
			continue
		}
		if err := store.AcceptPending(path); err != nil {
			return fmt.Errorf("accept %s: %w", path, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s\n", snapshot.BaselinePath(path))
		}
	}

	if !acceptDryRun {
		fmt.Printf("Accepted %d snapshot(s)\n", len(pending))
	}
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	root := scanRoot(args)
	store := snapshot.NewStore(nil)

	pending, err := snapshot.FindPending(store.Fs(), root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	for _, path := range pending {
		if rejectDryRun {
			fmt.Printf("would delete %s\n", path)
			continue
		}
		if err := store.RejectPending(path); err != nil {
			return fmt.Errorf("reject %s: %w", path, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✗ %s\n", path)
		}
	}

	if !rejectDryRun {
		fmt.Printf("Rejected %d snapshot(s)\n", len(pending))
	}
	return nil
}
