package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/keepsake/snapshot"
	"github.com/spf13/cobra"
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review [dir]",
	Short: "Review pending snapshots one by one",
	Long: `Review walks a directory tree for pending snapshots and, for each one,
shows a diff against the accepted baseline and asks what to do:

  a - accept: the pending file becomes the new baseline
  r - reject: the pending file is deleted
  s - skip:   leave it for later
  q - quit:   stop reviewing, remaining pendings are left untouched

Example:
  keepsake review
  keepsake review ./internal/api`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	root := scanRoot(args)
	store := snapshot.NewStore(nil)

	pending, err := snapshot.FindPending(store.Fs(), root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}
	if len(pending) == 0 {
		fmt.Println("No pending snapshots.")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	accepted, rejected, skipped := 0, 0, 0

review:
	for i, path := range pending {
		file, err := store.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			skipped++
			continue
		}

		basePath := snapshot.BaselinePath(path)
		baseline, found, err := store.LoadBaseline(basePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", basePath, err)
			skipped++
			continue
		}

		fmt.Printf("\n[%d/%d] %s\n", i+1, len(pending), basePath)
		if file.Meta.Source != "" {
			fmt.Printf("  from %s:%d", file.Meta.Source, file.Meta.Line)
			if file.Meta.Expression != "" {
				fmt.Printf("  (%s)", file.Meta.Expression)
			}
			fmt.Println()
		}
		if !found {
			fmt.Println("  new snapshot (no baseline yet)")
		}
		fmt.Println()
		fmt.Print(snapshot.Diff(baseline, file.Body, basePath, path))
		fmt.Println()

		for {
			fmt.Print("accept, reject, skip, quit? [a/r/s/q] ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			switch strings.ToLower(strings.TrimSpace(line)) {
			case "a", "accept":
				if err := store.AcceptPending(path); err != nil {
					return fmt.Errorf("accept %s: %w", path, err)
				}
				accepted++
			case "r", "reject":
				if err := store.RejectPending(path); err != nil {
					return fmt.Errorf("reject %s: %w", path, err)
				}
				rejected++
			case "s", "skip":
				skipped++
			case "q", "quit":
				skipped += len(pending) - i
				break review
			default:
				continue
			}
			break
		}
	}

	fmt.Printf("\nDone: %d accepted, %d rejected, %d skipped\n", accepted, rejected, skipped)
	return nil
}
