package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/render"
)

var (
	historyStyle  string
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved compositions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved compositions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved composition, or write it with -o",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved composition",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	historyListCmd.Flags().StringVarP(&historyStyle, "style", "s", "", "Only show this style")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries")
	historyShowCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Write the composition to a file")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRmCmd)
}

// withHistory opens the history store for the duration of fn
func withHistory(fn func(ctx context.Context, store *archive.Store) error) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("history is disabled: set --db or CODECOMPOSER_DB")
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *archive.Store) error {
		records, err := store.List(ctx, archive.ListParams{Style: historyStyle, Limit: historyLimit})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No saved compositions")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tSTYLE\tHARMONY\tSEED\tBARS")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s %s\t%d\t%d\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Source, r.Style,
				r.Key, r.Scale, r.Progression, r.Seed, r.Bars)
		}
		return w.Flush()
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *archive.Store) error {
		_, comp, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if historyOutput == "" {
			fmt.Print(render.Tree(comp))
			return nil
		}
		if err := render.WriteFile(comp, historyOutput, render.VoicesBoth); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", historyOutput)
		return nil
	})
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *archive.Store) error {
		if err := store.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	})
}
