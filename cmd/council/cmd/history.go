package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/council-mode/council/internal/adapters/store"
	"github.com/council-mode/council/internal/council"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored deliberations",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored deliberation",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"maximum number of deliberations to list")
}

func openStore() (*store.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(cfg.Storage.Path)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	summaries, err := db.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No deliberations recorded yet.")
		return nil
	}

	for _, s := range summaries {
		query := s.Query
		if len(query) > 60 {
			query = query[:57] + "..."
		}
		fmt.Printf("%s  %-8s  %-12s  %s\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"), s.AgreementLevel, s.Trigger, query)
		fmt.Printf("    id: %s\n", s.ID)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	d, err := db.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	data, err := council.FormatAsJSON(d)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
