package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists recorded issuance runs, newest first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded issuance runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		records, err := a.svc.ListIssuances(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum records to list (0 for all)")
}
