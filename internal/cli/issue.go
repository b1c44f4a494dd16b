package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var issueAmount string

// issueCmd ensures both accounts exist and runs the issuance workflow once.
// Without configured seeds this provisions fresh accounts for the run, since
// generated keys live only in process memory.
var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue the configured asset from issuer to distributor",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.svc.EnsureAccountsThenIssue(cmd.Context(), issueAmount)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if result.Status != "success" {
			return fmt.Errorf("issuance failed at %s stage: %s", result.Stage, result.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.Flags().StringVar(&issueAmount, "amount", "", "amount to issue (decimal string)")
	issueCmd.MarkFlagRequired("amount")
}
