package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// setupCmd provisions the issuer and distributor accounts once and prints the
// result. On testnet it creates new funded accounts unless seeds are
// configured; the printed result never contains secret seeds.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision and fund the issuer and distributor accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		result := a.svc.SetupAccounts(cmd.Context())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if result.Status != "success" {
			return fmt.Errorf("setup failed: %s", result.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
