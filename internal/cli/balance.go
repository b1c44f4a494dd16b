package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/treatbank/mintd/internal/ledger"
)

var (
	balanceNative bool
	balanceCode   string
	balanceIssuer string
)

// balanceCmd looks up an account's holding of an asset. By default it checks
// the asset defined by --code/--issuer; --native checks XLM instead.
var balanceCmd = &cobra.Command{
	Use:   "balance <account>",
	Short: "Check an account's asset or XLM balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		var result interface{}
		if balanceNative {
			result, err = a.svc.CheckNativeBalance(cmd.Context(), args[0])
		} else {
			code := balanceCode
			if code == "" {
				code = a.cfg.Asset.Code
			}
			if balanceIssuer == "" {
				return fmt.Errorf("--issuer is required for custom asset lookups")
			}
			asset := ledger.Asset{Code: code, Issuer: balanceIssuer}
			result, err = a.svc.CheckAssetBalance(cmd.Context(), args[0], asset)
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().BoolVar(&balanceNative, "native", false, "check the native XLM balance")
	balanceCmd.Flags().StringVar(&balanceCode, "code", "", "asset code (defaults to the configured code)")
	balanceCmd.Flags().StringVar(&balanceIssuer, "issuer", "", "asset issuer account")
}
