package account

import (
	"github.com/ValentinKolb/dLedger/cmd/util"
	"github.com/ValentinKolb/dLedger/rpc/client"
	"github.com/spf13/cobra"
)

var (
	ledger *client.Client

	// AccountCommands represents the account command group
	AccountCommands = &cobra.Command{
		Use:                "account",
		Short:              "Create and query accounts",
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: closeClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common client flags to the account command
	util.SetupClientFlags(AccountCommands)

	// Add subcommands
	AccountCommands.AddCommand(createCmd)
	AccountCommands.AddCommand(lookupCmd)
	AccountCommands.AddCommand(transfersCmd)
	AccountCommands.AddCommand(balancesCmd)
}

// setupClient initializes the ledger client
func setupClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	ledger, err = util.NewClient()
	return err
}

func closeClient(_ *cobra.Command, _ []string) error {
	if ledger == nil {
		return nil
	}
	return ledger.Close()
}
