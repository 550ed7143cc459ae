package transfer

import (
	"github.com/ValentinKolb/dLedger/cmd/util"
	"github.com/ValentinKolb/dLedger/rpc/client"
	"github.com/spf13/cobra"
)

var (
	ledger *client.Client

	// TransferCommands represents the transfer command group
	TransferCommands = &cobra.Command{
		Use:                "transfer",
		Short:              "Create and query transfers",
		PersistentPreRunE:  setupClient,
		PersistentPostRunE: closeClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common client flags to the transfer command
	util.SetupClientFlags(TransferCommands)

	// Add subcommands
	TransferCommands.AddCommand(createCmd)
	TransferCommands.AddCommand(lookupCmd)
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
