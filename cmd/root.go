package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dLedger/cmd/account"
	"github.com/ValentinKolb/dLedger/cmd/perf"
	"github.com/ValentinKolb/dLedger/cmd/serve"
	"github.com/ValentinKolb/dLedger/cmd/transfer"
	"github.com/ValentinKolb/dLedger/cmd/util"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dledger",
		Short: "ledger client runtime",
		Long: fmt.Sprintf(`dLedger (v%s)

A client runtime for double-entry accounting ledgers written in Go.
It batches accounts and transfers into packets, submits them through
an executor (native, or a gateway via tcp, unix or http) and correlates
every completion with its caller.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dLedger",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dLedger v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(account.AccountCommands)
	RootCmd.AddCommand(transfer.TransferCommands)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "executor"
	RootCmd.PersistentFlags().String(key, "native", util.WrapString("executor to use (echo, native, tcp, unix, http)"))
	_ = viper.BindPFlag(key, RootCmd.PersistentFlags().Lookup(key))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level (debug, info, warn, error), logs are written to stderr"))
	_ = viper.BindPFlag(key, RootCmd.PersistentFlags().Lookup(key))

	// runs after the subcommands initialized viper
	cobra.OnInitialize(initLogging)
}

// initLogging installs the loggers with the configured level
func initLogging() {
	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "%v, using info\n", err)
		_ = common.InitLoggers("info")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
