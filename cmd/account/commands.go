package account

import (
	"fmt"

	"github.com/ValentinKolb/dLedger/cmd/util"
	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Creates an account",
		Long:  "Creates a single account. Without --id a new time based id is generated.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := accountFromFlags()
			if err != nil {
				return err
			}

			results, err := ledger.CreateAccounts([]types.Account{account})
			if err != nil {
				return err
			}
			if len(results) > 0 {
				return fmt.Errorf("failed to create account %s: %s", account.ID, results[0].Result)
			}

			fmt.Printf("created account %s\n", account.ID)
			return nil
		},
	}
	lookupCmd = &cobra.Command{
		Use:   "lookup [id...]",
		Short: "Prints the accounts with the given ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := util.ParseUint128List(args)
			if err != nil {
				return err
			}

			accounts, err := ledger.LookupAccounts(ids)
			if err != nil {
				return err
			}
			if len(accounts) < len(ids) {
				fmt.Printf("found %d of %d accounts\n", len(accounts), len(ids))
			}
			return util.PrintJSON(accounts)
		},
	}
	transfersCmd = &cobra.Command{
		Use:   "transfers [id]",
		Short: "Prints the transfers of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFromFlags(args[0])
			if err != nil {
				return err
			}

			transfers, err := ledger.GetAccountTransfers(filter)
			if err != nil {
				return err
			}
			return util.PrintJSON(transfers)
		},
	}
	balancesCmd = &cobra.Command{
		Use:   "balances [id]",
		Short: "Prints the historical balances of an account (requires the history flag)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFromFlags(args[0])
			if err != nil {
				return err
			}

			balances, err := ledger.GetAccountBalances(filter)
			if err != nil {
				return err
			}
			return util.PrintJSON(balances)
		},
	}
)

func init() {
	// create flags
	key := "id"
	createCmd.Flags().String(key, "", util.WrapString("The id of the account, generated if empty"))
	key = "ledger"
	createCmd.Flags().Uint32(key, 1, util.WrapString("The ledger the account belongs to"))
	key = "code"
	createCmd.Flags().Uint16(key, 1, util.WrapString("A user defined code describing the account type"))
	key = "flags"
	createCmd.Flags().String(key, "", util.WrapString("Account flags separated by | (linked, debits_must_not_exceed_credits, credits_must_not_exceed_debits, history)"))
	key = "user-data-128"
	createCmd.Flags().String(key, "0", util.WrapString("Opaque 128-bit user data"))
	key = "user-data-64"
	createCmd.Flags().Uint64(key, 0, util.WrapString("Opaque 64-bit user data"))
	key = "user-data-32"
	createCmd.Flags().Uint32(key, 0, util.WrapString("Opaque 32-bit user data"))

	// filter flags
	for _, cmd := range []*cobra.Command{transfersCmd, balancesCmd} {
		key = "limit"
		cmd.Flags().Uint32(key, 100, util.WrapString("Maximum number of results"))
		key = "filter"
		cmd.Flags().String(key, "debits|credits", util.WrapString("Which side to include, separated by | (debits, credits, reversed)"))
		key = "timestamp-min"
		cmd.Flags().Uint64(key, 0, util.WrapString("Inclusive lower timestamp bound, 0 is unbounded"))
		key = "timestamp-max"
		cmd.Flags().Uint64(key, 0, util.WrapString("Inclusive upper timestamp bound, 0 is unbounded"))
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// accountFromFlags builds the account to create from the create flags
func accountFromFlags() (types.Account, error) {
	account := types.Account{
		Ledger:     viper.GetUint32("ledger"),
		Code:       uint16(viper.GetUint32("code")),
		UserData64: viper.GetUint64("user-data-64"),
		UserData32: viper.GetUint32("user-data-32"),
	}

	var err error
	if id := viper.GetString("id"); id != "" {
		if account.ID, err = util.ParseUint128(id); err != nil {
			return account, fmt.Errorf("invalid id: %w", err)
		}
	} else {
		account.ID = types.ID()
	}

	if account.UserData128, err = util.ParseUint128(viper.GetString("user-data-128")); err != nil {
		return account, fmt.Errorf("invalid user data: %w", err)
	}
	if account.Flags, err = types.ParseAccountFlags(viper.GetString("flags")); err != nil {
		return account, err
	}
	return account, nil
}

// filterFromFlags builds an account filter for id from the filter flags
func filterFromFlags(id string) (types.AccountFilter, error) {
	filter := types.AccountFilter{
		TimestampMin: viper.GetUint64("timestamp-min"),
		TimestampMax: viper.GetUint64("timestamp-max"),
		Limit:        viper.GetUint32("limit"),
	}

	var err error
	if filter.AccountID, err = util.ParseUint128(id); err != nil {
		return filter, fmt.Errorf("invalid account id: %w", err)
	}
	if filter.Flags, err = types.ParseAccountFilterFlags(viper.GetString("filter")); err != nil {
		return filter, err
	}
	return filter, nil
}
