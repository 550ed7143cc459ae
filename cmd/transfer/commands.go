package transfer

import (
	"fmt"

	"github.com/ValentinKolb/dLedger/cmd/util"
	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [debit-account] [credit-account] [amount]",
		Short: "Moves amount from the debit to the credit account",
		Long:  "Creates a single transfer. Without --id a new time based id is generated.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			transfer, err := transferFromFlags(args)
			if err != nil {
				return err
			}

			results, err := ledger.CreateTransfers([]types.Transfer{transfer})
			if err != nil {
				return err
			}
			if len(results) > 0 {
				return fmt.Errorf("failed to create transfer %s: %s", transfer.ID, results[0].Result)
			}

			fmt.Printf("created transfer %s\n", transfer.ID)
			return nil
		},
	}
	lookupCmd = &cobra.Command{
		Use:   "lookup [id...]",
		Short: "Prints the transfers with the given ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := util.ParseUint128List(args)
			if err != nil {
				return err
			}

			transfers, err := ledger.LookupTransfers(ids)
			if err != nil {
				return err
			}
			if len(transfers) < len(ids) {
				fmt.Printf("found %d of %d transfers\n", len(transfers), len(ids))
			}
			return util.PrintJSON(transfers)
		},
	}
)

func init() {
	key := "id"
	createCmd.Flags().String(key, "", util.WrapString("The id of the transfer, generated if empty"))
	key = "pending-id"
	createCmd.Flags().String(key, "0", util.WrapString("The pending transfer to post or void"))
	key = "ledger"
	createCmd.Flags().Uint32(key, 1, util.WrapString("The ledger of both accounts"))
	key = "code"
	createCmd.Flags().Uint16(key, 1, util.WrapString("A user defined code describing the transfer"))
	key = "pending-timeout"
	createCmd.Flags().Uint32(key, 0, util.WrapString("Seconds until a pending transfer expires"))
	key = "flags"
	createCmd.Flags().String(key, "", util.WrapString("Transfer flags separated by | (linked, pending, post_pending_transfer, void_pending_transfer, balancing_debit, balancing_credit)"))
	key = "user-data-128"
	createCmd.Flags().String(key, "0", util.WrapString("Opaque 128-bit user data"))
	key = "user-data-64"
	createCmd.Flags().Uint64(key, 0, util.WrapString("Opaque 64-bit user data"))
	key = "user-data-32"
	createCmd.Flags().Uint32(key, 0, util.WrapString("Opaque 32-bit user data"))
}

// transferFromFlags builds the transfer to create from the arguments and flags
func transferFromFlags(args []string) (types.Transfer, error) {
	transfer := types.Transfer{
		Ledger:     viper.GetUint32("ledger"),
		Code:       uint16(viper.GetUint32("code")),
		Timeout:    viper.GetUint32("pending-timeout"),
		UserData64: viper.GetUint64("user-data-64"),
		UserData32: viper.GetUint32("user-data-32"),
	}

	var err error
	if transfer.DebitAccountID, err = util.ParseUint128(args[0]); err != nil {
		return transfer, fmt.Errorf("invalid debit account: %w", err)
	}
	if transfer.CreditAccountID, err = util.ParseUint128(args[1]); err != nil {
		return transfer, fmt.Errorf("invalid credit account: %w", err)
	}
	if transfer.Amount, err = util.ParseUint128(args[2]); err != nil {
		return transfer, fmt.Errorf("invalid amount: %w", err)
	}

	if id := viper.GetString("id"); id != "" {
		if transfer.ID, err = util.ParseUint128(id); err != nil {
			return transfer, fmt.Errorf("invalid id: %w", err)
		}
	} else {
		transfer.ID = types.ID()
	}

	if transfer.PendingID, err = util.ParseUint128(viper.GetString("pending-id")); err != nil {
		return transfer, fmt.Errorf("invalid pending id: %w", err)
	}
	if transfer.UserData128, err = util.ParseUint128(viper.GetString("user-data-128")); err != nil {
		return transfer, fmt.Errorf("invalid user data: %w", err)
	}
	if transfer.Flags, err = types.ParseTransferFlags(viper.GetString("flags")); err != nil {
		return transfer, err
	}
	return transfer, nil
}
