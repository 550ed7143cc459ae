package client

import (
	"fmt"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
)

// --------------------------------------------------------------------------
// Interface Methods (docu see ILedger)
// --------------------------------------------------------------------------

func (c *Client) CreateAccounts(accounts []types.Account) ([]types.CreateAccountsResult, error) {
	results, err := submitBatch(c, common.OpCreateAccounts, accounts, types.AccountCodec, types.CreateAccountsResultCodec)
	if err != nil {
		return nil, err
	}
	if err := checkIndexes(common.OpCreateAccounts, results, len(accounts), func(r types.CreateAccountsResult) uint32 {
		return r.Index
	}); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) CreateTransfers(transfers []types.Transfer) ([]types.CreateTransfersResult, error) {
	results, err := submitBatch(c, common.OpCreateTransfers, transfers, types.TransferCodec, types.CreateTransfersResultCodec)
	if err != nil {
		return nil, err
	}
	if err := checkIndexes(common.OpCreateTransfers, results, len(transfers), func(r types.CreateTransfersResult) uint32 {
		return r.Index
	}); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) LookupAccounts(ids []types.Uint128) ([]types.Account, error) {
	return submitBatch(c, common.OpLookupAccounts, ids, types.Uint128Codec, types.AccountCodec)
}

func (c *Client) LookupTransfers(ids []types.Uint128) ([]types.Transfer, error) {
	return submitBatch(c, common.OpLookupTransfers, ids, types.Uint128Codec, types.TransferCodec)
}

func (c *Client) GetAccountTransfers(filter types.AccountFilter) ([]types.Transfer, error) {
	if !filter.ReservedIsZero() {
		return nil, common.ErrReservedFieldNotZero
	}
	return submitBatch(c, common.OpGetAccountTransfers, []types.AccountFilter{filter}, types.AccountFilterCodec, types.TransferCodec)
}

func (c *Client) GetAccountBalances(filter types.AccountFilter) ([]types.AccountBalance, error) {
	if !filter.ReservedIsZero() {
		return nil, common.ErrReservedFieldNotZero
	}
	return submitBatch(c, common.OpGetAccountBalances, []types.AccountFilter{filter}, types.AccountFilterCodec, types.AccountBalanceCodec)
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// submitBatch encodes events with in, submits them and decodes the reply with
// out. Oversized batches are rejected before a packet is acquired.
func submitBatch[E, R any](c *Client, op common.Operation, events []E, in types.Codec[E], out types.Codec[R]) ([]R, error) {
	if len(events) == 0 {
		return nil, common.ErrEmptyBatch
	}
	if in.EncodedSize(len(events)) > c.config.MaxPayloadSize {
		c.metrics.rejected(op, common.PacketTooMuchData)
		return nil, &common.PacketError{Operation: op, Status: common.PacketTooMuchData}
	}

	reply, err := c.submit(op, in.EncodeBatch(events), out.Size)
	if err != nil {
		return nil, err
	}

	results, err := out.DecodeBatch(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnexpectedReply, err)
	}
	return results, nil
}

// checkIndexes verifies that every create result refers to an event of the batch
func checkIndexes[R any](op common.Operation, results []R, n int, index func(R) uint32) error {
	for _, r := range results {
		if i := index(r); int(i) >= n {
			return fmt.Errorf("%w: %s result for index %d in a batch of %d", common.ErrUnexpectedReply, op, i, n)
		}
	}
	return nil
}
