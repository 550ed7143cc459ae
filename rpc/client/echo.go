package client

import (
	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
)

// EchoClient is a client whose operations return the submitted records. It is
// meant for an executor that echoes request payloads (see the echo executor)
// and exercises the full packet lifecycle without a ledger.
type EchoClient struct {
	c *Client
}

// NewEchoClient creates an echo client, see NewClient
func NewEchoClient(config common.ClientConfig, exec executor.IExecutor) (*EchoClient, error) {
	c, err := NewClient(config, exec)
	if err != nil {
		return nil, err
	}
	return &EchoClient{c: c}, nil
}

func (e *EchoClient) CreateAccounts(accounts []types.Account) ([]types.Account, error) {
	return submitBatch(e.c, common.OpCreateAccounts, accounts, types.AccountCodec, types.AccountCodec)
}

func (e *EchoClient) CreateTransfers(transfers []types.Transfer) ([]types.Transfer, error) {
	return submitBatch(e.c, common.OpCreateTransfers, transfers, types.TransferCodec, types.TransferCodec)
}

func (e *EchoClient) LookupAccounts(ids []types.Uint128) ([]types.Uint128, error) {
	return submitBatch(e.c, common.OpLookupAccounts, ids, types.Uint128Codec, types.Uint128Codec)
}

func (e *EchoClient) LookupTransfers(ids []types.Uint128) ([]types.Uint128, error) {
	return submitBatch(e.c, common.OpLookupTransfers, ids, types.Uint128Codec, types.Uint128Codec)
}

func (e *EchoClient) GetAccountTransfers(filter types.AccountFilter) ([]types.AccountFilter, error) {
	if !filter.ReservedIsZero() {
		return nil, common.ErrReservedFieldNotZero
	}
	return submitBatch(e.c, common.OpGetAccountTransfers, []types.AccountFilter{filter}, types.AccountFilterCodec, types.AccountFilterCodec)
}

func (e *EchoClient) GetAccountBalances(filter types.AccountFilter) ([]types.AccountFilter, error) {
	if !filter.ReservedIsZero() {
		return nil, common.ErrReservedFieldNotZero
	}
	return submitBatch(e.c, common.OpGetAccountBalances, []types.AccountFilter{filter}, types.AccountFilterCodec, types.AccountFilterCodec)
}

// Submit sends an encoded batch and returns the echoed payload. The reply is
// checked against the event size of the operation.
func (e *EchoClient) Submit(op common.Operation, payload []byte) ([]byte, error) {
	return e.c.submit(op, payload, op.EventSize())
}

// InitParameters returns the cluster id and address list given to NewEchoClient
func (e *EchoClient) InitParameters() (types.Uint128, string) {
	return e.c.InitParameters()
}

// Close closes the underlying client, see Client.Close
func (e *EchoClient) Close() error {
	return e.c.Close()
}
