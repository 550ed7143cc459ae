package client

import (
	"errors"
	"sync"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/packet"
)

// --------------------------------------------------------------------------
// memoryExecutor: a tiny in-memory ledger
// --------------------------------------------------------------------------

// memoryExecutor answers packets from in-memory account and transfer tables
type memoryExecutor struct {
	mu        sync.Mutex
	accounts  map[types.Uint128]types.Account
	transfers map[types.Uint128]types.Transfer
	order     []types.Uint128
	clock     uint64

	onCompletion executor.CompletionFunc
	wg           sync.WaitGroup
}

func newMemoryExecutor() *memoryExecutor {
	return &memoryExecutor{
		accounts:  make(map[types.Uint128]types.Account),
		transfers: make(map[types.Uint128]types.Transfer),
	}
}

func (e *memoryExecutor) Init(config common.ClientConfig, onCompletion executor.CompletionFunc) error {
	e.onCompletion = onCompletion
	return nil
}

func (e *memoryExecutor) Submit(p *packet.Packet) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		status, reply := e.apply(p.Operation, p.Data)
		e.onCompletion(p, status, reply)
	}()
}

func (e *memoryExecutor) Deinit() error {
	e.wg.Wait()
	return nil
}

func (e *memoryExecutor) GetName() string {
	return "memory"
}

func (e *memoryExecutor) apply(op common.Operation, data []byte) (common.PacketStatus, []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch op {
	case common.OpCreateAccounts:
		accounts, err := types.AccountCodec.DecodeBatch(data)
		if err != nil {
			return common.PacketInvalidDataSize, nil
		}
		var results []types.CreateAccountsResult
		for i, a := range accounts {
			switch {
			case a.ID.IsZero():
				results = append(results, types.CreateAccountsResult{Index: uint32(i), Result: types.CreateAccountIDMustNotBeZero})
			case e.exists(a.ID):
				results = append(results, types.CreateAccountsResult{Index: uint32(i), Result: types.CreateAccountExists})
			default:
				e.clock++
				a.Timestamp = e.clock
				e.accounts[a.ID] = a
			}
		}
		return common.PacketOk, types.CreateAccountsResultCodec.EncodeBatch(results)

	case common.OpCreateTransfers:
		transfers, err := types.TransferCodec.DecodeBatch(data)
		if err != nil {
			return common.PacketInvalidDataSize, nil
		}
		var results []types.CreateTransfersResult
		for i, t := range transfers {
			switch {
			case e.exists(t.ID):
				results = append(results, types.CreateTransfersResult{Index: uint32(i), Result: types.CreateTransferExists})
			case !e.exists(t.DebitAccountID):
				results = append(results, types.CreateTransfersResult{Index: uint32(i), Result: types.CreateTransferDebitAccountNotFound})
			case !e.exists(t.CreditAccountID):
				results = append(results, types.CreateTransfersResult{Index: uint32(i), Result: types.CreateTransferCreditAccountNotFound})
			default:
				e.clock++
				t.Timestamp = e.clock
				e.transfers[t.ID] = t
				e.order = append(e.order, t.ID)
			}
		}
		return common.PacketOk, types.CreateTransfersResultCodec.EncodeBatch(results)

	case common.OpLookupAccounts:
		ids, err := types.Uint128Codec.DecodeBatch(data)
		if err != nil {
			return common.PacketInvalidDataSize, nil
		}
		var found []types.Account
		for _, id := range ids {
			if a, ok := e.accounts[id]; ok {
				found = append(found, a)
			}
		}
		return common.PacketOk, types.AccountCodec.EncodeBatch(found)

	case common.OpLookupTransfers:
		ids, err := types.Uint128Codec.DecodeBatch(data)
		if err != nil {
			return common.PacketInvalidDataSize, nil
		}
		var found []types.Transfer
		for _, id := range ids {
			if t, ok := e.transfers[id]; ok {
				found = append(found, t)
			}
		}
		return common.PacketOk, types.TransferCodec.EncodeBatch(found)

	case common.OpGetAccountTransfers:
		filters, err := types.AccountFilterCodec.DecodeBatch(data)
		if err != nil || len(filters) != 1 {
			return common.PacketInvalidDataSize, nil
		}
		f := filters[0]
		var found []types.Transfer
		for _, id := range e.order {
			t := e.transfers[id]
			debit := f.Flags&types.AccountFilterFlagDebits != 0 && t.DebitAccountID == f.AccountID
			credit := f.Flags&types.AccountFilterFlagCredits != 0 && t.CreditAccountID == f.AccountID
			if (debit || credit) && (f.Limit == 0 || uint32(len(found)) < f.Limit) {
				found = append(found, t)
			}
		}
		return common.PacketOk, types.TransferCodec.EncodeBatch(found)

	case common.OpGetAccountBalances:
		return common.PacketOk, nil

	default:
		return common.PacketInvalidOperation, nil
	}
}

func (e *memoryExecutor) exists(id types.Uint128) bool {
	if _, ok := e.accounts[id]; ok {
		return true
	}
	_, ok := e.transfers[id]
	return ok
}

// --------------------------------------------------------------------------
// holdExecutor: never completes on its own
// --------------------------------------------------------------------------

// holdExecutor keeps every submitted packet until the test completes it
type holdExecutor struct {
	mu           sync.Mutex
	held         []*packet.Packet
	arrived      chan struct{}
	onCompletion executor.CompletionFunc
	initErr      error
	deinits      int
}

func newHoldExecutor() *holdExecutor {
	return &holdExecutor{arrived: make(chan struct{}, 1024)}
}

func (e *holdExecutor) Init(config common.ClientConfig, onCompletion executor.CompletionFunc) error {
	e.onCompletion = onCompletion
	return e.initErr
}

func (e *holdExecutor) Submit(p *packet.Packet) {
	e.mu.Lock()
	e.held = append(e.held, p)
	e.mu.Unlock()
	e.arrived <- struct{}{}
}

func (e *holdExecutor) Deinit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deinits++
	return nil
}

func (e *holdExecutor) GetName() string {
	return "hold"
}

// take removes and returns the oldest held packet
func (e *holdExecutor) take() *packet.Packet {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.held) == 0 {
		return nil
	}
	p := e.held[0]
	e.held = e.held[1:]
	return p
}

var errBoom = errors.New("boom")
