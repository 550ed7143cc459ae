package common

import (
	"fmt"

	"github.com/ValentinKolb/dLedger/lib/types"
)

// --------------------------------------------------------------------------
// Protocol limits
// --------------------------------------------------------------------------

const (
	// MessageSizeMax is the largest message the ledger accepts, header included
	MessageSizeMax = 1024 * 1024
	// MessageHeaderSize is the size of the ledger's message header
	MessageHeaderSize = 256
	// MessageBodySizeMax is the default maximum request payload (8190 accounts or transfers)
	MessageBodySizeMax = MessageSizeMax - MessageHeaderSize

	// ConcurrencyMax is the upper bound for ClientConfig.Concurrency
	ConcurrencyMax = 8192
	// ConcurrencyDefault is used when ClientConfig.Concurrency is zero
	ConcurrencyDefault = 256
)

// --------------------------------------------------------------------------
// Operation
// --------------------------------------------------------------------------

// Operation identifies the kind of batch a packet carries
type Operation uint8

const (
	OpPulse               Operation = 128 // internal, never submitted by the client
	OpCreateAccounts      Operation = 129
	OpCreateTransfers     Operation = 130
	OpLookupAccounts      Operation = 131
	OpLookupTransfers     Operation = 132
	OpGetAccountTransfers Operation = 133
	OpGetAccountBalances  Operation = 134
)

// String returns the snake_case name of the operation
func (o Operation) String() string {
	switch o {
	case OpPulse:
		return "pulse"
	case OpCreateAccounts:
		return "create_accounts"
	case OpCreateTransfers:
		return "create_transfers"
	case OpLookupAccounts:
		return "lookup_accounts"
	case OpLookupTransfers:
		return "lookup_transfers"
	case OpGetAccountTransfers:
		return "get_account_transfers"
	case OpGetAccountBalances:
		return "get_account_balances"
	default:
		return fmt.Sprintf("operation(%d)", uint8(o))
	}
}

// Valid reports whether the operation may be submitted by a client
func (o Operation) Valid() bool {
	return o >= OpCreateAccounts && o <= OpGetAccountBalances
}

// EventSize returns the size of one request record of the operation,
// or 0 for operations that cannot be submitted
func (o Operation) EventSize() int {
	switch o {
	case OpCreateAccounts:
		return types.AccountSize
	case OpCreateTransfers:
		return types.TransferSize
	case OpLookupAccounts, OpLookupTransfers:
		return types.Uint128Size
	case OpGetAccountTransfers, OpGetAccountBalances:
		return types.AccountFilterSize
	default:
		return 0
	}
}

// ResultSize returns the size of one reply record of the operation,
// or 0 for operations that cannot be submitted
func (o Operation) ResultSize() int {
	switch o {
	case OpCreateAccounts:
		return types.CreateAccountsResultSize
	case OpCreateTransfers:
		return types.CreateTransfersResultSize
	case OpLookupAccounts:
		return types.AccountSize
	case OpLookupTransfers, OpGetAccountTransfers:
		return types.TransferSize
	case OpGetAccountBalances:
		return types.AccountBalanceSize
	default:
		return 0
	}
}

// MaxEvents returns how many events of the operation fit into a payload of
// maxPayload bytes while their results still fit into a reply of the same
// size. Filter based queries always carry exactly one event.
func (o Operation) MaxEvents(maxPayload int) int {
	switch o {
	case OpGetAccountTransfers, OpGetAccountBalances:
		return 1
	}
	if size := max(o.EventSize(), o.ResultSize()); size > 0 {
		return maxPayload / size
	}
	return 0
}

// ParseOperation resolves a snake_case operation name
func ParseOperation(name string) (Operation, error) {
	for op := OpCreateAccounts; op <= OpGetAccountBalances; op++ {
		if op.String() == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// --------------------------------------------------------------------------
// Packet Status
// --------------------------------------------------------------------------

// PacketStatus is the protocol level outcome of a submitted packet
type PacketStatus uint8

const (
	PacketOk               PacketStatus = 0
	PacketTooMuchData      PacketStatus = 1
	PacketInvalidOperation PacketStatus = 2
	PacketInvalidDataSize  PacketStatus = 3
	// PacketClientShutdown is set by executors whose runtime stopped before the packet was sent
	PacketClientShutdown PacketStatus = 4
)

// String returns the snake_case name of the status
func (s PacketStatus) String() string {
	switch s {
	case PacketOk:
		return "ok"
	case PacketTooMuchData:
		return "too_much_data"
	case PacketInvalidOperation:
		return "invalid_operation"
	case PacketInvalidDataSize:
		return "invalid_data_size"
	case PacketClientShutdown:
		return "client_shutdown"
	default:
		return fmt.Sprintf("packet_status(%d)", uint8(s))
	}
}

// --------------------------------------------------------------------------
// Initialization Status
// --------------------------------------------------------------------------

// InitializationStatus is the reason a client could not be created
type InitializationStatus uint8

const (
	InitSuccess               InitializationStatus = 0
	InitUnexpected            InitializationStatus = 1
	InitOutOfMemory           InitializationStatus = 2
	InitAddressInvalid        InitializationStatus = 3
	InitAddressLimitExceeded  InitializationStatus = 4
	InitConcurrencyMaxInvalid InitializationStatus = 5
	InitSystemResources       InitializationStatus = 6
	InitNetworkSubsystem      InitializationStatus = 7
)

// String returns the snake_case name of the status
func (s InitializationStatus) String() string {
	switch s {
	case InitSuccess:
		return "success"
	case InitUnexpected:
		return "unexpected"
	case InitOutOfMemory:
		return "out_of_memory"
	case InitAddressInvalid:
		return "address_invalid"
	case InitAddressLimitExceeded:
		return "address_limit_exceeded"
	case InitConcurrencyMaxInvalid:
		return "concurrency_max_invalid"
	case InitSystemResources:
		return "system_resources"
	case InitNetworkSubsystem:
		return "network_subsystem"
	default:
		return fmt.Sprintf("initialization_status(%d)", uint8(s))
	}
}
