package types

import "encoding/binary"

// TransferSize is the encoded size of a Transfer in bytes
const TransferSize = 128

// --------------------------------------------------------------------------
// Transfer Flags
// --------------------------------------------------------------------------

// TransferFlags is the bit set stored in Transfer.Flags
type TransferFlags uint16

const (
	TransferFlagLinked              TransferFlags = 1 << 0
	TransferFlagPending             TransferFlags = 1 << 1
	TransferFlagPostPendingTransfer TransferFlags = 1 << 2
	TransferFlagVoidPendingTransfer TransferFlags = 1 << 3
	TransferFlagBalancingDebit      TransferFlags = 1 << 4
	TransferFlagBalancingCredit     TransferFlags = 1 << 5
)

var transferFlagNames = []string{
	"linked",
	"pending",
	"post_pending_transfer",
	"void_pending_transfer",
	"balancing_debit",
	"balancing_credit",
}

// String returns the set flags joined by "|" (or "none")
func (f TransferFlags) String() string {
	return flagString(uint32(f), transferFlagNames)
}

// ParseTransferFlags parses flag names as printed by TransferFlags.String
func ParseTransferFlags(value string) (TransferFlags, error) {
	flags, err := parseFlags(value, transferFlagNames)
	return TransferFlags(flags), err
}

// --------------------------------------------------------------------------
// Transfer Record
// --------------------------------------------------------------------------

// Transfer mirrors the ledger's 128 byte transfer record.
// Timestamp is assigned by the ledger and must be zero on creation.
type Transfer struct {
	ID              Uint128       `json:"id"`
	DebitAccountID  Uint128       `json:"debit_account_id"`
	CreditAccountID Uint128       `json:"credit_account_id"`
	Amount          Uint128       `json:"amount"`
	PendingID       Uint128       `json:"pending_id"`
	UserData128     Uint128       `json:"user_data_128"`
	UserData64      uint64        `json:"user_data_64"`
	UserData32      uint32        `json:"user_data_32"`
	Timeout         uint32        `json:"timeout"`
	Ledger          uint32        `json:"ledger"`
	Code            uint16        `json:"code"`
	Flags           TransferFlags `json:"flags"`
	Timestamp       uint64        `json:"timestamp"`
}

// MarshalBinary implements encoding.BinaryMarshaler
func (t Transfer) MarshalBinary() ([]byte, error) {
	return marshalRecord(TransferCodec, &t), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (t *Transfer) UnmarshalBinary(data []byte) error {
	return unmarshalRecord(TransferCodec, data, t)
}

func encodeTransfer(dst []byte, t *Transfer) {
	_ = dst[TransferSize-1]
	encodeUint128(dst[0:16], &t.ID)
	encodeUint128(dst[16:32], &t.DebitAccountID)
	encodeUint128(dst[32:48], &t.CreditAccountID)
	encodeUint128(dst[48:64], &t.Amount)
	encodeUint128(dst[64:80], &t.PendingID)
	encodeUint128(dst[80:96], &t.UserData128)
	binary.LittleEndian.PutUint64(dst[96:104], t.UserData64)
	binary.LittleEndian.PutUint32(dst[104:108], t.UserData32)
	binary.LittleEndian.PutUint32(dst[108:112], t.Timeout)
	binary.LittleEndian.PutUint32(dst[112:116], t.Ledger)
	binary.LittleEndian.PutUint16(dst[116:118], t.Code)
	binary.LittleEndian.PutUint16(dst[118:120], uint16(t.Flags))
	binary.LittleEndian.PutUint64(dst[120:128], t.Timestamp)
}

func decodeTransfer(src []byte, t *Transfer) {
	_ = src[TransferSize-1]
	decodeUint128(src[0:16], &t.ID)
	decodeUint128(src[16:32], &t.DebitAccountID)
	decodeUint128(src[32:48], &t.CreditAccountID)
	decodeUint128(src[48:64], &t.Amount)
	decodeUint128(src[64:80], &t.PendingID)
	decodeUint128(src[80:96], &t.UserData128)
	t.UserData64 = binary.LittleEndian.Uint64(src[96:104])
	t.UserData32 = binary.LittleEndian.Uint32(src[104:108])
	t.Timeout = binary.LittleEndian.Uint32(src[108:112])
	t.Ledger = binary.LittleEndian.Uint32(src[112:116])
	t.Code = binary.LittleEndian.Uint16(src[116:118])
	t.Flags = TransferFlags(binary.LittleEndian.Uint16(src[118:120]))
	t.Timestamp = binary.LittleEndian.Uint64(src[120:128])
}
