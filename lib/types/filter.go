package types

import "encoding/binary"

const (
	// AccountFilterSize is the encoded size of an AccountFilter in bytes
	AccountFilterSize = 64
	// AccountBalanceSize is the encoded size of an AccountBalance in bytes
	AccountBalanceSize = 128

	accountFilterReservedSize  = 24
	accountBalanceReservedSize = 56
)

// --------------------------------------------------------------------------
// Account Filter
// --------------------------------------------------------------------------

// AccountFilterFlags selects which side of an account a query covers and
// the order of the returned rows
type AccountFilterFlags uint32

const (
	AccountFilterFlagDebits   AccountFilterFlags = 1 << 0
	AccountFilterFlagCredits  AccountFilterFlags = 1 << 1
	AccountFilterFlagReversed AccountFilterFlags = 1 << 2
)

var accountFilterFlagNames = []string{"debits", "credits", "reversed"}

// String returns the set flags joined by "|" (or "none")
func (f AccountFilterFlags) String() string {
	return flagString(uint32(f), accountFilterFlagNames)
}

// ParseAccountFilterFlags parses flag names as printed by AccountFilterFlags.String
func ParseAccountFilterFlags(value string) (AccountFilterFlags, error) {
	flags, err := parseFlags(value, accountFilterFlagNames)
	return AccountFilterFlags(flags), err
}

// AccountFilter bounds get_account_transfers and get_account_balances.
// TimestampMin and TimestampMax are inclusive, zero means unbounded.
type AccountFilter struct {
	AccountID    Uint128            `json:"account_id"`
	TimestampMin uint64             `json:"timestamp_min"`
	TimestampMax uint64             `json:"timestamp_max"`
	Limit        uint32             `json:"limit"`
	Flags        AccountFilterFlags `json:"flags"`
	reserved     [accountFilterReservedSize]byte
}

// Reserved returns the reserved padding as it was decoded
func (f AccountFilter) Reserved() [accountFilterReservedSize]byte {
	return f.reserved
}

// ReservedIsZero reports whether the reserved padding is all zero, which
// the ledger requires for every submitted filter
func (f AccountFilter) ReservedIsZero() bool {
	return f.reserved == [accountFilterReservedSize]byte{}
}

// MarshalBinary implements encoding.BinaryMarshaler
func (f AccountFilter) MarshalBinary() ([]byte, error) {
	return marshalRecord(AccountFilterCodec, &f), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (f *AccountFilter) UnmarshalBinary(data []byte) error {
	return unmarshalRecord(AccountFilterCodec, data, f)
}

func encodeAccountFilter(dst []byte, f *AccountFilter) {
	_ = dst[AccountFilterSize-1]
	encodeUint128(dst[0:16], &f.AccountID)
	binary.LittleEndian.PutUint64(dst[16:24], f.TimestampMin)
	binary.LittleEndian.PutUint64(dst[24:32], f.TimestampMax)
	binary.LittleEndian.PutUint32(dst[32:36], f.Limit)
	binary.LittleEndian.PutUint32(dst[36:40], uint32(f.Flags))
	copy(dst[40:64], f.reserved[:])
}

func decodeAccountFilter(src []byte, f *AccountFilter) {
	_ = src[AccountFilterSize-1]
	decodeUint128(src[0:16], &f.AccountID)
	f.TimestampMin = binary.LittleEndian.Uint64(src[16:24])
	f.TimestampMax = binary.LittleEndian.Uint64(src[24:32])
	f.Limit = binary.LittleEndian.Uint32(src[32:36])
	f.Flags = AccountFilterFlags(binary.LittleEndian.Uint32(src[36:40]))
	copy(f.reserved[:], src[40:64])
}

// --------------------------------------------------------------------------
// Account Balance
// --------------------------------------------------------------------------

// AccountBalance is a historical balance snapshot of an account that was
// created with AccountFlagHistory
type AccountBalance struct {
	DebitsPending  Uint128 `json:"debits_pending"`
	DebitsPosted   Uint128 `json:"debits_posted"`
	CreditsPending Uint128 `json:"credits_pending"`
	CreditsPosted  Uint128 `json:"credits_posted"`
	Timestamp      uint64  `json:"timestamp"`
	reserved       [accountBalanceReservedSize]byte
}

// Reserved returns the reserved padding as it was decoded
func (b AccountBalance) Reserved() [accountBalanceReservedSize]byte {
	return b.reserved
}

// MarshalBinary implements encoding.BinaryMarshaler
func (b AccountBalance) MarshalBinary() ([]byte, error) {
	return marshalRecord(AccountBalanceCodec, &b), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (b *AccountBalance) UnmarshalBinary(data []byte) error {
	return unmarshalRecord(AccountBalanceCodec, data, b)
}

func encodeAccountBalance(dst []byte, b *AccountBalance) {
	_ = dst[AccountBalanceSize-1]
	encodeUint128(dst[0:16], &b.DebitsPending)
	encodeUint128(dst[16:32], &b.DebitsPosted)
	encodeUint128(dst[32:48], &b.CreditsPending)
	encodeUint128(dst[48:64], &b.CreditsPosted)
	binary.LittleEndian.PutUint64(dst[64:72], b.Timestamp)
	copy(dst[72:128], b.reserved[:])
}

func decodeAccountBalance(src []byte, b *AccountBalance) {
	_ = src[AccountBalanceSize-1]
	decodeUint128(src[0:16], &b.DebitsPending)
	decodeUint128(src[16:32], &b.DebitsPosted)
	decodeUint128(src[32:48], &b.CreditsPending)
	decodeUint128(src[48:64], &b.CreditsPosted)
	b.Timestamp = binary.LittleEndian.Uint64(src[64:72])
	copy(b.reserved[:], src[72:128])
}
