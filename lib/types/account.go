package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// AccountSize is the encoded size of an Account in bytes
const AccountSize = 128

// --------------------------------------------------------------------------
// Account Flags
// --------------------------------------------------------------------------

// AccountFlags is the bit set stored in Account.Flags
type AccountFlags uint16

const (
	AccountFlagLinked                     AccountFlags = 1 << 0
	AccountFlagDebitsMustNotExceedCredits AccountFlags = 1 << 1
	AccountFlagCreditsMustNotExceedDebits AccountFlags = 1 << 2
	AccountFlagHistory                    AccountFlags = 1 << 3
)

var accountFlagNames = []string{
	"linked",
	"debits_must_not_exceed_credits",
	"credits_must_not_exceed_debits",
	"history",
}

// String returns the set flags joined by "|" (or "none")
func (f AccountFlags) String() string {
	return flagString(uint32(f), accountFlagNames)
}

// ParseAccountFlags parses flag names as printed by AccountFlags.String
func ParseAccountFlags(value string) (AccountFlags, error) {
	flags, err := parseFlags(value, accountFlagNames)
	return AccountFlags(flags), err
}

// --------------------------------------------------------------------------
// Account Record
// --------------------------------------------------------------------------

// Account mirrors the ledger's 128 byte account record.
// The balance fields and Timestamp are assigned by the ledger and must be
// zero when the account is created.
type Account struct {
	ID             Uint128      `json:"id"`
	DebitsPending  Uint128      `json:"debits_pending"`
	DebitsPosted   Uint128      `json:"debits_posted"`
	CreditsPending Uint128      `json:"credits_pending"`
	CreditsPosted  Uint128      `json:"credits_posted"`
	UserData128    Uint128      `json:"user_data_128"`
	UserData64     uint64       `json:"user_data_64"`
	UserData32     uint32       `json:"user_data_32"`
	reserved       uint32       // preserved on decode, zero for new values
	Ledger         uint32       `json:"ledger"`
	Code           uint16       `json:"code"`
	Flags          AccountFlags `json:"flags"`
	Timestamp      uint64       `json:"timestamp"`
}

// Reserved returns the reserved field as it was decoded
func (a Account) Reserved() uint32 {
	return a.reserved
}

// MarshalBinary implements encoding.BinaryMarshaler
func (a Account) MarshalBinary() ([]byte, error) {
	return marshalRecord(AccountCodec, &a), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (a *Account) UnmarshalBinary(data []byte) error {
	return unmarshalRecord(AccountCodec, data, a)
}

func encodeAccount(dst []byte, a *Account) {
	_ = dst[AccountSize-1] // bounds check hint
	encodeUint128(dst[0:16], &a.ID)
	encodeUint128(dst[16:32], &a.DebitsPending)
	encodeUint128(dst[32:48], &a.DebitsPosted)
	encodeUint128(dst[48:64], &a.CreditsPending)
	encodeUint128(dst[64:80], &a.CreditsPosted)
	encodeUint128(dst[80:96], &a.UserData128)
	binary.LittleEndian.PutUint64(dst[96:104], a.UserData64)
	binary.LittleEndian.PutUint32(dst[104:108], a.UserData32)
	binary.LittleEndian.PutUint32(dst[108:112], a.reserved)
	binary.LittleEndian.PutUint32(dst[112:116], a.Ledger)
	binary.LittleEndian.PutUint16(dst[116:118], a.Code)
	binary.LittleEndian.PutUint16(dst[118:120], uint16(a.Flags))
	binary.LittleEndian.PutUint64(dst[120:128], a.Timestamp)
}

func decodeAccount(src []byte, a *Account) {
	_ = src[AccountSize-1]
	decodeUint128(src[0:16], &a.ID)
	decodeUint128(src[16:32], &a.DebitsPending)
	decodeUint128(src[32:48], &a.DebitsPosted)
	decodeUint128(src[48:64], &a.CreditsPending)
	decodeUint128(src[64:80], &a.CreditsPosted)
	decodeUint128(src[80:96], &a.UserData128)
	a.UserData64 = binary.LittleEndian.Uint64(src[96:104])
	a.UserData32 = binary.LittleEndian.Uint32(src[104:108])
	a.reserved = binary.LittleEndian.Uint32(src[108:112])
	a.Ledger = binary.LittleEndian.Uint32(src[112:116])
	a.Code = binary.LittleEndian.Uint16(src[116:118])
	a.Flags = AccountFlags(binary.LittleEndian.Uint16(src[118:120]))
	a.Timestamp = binary.LittleEndian.Uint64(src[120:128])
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// flagString renders the set bits of value using names[i] for bit i.
// Unknown bits are rendered as "bit_<n>".
func flagString(value uint32, names []string) string {
	if value == 0 {
		return "none"
	}

	var parts []string
	for bit := 0; bit < 32; bit++ {
		if value&(1<<bit) == 0 {
			continue
		}
		if bit < len(names) {
			parts = append(parts, names[bit])
		} else {
			parts = append(parts, "bit_"+strconv.Itoa(bit))
		}
	}
	return strings.Join(parts, "|")
}

// parseFlags is the inverse of flagString. Names may be separated by "|" or
// ","; an empty string and "none" parse to zero.
func parseFlags(value string, names []string) (uint32, error) {
	var flags uint32
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || part == "none" {
			continue
		}
		found := false
		for bit, name := range names {
			if name == part {
				flags |= 1 << bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown flag %q (expected one of: %s)", part, strings.Join(names, ", "))
		}
	}
	return flags, nil
}
