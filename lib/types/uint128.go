package types

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Uint128Size is the encoded size of a Uint128 in bytes
const Uint128Size = 16

// Uint128 is an unsigned 128-bit integer stored in little-endian byte order,
// which is the layout the ledger uses for ids, amounts and balances.
type Uint128 [Uint128Size]byte

// MaxUint128 is the largest representable value (2^128 - 1)
var MaxUint128 = Uint128{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// ToUint128 converts a uint64 into a Uint128
func ToUint128(value uint64) Uint128 {
	var u Uint128
	binary.LittleEndian.PutUint64(u[:8], value)
	return u
}

// BytesToUint128 interprets b as a little-endian 128-bit value
func BytesToUint128(b [Uint128Size]byte) Uint128 {
	return Uint128(b)
}

// ParseUint128 parses a decimal string (e.g. "340282366920938463463374607431768211455")
func ParseUint128(value string) (Uint128, error) {
	b, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return Uint128{}, fmt.Errorf("invalid uint128 %q", value)
	}
	return BigIntToUint128(b)
}

// HexStringToUint128 parses a hexadecimal string with an optional 0x prefix
func HexStringToUint128(value string) (Uint128, error) {
	value = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(value), "0x"), "0X")
	b, ok := new(big.Int).SetString(value, 16)
	if !ok {
		return Uint128{}, fmt.Errorf("invalid hex uint128 %q", value)
	}
	return BigIntToUint128(b)
}

// BigIntToUint128 converts b into a Uint128, failing if b is negative or
// does not fit into 128 bits
func BigIntToUint128(b *big.Int) (Uint128, error) {
	if b.Sign() < 0 || b.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("value %s out of uint128 range", b.String())
	}

	// big.Int fills big-endian, the wire layout is little-endian
	var be [Uint128Size]byte
	b.FillBytes(be[:])

	var u Uint128
	for i := 0; i < Uint128Size; i++ {
		u[i] = be[Uint128Size-1-i]
	}
	return u, nil
}

// BigInt returns the value as a new big.Int
func (u Uint128) BigInt() *big.Int {
	var be [Uint128Size]byte
	for i := 0; i < Uint128Size; i++ {
		be[i] = u[Uint128Size-1-i]
	}
	return new(big.Int).SetBytes(be[:])
}

// Bytes returns the little-endian byte representation
func (u Uint128) Bytes() [Uint128Size]byte {
	return u
}

// IsZero reports whether the value is zero
func (u Uint128) IsZero() bool {
	return u == Uint128{}
}

// String returns the decimal representation
func (u Uint128) String() string {
	// fast path for values that fit into 64 bits
	if binary.LittleEndian.Uint64(u[8:]) == 0 {
		return fmt.Sprintf("%d", binary.LittleEndian.Uint64(u[:8]))
	}
	return u.BigInt().String()
}

// MarshalJSON encodes the value as a decimal string, since JSON numbers
// cannot hold 128 bits without loss in most decoders
func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON accepts both a decimal string and a bare JSON number
func (u *Uint128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// not a string, try a bare number
		s = string(data)
	}

	parsed, err := ParseUint128(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func encodeUint128(dst []byte, v *Uint128) {
	copy(dst[:Uint128Size], v[:])
}

func decodeUint128(src []byte, v *Uint128) {
	copy(v[:], src[:Uint128Size])
}
