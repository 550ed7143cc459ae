package types

import (
	"errors"
	"fmt"
)

// ErrInvalidLength is returned when a buffer does not hold a whole number of records
var ErrInvalidLength = errors.New("invalid record buffer length")

// --------------------------------------------------------------------------
// Generic fixed-size record codec
// --------------------------------------------------------------------------

// Codec encodes and decodes a fixed-size record type. Encode and Decode
// operate on exactly Size bytes; EncodeBatch and DecodeBatch work on the
// densely packed arrays the ledger exchanges.
type Codec[T any] struct {
	Size   int
	Encode func(dst []byte, v *T)
	Decode func(src []byte, v *T)
}

// EncodeBatch packs values back to back into a new buffer
func (c Codec[T]) EncodeBatch(values []T) []byte {
	buf := make([]byte, len(values)*c.Size)
	for i := range values {
		c.Encode(buf[i*c.Size:(i+1)*c.Size], &values[i])
	}
	return buf
}

// DecodeBatch unpacks a buffer into records. The buffer is not retained.
// An empty buffer decodes to an empty, non-nil slice.
func (c Codec[T]) DecodeBatch(data []byte) ([]T, error) {
	if len(data)%c.Size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidLength, len(data), c.Size)
	}

	values := make([]T, len(data)/c.Size)
	for i := range values {
		c.Decode(data[i*c.Size:(i+1)*c.Size], &values[i])
	}
	return values, nil
}

// EncodedSize returns the number of bytes n records occupy
func (c Codec[T]) EncodedSize(n int) int {
	return n * c.Size
}

// --------------------------------------------------------------------------
// Codecs for all record types
// --------------------------------------------------------------------------

var (
	Uint128Codec               = Codec[Uint128]{Size: Uint128Size, Encode: encodeUint128, Decode: decodeUint128}
	AccountCodec               = Codec[Account]{Size: AccountSize, Encode: encodeAccount, Decode: decodeAccount}
	TransferCodec              = Codec[Transfer]{Size: TransferSize, Encode: encodeTransfer, Decode: decodeTransfer}
	CreateAccountsResultCodec  = Codec[CreateAccountsResult]{Size: CreateAccountsResultSize, Encode: encodeCreateAccountsResult, Decode: decodeCreateAccountsResult}
	CreateTransfersResultCodec = Codec[CreateTransfersResult]{Size: CreateTransfersResultSize, Encode: encodeCreateTransfersResult, Decode: decodeCreateTransfersResult}
	AccountFilterCodec         = Codec[AccountFilter]{Size: AccountFilterSize, Encode: encodeAccountFilter, Decode: decodeAccountFilter}
	AccountBalanceCodec        = Codec[AccountBalance]{Size: AccountBalanceSize, Encode: encodeAccountBalance, Decode: decodeAccountBalance}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// marshalRecord is shared by the encoding.BinaryMarshaler implementations
func marshalRecord[T any](c Codec[T], v *T) []byte {
	buf := make([]byte, c.Size)
	c.Encode(buf, v)
	return buf
}

// unmarshalRecord is shared by the encoding.BinaryUnmarshaler implementations
func unmarshalRecord[T any](c Codec[T], data []byte, v *T) error {
	if len(data) != c.Size {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLength, c.Size, len(data))
	}
	c.Decode(data, v)
	return nil
}
