// Package types defines the fixed-layout records exchanged with the ledger and
// the codecs that translate them to and from their binary form.
//
// The package focuses on:
//   - Bit-exact little-endian encoding of every record the ledger accepts or returns
//   - Batch encoding of densely packed record arrays (no framing, no padding)
//   - Lossless round trips, including reserved regions the caller did not set
//
// Key Components:
//
//   - Uint128: 128-bit unsigned integer in the ledger's byte order, used for ids,
//     amounts and balances. Convertible from uint64, decimal/hex strings and big.Int.
//
//   - Account, Transfer, AccountFilter, AccountBalance: the request and reply
//     records. Each implements encoding.BinaryMarshaler and BinaryUnmarshaler.
//
//   - CreateAccountsResult, CreateTransfersResult: sparse result records. Only
//     events that did not succeed are reported; an empty result means every event
//     of the batch was applied.
//
//   - Codec: generic fixed-size codec with EncodeBatch and DecodeBatch. One codec
//     value exists per record type (AccountCodec, TransferCodec, ...).
//
//   - ID: time ordered, process monotonic identifier generator for new accounts
//     and transfers.
//
// The codecs do not validate field values. Whether an account or transfer is
// acceptable is decided by the ledger and reported through the result codes.
package types
