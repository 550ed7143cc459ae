package types

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func testAccount() Account {
	return Account{
		ID:          ToUint128(1),
		UserData128: ToUint128(2),
		UserData64:  3,
		UserData32:  4,
		Ledger:      700,
		Code:        10,
		Flags:       AccountFlagLinked | AccountFlagHistory,
		Timestamp:   0,
	}
}

func testTransfer() Transfer {
	return Transfer{
		ID:              ToUint128(42),
		DebitAccountID:  ToUint128(1),
		CreditAccountID: ToUint128(2),
		Amount:          MaxUint128,
		PendingID:       ToUint128(0),
		UserData128:     ToUint128(7),
		UserData64:      8,
		UserData32:      9,
		Timeout:         60,
		Ledger:          700,
		Code:            1,
		Flags:           TransferFlagPending,
	}
}

// TestAccountLayout verifies that every field lands at its fixed offset
func TestAccountLayout(t *testing.T) {
	a := testAccount()
	a.CreditsPosted = ToUint128(0x0102030405060708)
	a.Timestamp = 0xAABBCCDD

	buf, err := a.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	if len(buf) != AccountSize {
		t.Fatalf("Expected %d bytes, got %d", AccountSize, len(buf))
	}

	checks := []struct {
		name   string
		offset int
		got    uint64
		want   uint64
	}{
		{"id", 0, binary.LittleEndian.Uint64(buf[0:]), 1},
		{"credits_posted", 64, binary.LittleEndian.Uint64(buf[64:]), 0x0102030405060708},
		{"user_data_128", 80, binary.LittleEndian.Uint64(buf[80:]), 2},
		{"user_data_64", 96, binary.LittleEndian.Uint64(buf[96:]), 3},
		{"user_data_32", 104, uint64(binary.LittleEndian.Uint32(buf[104:])), 4},
		{"reserved", 108, uint64(binary.LittleEndian.Uint32(buf[108:])), 0},
		{"ledger", 112, uint64(binary.LittleEndian.Uint32(buf[112:])), 700},
		{"code", 116, uint64(binary.LittleEndian.Uint16(buf[116:])), 10},
		{"flags", 118, uint64(binary.LittleEndian.Uint16(buf[118:])), uint64(AccountFlagLinked | AccountFlagHistory)},
		{"timestamp", 120, binary.LittleEndian.Uint64(buf[120:]), 0xAABBCCDD},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if c.got != c.want {
				t.Errorf("Field %s at offset %d: expected %#x, got %#x", c.name, c.offset, c.want, c.got)
			}
		})
	}
}

// TestTransferLayout verifies the transfer specific offsets
func TestTransferLayout(t *testing.T) {
	tr := testTransfer()
	buf := TransferCodec.EncodeBatch([]Transfer{tr})

	if len(buf) != TransferSize {
		t.Fatalf("Expected %d bytes, got %d", TransferSize, len(buf))
	}
	if got := binary.LittleEndian.Uint64(buf[16:]); got != 1 {
		t.Errorf("debit_account_id: expected 1, got %d", got)
	}
	if got := binary.LittleEndian.Uint64(buf[32:]); got != 2 {
		t.Errorf("credit_account_id: expected 2, got %d", got)
	}
	for i := 48; i < 64; i++ {
		if buf[i] != 0xff {
			t.Fatalf("amount byte %d: expected 0xff, got %#x", i, buf[i])
		}
	}
	if got := binary.LittleEndian.Uint32(buf[108:]); got != 60 {
		t.Errorf("timeout: expected 60, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(buf[118:]); got != uint16(TransferFlagPending) {
		t.Errorf("flags: expected %d, got %d", TransferFlagPending, got)
	}
}

// TestBatchRoundTrip encodes and decodes batches of every record type
func TestBatchRoundTrip(t *testing.T) {
	t.Run("accounts", func(t *testing.T) {
		in := []Account{testAccount(), {ID: ToUint128(2), Ledger: 1, Code: 1}}
		out, err := AccountCodec.DecodeBatch(AccountCodec.EncodeBatch(in))
		if err != nil {
			t.Fatalf("DecodeBatch failed: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("Expected %+v, got %+v", in, out)
		}
	})

	t.Run("transfers", func(t *testing.T) {
		in := []Transfer{testTransfer(), testTransfer()}
		in[1].ID = ToUint128(43)
		out, err := TransferCodec.DecodeBatch(TransferCodec.EncodeBatch(in))
		if err != nil {
			t.Fatalf("DecodeBatch failed: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("Expected %+v, got %+v", in, out)
		}
	})

	t.Run("ids", func(t *testing.T) {
		in := []Uint128{ToUint128(1), MaxUint128, {}}
		buf := Uint128Codec.EncodeBatch(in)
		if len(buf) != 48 {
			t.Fatalf("Expected 48 bytes, got %d", len(buf))
		}
		out, err := Uint128Codec.DecodeBatch(buf)
		if err != nil {
			t.Fatalf("DecodeBatch failed: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("Expected %v, got %v", in, out)
		}
	})

	t.Run("results", func(t *testing.T) {
		in := []CreateTransfersResult{
			{Index: 0, Result: CreateTransferExists},
			{Index: 7, Result: CreateTransferExceedsDebits},
		}
		out, err := CreateTransfersResultCodec.DecodeBatch(CreateTransfersResultCodec.EncodeBatch(in))
		if err != nil {
			t.Fatalf("DecodeBatch failed: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("Expected %+v, got %+v", in, out)
		}
	})

	t.Run("filter", func(t *testing.T) {
		in := AccountFilter{
			AccountID:    ToUint128(5),
			TimestampMin: 1,
			TimestampMax: 2,
			Limit:        10,
			Flags:        AccountFilterFlagDebits | AccountFilterFlagReversed,
		}
		buf, _ := in.MarshalBinary()
		if len(buf) != AccountFilterSize {
			t.Fatalf("Expected %d bytes, got %d", AccountFilterSize, len(buf))
		}
		var out AccountFilter
		if err := out.UnmarshalBinary(buf); err != nil {
			t.Fatalf("UnmarshalBinary failed: %v", err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("Expected %+v, got %+v", in, out)
		}
	})
}

// TestDecodeEmpty checks that an empty buffer decodes to an empty, non-nil slice
func TestDecodeEmpty(t *testing.T) {
	out, err := CreateAccountsResultCodec.DecodeBatch(nil)
	if err != nil {
		t.Fatalf("DecodeBatch failed: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", out)
	}
}

// TestDecodeInvalidLength checks that partial records are rejected
func TestDecodeInvalidLength(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"account", func() error { _, err := AccountCodec.DecodeBatch(make([]byte, AccountSize+1)); return err }},
		{"transfer", func() error { _, err := TransferCodec.DecodeBatch(make([]byte, 127)); return err }},
		{"result", func() error { _, err := CreateAccountsResultCodec.DecodeBatch(make([]byte, 12)); return err }},
		{"balance", func() error { var b AccountBalance; return b.UnmarshalBinary(make([]byte, 64)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrInvalidLength) {
				t.Errorf("Expected ErrInvalidLength, got %v", err)
			}
		})
	}
}

// TestReservedPreserved checks that reserved bytes survive a decode/encode cycle
func TestReservedPreserved(t *testing.T) {
	t.Run("account", func(t *testing.T) {
		buf := AccountCodec.EncodeBatch([]Account{testAccount()})
		binary.LittleEndian.PutUint32(buf[108:], 0xDEADBEEF)

		var a Account
		if err := a.UnmarshalBinary(buf); err != nil {
			t.Fatalf("UnmarshalBinary failed: %v", err)
		}
		if a.Reserved() != 0xDEADBEEF {
			t.Errorf("Expected reserved 0xDEADBEEF, got %#x", a.Reserved())
		}

		again, _ := a.MarshalBinary()
		if !reflect.DeepEqual(buf, again) {
			t.Errorf("Re-encoded bytes differ from the input")
		}
	})

	t.Run("filter", func(t *testing.T) {
		buf := make([]byte, AccountFilterSize)
		buf[40] = 1
		buf[63] = 2

		var f AccountFilter
		if err := f.UnmarshalBinary(buf); err != nil {
			t.Fatalf("UnmarshalBinary failed: %v", err)
		}
		if f.ReservedIsZero() {
			t.Errorf("Expected non-zero reserved bytes")
		}

		again, _ := f.MarshalBinary()
		if !reflect.DeepEqual(buf, again) {
			t.Errorf("Re-encoded bytes differ from the input")
		}
	})

	t.Run("balance", func(t *testing.T) {
		buf := make([]byte, AccountBalanceSize)
		buf[0] = 9
		buf[64] = 1
		buf[127] = 0x7f

		var b AccountBalance
		if err := b.UnmarshalBinary(buf); err != nil {
			t.Fatalf("UnmarshalBinary failed: %v", err)
		}
		if b.DebitsPending != ToUint128(9) || b.Timestamp != 1 {
			t.Errorf("Unexpected decoded balance %+v", b)
		}
		if r := b.Reserved(); r[55] != 0x7f {
			t.Errorf("Expected last reserved byte 0x7f, got %#x", r[55])
		}

		again, _ := b.MarshalBinary()
		if !reflect.DeepEqual(buf, again) {
			t.Errorf("Re-encoded bytes differ from the input")
		}
	})
}

// TestEnumStrings checks the names of flags and result codes
func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{AccountFlags(0).String(), "none"},
		{(AccountFlagLinked | AccountFlagHistory).String(), "linked|history"},
		{TransferFlags(1 << 9).String(), "bit_9"},
		{AccountFilterFlagCredits.String(), "credits"},
		{CreateAccountOk.String(), "ok"},
		{CreateAccountExists.String(), "exists"},
		{CreateAccountIDMustNotBeIntMax.String(), "id_must_not_be_int_max"},
		{CreateTransferExceedsDebits.String(), "exceeds_debits"},
		{CreateTransferPendingTransferExpired.String(), "pending_transfer_expired"},
		{CreateTransferResult(999).String(), "unknown(999)"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, tt.got)
		}
	}

	if len(createAccountResultNames) != int(CreateAccountExists)+1 {
		t.Errorf("Missing create account result names")
	}
	if len(createTransferResultNames) != int(CreateTransferExceedsDebits)+1 {
		t.Errorf("Missing create transfer result names")
	}
}

// TestParseFlags checks that flag names parse back into bits
func TestParseFlags(t *testing.T) {
	t.Run("account", func(t *testing.T) {
		flags, err := ParseAccountFlags("linked|history")
		if err != nil || flags != AccountFlagLinked|AccountFlagHistory {
			t.Errorf("Expected linked|history, got %s (%v)", flags, err)
		}
		if flags, err := ParseAccountFlags(flags.String()); err != nil || flags != AccountFlagLinked|AccountFlagHistory {
			t.Errorf("Expected the String form to parse, got %s (%v)", flags, err)
		}
	})

	t.Run("transfer", func(t *testing.T) {
		flags, err := ParseTransferFlags("pending, balancing_credit")
		if err != nil || flags != TransferFlagPending|TransferFlagBalancingCredit {
			t.Errorf("Expected pending|balancing_credit, got %s (%v)", flags, err)
		}
	})

	t.Run("filter", func(t *testing.T) {
		flags, err := ParseAccountFilterFlags("Debits,CREDITS")
		if err != nil || flags != AccountFilterFlagDebits|AccountFilterFlagCredits {
			t.Errorf("Expected debits|credits, got %s (%v)", flags, err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		for _, value := range []string{"", "none"} {
			if flags, err := ParseAccountFlags(value); err != nil || flags != 0 {
				t.Errorf("Expected no flags for %q, got %s (%v)", value, flags, err)
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseTransferFlags("pending|frozen"); err == nil {
			t.Errorf("Expected an error for an unknown flag")
		}
	})
}
