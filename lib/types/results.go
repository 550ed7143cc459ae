package types

import (
	"encoding/binary"
	"strconv"
)

const (
	// CreateAccountsResultSize is the encoded size of a CreateAccountsResult in bytes
	CreateAccountsResultSize = 8
	// CreateTransfersResultSize is the encoded size of a CreateTransfersResult in bytes
	CreateTransfersResultSize = 8
)

// --------------------------------------------------------------------------
// Create Account Result Codes
// --------------------------------------------------------------------------

// CreateAccountResult is the outcome of creating a single account.
// The ledger only reports events that did not succeed.
type CreateAccountResult uint32

const (
	CreateAccountOk CreateAccountResult = iota
	CreateAccountLinkedEventFailed
	CreateAccountLinkedEventChainOpen
	CreateAccountTimestampMustBeZero
	CreateAccountReservedField
	CreateAccountReservedFlag
	CreateAccountIDMustNotBeZero
	CreateAccountIDMustNotBeIntMax
	CreateAccountFlagsAreMutuallyExclusive
	CreateAccountDebitsPendingMustBeZero
	CreateAccountDebitsPostedMustBeZero
	CreateAccountCreditsPendingMustBeZero
	CreateAccountCreditsPostedMustBeZero
	CreateAccountLedgerMustNotBeZero
	CreateAccountCodeMustNotBeZero
	CreateAccountExistsWithDifferentFlags
	CreateAccountExistsWithDifferentUserData128
	CreateAccountExistsWithDifferentUserData64
	CreateAccountExistsWithDifferentUserData32
	CreateAccountExistsWithDifferentLedger
	CreateAccountExistsWithDifferentCode
	CreateAccountExists
)

var createAccountResultNames = []string{
	"ok",
	"linked_event_failed",
	"linked_event_chain_open",
	"timestamp_must_be_zero",
	"reserved_field",
	"reserved_flag",
	"id_must_not_be_zero",
	"id_must_not_be_int_max",
	"flags_are_mutually_exclusive",
	"debits_pending_must_be_zero",
	"debits_posted_must_be_zero",
	"credits_pending_must_be_zero",
	"credits_posted_must_be_zero",
	"ledger_must_not_be_zero",
	"code_must_not_be_zero",
	"exists_with_different_flags",
	"exists_with_different_user_data_128",
	"exists_with_different_user_data_64",
	"exists_with_different_user_data_32",
	"exists_with_different_ledger",
	"exists_with_different_code",
	"exists",
}

// String returns the snake_case name of the result code
func (r CreateAccountResult) String() string {
	return enumString(uint32(r), createAccountResultNames)
}

// --------------------------------------------------------------------------
// Create Transfer Result Codes
// --------------------------------------------------------------------------

// CreateTransferResult is the outcome of creating a single transfer.
// The ledger only reports events that did not succeed.
type CreateTransferResult uint32

const (
	CreateTransferOk CreateTransferResult = iota
	CreateTransferLinkedEventFailed
	CreateTransferLinkedEventChainOpen
	CreateTransferTimestampMustBeZero
	CreateTransferReservedFlag
	CreateTransferIDMustNotBeZero
	CreateTransferIDMustNotBeIntMax
	CreateTransferFlagsAreMutuallyExclusive
	CreateTransferDebitAccountIDMustNotBeZero
	CreateTransferDebitAccountIDMustNotBeIntMax
	CreateTransferCreditAccountIDMustNotBeZero
	CreateTransferCreditAccountIDMustNotBeIntMax
	CreateTransferAccountsMustBeDifferent
	CreateTransferPendingIDMustBeZero
	CreateTransferPendingIDMustNotBeZero
	CreateTransferPendingIDMustNotBeIntMax
	CreateTransferPendingIDMustBeDifferent
	CreateTransferTimeoutReservedForPendingTransfer
	CreateTransferAmountMustNotBeZero
	CreateTransferLedgerMustNotBeZero
	CreateTransferCodeMustNotBeZero
	CreateTransferDebitAccountNotFound
	CreateTransferCreditAccountNotFound
	CreateTransferAccountsMustHaveTheSameLedger
	CreateTransferTransferMustHaveTheSameLedgerAsAccounts
	CreateTransferPendingTransferNotFound
	CreateTransferPendingTransferNotPending
	CreateTransferPendingTransferHasDifferentDebitAccountID
	CreateTransferPendingTransferHasDifferentCreditAccountID
	CreateTransferPendingTransferHasDifferentLedger
	CreateTransferPendingTransferHasDifferentCode
	CreateTransferExceedsPendingTransferAmount
	CreateTransferPendingTransferHasDifferentAmount
	CreateTransferPendingTransferAlreadyPosted
	CreateTransferPendingTransferAlreadyVoided
	CreateTransferPendingTransferExpired
	CreateTransferExistsWithDifferentFlags
	CreateTransferExistsWithDifferentDebitAccountID
	CreateTransferExistsWithDifferentCreditAccountID
	CreateTransferExistsWithDifferentAmount
	CreateTransferExistsWithDifferentPendingID
	CreateTransferExistsWithDifferentUserData128
	CreateTransferExistsWithDifferentUserData64
	CreateTransferExistsWithDifferentUserData32
	CreateTransferExistsWithDifferentTimeout
	CreateTransferExistsWithDifferentCode
	CreateTransferExists
	CreateTransferOverflowsDebitsPending
	CreateTransferOverflowsCreditsPending
	CreateTransferOverflowsDebitsPosted
	CreateTransferOverflowsCreditsPosted
	CreateTransferOverflowsDebits
	CreateTransferOverflowsCredits
	CreateTransferOverflowsTimeout
	CreateTransferExceedsCredits
	CreateTransferExceedsDebits
)

var createTransferResultNames = []string{
	"ok",
	"linked_event_failed",
	"linked_event_chain_open",
	"timestamp_must_be_zero",
	"reserved_flag",
	"id_must_not_be_zero",
	"id_must_not_be_int_max",
	"flags_are_mutually_exclusive",
	"debit_account_id_must_not_be_zero",
	"debit_account_id_must_not_be_int_max",
	"credit_account_id_must_not_be_zero",
	"credit_account_id_must_not_be_int_max",
	"accounts_must_be_different",
	"pending_id_must_be_zero",
	"pending_id_must_not_be_zero",
	"pending_id_must_not_be_int_max",
	"pending_id_must_be_different",
	"timeout_reserved_for_pending_transfer",
	"amount_must_not_be_zero",
	"ledger_must_not_be_zero",
	"code_must_not_be_zero",
	"debit_account_not_found",
	"credit_account_not_found",
	"accounts_must_have_the_same_ledger",
	"transfer_must_have_the_same_ledger_as_accounts",
	"pending_transfer_not_found",
	"pending_transfer_not_pending",
	"pending_transfer_has_different_debit_account_id",
	"pending_transfer_has_different_credit_account_id",
	"pending_transfer_has_different_ledger",
	"pending_transfer_has_different_code",
	"exceeds_pending_transfer_amount",
	"pending_transfer_has_different_amount",
	"pending_transfer_already_posted",
	"pending_transfer_already_voided",
	"pending_transfer_expired",
	"exists_with_different_flags",
	"exists_with_different_debit_account_id",
	"exists_with_different_credit_account_id",
	"exists_with_different_amount",
	"exists_with_different_pending_id",
	"exists_with_different_user_data_128",
	"exists_with_different_user_data_64",
	"exists_with_different_user_data_32",
	"exists_with_different_timeout",
	"exists_with_different_code",
	"exists",
	"overflows_debits_pending",
	"overflows_credits_pending",
	"overflows_debits_posted",
	"overflows_credits_posted",
	"overflows_debits",
	"overflows_credits",
	"overflows_timeout",
	"exceeds_credits",
	"exceeds_debits",
}

// String returns the snake_case name of the result code
func (r CreateTransferResult) String() string {
	return enumString(uint32(r), createTransferResultNames)
}

// --------------------------------------------------------------------------
// Result Records
// --------------------------------------------------------------------------

// CreateAccountsResult reports the failure of the event at Index within
// the submitted batch
type CreateAccountsResult struct {
	Index  uint32              `json:"index"`
	Result CreateAccountResult `json:"result"`
}

// CreateTransfersResult reports the failure of the event at Index within
// the submitted batch
type CreateTransfersResult struct {
	Index  uint32               `json:"index"`
	Result CreateTransferResult `json:"result"`
}

func encodeCreateAccountsResult(dst []byte, r *CreateAccountsResult) {
	_ = dst[CreateAccountsResultSize-1]
	binary.LittleEndian.PutUint32(dst[0:4], r.Index)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(r.Result))
}

func decodeCreateAccountsResult(src []byte, r *CreateAccountsResult) {
	_ = src[CreateAccountsResultSize-1]
	r.Index = binary.LittleEndian.Uint32(src[0:4])
	r.Result = CreateAccountResult(binary.LittleEndian.Uint32(src[4:8]))
}

func encodeCreateTransfersResult(dst []byte, r *CreateTransfersResult) {
	_ = dst[CreateTransfersResultSize-1]
	binary.LittleEndian.PutUint32(dst[0:4], r.Index)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(r.Result))
}

func decodeCreateTransfersResult(src []byte, r *CreateTransfersResult) {
	_ = src[CreateTransfersResultSize-1]
	r.Index = binary.LittleEndian.Uint32(src[0:4])
	r.Result = CreateTransferResult(binary.LittleEndian.Uint32(src[4:8]))
}

// enumString maps value to names[value], unknown codes render as "unknown(<n>)"
func enumString(value uint32, names []string) string {
	if int(value) < len(names) {
		return names[value]
	}
	return "unknown(" + strconv.FormatUint(uint64(value), 10) + ")"
}
