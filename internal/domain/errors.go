package domain

import "errors"

// Expected, caller-attributable conditions. Handlers map these to HTTP
// status codes; none of them is a server fault and none is logged as one.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrInvalidKind         = errors.New("unknown kind")
	ErrCreditLimitExceeded = errors.New("requested principal exceeds credit tier limit")
	ErrLoanBanned          = errors.New("user is banned from taking loans")
	ErrMaxActiveLoans      = errors.New("maximum active loans reached")
	ErrNoActiveLoan        = errors.New("no active loan")
	ErrBalanceCapExceeded  = errors.New("balance cap exceeded")
	ErrSelfTrade           = errors.New("cannot trade with yourself")
	ErrListingNotFound     = errors.New("listing not found")
	ErrNotOwner            = errors.New("not the owner of this listing")
	ErrInsufficientGoods   = errors.New("insufficient goods in custody")
	ErrContention          = errors.New("account contention, retry")

	// ErrCorrupted marks rows the background sweeps delete and skip
	// (e.g. a loan whose owning user no longer resolves). Never surfaced
	// to interactive callers.
	ErrCorrupted = errors.New("corrupted row")
)
