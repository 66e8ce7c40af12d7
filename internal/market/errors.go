package market

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrPoolNotActive       = errors.New("pool is not active")
	ErrStaleQuote          = errors.New("quote was computed against different reserves")
	ErrQuoteMismatch       = errors.New("quote terms do not match the pool")
	ErrInvalidTransition   = errors.New("invalid pool status transition")
)
