package engine

import "errors"

var (
	// ErrInvalidCommand is returned when a command is issued outside the phase that accepts it
	ErrInvalidCommand = errors.New("command not valid in current phase")
	// ErrInsufficientFunds is returned when a purchase or stock buy cannot be paid for
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientShares is returned when a sell exceeds the held position
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrUnknownStock is returned for a symbol not listed on the market
	ErrUnknownStock = errors.New("unknown stock")
	// ErrInvalidQuantity is returned for a non-positive trade size
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrNothingPending is returned by Advance when no automatic transition is scheduled
	ErrNothingPending = errors.New("no pending transition")
	// ErrStaleTransition is returned when a scheduled transition was superseded
	ErrStaleTransition = errors.New("transition superseded")
	// ErrInvalidSetup is returned for a bad player roster
	ErrInvalidSetup = errors.New("invalid player setup")
)
