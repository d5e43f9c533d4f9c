package domain

import "errors"

// Domain errors
var (
	// ErrLotNotFound is returned when a lot number does not resolve to a lot
	ErrLotNotFound = errors.New("lot not found")

	// ErrLotAlreadyExists is returned when creating a duplicate lot number
	ErrLotAlreadyExists = errors.New("lot already exists")

	// ErrLotClosed is returned when operating on a closed lot
	ErrLotClosed = errors.New("lot is closed")

	// ErrInsufficientBalance is returned when an operation would drive a balance negative
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidQuantity is returned when a quantity is zero or negative
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidStage is returned when a process stage name is unknown
	ErrInvalidStage = errors.New("invalid process stage")

	// ErrIssueNotFound is returned when an issue number does not resolve
	ErrIssueNotFound = errors.New("issue not found")

	// ErrIssueFinalized is returned when approving/rejecting an issue already in the
	// opposite terminal state
	ErrIssueFinalized = errors.New("issue already finalized")

	// ErrIssueItemNotFound is returned when a return references no issued line
	ErrIssueItemNotFound = errors.New("issue item not found")

	// ErrDispatchNotFound is returned when a dispatch id does not resolve
	ErrDispatchNotFound = errors.New("dispatch not found")

	// ErrDispatchNotPlanned is returned when confirming a dispatch twice
	ErrDispatchNotPlanned = errors.New("dispatch is not in planned state")

	// ErrStyleBlocked is returned when dispatching a blocked style
	ErrStyleBlocked = errors.New("style is blocked for dispatch")

	// ErrStockEntryNotFound is returned when a finished-goods stock key does not resolve
	ErrStockEntryNotFound = errors.New("stock entry not found")

	// ErrInvalidValuationMethod is returned when an unknown valuation method is used
	ErrInvalidValuationMethod = errors.New("invalid valuation method")
)
