package booking

import "errors"

// Kind classifies allocator failures so transports can map them to a
// status code without matching on messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is a user-visible allocator failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrUserNotFound         = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrCourtNotFound        = &Error{Kind: KindNotFound, Message: "court not found"}
	ErrReservationNotFound  = &Error{Kind: KindNotFound, Message: "reservation not found"}
	ErrCourtUnavailable     = &Error{Kind: KindConflict, Message: "court is not available"}
	ErrOverlap              = &Error{Kind: KindConflict, Message: "the requested time overlaps an existing reservation"}
	ErrAlreadyCancelled     = &Error{Kind: KindConflict, Message: "reservation is already cancelled"}
	ErrReservationCancelled = &Error{Kind: KindConflict, Message: "cancelled reservations cannot be modified"}
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the Kind of err, or KindInternal when err is not an
// allocator error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
