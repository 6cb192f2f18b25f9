package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure discriminants surfaced by the core.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidLayout
	KindUnknownRow
	KindSeatOutOfRange
	KindSeatRowInvalid
	KindSeatNumInvalid
	KindSeatAlreadyOccupied
	KindShowingNotFound
	KindReservationNotFound
	KindHallNotFound
	KindMovieNotFound
	KindLanguageVersionInvalid
	KindPriceInvalid
	KindTimeInvalid
	KindDateInvalid
	KindHallOccupied
	KindDurationInvalid
	KindRatingPersistFailed
	KindSeatMapInvalid
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                "unknown",
	KindInvalidLayout:          "invalid-layout",
	KindUnknownRow:             "unknown-row",
	KindSeatOutOfRange:         "seat-out-of-range",
	KindSeatRowInvalid:         "seat-row-invalid",
	KindSeatNumInvalid:         "seat-num-invalid",
	KindSeatAlreadyOccupied:    "seat-already-occupied",
	KindShowingNotFound:        "showing-not-found",
	KindReservationNotFound:    "reservation-not-found",
	KindHallNotFound:           "hall-not-found",
	KindMovieNotFound:          "movie-not-found",
	KindLanguageVersionInvalid: "showing-language-version-invalid",
	KindPriceInvalid:           "showing-price-invalid",
	KindTimeInvalid:            "showing-time-invalid",
	KindDateInvalid:            "showing-date-invalid",
	KindHallOccupied:           "showing-hall-occupied",
	KindDurationInvalid:        "movie-duration-invalid",
	KindRatingPersistFailed:    "movie-rating-persist-failed",
	KindSeatMapInvalid:         "seat-map-invalid",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Category groups error kinds by who has to act on them.
type Category int

const (
	CategoryInputInvalid Category = iota
	CategoryResourceConflict
	CategoryNotFound
	CategoryIntegrity
)

func (c Category) String() string {
	switch c {
	case CategoryInputInvalid:
		return "input-invalid"
	case CategoryResourceConflict:
		return "resource-conflict"
	case CategoryNotFound:
		return "not-found"
	default:
		return "integrity"
	}
}

func (k ErrorKind) Category() Category {
	switch k {
	case KindInvalidLayout, KindUnknownRow, KindSeatOutOfRange, KindSeatRowInvalid, KindSeatNumInvalid,
		KindLanguageVersionInvalid, KindPriceInvalid, KindTimeInvalid, KindDateInvalid:
		return CategoryInputInvalid
	case KindSeatAlreadyOccupied, KindHallOccupied:
		return CategoryResourceConflict
	case KindShowingNotFound, KindReservationNotFound, KindHallNotFound, KindMovieNotFound:
		return CategoryNotFound
	default:
		return CategoryIntegrity
	}
}

// Error carries an ErrorKind together with an optional message and cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg = msg + ": " + e.Msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

var (
	ErrInvalidLayout          = &Error{Kind: KindInvalidLayout}
	ErrUnknownRow             = &Error{Kind: KindUnknownRow}
	ErrSeatOutOfRange         = &Error{Kind: KindSeatOutOfRange}
	ErrSeatRowInvalid         = &Error{Kind: KindSeatRowInvalid}
	ErrSeatNumInvalid         = &Error{Kind: KindSeatNumInvalid}
	ErrSeatAlreadyOccupied    = &Error{Kind: KindSeatAlreadyOccupied}
	ErrShowingNotFound        = &Error{Kind: KindShowingNotFound}
	ErrReservationNotFound    = &Error{Kind: KindReservationNotFound}
	ErrHallNotFound           = &Error{Kind: KindHallNotFound}
	ErrMovieNotFound          = &Error{Kind: KindMovieNotFound}
	ErrLanguageVersionInvalid = &Error{Kind: KindLanguageVersionInvalid}
	ErrPriceInvalid           = &Error{Kind: KindPriceInvalid}
	ErrTimeInvalid            = &Error{Kind: KindTimeInvalid}
	ErrDateInvalid            = &Error{Kind: KindDateInvalid}
	ErrHallOccupied           = &Error{Kind: KindHallOccupied}
	ErrDurationInvalid        = &Error{Kind: KindDurationInvalid}
	ErrRatingPersistFailed    = &Error{Kind: KindRatingPersistFailed}
	ErrSeatMapInvalid         = &Error{Kind: KindSeatMapInvalid}
)

// ErrRecordNotFound is returned by repositories before it is mapped to a
// specific not-found kind by the caller.
var ErrRecordNotFound = errors.New("record not found")
