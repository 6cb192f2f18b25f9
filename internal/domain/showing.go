package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type LanguageVersion string

const (
	LanguageSubtitles LanguageVersion = "subtitles"
	LanguageDubbing   LanguageVersion = "dubbing"
	LanguageLector    LanguageVersion = "lector"
)

// ParseLanguageVersion matches the enumerated versions case-insensitively.
func ParseLanguageVersion(s string) (LanguageVersion, error) {
	for _, v := range []LanguageVersion{LanguageSubtitles, LanguageDubbing, LanguageLector} {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}

	return "", NewError(KindLanguageVersionInvalid, "%q", s)
}

type Showing struct {
	ID              int
	HallID          int
	MovieID         int
	RepertoireID    int
	Date            time.Time
	Start           ClockTime
	LanguageVersion LanguageVersion
	Price           decimal.Decimal
}

// Slot pairs the showing with its movie's duration. Duration is never
// stored on the showing; it is read from the movie every time.
func (s Showing) Slot(d Duration) ScheduleSlot {
	return ScheduleSlot{
		ShowingID: s.ID,
		HallID:    s.HallID,
		Date:      s.Date,
		Start:     s.Start,
		Duration:  d,
	}
}

// ShowingCandidate is the raw input for creating or updating a showing.
// ID is zero for a new showing.
type ShowingCandidate struct {
	ID              int             `json:"id"`
	HallID          int             `json:"hall_id" validate:"required,gt=0"`
	MovieID         int             `json:"movie_id" validate:"required,gt=0"`
	RepertoireID    int             `json:"repertoire_id" validate:"gte=0"`
	LanguageVersion string          `json:"language_ver" validate:"language_version"`
	Price           decimal.Decimal `json:"price" validate:"gte=0"`
	Time            string          `json:"time" validate:"clock_time"`
	Date            string          `json:"date" validate:"calendar_date"`
}

type ShowingRepository interface {
	GetShowing(ctx context.Context, id int) (*Showing, error)
	ListShowings(ctx context.Context, hallID int, date time.Time) ([]Showing, error)
	// ListHallShowingIDs returns the ids of every showing of the hall, on
	// any date, in ascending order.
	ListHallShowingIDs(ctx context.Context, hallID int) ([]int, error)
	CreateShowing(ctx context.Context, showing *Showing) error
	UpdateShowing(ctx context.Context, showing *Showing) error
	// LoadShowingSeatMap returns ErrRecordNotFound until the showing's map
	// has been saved once.
	LoadShowingSeatMap(ctx context.Context, showingID int) (*SeatMap, error)
	SaveShowingSeatMap(ctx context.Context, showingID int, seats *SeatMap) error
}
