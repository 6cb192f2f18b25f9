package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinema-operations/internal/domain"
	appvalidator "github.com/metinatakli/cinema-operations/internal/validator"
	"go.opentelemetry.io/otel/metric"
)

// Candidate fields in the order they are checked, with the error each
// one surfaces. The validator reports failures in struct field order.
var candidateFieldKinds = map[string]domain.ErrorKind{
	"LanguageVersion": domain.KindLanguageVersionInvalid,
	"Price":           domain.KindPriceInvalid,
	"Time":            domain.KindTimeInvalid,
	"Date":            domain.KindDateInvalid,
}

var candidateFieldOrder = []string{"LanguageVersion", "Price", "Time", "Date"}

// ShowingValidationService admits showings into a hall's schedule.
type ShowingValidationService struct {
	tx        domain.Transactor
	showings  domain.ShowingRepository
	movies    domain.MovieRepository
	validator *validator.Validate
	checker   domain.ConflictChecker
	logger    *slog.Logger
	metrics   instruments
}

type ShowingOption func(*ShowingValidationService)

func WithBoundaryPolicy(policy domain.BoundaryPolicy) ShowingOption {
	return func(s *ShowingValidationService) {
		s.checker = domain.ConflictChecker{Policy: policy}
	}
}

func WithShowingMeterProvider(provider metric.MeterProvider) ShowingOption {
	return func(s *ShowingValidationService) {
		s.metrics = newInstruments(provider)
	}
}

func NewShowingValidationService(
	tx domain.Transactor,
	showings domain.ShowingRepository,
	movies domain.MovieRepository,
	validator *validator.Validate,
	logger *slog.Logger,
	opts ...ShowingOption) *ShowingValidationService {

	s := &ShowingValidationService{
		tx:        tx,
		showings:  showings,
		movies:    movies,
		validator: validator,
		checker:   domain.ConflictChecker{Policy: domain.BoundaryInclusive},
		logger:    logger,
		metrics:   newInstruments(nil),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ValidateShowing checks the candidate against the input rules and the
// hall's schedule for that date. It takes no lock; use AdmitShowing to
// validate and store atomically.
func (s *ShowingValidationService) ValidateShowing(ctx context.Context, candidate domain.ShowingCandidate) error {
	_, err := s.validate(ctx, candidate)
	record(ctx, s.metrics.admissions, "validate", err)

	return err
}

// AdmitShowing validates the candidate and creates the showing, or updates
// it when candidate.ID is set, while holding the hall's lock so that two
// overlapping candidates cannot both be admitted.
func (s *ShowingValidationService) AdmitShowing(ctx context.Context, candidate domain.ShowingCandidate) (*domain.Showing, error) {
	logger := s.logger.With("hall_id", candidate.HallID, "date", candidate.Date, "time", candidate.Time)

	var showing *domain.Showing

	err := s.tx.WithinHall(ctx, candidate.HallID, func(ctx context.Context) error {
		var err error

		showing, err = s.validate(ctx, candidate)
		if err != nil {
			return err
		}

		if candidate.ID == 0 {
			return s.showings.CreateShowing(ctx, showing)
		}

		err = s.showings.UpdateShowing(ctx, showing)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.WrapError(domain.KindShowingNotFound, err, "showing %d", candidate.ID)
		}

		return err
	})

	record(ctx, s.metrics.admissions, "admit", err)

	if err != nil {
		if domain.KindOf(err).Category() == domain.CategoryIntegrity {
			logger.Error("showing admission failed", "error", err)
		} else {
			logger.Warn("showing rejected", "error", err)
		}

		return nil, err
	}

	logger.Info("showing admitted", "showing_id", showing.ID)

	return showing, nil
}

func (s *ShowingValidationService) validate(ctx context.Context, candidate domain.ShowingCandidate) (*domain.Showing, error) {
	err := s.checkFields(candidate)
	if err != nil {
		return nil, err
	}

	language, err := domain.ParseLanguageVersion(candidate.LanguageVersion)
	if err != nil {
		return nil, err
	}

	start, err := domain.ParseClockTime(candidate.Time)
	if err != nil {
		return nil, err
	}

	date, err := domain.ParseShowingDate(candidate.Date)
	if err != nil {
		return nil, err
	}

	showing := &domain.Showing{
		ID:              candidate.ID,
		HallID:          candidate.HallID,
		MovieID:         candidate.MovieID,
		RepertoireID:    candidate.RepertoireID,
		Date:            date,
		Start:           start,
		LanguageVersion: language,
		Price:           candidate.Price,
	}

	err = s.checkSchedule(ctx, showing)
	if err != nil {
		return nil, err
	}

	return showing, nil
}

// checkFields maps the first failing candidate field to its error kind.
func (s *ShowingValidationService) checkFields(candidate domain.ShowingCandidate) error {
	err := s.validator.Struct(candidate)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	failed := make(map[string]validator.FieldError, len(validationErrs))
	for _, fe := range validationErrs {
		failed[fe.StructField()] = fe
	}

	for _, field := range candidateFieldOrder {
		if fe, ok := failed[field]; ok {
			return domain.NewError(candidateFieldKinds[field], "%v %s", fe.Value(), appvalidator.ValidationMessage(fe))
		}
	}

	// Hall, movie or repertoire references are missing or not positive.
	fe := validationErrs[0]
	if fe.StructField() == "MovieID" {
		return domain.NewError(domain.KindMovieNotFound, "movie id %v", fe.Value())
	}

	return domain.NewError(domain.KindHallNotFound, "%s %v", fe.StructField(), fe.Value())
}

func (s *ShowingValidationService) checkSchedule(ctx context.Context, showing *domain.Showing) error {
	durations := make(map[int]domain.Duration)

	duration, err := s.movieDuration(ctx, durations, showing.MovieID)
	if err != nil {
		return err
	}

	existing, err := s.showings.ListShowings(ctx, showing.HallID, showing.Date)
	if err != nil {
		return err
	}

	slots := make([]domain.ScheduleSlot, 0, len(existing))
	for _, other := range existing {
		d, err := s.movieDuration(ctx, durations, other.MovieID)
		if err != nil {
			return err
		}

		slots = append(slots, other.Slot(d))
	}

	candidate := showing.Slot(duration)

	if conflict, found := s.checker.FirstConflict(candidate, slots); found {
		return domain.NewError(domain.KindHallOccupied,
			"hall %d on %s is busy from %s to %s (showing %d)",
			showing.HallID,
			domain.FormatShowingDate(showing.Date),
			conflict.Start,
			conflict.Window().End,
			conflict.ShowingID)
	}

	return nil
}

// movieDuration reads and parses the movie's duration once per check.
func (s *ShowingValidationService) movieDuration(
	ctx context.Context,
	seen map[int]domain.Duration,
	movieID int) (domain.Duration, error) {

	if d, ok := seen[movieID]; ok {
		return d, nil
	}

	raw, err := s.movies.FetchMovieDuration(ctx, movieID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Duration{}, domain.WrapError(domain.KindMovieNotFound, err, "movie %d", movieID)
		}

		return domain.Duration{}, err
	}

	d, err := domain.ParseDuration(raw)
	if err != nil {
		s.logger.Error("movie has an unparseable duration", "movie_id", movieID, "duration", raw, "error", err)
		return domain.Duration{}, err
	}

	seen[movieID] = d

	return d, nil
}
