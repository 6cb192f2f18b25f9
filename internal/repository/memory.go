package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/metinatakli/cinema-operations/internal/lock"
)

// MemoryStore keeps halls, showings, reservations, movies and reviews in
// process memory. It implements every repository port and domain.Transactor;
// writes made inside a failed unit of work are undone.
type MemoryStore struct {
	mu     sync.RWMutex
	locks  lock.Locker
	nextID int

	halls        map[int]domain.Hall
	showings     map[int]domain.Showing
	showingSeats map[int]*domain.SeatMap
	reservations map[int]domain.Reservation
	movies       map[int]domain.Movie
	reviews      map[int]memoryReview
}

type memoryReview struct {
	movieID int
	rating  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:        lock.NewKeyedMutex(),
		halls:        make(map[int]domain.Hall),
		showings:     make(map[int]domain.Showing),
		showingSeats: make(map[int]*domain.SeatMap),
		reservations: make(map[int]domain.Reservation),
		movies:       make(map[int]domain.Movie),
		reviews:      make(map[int]memoryReview),
	}
}

type memoryUnit struct {
	held map[string]bool
	undo []func()
}

type memoryUnitKey struct{}

func unitFrom(ctx context.Context) *memoryUnit {
	u, _ := ctx.Value(memoryUnitKey{}).(*memoryUnit)
	return u
}

// record must be called with s.mu held for writing.
func (s *MemoryStore) record(ctx context.Context, undo func()) {
	if u := unitFrom(ctx); u != nil {
		u.undo = append(u.undo, undo)
	}
}

func (s *MemoryStore) WithinShowing(ctx context.Context, showingID int, fn func(ctx context.Context) error) error {
	return s.within(ctx, lock.ShowingKey(showingID), func() bool {
		_, ok := s.showings[showingID]
		return ok
	}, domain.ErrShowingNotFound, fn)
}

func (s *MemoryStore) WithinHall(ctx context.Context, hallID int, fn func(ctx context.Context) error) error {
	return s.within(ctx, lock.HallKey(hallID), func() bool {
		_, ok := s.halls[hallID]
		return ok
	}, domain.ErrHallNotFound, fn)
}

func (s *MemoryStore) WithinMovie(ctx context.Context, movieID int, fn func(ctx context.Context) error) error {
	return s.within(ctx, lock.MovieKey(movieID), func() bool {
		_, ok := s.movies[movieID]
		return ok
	}, domain.ErrMovieNotFound, fn)
}

func (s *MemoryStore) within(
	ctx context.Context,
	key string,
	exists func() bool,
	notFound error,
	fn func(ctx context.Context) error) error {

	unit := unitFrom(ctx)
	outer := unit == nil
	if outer {
		unit = &memoryUnit{held: make(map[string]bool)}
		ctx = context.WithValue(ctx, memoryUnitKey{}, unit)
	}

	if !unit.held[key] {
		release, err := s.locks.Lock(ctx, key)
		if err != nil {
			return err
		}
		defer release()

		unit.held[key] = true
		defer delete(unit.held, key)
	}

	s.mu.RLock()
	found := exists()
	s.mu.RUnlock()

	if !found {
		return notFound
	}

	err := fn(ctx)
	if err != nil && outer {
		s.mu.Lock()
		for i := len(unit.undo) - 1; i >= 0; i-- {
			unit.undo[i]()
		}
		s.mu.Unlock()
	}

	return err
}

func (s *MemoryStore) newID() int {
	s.nextID++
	return s.nextID
}

// Halls

func (s *MemoryStore) CreateHall(ctx context.Context, hall *domain.Hall) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.halls {
		if h.Name == hall.Name {
			return ErrHallNameTaken
		}
	}

	hall.ID = s.newID()
	stored := *hall
	stored.Seats = hall.Seats.Clone()
	s.halls[hall.ID] = stored

	id := hall.ID
	s.record(ctx, func() { delete(s.halls, id) })

	return nil
}

func (s *MemoryStore) GetHall(_ context.Context, id int) (*domain.Hall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hall, ok := s.halls[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	hall.Seats = hall.Seats.Clone()

	return &hall, nil
}

// DeleteHall cascades to the hall's showings and their reservations.
func (s *MemoryStore) DeleteHall(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hall, ok := s.halls[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	delete(s.halls, id)
	s.record(ctx, func() { s.halls[id] = hall })

	for showingID, showing := range s.showings {
		if showing.HallID != id {
			continue
		}

		showing, seats := showing, s.showingSeats[showingID]
		delete(s.showings, showingID)
		delete(s.showingSeats, showingID)

		sid := showingID
		s.record(ctx, func() {
			s.showings[sid] = showing
			if seats != nil {
				s.showingSeats[sid] = seats
			}
		})

		for resID, res := range s.reservations {
			if res.ShowingID == sid {
				res, rid := res, resID
				delete(s.reservations, rid)
				s.record(ctx, func() { s.reservations[rid] = res })
			}
		}
	}

	return nil
}

func (s *MemoryStore) LoadSeatMap(_ context.Context, hallID int) (*domain.SeatMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hall, ok := s.halls[hallID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return hall.Seats.Clone(), nil
}

func (s *MemoryStore) SaveSeatMap(ctx context.Context, hallID int, seats *domain.SeatMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hall, ok := s.halls[hallID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	previous := hall.Seats
	hall.Seats = seats.Clone()
	s.halls[hallID] = hall

	s.record(ctx, func() {
		h := s.halls[hallID]
		h.Seats = previous
		s.halls[hallID] = h
	})

	return nil
}

// Showings

func (s *MemoryStore) GetShowing(_ context.Context, id int) (*domain.Showing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	showing, ok := s.showings[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &showing, nil
}

func (s *MemoryStore) ListShowings(_ context.Context, hallID int, date time.Time) ([]domain.Showing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	showings := make([]domain.Showing, 0)
	for _, showing := range s.showings {
		if showing.HallID == hallID && showing.Date.Equal(date) {
			showings = append(showings, showing)
		}
	}

	sort.Slice(showings, func(i, j int) bool {
		return showings[i].Start < showings[j].Start
	})

	return showings, nil
}

func (s *MemoryStore) ListHallShowingIDs(_ context.Context, hallID int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0)
	for id, showing := range s.showings {
		if showing.HallID == hallID {
			ids = append(ids, id)
		}
	}

	sort.Ints(ids)

	return ids, nil
}

func (s *MemoryStore) CreateShowing(ctx context.Context, showing *domain.Showing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.halls[showing.HallID]; !ok {
		return domain.ErrHallNotFound
	}
	if _, ok := s.movies[showing.MovieID]; !ok {
		return domain.ErrMovieNotFound
	}

	showing.ID = s.newID()
	s.showings[showing.ID] = *showing

	id := showing.ID
	s.record(ctx, func() { delete(s.showings, id) })

	return nil
}

func (s *MemoryStore) UpdateShowing(ctx context.Context, showing *domain.Showing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.showings[showing.ID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	s.showings[showing.ID] = *showing
	s.record(ctx, func() { s.showings[previous.ID] = previous })

	return nil
}

func (s *MemoryStore) LoadShowingSeatMap(_ context.Context, showingID int) (*domain.SeatMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seats, ok := s.showingSeats[showingID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return seats.Clone(), nil
}

func (s *MemoryStore) SaveShowingSeatMap(ctx context.Context, showingID int, seats *domain.SeatMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.showings[showingID]; !ok {
		return domain.ErrRecordNotFound
	}

	previous, existed := s.showingSeats[showingID]
	s.showingSeats[showingID] = seats.Clone()

	s.record(ctx, func() {
		if existed {
			s.showingSeats[showingID] = previous
		} else {
			delete(s.showingSeats, showingID)
		}
	})

	return nil
}

// Reservations

func (s *MemoryStore) GetReservation(_ context.Context, id int) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &reservation, nil
}

func (s *MemoryStore) ListReservationsForShowing(_ context.Context, showingID int) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservations := make([]domain.Reservation, 0)
	for _, reservation := range s.reservations {
		if reservation.ShowingID == showingID {
			reservations = append(reservations, reservation)
		}
	}

	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].ID < reservations[j].ID
	})

	return reservations, nil
}

// seatTaken mirrors the unique (showing, row, seat) index of the SQL schema.
func (s *MemoryStore) seatTaken(showingID, exceptID int, seat domain.SeatCoordinate) bool {
	for _, reservation := range s.reservations {
		if reservation.ID != exceptID && reservation.ShowingID == showingID && reservation.Seat == seat {
			return true
		}
	}

	return false
}

func (s *MemoryStore) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seatTaken(reservation.ShowingID, 0, reservation.Seat) {
		return domain.NewError(domain.KindSeatAlreadyOccupied, "unique seat index")
	}

	reservation.ID = s.newID()
	s.reservations[reservation.ID] = *reservation

	id := reservation.ID
	s.record(ctx, func() { delete(s.reservations, id) })

	return nil
}

func (s *MemoryStore) UpdateReservationSeat(ctx context.Context, id int, seat domain.SeatCoordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.reservations[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	if s.seatTaken(previous.ShowingID, id, seat) {
		return domain.NewError(domain.KindSeatAlreadyOccupied, "unique seat index")
	}

	updated := previous
	updated.Seat = seat
	s.reservations[id] = updated
	s.record(ctx, func() { s.reservations[id] = previous })

	return nil
}

func (s *MemoryStore) DeleteReservation(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.reservations[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	delete(s.reservations, id)
	s.record(ctx, func() { s.reservations[id] = previous })

	return nil
}

// Movies and reviews

// PutMovie stores a movie and returns its id.
func (s *MemoryStore) PutMovie(movie domain.Movie) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	movie.ID = s.newID()
	s.movies[movie.ID] = movie

	return movie.ID
}

func (s *MemoryStore) Movie(id int) (domain.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	movie, ok := s.movies[id]
	return movie, ok
}

func (s *MemoryStore) FetchMovieDuration(_ context.Context, movieID int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	movie, ok := s.movies[movieID]
	if !ok {
		return "", domain.ErrRecordNotFound
	}

	return movie.Duration, nil
}

func (s *MemoryStore) SaveMovieRating(ctx context.Context, movieID int, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	movie, ok := s.movies[movieID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	previous := movie.Rating
	movie.Rating = rating
	s.movies[movieID] = movie

	s.record(ctx, func() {
		m := s.movies[movieID]
		m.Rating = previous
		s.movies[movieID] = m
	})

	return nil
}

// PutReview stores a review and returns its id.
func (s *MemoryStore) PutReview(movieID, rating int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.reviews[id] = memoryReview{movieID: movieID, rating: rating}

	return id
}

func (s *MemoryStore) SetReviewRating(reviewID, rating int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return false
	}

	review.rating = rating
	s.reviews[reviewID] = review

	return true
}

func (s *MemoryStore) RemoveReview(reviewID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.reviews[reviewID]
	delete(s.reviews, reviewID)

	return ok
}

func (s *MemoryStore) ListReviews(_ context.Context, movieID int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0)
	for id, review := range s.reviews {
		if review.movieID == movieID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	ratings := make([]int, len(ids))
	for i, id := range ids {
		ratings[i] = s.reviews[id].rating
	}

	return ratings, nil
}

func (s *MemoryStore) MovieIDForReview(_ context.Context, reviewID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return 0, domain.ErrRecordNotFound
	}

	return review.movieID, nil
}
