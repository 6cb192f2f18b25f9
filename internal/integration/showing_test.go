package integration_test

import (
	"context"
	"sync"
	"testing"

	"github.com/metinatakli/cinema-operations/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ShowingTestSuite struct {
	BaseSuite
}

func TestShowingSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(ShowingTestSuite))
}

func (s *ShowingTestSuite) SetupTest() {
	setupBaseCinemaState(s.T(), s.app)
}

func candidateAt(start string) domain.ShowingCandidate {
	return domain.ShowingCandidate{
		HallID:          1,
		MovieID:         1,
		RepertoireID:    1,
		LanguageVersion: "dubbing",
		Price:           decimal.RequireFromString("19.90"),
		Time:            start,
		Date:            TestShowDate,
	}
}

func (s *ShowingTestSuite) TestAdmitShowing() {
	tests := []struct {
		name    string
		modify  func(c *domain.ShowingCandidate)
		wantErr error
	}{
		{name: "before the evening showing", modify: func(c *domain.ShowingCandidate) { c.Time = "17:30" }},
		{name: "during the evening showing", modify: func(c *domain.ShowingCandidate) { c.Time = "21:30" }, wantErr: domain.ErrHallOccupied},
		{name: "exactly at its end", modify: func(c *domain.ShowingCandidate) { c.Time = "22:00" }, wantErr: domain.ErrHallOccupied},
		{name: "a minute after its end", modify: func(c *domain.ShowingCandidate) { c.Time = "22:01" }},
		{name: "same time in another hall", modify: func(c *domain.ShowingCandidate) { c.HallID = 2; c.Time = "20:00" }},
		{name: "unknown hall", modify: func(c *domain.ShowingCandidate) { c.HallID = 99; c.Time = "09:00" }, wantErr: domain.ErrHallNotFound},
		{name: "movie with a corrupt duration", modify: func(c *domain.ShowingCandidate) { c.MovieID = 2; c.Time = "09:00" }, wantErr: domain.ErrDurationInvalid},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			setupBaseCinemaState(s.T(), s.app)

			c := candidateAt("")
			tt.modify(&c)

			showing, err := s.app.Core.Showings.AdmitShowing(context.Background(), c)

			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
				s.Equal(1, countRows(s.T(), s.app.DB, `SELECT COUNT(*) FROM showings`))
				return
			}

			s.Require().NoError(err)

			stored, err := s.app.Core.Bookings.SeatMap(context.Background(), showing.ID)
			s.Require().NoError(err)
			s.Equal(c.HallID == 1, stored.RowCount() == 2)

			var (
				start string
				price string
				lang  string
			)
			err = s.app.DB.QueryRow(context.Background(),
				`SELECT to_char(start_time, 'HH24:MI'), price::text, language_ver FROM showings WHERE id = $1`, showing.ID).
				Scan(&start, &price, &lang)
			s.Require().NoError(err)
			s.Equal(c.Time, start)
			s.Equal("19.90", price)
			s.Equal("dubbing", lang)
		})
	}
}

func (s *ShowingTestSuite) TestUpdateShowingIgnoresItself() {
	c := candidateAt("20:45")
	c.ID = 1

	updated, err := s.app.Core.Showings.AdmitShowing(context.Background(), c)
	s.Require().NoError(err)
	s.Equal(1, updated.ID)

	var start string
	s.Require().NoError(s.app.DB.QueryRow(context.Background(),
		`SELECT to_char(start_time, 'HH24:MI') FROM showings WHERE id = 1`).Scan(&start))
	s.Equal("20:45", start)
}

func (s *ShowingTestSuite) TestConcurrentAdmissionsOfOverlappingShowings() {
	starts := []string{"10:00", "10:20", "10:40", "11:00", "11:20", "11:40"}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, start := range starts {
		wg.Add(1)
		go func(start string) {
			defer wg.Done()

			_, err := s.app.Core.Showings.AdmitShowing(context.Background(), candidateAt(start))

			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
		}(start)
	}

	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}

		s.ErrorIs(err, domain.ErrHallOccupied)
	}

	s.Equal(1, admitted)
	s.Equal(2, countRows(s.T(), s.app.DB, `SELECT COUNT(*) FROM showings WHERE hall_id = 1`))
}
