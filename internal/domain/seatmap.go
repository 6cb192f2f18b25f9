package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

const (
	// MaxRows is bounded by the single uppercase letter row labels.
	MaxRows = 26

	occupiedMarker = "X"
)

// SeatState is the occupancy of a single cell. The seat number of a cell is
// its 1-based position in the row, so a free cell needs no payload.
type SeatState uint8

const (
	SeatFree SeatState = iota
	SeatOccupied
)

// SeatCoordinate addresses one seat: a row label and a 1-based seat number.
type SeatCoordinate struct {
	Row  string `json:"row" validate:"required,len=1,uppercase"`
	Seat int    `json:"seat" validate:"required,gte=1"`
}

func (c SeatCoordinate) String() string {
	return c.Row + strconv.Itoa(c.Seat)
}

// SeatMap is the occupancy grid of a hall (or of one showing in that hall).
// The zero value is an empty map with no rows.
type SeatMap struct {
	rows map[string][]SeatState
}

// CreateLayout builds rows labeled 'A'.. with every seat free.
func CreateLayout(rowCount, seatCount int) (*SeatMap, error) {
	if rowCount <= 0 || seatCount <= 0 {
		return nil, NewError(KindInvalidLayout, "rows and seats must be positive, got %d x %d", rowCount, seatCount)
	}
	if rowCount > MaxRows {
		return nil, NewError(KindInvalidLayout, "at most %d rows are supported, got %d", MaxRows, rowCount)
	}

	rows := make(map[string][]SeatState, rowCount)
	for i := 0; i < rowCount; i++ {
		rows[rowLabel(i)] = make([]SeatState, seatCount)
	}

	return &SeatMap{rows: rows}, nil
}

func rowLabel(i int) string {
	return string(rune('A' + i))
}

// RowCount returns the number of rows.
func (m *SeatMap) RowCount() int {
	return len(m.rows)
}

// SeatCount returns the number of seats per row, 0 for an empty map.
func (m *SeatMap) SeatCount() int {
	for _, seats := range m.rows {
		return len(seats)
	}

	return 0
}

// Rows returns the row labels in ascending order.
func (m *SeatMap) Rows() []string {
	labels := make([]string, 0, len(m.rows))
	for label := range m.rows {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return labels
}

// Row returns a copy of the states of one row.
func (m *SeatMap) Row(label string) ([]SeatState, bool) {
	seats, ok := m.rows[label]
	if !ok {
		return nil, false
	}

	out := make([]SeatState, len(seats))
	copy(out, seats)

	return out, true
}

// FreeSeats counts free cells across all rows.
func (m *SeatMap) FreeSeats() int {
	free := 0
	for _, seats := range m.rows {
		for _, s := range seats {
			if s == SeatFree {
				free++
			}
		}
	}

	return free
}

func (m *SeatMap) Clone() *SeatMap {
	if m == nil {
		return nil
	}

	rows := make(map[string][]SeatState, len(m.rows))
	for label, seats := range m.rows {
		cp := make([]SeatState, len(seats))
		copy(cp, seats)
		rows[label] = cp
	}

	return &SeatMap{rows: rows}
}

// IsFree reports whether the seat is free. A seat number outside the row
// is reported as not free; callers validate range with ValidateCoordinate.
func (m *SeatMap) IsFree(c SeatCoordinate) (bool, error) {
	seats, ok := m.rows[c.Row]
	if !ok {
		return false, NewError(KindUnknownRow, "row %q", c.Row)
	}

	if c.Seat < 1 || c.Seat > len(seats) {
		return false, nil
	}

	return seats[c.Seat-1] == SeatFree, nil
}

// ValidateCoordinate checks that the row exists and the seat is in 1..seatCount.
func (m *SeatMap) ValidateCoordinate(c SeatCoordinate) error {
	seats, ok := m.rows[c.Row]
	if !ok {
		return NewError(KindUnknownRow, "row %q", c.Row)
	}

	if c.Seat < 1 || c.Seat > len(seats) {
		return NewError(KindSeatOutOfRange, "seat %d not in 1..%d", c.Seat, len(seats))
	}

	return nil
}

// Occupy marks a free seat as taken. It is not idempotent: occupying a taken
// seat fails with SeatAlreadyOccupied.
func (m *SeatMap) Occupy(c SeatCoordinate) error {
	free, err := m.IsFree(c)
	if err != nil {
		return err
	}

	if !free {
		return NewError(KindSeatAlreadyOccupied, "seat %s", c)
	}

	m.rows[c.Row][c.Seat-1] = SeatOccupied

	return nil
}

// Release frees the seat whatever its current state.
func (m *SeatMap) Release(c SeatCoordinate) error {
	if err := m.ValidateCoordinate(c); err != nil {
		return err
	}

	m.rows[c.Row][c.Seat-1] = SeatFree

	return nil
}

// MarshalJSON writes the stored layout format: {"A": ["1", "X", "3"], ...}.
func (m *SeatMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string][]string, len(m.rows))
	for label, seats := range m.rows {
		cells := make([]string, len(seats))
		for i, s := range seats {
			if s == SeatOccupied {
				cells[i] = occupiedMarker
			} else {
				cells[i] = strconv.Itoa(i + 1)
			}
		}
		raw[label] = cells
	}

	return json.Marshal(raw)
}

// UnmarshalJSON reads the stored layout format and rejects any cell that is
// neither its own 1-based index nor the occupied marker.
func (m *SeatMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		m.rows = nil
		return nil
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rows := make(map[string][]SeatState, len(raw))
	width := -1

	for label, cells := range raw {
		if len(label) != 1 || label[0] < 'A' || label[0] > 'Z' {
			return fmt.Errorf("seat map: invalid row label %q", label)
		}

		if width == -1 {
			width = len(cells)
		} else if len(cells) != width {
			return fmt.Errorf("seat map: row %q has %d seats, expected %d", label, len(cells), width)
		}

		seats := make([]SeatState, len(cells))
		for i, cell := range cells {
			switch cell {
			case occupiedMarker:
				seats[i] = SeatOccupied
			case strconv.Itoa(i + 1):
				seats[i] = SeatFree
			default:
				return fmt.Errorf("seat map: row %q cell %d holds %q", label, i+1, cell)
			}
		}

		rows[label] = seats
	}

	m.rows = rows

	return nil
}
