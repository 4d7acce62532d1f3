package timeline

import (
	"errors"
	"fmt"
)

const (
	RefreshPageSize  = 50
	BackfillPageSize = 100
)

// ErrEmptyFeed is returned when a backfill is requested before anything was fetched.
var ErrEmptyFeed = errors.New("backfill requires a non-empty feed")

type Direction int

const (
	Newer Direction = iota
	Older
)

func (d Direction) String() string {
	switch d {
	case Newer:
		return "newer"
	case Older:
		return "older"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Cursor is a directional fetch boundary. For Newer the boundary is a
// since-id (exclusive); for Older it is a max-id (inclusive, so the boundary
// post comes back as the first item of the batch).
type Cursor struct {
	Direction   Direction `json:"direction"`
	BoundaryID  int64     `json:"boundary_id,omitempty"`
	HasBoundary bool      `json:"has_boundary"`
	PageSize    int       `json:"page_size"`
}

func (c Cursor) IsZero() bool {
	return c == Cursor{}
}

func (c Cursor) String() string {
	if !c.HasBoundary {
		return fmt.Sprintf("%s(count=%d)", c.Direction, c.PageSize)
	}
	return fmt.Sprintf("%s(boundary=%d count=%d)", c.Direction, c.BoundaryID, c.PageSize)
}

func ForRefresh(f *Feed) Cursor {
	c := Cursor{Direction: Newer, PageSize: RefreshPageSize}
	if len(f.Items) > 0 {
		c.BoundaryID = f.Items[0].MatchableID()
		c.HasBoundary = true
	}
	return c
}

func ForBackfill(f *Feed) (Cursor, error) {
	if len(f.Items) == 0 {
		return Cursor{}, ErrEmptyFeed
	}
	return Cursor{
		Direction:   Older,
		BoundaryID:  f.Items[len(f.Items)-1].MatchableID(),
		HasBoundary: true,
		PageSize:    BackfillPageSize,
	}, nil
}
