package query

import (
	"time"

	"github.com/nandanugg/plowtrack/module/core/domain"
)

// Cutoff returns the points at or after since, in their original order.
func Cutoff(points []domain.Point, since time.Time) []domain.Point {
	out := make([]domain.Point, 0, len(points))
	for _, p := range points {
		if !p.Timestamp.Before(since) {
			out = append(out, p)
		}
	}
	return out
}

// Thin walks points oldest to newest and keeps a point only when it is at
// least resolution after the previously kept one. The first point is always
// kept. A non-positive resolution returns the points unchanged.
func Thin(points []domain.Point, resolution time.Duration) []domain.Point {
	if resolution <= 0 || len(points) == 0 {
		return append([]domain.Point(nil), points...)
	}
	out := make([]domain.Point, 0, len(points))
	out = append(out, points[0])
	last := points[0].Timestamp
	for _, p := range points[1:] {
		if p.Timestamp.Sub(last) < resolution {
			continue
		}
		out = append(out, p)
		last = p.Timestamp
	}
	return out
}

// Last returns the newest n points. Storage normally trims for us; this
// keeps results correct when it hands back more than asked.
func Last(points []domain.Point, n int) []domain.Point {
	if n <= 0 || len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

// FilterHistory applies the cutoff and then the temporal resolution.
func FilterHistory(points []domain.Point, c Constraints) []domain.Point {
	if since, ok := c.Since(); ok {
		points = Cutoff(points, since)
	}
	if res, ok := c.TemporalResolution(); ok {
		points = Thin(points, res)
	}
	return points
}

// ApplyToPlow returns a copy of plow with its history trimmed to the
// requested scope and filtered by c.
func ApplyToPlow(plow domain.Plow, c Constraints) domain.Plow {
	scope := c.HistoryScope()
	if scope.Omit {
		plow.History = nil
		return plow
	}
	plow.History = FilterHistory(Last(plow.History, scope.Last), c)
	return plow
}
