// Package query resolves client query parameters into constraints and applies
// them to plow point histories and fleet snapshots.
package query

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"

	"github.com/nandanugg/plowtrack/module/core/domain"
)

// Params holds the raw query string values exactly as the client sent them.
type Params struct {
	History            string
	Since              string
	Limit              string
	TemporalResolution string
}

// Constraints is the resolved, immutable form of Params. Every axis is
// optional; an absent axis does not constrain the result.
type Constraints struct {
	historyCount  int
	since         time.Time
	hasSince      bool
	resolution    time.Duration
	hasResolution bool
	fleetLimit    int
}

type Option func(*Constraints)

// WithHistoryCount keeps only the newest n points per plow. Non-positive n is ignored.
func WithHistoryCount(n int) Option {
	return func(c *Constraints) {
		if n > 0 {
			c.historyCount = n
		}
	}
}

func WithSince(t time.Time) Option {
	return func(c *Constraints) {
		c.since = t
		c.hasSince = true
	}
}

// WithTemporalResolution sets the minimum spacing between returned points.
// Negative durations are ignored.
func WithTemporalResolution(d time.Duration) Option {
	return func(c *Constraints) {
		if d >= 0 {
			c.resolution = d
			c.hasResolution = true
		}
	}
}

// WithFleetLimit caps the number of plows in a fleet query. Non-positive n is ignored.
func WithFleetLimit(n int) Option {
	return func(c *Constraints) {
		if n > 0 {
			c.fleetLimit = n
		}
	}
}

func New(opts ...Option) Constraints {
	var c Constraints
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Constraints) HistoryCount() (int, bool) {
	return c.historyCount, c.historyCount > 0
}

func (c Constraints) Since() (time.Time, bool) {
	return c.since, c.hasSince
}

func (c Constraints) TemporalResolution() (time.Duration, bool) {
	return c.resolution, c.hasResolution
}

func (c Constraints) FleetLimit() (int, bool) {
	return c.fleetLimit, c.fleetLimit > 0
}

// HistoryScope is the storage fetch hint implied by the constraints: the
// newest N points when a history count is set, everything when only a cutoff
// is set, and nothing otherwise.
func (c Constraints) HistoryScope() domain.HistoryScope {
	if n, ok := c.HistoryCount(); ok {
		return domain.HistoryLast(n)
	}
	if c.hasSince {
		return domain.HistoryAll()
	}
	return domain.HistoryNone()
}

func (c Constraints) unconstrained() bool {
	return c.historyCount <= 0 && !c.hasSince && c.fleetLimit <= 0
}

// Parser turns raw Params into Constraints. Malformed values never fail a
// request; they resolve to an absent constraint instead.
type Parser struct {
	loc      *time.Location
	now      func() time.Time
	relative *when.Parser
}

func NewParser(loc *time.Location, now func() time.Time) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Parser{loc: loc, now: now, relative: newRelativeParser()}
}

func (p *Parser) Parse(raw Params) Constraints {
	var opts []Option
	if n, ok := ParseCount(raw.History); ok {
		opts = append(opts, WithHistoryCount(n))
	}
	if t, ok := p.ParseSince(raw.Since); ok {
		opts = append(opts, WithSince(t))
	}
	if d, ok := ParseResolution(raw.TemporalResolution); ok {
		opts = append(opts, WithTemporalResolution(d))
	}
	if n, ok := ParseCount(raw.Limit); ok {
		opts = append(opts, WithFleetLimit(n))
	}
	return New(opts...)
}

// ParseSince resolves a free-form date expression to an instant. Absolute
// timestamps (RFC 3339, common date layouts, unix epoch digits) are tried
// first, then relative expressions measured from the parser's clock:
// "2 hours ago", "-30 minutes", "+1 day", and day names such as "today",
// "yesterday" or "last monday", which resolve to midnight.
func (p *Parser) ParseSince(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := dateparse.ParseIn(s, p.loc); err == nil {
		return t, true
	}
	r, err := p.relative.Parse(s, p.now().In(p.loc).Truncate(time.Second))
	if err != nil || r == nil {
		return time.Time{}, false
	}
	// partial matches inside arbitrary text are not a cutoff
	if !strings.EqualFold(strings.TrimSpace(r.Text), s) {
		return time.Time{}, false
	}
	return r.Time, true
}

// ParseCount parses a positive integer count.
func ParseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseResolution parses a whole number of seconds. Zero is a valid,
// no-op resolution.
func ParseResolution(s string) (time.Duration, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || int64(n) > math.MaxInt64/int64(time.Second) {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}
