package query

import (
	"cmp"
	"slices"

	"github.com/nandanugg/plowtrack/module/core/domain"
)

const DefaultFleetLimit = 10

// SelectFleet orders plows by the time of their last report, newest first,
// with ties broken by ascending plow ID. A since cutoff keeps every plow that
// reported at or after it and disables the fleet limit. Without a cutoff the
// list is capped at the fleet limit, or at defaultLimit when the request set
// no history count, cutoff or limit at all. Each selected plow's history is
// then filtered with FilterHistory.
func SelectFleet(plows []domain.Plow, c Constraints, defaultLimit int) []domain.Plow {
	ordered := slices.Clone(plows)
	slices.SortStableFunc(ordered, compareRecency)

	if since, ok := c.Since(); ok {
		ordered = slices.DeleteFunc(ordered, func(p domain.Plow) bool {
			return p.LastPoint.Timestamp.Before(since)
		})
	} else if limit, ok := fleetLimit(c, defaultLimit); ok && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]domain.Plow, len(ordered))
	for i, p := range ordered {
		out[i] = ApplyToPlow(p, c)
	}
	return out
}

// FleetScope is the storage fetch hint matching SelectFleet's selection, so
// plows that would be dropped are never loaded with their history.
func (c Constraints) FleetScope(defaultLimit int) domain.FleetScope {
	if since, ok := c.Since(); ok {
		return domain.FleetScope{Since: since, HasSince: true}
	}
	if limit, ok := fleetLimit(c, defaultLimit); ok {
		return domain.FleetScope{Limit: limit}
	}
	return domain.FleetScope{}
}

func fleetLimit(c Constraints, defaultLimit int) (int, bool) {
	if n, ok := c.FleetLimit(); ok {
		return n, true
	}
	if c.unconstrained() && defaultLimit > 0 {
		return defaultLimit, true
	}
	return 0, false
}

func compareRecency(a, b domain.Plow) int {
	if n := b.LastPoint.Timestamp.Compare(a.LastPoint.Timestamp); n != 0 {
		return n
	}
	return cmp.Compare(a.ID, b.ID)
}
