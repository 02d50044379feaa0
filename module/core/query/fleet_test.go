package query

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/plowtrack/module/core/domain"
)

func plowAt(id string, lastSec int, history ...int) domain.Plow {
	return domain.Plow{
		ID:        id,
		LastPoint: domain.Point{Timestamp: at(lastSec)},
		History:   pointsAt(history...),
	}
}

// fleetOf returns n plows named p00..p(n-1), plow i last reporting at second i.
func fleetOf(n int) []domain.Plow {
	plows := make([]domain.Plow, n)
	for i := range plows {
		plows[i] = plowAt(fmt.Sprintf("p%02d", i), i)
	}
	return plows
}

func ids(plows []domain.Plow) []string {
	out := make([]string, len(plows))
	for i, p := range plows {
		out[i] = p.ID
	}
	return out
}

func TestSelectFleet_DefaultLimit(t *testing.T) {
	plows := fleetOf(15)
	rand.New(rand.NewSource(4)).Shuffle(len(plows), func(i, j int) { plows[i], plows[j] = plows[j], plows[i] })

	got := SelectFleet(plows, New(), DefaultFleetLimit)

	require.Len(t, got, 10)
	assert.Equal(t, []string{"p14", "p13", "p12", "p11", "p10", "p09", "p08", "p07", "p06", "p05"}, ids(got))
}

func TestSelectFleet_ExplicitLimit(t *testing.T) {
	got := SelectFleet(fleetOf(15), New(WithFleetLimit(3)), DefaultFleetLimit)
	assert.Equal(t, []string{"p14", "p13", "p12"}, ids(got))
}

func TestSelectFleet_LimitLargerThanFleet(t *testing.T) {
	got := SelectFleet(fleetOf(4), New(WithFleetLimit(50)), DefaultFleetLimit)
	assert.Len(t, got, 4)
}

func TestSelectFleet_HistoryCountWithoutLimitIsUncapped(t *testing.T) {
	got := SelectFleet(fleetOf(15), New(WithHistoryCount(2)), DefaultFleetLimit)
	assert.Len(t, got, 15)
}

func TestSelectFleet_SinceOverridesLimit(t *testing.T) {
	c := New(WithSince(at(3)), WithFleetLimit(2))

	got := SelectFleet(fleetOf(15), c, DefaultFleetLimit)

	require.Len(t, got, 12)
	assert.Equal(t, "p14", got[0].ID)
	assert.Equal(t, "p03", got[len(got)-1].ID)
}

func TestSelectFleet_SinceExcludesStalePlows(t *testing.T) {
	got := SelectFleet(fleetOf(15), New(WithSince(at(100))), DefaultFleetLimit)
	assert.Empty(t, got)
}

func TestSelectFleet_Empty(t *testing.T) {
	got := SelectFleet(nil, New(), DefaultFleetLimit)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelectFleet_TieBreakByID(t *testing.T) {
	plows := []domain.Plow{plowAt("c", 5), plowAt("a", 5), plowAt("d", 9), plowAt("b", 5)}

	got := SelectFleet(plows, New(WithFleetLimit(10)), DefaultFleetLimit)

	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(got))
}

func TestSelectFleet_OrderIsNonIncreasing(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	plows := make([]domain.Plow, 40)
	for i := range plows {
		plows[i] = plowAt(fmt.Sprintf("p%02d", i), r.Intn(20))
	}

	for _, c := range []Constraints{New(), New(WithFleetLimit(25)), New(WithSince(at(8)))} {
		got := SelectFleet(plows, c, DefaultFleetLimit)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].LastPoint.Timestamp.After(got[i-1].LastPoint.Timestamp),
				"plow %s reported after %s but is listed later", got[i].ID, got[i-1].ID)
		}
	}
}

func TestSelectFleet_FiltersEachHistory(t *testing.T) {
	plows := []domain.Plow{
		plowAt("1", 30, 0, 5, 12, 13, 30),
		plowAt("2", 20, 2, 8, 20),
	}
	c := New(WithSince(at(6)), WithTemporalResolution(10*time.Second))

	got := SelectFleet(plows, c, DefaultFleetLimit)

	require.Len(t, got, 2)
	assert.Equal(t, []int{12, 30}, seconds(got[0].History))
	assert.Equal(t, []int{8, 20}, seconds(got[1].History))
}

func TestSelectFleet_DropsHistoryWhenUnused(t *testing.T) {
	plows := []domain.Plow{plowAt("1", 30, 0, 5, 12, 13, 30)}

	got := SelectFleet(plows, New(WithFleetLimit(5)), DefaultFleetLimit)

	require.Len(t, got, 1)
	assert.Nil(t, got[0].History)
}

func TestSelectFleet_DoesNotReorderInput(t *testing.T) {
	plows := []domain.Plow{plowAt("old", 1), plowAt("new", 9)}

	_ = SelectFleet(plows, New(), DefaultFleetLimit)

	assert.Equal(t, []string{"old", "new"}, ids(plows))
}

func TestFleetScope(t *testing.T) {
	since := time.Unix(1389780000, 0)

	assert.Equal(t, domain.FleetScope{Limit: 10}, New().FleetScope(10))
	assert.Equal(t, domain.FleetScope{Limit: 3}, New(WithFleetLimit(3)).FleetScope(10))
	assert.Equal(t, domain.FleetScope{}, New(WithHistoryCount(5)).FleetScope(10))
	assert.Equal(t, domain.FleetScope{Since: since, HasSince: true},
		New(WithSince(since), WithFleetLimit(3)).FleetScope(10))
}
