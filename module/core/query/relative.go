package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// newRelativeParser extends the English when rules with signed offsets such
// as "-2 hours" or "+1 day", and anchors calendar-day expressions ("today",
// "yesterday", "last monday") to midnight.
func newRelativeParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	w.Add(signedOffset(), midnightAnchor())
	return w
}

var signedOffsetRe = regexp.MustCompile(`(?i)(?:^|\s)([+-])\s*([0-9]+)\s*` +
	`(sec(?:ond)?s?|min(?:ute)?s?|hours?|days?|weeks?|months?|years?)(?:\W|$)`)

func signedOffset() rules.Rule {
	return &rules.F{
		RegExp: signedOffsetRe,
		Applier: func(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
			n, err := strconv.Atoi(m.Captures[1])
			if err != nil {
				return false, nil
			}
			if m.Captures[0] == "-" {
				n = -n
			}

			unit := strings.ToLower(m.Captures[2])
			var target time.Time
			switch {
			case strings.HasPrefix(unit, "sec"):
				target = ref.Add(time.Duration(n) * time.Second)
			case strings.HasPrefix(unit, "min"):
				target = ref.Add(time.Duration(n) * time.Minute)
			case strings.HasPrefix(unit, "hour"):
				target = ref.Add(time.Duration(n) * time.Hour)
			case strings.HasPrefix(unit, "day"):
				target = ref.AddDate(0, 0, n)
			case strings.HasPrefix(unit, "week"):
				target = ref.AddDate(0, 0, 7*n)
			case strings.HasPrefix(unit, "month"):
				target = ref.AddDate(0, n, 0)
			default:
				target = ref.AddDate(n, 0, 0)
			}
			c.Duration += target.Sub(ref)
			return true, nil
		},
	}
}

var midnightAnchorRe = regexp.MustCompile(`(?i)(?:\W|^)(today|yesterday|tomorrow|midnight|` +
	`(?:(?:this|last|past|next)\s+)?(?:sunday|monday|tuesday|wednesday|thursday|friday|saturday))(?:\W|$)`)

// midnightAnchor runs after the en rules, so an explicit time of day such as
// "yesterday 14:00" keeps its hour.
func midnightAnchor() rules.Rule {
	return &rules.F{
		RegExp: midnightAnchorRe,
		Applier: func(_ *rules.Match, c *rules.Context, _ *rules.Options, _ time.Time) (bool, error) {
			if c.Hour != nil || c.Minute != nil {
				return true, nil
			}
			hour, minute, second := 0, 0, 0
			c.Hour, c.Minute, c.Second = &hour, &minute, &second
			return true, nil
		},
	}
}
