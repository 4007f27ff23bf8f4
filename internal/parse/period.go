package parse

import (
	"strings"
	"time"

	"github.com/granabot/granabot/internal/model"
)

// periodRule associates a keyword set with a window computation. Rules
// are checked in slice order and the first keyword hit wins, so the
// explicit current-month phrases must come before "mes passado" never
// overlaps them.
type periodRule struct {
	window   func(now time.Time) model.Period
	label    string
	keywords []string
}

var periodRules = []periodRule{
	{
		label:    "este mês",
		keywords: []string{"esse mes", "este mes", "neste mes", "nesse mes", "desse mes", "deste mes", "mes atual"},
		window:   CurrentMonth,
	},
	{
		label:    "mês passado",
		keywords: []string{"mes passado", "mes anterior", "ultimo mes"},
		window: func(now time.Time) model.Period {
			start := startOfMonth(now).AddDate(0, -1, 0)
			return model.Period{Start: start, End: startOfMonth(now), Label: "mês passado"}
		},
	},
	{
		label:    "este ano",
		keywords: []string{"esse ano", "este ano", "neste ano", "nesse ano", "desse ano", "deste ano", "ano atual"},
		window: func(now time.Time) model.Period {
			start := startOfYear(now)
			return model.Period{Start: start, End: start.AddDate(1, 0, 0), Label: "este ano"}
		},
	},
	{
		label:    "ano passado",
		keywords: []string{"ano passado", "ano anterior"},
		window: func(now time.Time) model.Period {
			end := startOfYear(now)
			return model.Period{Start: end.AddDate(-1, 0, 0), End: end, Label: "ano passado"}
		},
	},
	{
		label:    "hoje",
		keywords: []string{"hoje"},
		window: func(now time.Time) model.Period {
			start := startOfDay(now)
			return model.Period{Start: start, End: start.AddDate(0, 0, 1), Label: "hoje"}
		},
	},
	{
		label:    "ontem",
		keywords: []string{"ontem"},
		window: func(now time.Time) model.Period {
			end := startOfDay(now)
			return model.Period{Start: end.AddDate(0, 0, -1), End: end, Label: "ontem"}
		},
	},
	{
		label:    "esta semana",
		keywords: []string{"essa semana", "esta semana", "nessa semana", "nesta semana", "semana atual"},
		window: func(now time.Time) model.Period {
			start := startOfWeek(now)
			return model.Period{Start: start, End: start.AddDate(0, 0, 7), Label: "esta semana"}
		},
	},
	{
		label:    "semana passada",
		keywords: []string{"semana passada", "semana anterior", "ultima semana"},
		window: func(now time.Time) model.Period {
			end := startOfWeek(now)
			return model.Period{Start: end.AddDate(0, 0, -7), End: end, Label: "semana passada"}
		},
	},
}

// ResolvePeriod scans text for a period keyword and computes the matching
// half-open window from now, in now's location. Returns false when no
// keyword matches; the caller must then apply the current-month default —
// queries never fall back to all time.
func ResolvePeriod(text string, now time.Time) (model.Period, bool) {
	folded := Fold(text)
	for _, rule := range periodRules {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				return rule.window(now), true
			}
		}
	}
	return model.Period{}, false
}

// CurrentMonth is the default window: the calendar month containing now.
func CurrentMonth(now time.Time) model.Period {
	start := startOfMonth(now)
	return model.Period{Start: start, End: start.AddDate(0, 1, 0), Label: "este mês"}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the preceding Monday at midnight.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
