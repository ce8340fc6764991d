package simulate

import (
	"math/rand/v2"

	"github.com/okian/jobdb/internal/domain/filter"
	"github.com/okian/jobdb/internal/domain/model"
)

// ActionKind names a table interaction.
type ActionKind string

const (
	ActionColumn ActionKind = "column"
	ActionSort   ActionKind = "sort"
	ActionFilter ActionKind = "filter"
	ActionScroll ActionKind = "scroll"
)

// Action is one step of a session.
type Action struct {
	Kind ActionKind
	Arg  string
	// Scroll sample: scrollY, viewport height, document height.
	Scroll [3]float64
}

// Plan is the scripted session of one student.
type Plan struct {
	Student Credentials
	Actions []Action
}

// eventKinds maps actions to the interaction they log. Scrolls log nothing
// until the view closes.
var eventKinds = map[ActionKind]model.EventKind{
	ActionColumn: model.EventColumnSelection,
	ActionSort:   model.EventSortRequest,
	ActionFilter: model.EventFilterToggle,
}

var filterNames = []string{
	filter.HideUnknownHolidays,
	filter.HideUnknownOvertime,
	filter.HideUnknownWeeklyHoliday,
	filter.HideUnknownSalary,
	filter.ShowOnlyBookmarks,
}

// GeneratePlans builds one deterministic plan per student.
func GeneratePlans(cfg *Config) []Plan {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	plans := make([]Plan, 0, len(cfg.Students))
	for _, s := range cfg.Students {
		p := Plan{Student: s, Actions: make([]Action, 0, cfg.ActionsPerStudent)}
		for range cfg.ActionsPerStudent {
			p.Actions = append(p.Actions, randomAction(rng))
		}
		plans = append(plans, p)
	}
	return plans
}

func randomAction(rng *rand.Rand) Action {
	switch rng.IntN(4) {
	case 0:
		return Action{Kind: ActionColumn, Arg: model.Columns[rng.IntN(len(model.Columns))]}
	case 1:
		return Action{Kind: ActionSort, Arg: model.Columns[rng.IntN(len(model.Columns))]}
	case 2:
		return Action{Kind: ActionFilter, Arg: filterNames[rng.IntN(len(filterNames))]}
	default:
		doc := 1000 + rng.Float64()*4000
		return Action{Kind: ActionScroll, Scroll: [3]float64{rng.Float64() * doc, 800, doc}}
	}
}

// Expected counts the events a set of plans logs, per kind.
func Expected(plans []Plan) map[model.EventKind]int {
	out := map[model.EventKind]int{}
	for _, p := range plans {
		out[model.EventViewStart]++
		for _, a := range p.Actions {
			if k, ok := eventKinds[a.Kind]; ok {
				out[k]++
			}
		}
	}
	return out
}
