// Package report aggregates interaction events into usage statistics for
// the admin dashboard. A report is always rebuilt from the full event list.
package report

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/jobdb/internal/domain/model"
)

// UnknownStudent labels events whose actor cannot be resolved.
const UnknownStudent = "unknown"

// Time-of-day bucket labels, in clock order.
const (
	BucketLateNight = "深夜 (0-6時)"
	BucketMorning   = "午前 (6-12時)"
	BucketAfternoon = "午後 (12-18時)"
	BucketEvening   = "夜 (18-24時)"
)

const defaultTopN = 10

// StudentActivity summarizes the page views of one student.
type StudentActivity struct {
	StudentID      string    `json:"student_id"`
	ViewCount      int       `json:"view_count"`
	TotalSeconds   int       `json:"total_seconds"`
	AverageSeconds float64   `json:"average_seconds"`
	LastActive     time.Time `json:"last_active"`
}

// Report is the aggregated dashboard data.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	TotalEvents int       `json:"total_events"`

	ByKind      Frequency `json:"by_kind"`
	ByStudent   Frequency `json:"by_student"`
	ByTimeOfDay Frequency `json:"by_time_of_day"`

	UniqueStudents     int               `json:"unique_students"`
	AverageViewSeconds float64           `json:"average_view_seconds"`
	TopStudents        []StudentActivity `json:"top_students"`

	Columns          Frequency             `json:"columns"`
	ColumnsByStudent map[string]*Frequency `json:"columns_by_student"`
	Sorts            Frequency             `json:"sorts"`
	SortsByStudent   map[string]*Frequency `json:"sorts_by_student"`
	Filters          Frequency             `json:"filters"`
	FiltersByStudent map[string]*Frequency `json:"filters_by_student"`

	MostActiveStudent  *Count `json:"most_active_student,omitempty"`
	MostSelectedColumn *Count `json:"most_selected_column,omitempty"`
	MostUsedSort       *Count `json:"most_used_sort,omitempty"`
	MostUsedFilter     *Count `json:"most_used_filter,omitempty"`
}

// Builder computes reports.
type Builder struct {
	loc  *time.Location
	topN int
}

// New creates a Builder bucketing in UTC unless WithLocation is given.
func New(opts ...Option) *Builder {
	b := &Builder{loc: time.UTC, topN: defaultTopN}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LoadLocation resolves a zone name, falling back to a fixed UTC+9 zone
// when the zone database is unavailable.
func LoadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}

// Bucket returns the time-of-day label of ts in loc.
func Bucket(ts time.Time, loc *time.Location) string {
	switch h := ts.In(loc).Hour(); {
	case h < 6:
		return BucketLateNight
	case h < 12:
		return BucketMorning
	case h < 18:
		return BucketAfternoon
	default:
		return BucketEvening
	}
}

// SortLabel is the display key of a sort event, e.g. "給与 (降順)".
func SortLabel(column string, dir model.Direction) string {
	return fmt.Sprintf("%s (%s)", column, dir.Label())
}

// Resolver maps events to student ids using the users dimension.
type Resolver struct {
	byUser map[string]string
}

// NewResolver indexes users by id.
func NewResolver(users []model.User) Resolver {
	m := make(map[string]string, len(users))
	for _, u := range users {
		m[u.ID] = model.ShortID(u.Email)
	}
	return Resolver{byUser: m}
}

// Student returns the short id for e: the owning user's email short id,
// else the logged short id, else UnknownStudent.
func (r Resolver) Student(e model.Interaction) string {
	if id, ok := r.byUser[e.ActorID]; ok && id != "" {
		return id
	}
	if e.ShortID != "" {
		return e.ShortID
	}
	return UnknownStudent
}

// Build aggregates events in a single pass.
func (b *Builder) Build(events []model.Interaction, users []model.User, now time.Time) *Report {
	r := &Report{
		GeneratedAt:      now,
		TotalEvents:      len(events),
		ColumnsByStudent: make(map[string]*Frequency),
		SortsByStudent:   make(map[string]*Frequency),
		FiltersByStudent: make(map[string]*Frequency),
	}
	for _, label := range []string{BucketLateNight, BucketMorning, BucketAfternoon, BucketEvening} {
		r.ByTimeOfDay.ensure(label)
	}

	resolver := NewResolver(users)
	activity := make(map[string]*StudentActivity)
	var order []string
	views, viewSeconds := 0, 0

	for _, e := range events {
		student := resolver.Student(e)
		r.ByKind.Add(string(e.Kind))
		r.ByStudent.Add(student)
		r.ByTimeOfDay.Add(Bucket(e.Timestamp, b.loc))

		switch e.Kind {
		case model.EventViewStart, model.EventViewEnd:
			views++
			viewSeconds += e.ViewSeconds
			a, ok := activity[student]
			if !ok {
				a = &StudentActivity{StudentID: student}
				activity[student] = a
				order = append(order, student)
			}
			a.ViewCount++
			a.TotalSeconds += e.ViewSeconds
			if e.Timestamp.After(a.LastActive) {
				a.LastActive = e.Timestamp
			}
		case model.EventColumnSelection:
			for _, col := range e.Columns {
				r.Columns.Add(col)
				perStudent(r.ColumnsByStudent, student).Add(col)
			}
		case model.EventSortRequest:
			r.Sorts.Add(SortLabel(e.SortColumn, e.SortDirection))
			perStudent(r.SortsByStudent, student).Add(e.SortColumn)
		case model.EventFilterToggle:
			r.Filters.Add(e.FilterType)
			perStudent(r.FiltersByStudent, student).Add(e.FilterType)
		}
	}

	r.UniqueStudents = len(order)
	if views > 0 {
		r.AverageViewSeconds = float64(viewSeconds) / float64(views)
	}
	ranked := make([]StudentActivity, 0, len(order))
	for _, s := range order {
		a := activity[s]
		a.AverageSeconds = float64(a.TotalSeconds) / float64(a.ViewCount)
		ranked = append(ranked, *a)
	}
	slices.SortStableFunc(ranked, func(x, y StudentActivity) int {
		return y.ViewCount - x.ViewCount
	})
	if len(ranked) > b.topN {
		ranked = ranked[:b.topN]
	}
	r.TopStudents = ranked

	r.MostActiveStudent = top(&r.ByStudent)
	r.MostSelectedColumn = top(&r.Columns)
	r.MostUsedSort = top(&r.Sorts)
	r.MostUsedFilter = top(&r.Filters)
	return r
}

func perStudent(m map[string]*Frequency, student string) *Frequency {
	f, ok := m[student]
	if !ok {
		f = &Frequency{}
		m[student] = f
	}
	return f
}

func top(f *Frequency) *Count {
	c, ok := f.Top()
	if !ok {
		return nil
	}
	return &c
}
