package model

import (
	"strings"
	"time"
)

// ShortIDSeparator splits an actor identifier into its short id and domain.
const ShortIDSeparator = "@"

// ShortID derives the short actor id used as the aggregation join key:
// the part of identifier before the first separator, or the whole string.
func ShortID(identifier string) string {
	if i := strings.Index(identifier, ShortIDSeparator); i >= 0 {
		return identifier[:i]
	}
	return identifier
}

// Actor is an authenticated user.
type Actor struct {
	ID         string
	Identifier string
	Admin      bool
}

// ShortID returns the actor's derived short id.
func (a Actor) ShortID() string { return ShortID(a.Identifier) }

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Label returns the Japanese direction label used in reports.
func (d Direction) Label() string {
	if d == Descending {
		return "降順"
	}
	return "昇順"
}

// EventKind enumerates interaction event kinds.
type EventKind string

const (
	EventViewStart       EventKind = "view_start"
	EventViewEnd         EventKind = "view_end"
	EventColumnSelection EventKind = "column_selection"
	EventSortRequest     EventKind = "sort_request"
	EventFilterToggle    EventKind = "filter_toggle"
)

// Interaction is one logged user action. Only the fields relevant to Kind are set.
type Interaction struct {
	ID        string
	Kind      EventKind
	ActorID   string
	ShortID   string
	Page      string
	Timestamp time.Time

	// view_start / view_end
	StartedAt   time.Time
	ViewSeconds int
	ScrollDepth int
	ArticleID   string

	// column_selection
	Columns []string

	// sort_request
	SortColumn    string
	SortDirection Direction

	// filter_toggle
	FilterType  string
	FilterValue bool
}

// User is an entry of the users dimension table.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Admin        bool
}

// Bookmark pairs an actor with a company.
type Bookmark struct {
	UserID    string
	CompanyID string
	CreatedAt time.Time
}
