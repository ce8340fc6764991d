package report

import "encoding/json"

// Count is one labelled frequency.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Frequency counts occurrences per label and remembers first-seen order.
// The zero value is ready to use.
type Frequency struct {
	order  []string
	counts map[string]int
}

func (f *Frequency) ensure(label string) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	if _, ok := f.counts[label]; !ok {
		f.order = append(f.order, label)
		f.counts[label] = 0
	}
}

// Add increments label by one.
func (f *Frequency) Add(label string) {
	f.ensure(label)
	f.counts[label]++
}

// Get returns the count of label.
func (f *Frequency) Get(label string) int { return f.counts[label] }

// Len returns the number of distinct labels.
func (f *Frequency) Len() int { return len(f.order) }

// Total returns the sum of all counts.
func (f *Frequency) Total() int {
	n := 0
	for _, c := range f.counts {
		n += c
	}
	return n
}

// Top returns the label with the highest count; ties go to the label seen first.
func (f *Frequency) Top() (Count, bool) {
	var best Count
	found := false
	for _, label := range f.order {
		if c := f.counts[label]; !found || c > best.Count {
			best = Count{Label: label, Count: c}
			found = true
		}
	}
	return best, found
}

// Entries returns the counts in first-seen order.
func (f *Frequency) Entries() []Count {
	out := make([]Count, 0, len(f.order))
	for _, label := range f.order {
		out = append(out, Count{Label: label, Count: f.counts[label]})
	}
	return out
}

// MarshalJSON encodes the entries in first-seen order.
func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Entries())
}
