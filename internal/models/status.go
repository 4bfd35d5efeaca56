package models

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

const (
	DefaultResolvedNote = "Issue resolved"
	DefaultClosedNote   = "Issue closed"
)

// transitions lists, per status, the statuses it may move to. Closed is terminal.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusClosed},
	StatusInProgress: {StatusResolved, StatusClosed},
	StatusResolved:   {StatusClosed},
	StatusClosed:     nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is offered.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// NextStatuses returns the transitions offered from s, in display order.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ResolutionFor returns the note to send with a move to s. A custom note wins;
// Resolved and Closed fall back to their default notes.
func ResolutionFor(s Status, custom string) string {
	if custom != "" {
		return custom
	}
	switch s {
	case StatusResolved:
		return DefaultResolvedNote
	case StatusClosed:
		return DefaultClosedNote
	}
	return ""
}
