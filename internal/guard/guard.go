// Package guard decides where a request should land given whether a backend
// session exists and which navigation group it targets.
package guard

import "strings"

type Segment string

const (
	SegmentEntry         Segment = "entry"
	SegmentAuthenticated Segment = "authenticated"
	SegmentOther         Segment = "other"
)

const (
	EntryRoute        = "/"
	AuthenticatedRoot = "/app"
)

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeRedirectHome
	OutcomeRedirectEntry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirectHome:
		return "redirect_home"
	case OutcomeRedirectEntry:
		return "redirect_entry"
	}
	return "none"
}

type Decision struct {
	Outcome Outcome
	Target  string
}

// Redirects reports whether following the decision changes the current path.
// Re-issuing a redirect to the route already shown is a no-op.
func (d Decision) Redirects(currentPath string) bool {
	if d.Outcome == OutcomeNone {
		return false
	}
	return normalize(currentPath) != normalize(d.Target)
}

func Decide(sessionPresent bool, segment Segment) Decision {
	switch {
	case sessionPresent && segment != SegmentAuthenticated:
		return Decision{Outcome: OutcomeRedirectHome, Target: AuthenticatedRoot}
	case !sessionPresent && segment != SegmentEntry:
		return Decision{Outcome: OutcomeRedirectEntry, Target: EntryRoute}
	}
	return Decision{Outcome: OutcomeNone}
}

// SegmentOf maps a request path to its top-level navigation group.
func SegmentOf(path string) Segment {
	path = normalize(path)
	switch {
	case path == EntryRoute, path == "/login":
		return SegmentEntry
	case path == AuthenticatedRoot, strings.HasPrefix(path, AuthenticatedRoot+"/"):
		return SegmentAuthenticated
	}
	return SegmentOther
}

func ParseSegment(s string) Segment {
	switch Segment(strings.ToLower(strings.TrimSpace(s))) {
	case SegmentEntry:
		return SegmentEntry
	case SegmentAuthenticated:
		return SegmentAuthenticated
	}
	return SegmentOther
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
