package guard

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

type Event int

const (
	EventSignInSucceeded Event = iota
	EventSignedOut
	EventTokenRefreshed
)

func (e Event) String() string {
	switch e {
	case EventSignInSucceeded:
		return "sign_in_succeeded"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	}
	return "unknown"
}

// Machine tracks session presence for a single navigation context. Every
// trigger yields a decision from the same rule as Decide.
type Machine struct {
	state State
}

func NewMachine(sessionPresent bool) *Machine {
	if sessionPresent {
		return &Machine{state: StateAuthenticated}
	}
	return &Machine{state: StateUnauthenticated}
}

func (m *Machine) State() State {
	return m.state
}

// Mount evaluates the rule without a transition.
func (m *Machine) Mount(segment Segment) Decision {
	return Decide(m.state == StateAuthenticated, segment)
}

// Apply transitions on the event, then evaluates the rule for the new state.
// A token refresh never creates a session that did not exist.
func (m *Machine) Apply(event Event, segment Segment) Decision {
	switch event {
	case EventSignInSucceeded:
		m.state = StateAuthenticated
	case EventSignedOut:
		m.state = StateUnauthenticated
	case EventTokenRefreshed:
	}
	return m.Mount(segment)
}
