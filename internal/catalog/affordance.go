package catalog

import (
	"sync"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// AdminState drives whether the page offers a login entry or a logout button.
type AdminState int

const (
	Anonymous AdminState = iota
	Authenticated
)

func (s AdminState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// AdminEvent is an input of the admin affordance state machine.
type AdminEvent int

const (
	SignedIn AdminEvent = iota + 1
	SessionDetected
	SignedOut
	SessionExpired
)

// Next returns the state reached from s on ev.
func (s AdminState) Next(ev AdminEvent) AdminState {
	switch ev {
	case SignedIn, SessionDetected:
		return Authenticated
	case SignedOut, SessionExpired:
		return Anonymous
	}
	return s
}

// SessionSubscriber is the notification channel of the auth gateway.
type SessionSubscriber interface {
	Subscribe(fn func(domain.SessionEvent)) (unsubscribe func())
}

// AdminAffordance tracks the admin state of one viewer, identified by its session
// token. Events for other tokens are ignored.
type AdminAffordance struct {
	mu    sync.Mutex
	state AdminState
	token string
}

// NewAdminAffordance starts Authenticated when a valid session already exists for token.
func NewAdminAffordance(token string, sessionValid bool) *AdminAffordance {
	a := &AdminAffordance{token: token}
	if sessionValid {
		a.state = a.state.Next(SessionDetected)
	}
	return a
}

func (a *AdminAffordance) State() AdminState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Apply feeds ev and reports whether the state changed.
func (a *AdminAffordance) Apply(ev AdminEvent) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.state.Next(ev)
	changed := next != a.state
	a.state = next
	return changed
}

func (a *AdminAffordance) inputFor(ev domain.SessionEvent) (AdminEvent, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == "" || ev.Token != a.token {
		return 0, false
	}
	switch ev.Kind {
	case domain.SessionSignedIn:
		return SignedIn, true
	case domain.SessionSignedOut:
		return SignedOut, true
	case domain.SessionExpired:
		return SessionExpired, true
	}
	return 0, false
}

// Watch subscribes to sub and calls onChange with every state transition. The returned
// stop func unsubscribes; it must be called when the viewer goes away.
func (a *AdminAffordance) Watch(sub SessionSubscriber, onChange func(AdminState)) (stop func()) {
	return sub.Subscribe(func(ev domain.SessionEvent) {
		input, ok := a.inputFor(ev)
		if ok && a.Apply(input) {
			onChange(a.State())
		}
	})
}
