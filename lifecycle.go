package accounts

import "fmt"

// LifecycleState is the account's position in the lifecycle:
// Unregistered → PendingVerification → Verified. The PendingVerification →
// Verified transition is provider-driven and observed lazily; there is no
// client-side operation that performs it.
type LifecycleState uint8

const (
	// StateUnregistered is the initial lifecycle state.
	StateUnregistered LifecycleState = iota
	// StatePendingVerification is the state after a successful registration,
	// until the provider marks the account verified.
	StatePendingVerification
	// StateVerified is the terminal lifecycle state for this package.
	StateVerified
)

func (s LifecycleState) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StatePendingVerification:
		return "pending-verification"
	case StateVerified:
		return "verified"
	default:
		return "invalid"
	}
}

// SessionPresence is the session substate. SessionActive is reachable from
// StateVerified only.
type SessionPresence uint8

const (
	// SessionInactive means no admitted session exists.
	SessionInactive SessionPresence = iota
	// SessionActive means an admitted session exists.
	SessionActive
)

func (p SessionPresence) String() string {
	if p == SessionActive {
		return "session-active"
	}
	return "session-inactive"
}

// TransitionError reports an attempted lifecycle transition that the state
// machine forbids. It indicates a flow bug, not a user or collaborator
// failure.
type TransitionError struct {
	From LifecycleState
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lifecycle: %s not permitted from %s", e.Op, e.From)
}

// Lifecycle is the account lifecycle state machine shared by the three flows.
// It is a read-driven reflection of provider-side truth: registration and
// verification observations move the state forward, and only a Verified state
// admits a session. The zero value is Unregistered/SessionInactive.
type Lifecycle struct {
	state   LifecycleState
	session SessionPresence
}

// LifecycleOf builds the lifecycle position reflected by a provider account
// read: a created account is at least PendingVerification, and a set
// verification flag places it at Verified. The session substate starts
// inactive.
func LifecycleOf(account *Account) Lifecycle {
	lc := Lifecycle{state: StatePendingVerification}
	if account != nil && account.EmailVerified {
		lc.state = StateVerified
	}
	return lc
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() LifecycleState {
	return l.state
}

// Session returns the current session substate.
func (l *Lifecycle) Session() SessionPresence {
	return l.session
}

// RecordRegistration applies Unregistered → PendingVerification. The forced
// sign-out in the registration flow guarantees the session substate is
// inactive.
func (l *Lifecycle) RecordRegistration() error {
	if l.state != StateUnregistered {
		return &TransitionError{From: l.state, Op: "register"}
	}
	l.state = StatePendingVerification
	l.session = SessionInactive
	return nil
}

// ObserveVerified folds a fresh read of the provider's verification flag into
// the machine. A true flag moves PendingVerification → Verified; a false flag
// is a no-op (the machine never moves backwards, and never writes the flag).
func (l *Lifecycle) ObserveVerified(verified bool) {
	if verified && l.state == StatePendingVerification {
		l.state = StateVerified
	}
}

// Admit applies the login-success transition to Verified/SessionActive. It is
// permitted from StateVerified only; a pending account stays pending with the
// session substate forced inactive.
func (l *Lifecycle) Admit() error {
	if l.state != StateVerified {
		l.session = SessionInactive
		return &TransitionError{From: l.state, Op: "admit"}
	}
	l.session = SessionActive
	return nil
}

// RecordSignOut applies SessionActive → SessionInactive. Signing out an
// inactive session is a no-op.
func (l *Lifecycle) RecordSignOut() {
	l.session = SessionInactive
}
