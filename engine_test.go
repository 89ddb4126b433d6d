package accounts

import (
	"context"
	"errors"
	"testing"
)

// fakeIdentity is a scriptable, call-counting IdentityProvider.
type fakeIdentity struct {
	createErr error
	authErr   error
	verifyErr error
	resetErr  error
	labelErr  error
	signErr   error

	verified bool

	createCalls  int
	authCalls    int
	verifyCalls  int
	resetCalls   int
	labelCalls   int
	signOutCalls int

	lastLabel string
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, _ string) (*Account, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &Account{ID: "acct-1", Email: email}, nil
}

func (f *fakeIdentity) Authenticate(_ context.Context, email, _ string) (*Account, error) {
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &Account{ID: "acct-1", Email: email, EmailVerified: f.verified}, nil
}

func (f *fakeIdentity) SendVerificationEmail(context.Context, *Account) error {
	f.verifyCalls++
	return f.verifyErr
}

func (f *fakeIdentity) SendPasswordResetEmail(context.Context, string) error {
	f.resetCalls++
	return f.resetErr
}

func (f *fakeIdentity) UpdateDisplayLabel(_ context.Context, _ *Account, label string) error {
	f.labelCalls++
	if f.labelErr != nil {
		return f.labelErr
	}
	f.lastLabel = label
	return nil
}

func (f *fakeIdentity) SignOut(context.Context, *Account) error {
	f.signOutCalls++
	return f.signErr
}

func (f *fakeIdentity) remoteCalls() int {
	return f.createCalls + f.authCalls + f.verifyCalls + f.resetCalls + f.labelCalls + f.signOutCalls
}

// fakeProfiles is a call-counting in-memory ProfileStore.
type fakeProfiles struct {
	putErr error

	putCalls int
	docs     map[string]Profile
}

func (f *fakeProfiles) Put(_ context.Context, collection, key string, p Profile) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	if f.docs == nil {
		f.docs = make(map[string]Profile)
	}
	f.docs[collection+"/"+key] = p
	return nil
}

func newTestEngine(t *testing.T, idp *fakeIdentity, store *fakeProfiles) (*Engine, *ChannelSink) {
	t.Helper()

	sink := NewChannelSink(64)
	engine, err := New().
		WithIdentityProvider(idp).
		WithProfileStore(store).
		WithAuditSink(sink).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, sink
}

// collectAudit closes the engine (draining the dispatcher) and returns every
// event that reached the sink.
func collectAudit(engine *Engine, sink *ChannelSink) []AuditEvent {
	engine.Close()

	var events []AuditEvent
	for {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func hasAuditEvent(events []AuditEvent, eventType string, success bool) bool {
	for _, ev := range events {
		if ev.EventType == eventType && ev.Success == success {
			return true
		}
	}
	return false
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Email:              "Student@University.EDU",
		RegistrationNumber: "2021-CS-042",
		Password:           "p@ssw0rd",
		ConfirmPassword:    "p@ssw0rd",
	}
}

func TestBuilderRequiresCollaborators(t *testing.T) {
	if _, err := New().WithProfileStore(&fakeProfiles{}).Build(); err == nil {
		t.Fatal("expected build without identity provider to fail")
	}
	if _, err := New().WithIdentityProvider(&fakeIdentity{}).Build(); err == nil {
		t.Fatal("expected build without profile store to fail")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().WithIdentityProvider(&fakeIdentity{}).WithProfileStore(&fakeProfiles{})
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestEngineNotReady(t *testing.T) {
	var engine *Engine
	if _, err := engine.Register(context.Background(), validRegisterRequest()); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.RequestPasswordReset(context.Background(), "a@b.c"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}

func TestForcedSignOutSurvivesCanceledContext(t *testing.T) {
	idp := &fakeIdentity{}
	engine, _ := newTestEngine(t, idp, &fakeProfiles{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine.forceSignOut(ctx, &Account{ID: "acct-1", Email: "a@u.edu"})
	if idp.signOutCalls != 1 {
		t.Fatalf("expected sign-out despite canceled context, got %d calls", idp.signOutCalls)
	}
}

func TestAuditDroppedStartsAtZero(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeIdentity{}, &fakeProfiles{})
	if got := engine.AuditDropped(); got != 0 {
		t.Fatalf("expected zero dropped events, got %d", got)
	}
}
