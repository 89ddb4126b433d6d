package accounts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	accounts "github.com/wasiakbar8/smartstudy-accounts"
	"github.com/wasiakbar8/smartstudy-accounts/identity"
	"github.com/wasiakbar8/smartstudy-accounts/password"
	"github.com/wasiakbar8/smartstudy-accounts/profile"
)

// The flow tests below run the engine against the real Redis-backed
// collaborators instead of fakes, end to end over miniredis.

type flowFixture struct {
	engine   *accounts.Engine
	identity *identity.Service
	profiles *profile.Store
	mailer   *identity.ChannelMailer
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed to start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mailer := identity.NewChannelMailer(16)

	idp, err := identity.New(rdb, identity.Config{
		SessionSigningKey: []byte("test-signing-key-test-signing-key"),
		Mailer:            mailer,
		Password: password.Config{
			Memory:      8 * 1024,
			Time:        1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   16,
		},
	})
	if err != nil {
		t.Fatalf("identity.New failed: %v", err)
	}

	profiles := profile.New(rdb, "doc")

	engine, err := accounts.New().
		WithIdentityProvider(idp).
		WithProfileStore(profiles).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &flowFixture{engine: engine, identity: idp, profiles: profiles, mailer: mailer}
}

func (f *flowFixture) takeMail(t *testing.T, kind identity.MailKind) identity.Mail {
	t.Helper()
	select {
	case mail := <-f.mailer.Mail():
		if mail.Kind != kind {
			t.Fatalf("expected %s mail, got %s", kind, mail.Kind)
		}
		return mail
	case <-time.After(time.Second):
		t.Fatalf("no %s mail arrived", kind)
		return identity.Mail{}
	}
}

func TestFullRegistrationToAdmissionFlow(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.Register(ctx, accounts.RegisterRequest{
		Email:              "Student@University.EDU",
		RegistrationNumber: "2021-CS-042",
		Password:           "p@ssw0rd",
		ConfirmPassword:    "p@ssw0rd",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !outcome.VerificationEmailSent || !outcome.DisplayLabelSet {
		t.Fatalf("expected both secondary steps to succeed: %+v", outcome)
	}

	// The profile document exists with the denormalized unverified flag.
	p, err := f.profiles.Get(ctx, "users", outcome.AccountID)
	if err != nil {
		t.Fatalf("profile read failed: %v", err)
	}
	if p.Email != "student@university.edu" || p.RegistrationNumber != "2021-CS-042" || p.EmailVerified {
		t.Fatalf("unexpected profile: %+v", p)
	}

	// Registration ends signed out.
	if token, err := f.identity.SessionToken(ctx, outcome.AccountID); err != nil || token != "" {
		t.Fatalf("expected no provider session after registration, got %q, %v", token, err)
	}

	// Unverified login is denied but offers a resend.
	f.takeMail(t, identity.MailVerification)
	login, err := f.engine.Login(ctx, "student@university.edu", "p@ssw0rd")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Admitted || login.Reason != accounts.LoginReasonUnverified {
		t.Fatalf("expected unverified denial, got %+v", login)
	}
	if err := login.ResendVerificationEmail(ctx); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	resent := f.takeMail(t, identity.MailVerification)

	if err := f.identity.ConfirmVerification(ctx, resent.Token); err != nil {
		t.Fatalf("ConfirmVerification failed: %v", err)
	}

	// Now the same credentials admit.
	login, err = f.engine.Login(ctx, "student@university.edu", "p@ssw0rd")
	if err != nil {
		t.Fatalf("Login after verification failed: %v", err)
	}
	if !login.Admitted || !login.Session.Valid() {
		t.Fatalf("expected admission, got %+v", login)
	}
	if !login.Session.Account.EmailVerified {
		t.Fatal("expected the verified flag on the admitted account")
	}

	if err := f.engine.SignOut(ctx, login.Session); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if token, err := f.identity.SessionToken(ctx, login.Session.Account.ID); err != nil || token != "" {
		t.Fatalf("expected provider session gone, got %q, %v", token, err)
	}
}

func TestDuplicateRegistrationAcrossRealStack(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	req := accounts.RegisterRequest{
		Email:              "taken@u.edu",
		RegistrationNumber: "21-CS-1",
		Password:           "p@ssw0rd",
		ConfirmPassword:    "p@ssw0rd",
	}
	if _, err := f.engine.Register(ctx, req); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	req.RegistrationNumber = "21-CS-2"
	_, err := f.engine.Register(ctx, req)
	var ierr *accounts.IdentityError
	if !errors.As(err, &ierr) || ierr.Reason != accounts.IdentityEmailInUse {
		t.Fatalf("expected email-in-use, got %v", err)
	}
}

func TestPasswordResetFlowAcrossRealStack(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	if _, err := f.engine.Register(ctx, accounts.RegisterRequest{
		Email:              "reset@u.edu",
		RegistrationNumber: "21-CS-3",
		Password:           "old-secret",
		ConfirmPassword:    "old-secret",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	verification := f.takeMail(t, identity.MailVerification)
	if err := f.identity.ConfirmVerification(ctx, verification.Token); err != nil {
		t.Fatalf("ConfirmVerification failed: %v", err)
	}

	if _, err := f.engine.RequestPasswordReset(ctx, "reset@u.edu"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	resetMail := f.takeMail(t, identity.MailPasswordReset)

	if err := f.identity.ConfirmPasswordReset(ctx, resetMail.Token, "new-secret"); err != nil {
		t.Fatalf("ConfirmPasswordReset failed: %v", err)
	}

	// The old credential is dead, the new one admits.
	_, err := f.engine.Login(ctx, "reset@u.edu", "old-secret")
	var ierr *accounts.IdentityError
	if !errors.As(err, &ierr) || ierr.Reason != accounts.IdentityWrongPassword {
		t.Fatalf("expected wrong-password for the rotated credential, got %v", err)
	}

	login, err := f.engine.Login(ctx, "reset@u.edu", "new-secret")
	if err != nil {
		t.Fatalf("Login with new credential failed: %v", err)
	}
	if !login.Admitted {
		t.Fatalf("expected admission, got %+v", login)
	}
}

func TestResetRequestForUnknownEmailAcrossRealStack(t *testing.T) {
	f := newFlowFixture(t)

	_, err := f.engine.RequestPasswordReset(context.Background(), "ghost@u.edu")
	var ierr *accounts.IdentityError
	if !errors.As(err, &ierr) || ierr.Reason != accounts.IdentityUserNotFound {
		t.Fatalf("expected user-not-found, got %v", err)
	}
}
