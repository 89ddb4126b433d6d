package accounts

import "testing"

func TestNormalizeEmail(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"Student@University.EDU", "student@university.edu"},
		{"  a@b.c  ", "a@b.c"},
		{"already@lower.case", "already@lower.case"},
		{"", ""},
		{"   ", ""},
	} {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultEmailShape(t *testing.T) {
	var cfg ValidationConfig
	for _, tc := range []struct {
		email string
		ok    bool
	}{
		{"student@university.edu", true},
		{"a.b+c@sub.domain.io", true},
		{"no-at-sign.edu", false},
		{"missing@tld", false},
		{"spaces in@local.part", false},
		{"@domain.tld", false},
		{"local@", false},
	} {
		if got := cfg.validEmailShape(tc.email); got != tc.ok {
			t.Fatalf("validEmailShape(%q) = %v, want %v", tc.email, got, tc.ok)
		}
	}
}

func TestCustomEmailPattern(t *testing.T) {
	cfg := ValidationConfig{EmailPattern: `^[a-z0-9.]+@university\.edu$`}
	if !cfg.validEmailShape("jane.doe@university.edu") {
		t.Fatal("expected the campus address to match")
	}
	if cfg.validEmailShape("jane@gmail.com") {
		t.Fatal("expected the off-campus address rejected")
	}
}

func TestValidateRegistrationOrder(t *testing.T) {
	cfg := ValidationConfig{MinPasswordLength: 6}

	// Empty-field checks come first, in field order, before shape checks.
	req := RegisterRequest{Email: "not-an-email", RegistrationNumber: "", Password: "", ConfirmPassword: ""}
	verr := validateRegistration(req, cfg)
	if verr == nil || verr.Field != "registrationNumber" {
		t.Fatalf("expected registrationNumber violation first, got %v", verr)
	}

	req = RegisterRequest{Email: "not-an-email", RegistrationNumber: "21-CS-1", Password: "p@ssw0rd", ConfirmPassword: "p@ssw0rd"}
	verr = validateRegistration(req, cfg)
	if verr == nil || verr.Reason != ReasonMalformedEmail {
		t.Fatalf("expected malformed email, got %v", verr)
	}
}

func TestValidateRegistrationPasswordRules(t *testing.T) {
	cfg := ValidationConfig{MinPasswordLength: 8}
	req := RegisterRequest{Email: "a@b.c", RegistrationNumber: "21-CS-1", Password: "1234567", ConfirmPassword: "1234567"}
	if verr := validateRegistration(req, cfg); verr == nil || verr.Reason != ReasonWeakPassword {
		t.Fatalf("expected weak password at 7 bytes with minimum 8, got %v", verr)
	}

	req.Password, req.ConfirmPassword = "12345678", "12345678"
	if verr := validateRegistration(req, cfg); verr != nil {
		t.Fatalf("expected 8 bytes accepted, got %v", verr)
	}

	req.ConfirmPassword = "12345679"
	if verr := validateRegistration(req, cfg); verr == nil || verr.Reason != ReasonPasswordMismatch {
		t.Fatalf("expected mismatch, got %v", verr)
	}
}

func TestValidateLogin(t *testing.T) {
	if verr := validateLogin("a@b.c", "pw"); verr != nil {
		t.Fatalf("expected valid login input, got %v", verr)
	}
	if verr := validateLogin(" ", "pw"); verr == nil || verr.Field != "email" {
		t.Fatalf("expected email violation, got %v", verr)
	}
	if verr := validateLogin("a@b.c", ""); verr == nil || verr.Field != "password" {
		t.Fatalf("expected password violation, got %v", verr)
	}
	// Login never applies the shape check; the provider decides.
	if verr := validateLogin("whatever", "pw"); verr != nil {
		t.Fatalf("expected shape check skipped at login, got %v", verr)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	bad := defaultConfig()
	bad.Validation.MinPasswordLength = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected zero minimum rejected")
	}

	bad = defaultConfig()
	bad.Validation.EmailPattern = "(["
	if err := bad.Validate(); err == nil {
		t.Fatal("expected broken pattern rejected")
	}

	bad = defaultConfig()
	bad.Registration.ProfileCollection = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("expected empty collection rejected")
	}
}
