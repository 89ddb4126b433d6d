package accounts

import (
	"regexp"
	"strings"
	"sync"
)

var (
	emailPatternOnce    sync.Once
	defaultEmailPattern *regexp.Regexp
)

func defaultEmailRegexp() *regexp.Regexp {
	emailPatternOnce.Do(func() {
		defaultEmailPattern = regexp.MustCompile(emailPatternSource)
	})
	return defaultEmailPattern
}

// NormalizeEmail returns the case-normalized form an email address is stored
// and compared under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c ValidationConfig) emailRegexp() *regexp.Regexp {
	if c.EmailPattern == "" {
		return defaultEmailRegexp()
	}
	// Validate() already proved the pattern compiles.
	return regexp.MustCompile(c.EmailPattern)
}

func (c ValidationConfig) validEmailShape(email string) bool {
	return c.emailRegexp().MatchString(email)
}

// validateRegistration runs every local precondition of the registration flow.
// It returns the first violation; no remote call may be made when it returns
// non-nil.
func validateRegistration(req RegisterRequest, cfg ValidationConfig) *ValidationError {
	switch {
	case strings.TrimSpace(req.Email) == "":
		return &ValidationError{Field: "email", Reason: ReasonEmptyField}
	case strings.TrimSpace(req.RegistrationNumber) == "":
		return &ValidationError{Field: "registrationNumber", Reason: ReasonEmptyField}
	case req.Password == "":
		return &ValidationError{Field: "password", Reason: ReasonEmptyField}
	case req.ConfirmPassword == "":
		return &ValidationError{Field: "confirmPassword", Reason: ReasonEmptyField}
	}

	if !cfg.validEmailShape(NormalizeEmail(req.Email)) {
		return &ValidationError{Field: "email", Reason: ReasonMalformedEmail}
	}
	if len(req.Password) < cfg.MinPasswordLength {
		return &ValidationError{Field: "password", Reason: ReasonWeakPassword}
	}
	if req.Password != req.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Reason: ReasonPasswordMismatch}
	}

	return nil
}

func validateLogin(email, password string) *ValidationError {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Reason: ReasonEmptyField}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: ReasonEmptyField}
	}
	return nil
}

func validateResetRequest(email string, cfg ValidationConfig) *ValidationError {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Reason: ReasonEmptyField}
	}
	if !cfg.validEmailShape(NormalizeEmail(email)) {
		return &ValidationError{Field: "email", Reason: ReasonMalformedEmail}
	}
	return nil
}
