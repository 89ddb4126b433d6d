package password

import (
	"errors"
	"strings"
	"testing"
)

func secureConfig() Config {
	return Config{
		Memory:      65536,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify("P@ssw0rd-Ascii", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestNeedsUpgrade(t *testing.T) {
	oldHasher, err := New(Config{
		Memory:      32768,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("New(old) error: %v", err)
	}

	hash, err := oldHasher.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	newHasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New(new) error: %v", err)
	}

	needsUpgrade, err := newHasher.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !needsUpgrade {
		t.Fatal("expected NeedsUpgrade to return true for weaker hash parameters")
	}
}

func TestNeedsUpgradeSameConfig(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("same-config-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	needsUpgrade, err := hasher.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if needsUpgrade {
		t.Fatal("expected NeedsUpgrade to return false for current parameters")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := hasher.Verify("password", "not-a-phc-hash"); err == nil {
		t.Fatal("expected malformed hash verification to fail")
	}
}

func TestVerifyWrongVersion(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("version-test")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	wrongVersion := strings.Replace(hash, "$v=19$", "$v=18$", 1)
	if _, err := hasher.Verify("version-test", wrongVersion); err == nil {
		t.Fatal("expected unsupported version verification to fail")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := hasher.Hash(""); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestDefaultMinimumApplied(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := hasher.Hash("12345"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected 5-byte password to be rejected, got %v", err)
	}
	if _, err := hasher.Hash("123456"); err != nil {
		t.Fatalf("expected 6-byte password to be accepted: %v", err)
	}
}

func TestHashTooLongPasswordRejected(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	long := strings.Repeat("a", DefaultMaxPasswordBytes+1)
	if _, err := hasher.Hash(long); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestHashAtMaxLengthAccepted(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	atMax := strings.Repeat("a", DefaultMaxPasswordBytes)
	hash, err := hasher.Hash(atMax)
	if err != nil {
		t.Fatalf("Hash error at max length: %v", err)
	}

	ok, err := hasher.Verify(atMax, hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected max-length password to verify")
	}
}

func TestVerifyTooLongPasswordRejected(t *testing.T) {
	hasher, err := New(secureConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("normal-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	long := strings.Repeat("a", DefaultMaxPasswordBytes+1)
	if _, err := hasher.Verify(long, hash); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestCustomMinimumApplied(t *testing.T) {
	cfg := secureConfig()
	cfg.MinPasswordBytes = 12
	hasher, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := hasher.Hash("elevenchars"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected 11-byte password to be rejected, got %v", err)
	}
	if _, err := hasher.Hash("twelve-chars"); err != nil {
		t.Fatalf("expected 12-byte password to be accepted: %v", err)
	}
}
