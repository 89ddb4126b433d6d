package internal

import "testing"

func TestMailTokenIDRoundTrip(t *testing.T) {
	id, err := NewMailTokenID()
	if err != nil {
		t.Fatalf("NewMailTokenID failed: %v", err)
	}

	parsed, err := ParseMailTokenID(id.String())
	if err != nil {
		t.Fatalf("ParseMailTokenID failed: %v", err)
	}
	if parsed != id {
		t.Fatal("round-tripped ID differs")
	}
}

func TestParseMailTokenIDRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not base64url!!", "AAAA"} {
		if _, err := ParseMailTokenID(in); err == nil {
			t.Fatalf("expected %q rejected", in)
		}
	}
}

func TestMailTokenEncodeDecode(t *testing.T) {
	id, err := NewMailTokenID()
	if err != nil {
		t.Fatalf("NewMailTokenID failed: %v", err)
	}
	secret, err := NewMailSecret()
	if err != nil {
		t.Fatalf("NewMailSecret failed: %v", err)
	}

	token, err := EncodeMailToken(id.String(), secret)
	if err != nil {
		t.Fatalf("EncodeMailToken failed: %v", err)
	}

	gotID, gotSecret, err := DecodeMailToken(token)
	if err != nil {
		t.Fatalf("DecodeMailToken failed: %v", err)
	}
	if gotID != id.String() {
		t.Fatal("decoded token ID differs")
	}
	if gotSecret != secret {
		t.Fatal("decoded secret differs")
	}
}

func TestDecodeMailTokenRejectsWrongSize(t *testing.T) {
	for _, in := range []string{"", "AAAA", "!!!!"} {
		if _, _, err := DecodeMailToken(in); err == nil {
			t.Fatalf("expected %q rejected", in)
		}
	}
}

func TestHashMailSecretIsDeterministic(t *testing.T) {
	secret, err := NewMailSecret()
	if err != nil {
		t.Fatalf("NewMailSecret failed: %v", err)
	}
	if HashMailSecret(secret) != HashMailSecret(secret) {
		t.Fatal("hash must be deterministic")
	}

	other, err := NewMailSecret()
	if err != nil {
		t.Fatalf("NewMailSecret failed: %v", err)
	}
	if HashMailSecret(secret) == HashMailSecret(other) {
		t.Fatal("distinct secrets must not collide")
	}
}
