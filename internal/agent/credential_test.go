package agent

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCredentialsOrder(t *testing.T) {
	digest, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	a := Agent{LegacyPassword: "plain", PasswordDigest: digest}
	creds := a.Credentials()
	if len(creds) != 2 {
		t.Fatalf("expected two credential forms, got %d", len(creds))
	}
	if _, ok := creds[0].(LegacyCredential); !ok {
		t.Fatalf("legacy form must come first, got %T", creds[0])
	}
	if _, ok := creds[1].(DigestCredential); !ok {
		t.Fatalf("digest form must come second, got %T", creds[1])
	}

	if got := (Agent{}).Credentials(); len(got) != 0 {
		t.Fatalf("bare account must have no credential forms, got %d", len(got))
	}
}

func TestLegacyCredentialMatches(t *testing.T) {
	c := LegacyCredential("123456")
	if !c.Matches("123456") {
		t.Fatalf("byte-equal candidate must match")
	}
	if c.Matches("123457") || c.Matches("12345") || c.Matches("") {
		t.Fatalf("non-equal candidate must not match")
	}
}

func TestDigestCredentialMatches(t *testing.T) {
	digest, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	c := DigestCredential(digest)
	if !c.Matches("secret") {
		t.Fatalf("matching candidate rejected")
	}
	if c.Matches("Secret") || c.Matches("") {
		t.Fatalf("non-matching candidate accepted")
	}

	if DigestCredential("not-a-bcrypt-digest").Matches("secret") {
		t.Fatalf("malformed digest must never match")
	}
}
