package agent

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credential is one verifiable form of an account secret.
type Credential interface {
	Matches(candidate string) bool
}

// LegacyCredential is a plaintext password retained from the pre-digest
// scheme. Accounts migrated from the old deployment may still carry one; this
// subsystem never writes it.
type LegacyCredential string

// Matches compares the candidate byte for byte.
func (c LegacyCredential) Matches(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(c), []byte(candidate)) == 1
}

// DigestCredential is a bcrypt digest written by the registration path.
type DigestCredential []byte

// Matches runs a bcrypt comparison against the candidate.
func (c DigestCredential) Matches(candidate string) bool {
	return bcrypt.CompareHashAndPassword(c, []byte(candidate)) == nil
}

// Credentials returns the verifiable forms present on the account in
// evaluation order: the legacy plaintext form first, then the digest. An
// unauthenticable account (neither form set) yields an empty slice.
func (a Agent) Credentials() []Credential {
	var creds []Credential
	if a.LegacyPassword != "" {
		creds = append(creds, LegacyCredential(a.LegacyPassword))
	}
	if len(a.PasswordDigest) > 0 {
		creds = append(creds, DigestCredential(a.PasswordDigest))
	}
	return creds
}

// CredentialMatches applies the match-first-then-fallback policy: a matching
// legacy password accepts without consulting the digest; a non-matching one
// falls through to the digest comparison.
func (a Agent) CredentialMatches(candidate string) bool {
	for _, cred := range a.Credentials() {
		if cred.Matches(candidate) {
			return true
		}
	}
	return false
}
