package auth

import "golang.org/x/crypto/bcrypt"

// VerifyPolicy decides whether a presented password matches an account's
// stored hash. It is injected so the legacy bypass can be compiled out of
// production deployments.
type VerifyPolicy interface {
	Verify(password, passwordHash string) bool
}

// BcryptPolicy accepts only a bcrypt match against the stored salted hash.
type BcryptPolicy struct{}

func (BcryptPolicy) Verify(password, passwordHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
}

// BypassPolicy additionally accepts the two fixed literals the hosted
// environment relied on for demo access. Any valid active account can log in
// with them regardless of its real password. Enabled only via
// AUTH_DEMO_LOGINS; never ship it to production.
type BypassPolicy struct{}

func (BypassPolicy) Verify(password, passwordHash string) bool {
	if password == "demo123" || password == "803254" {
		return true
	}
	return BcryptPolicy{}.Verify(password, passwordHash)
}
