// Package auth implements credential storage, token issuance and per-request identity resolution.
//
// # Credentials
//
// [Credentials] hashes and verifies passwords with bcrypt. Every hash carries its own random salt,
// so hashing the same password twice yields two different strings that both verify.
//
// # Tokens
//
// [Tokens] issues HS256 JWTs carrying a single userId claim and an expiry two hours after issuance.
// Tokens are stateless: validity is decided by signature and expiry alone. Verification failures are
// reported as [*TokenError] values whose Kind is Malformed, InvalidSignature or Expired.
//
// The signing secret is handed to [NewTokens] once at startup; an empty secret is refused.
//
// # Identity resolution
//
// [Resolver.Resolve] turns an Authorization header into a [models.User]:
//
//	header ── BearerToken ──▶ token ── Tokens.Verify ──▶ claims ── UserFinder.Get ──▶ user
//
// Each step either yields the next value or stops with one of [ErrUnauthorized], a [*TokenError],
// [ErrUserNotFound] or [ErrStoreFailure]. The HTTP middleware in package server maps those to responses
// and stores the user with [WithUser]. Handlers read it back with [UserFromContext] and scope every
// query by its id.
package auth
