// Package users provides account management primitives (registration,
// credential login, opaque bearer tokens, role-based access control) backed
// by Bun repositories.
//
// Accounts and credentials:
//   - Users carry a bcrypt password digest that never leaves the package;
//     HashPassword and ComparePasswordAndHash are the only code paths that
//     touch it. Malformed digests are reported as a plain mismatch so login
//     failures stay indistinguishable from the outside.
//   - Registration, login, and logout run through Authenticator. Every
//     registration is transactional: user row, default role membership, and
//     the first access token commit or roll back together.
//
// Tokens:
//   - Access tokens are opaque random strings. Only a SHA-256 digest is
//     persisted; the plaintext is returned exactly once at issue time.
//     Logging in revokes all previously issued tokens for the account.
//   - TokenMiddleware resolves the Authorization header against the token
//     store and injects the owning user into the request context.
//
// Roles:
//   - Role membership is many-to-many with an idempotent assign/remove
//     surface, plus a wholesale Sync used by the admin update workflow.
//     RequireRole and Can gate routes and arbitrary code on membership and
//     permissions.
package users
