// Package auth provides authentication and authorisation for vncman:
// bcrypt password hashing, JWT access token issuance and validation,
// user account persistence, and the admin bootstrap.
//
// The Service type ties these together: handlers call Login to exchange
// credentials for a token, CurrentUser to resolve a bearer token back to
// an account, and RequireAdmin to gate admin-only operations.
package auth
