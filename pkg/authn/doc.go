// Package authn provides phone and password login for church-web users.
//
// A successful Login returns a Session whose access token is an HS256 JWT.
// The token carries the user's role credentials, so every later request is
// authorized from the token alone; a role change takes effect at the next
// login.
//
// # Claims
//
//   - sub: User ID
//   - role: Role credentials as assigned by the backend
//   - name: Display name
//   - jti: Session ID (random UUID)
//   - iat, exp: Issue and expiry time
//   - iss: Configured issuer
package authn
