// Package main provides churchctl, the church-web authorization server and
// its command line tools.
//
// The server answers which role may do what to which resource, which pages
// need a login and which navigation links a role should see. The web client
// asks it over HTTP; reverse proxies in front of the REST backend use its
// /gate endpoint for forward-auth.
//
// # Quick Start
//
//	# Run database migrations
//	churchctl db migrate
//
//	# Create the first administrator
//	churchctl user create --name "Admin" --phone 11999990000 --role admin
//
//	# Start the server with a policy file that reloads on change
//	churchctl server --policy /etc/church/policy.yml --watch
//
//	# Ask a question without a server
//	churchctl check leader members update
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - CHURCH_TOKEN_SECRET: HMAC key for session tokens (at least 32 bytes)
//   - CHURCH_POLICY_PATH: Policy file (default: built-in policy)
//   - CHURCH_LOG_LEVEL: Log level (debug, info, warn, error)
//   - CHURCH_PORT: Server port (default: 8080)
//   - AUDIT_DATABASE_URL: Optional database for audit messages
package main
