// Package config provides configuration management for the church-web
// authorization service.
//
// # Configuration Sources
//
// Each attribute is resolved in order, later sources winning:
//
//   - Built-in defaults
//   - The configuration file ${CHURCH_CONFIG_PATH:-/etc/church}/church.yml
//   - Environment variables
//
// Config.Source reports which of "default", "file" or "environment" supplied
// an attribute.
//
// # Key Configuration Options
//
//   - CHURCH_PORT, CHURCH_LISTEN_ADDRESS: Server listen address
//   - CHURCH_POLICY_PATH: Permission policy file (built-in policy if unset)
//   - CHURCH_ALLOWED_ORIGINS: Web client origins allowed by CORS
//   - CHURCH_LOG_LEVEL: Logging verbosity
//   - CHURCH_TOKEN_SECRET: Session token signing key (environment only)
//   - DATABASE_URL: Database connection (environment only)
//   - AUDIT_DATABASE_URL: Audit message database (environment only)
package config
