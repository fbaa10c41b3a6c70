// Package config defines the sigstream-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: copy with secrets masked, for logging
//
// Values are loaded through internal/infra/confloader on top of Default().
package config
