// Package confloader loads layered configuration with koanf.
//
// Sources are applied in order, later ones winning:
//
//  1. values already present in the target struct (defaults)
//  2. a YAML file
//  3. environment variables (SIGSTREAM_ prefix by default)
//  4. explicit overrides passed through LoadMap, typically CLI flags
//
// Watcher reports writes to the configuration file so callers can
// re-read the settings that are safe to change at runtime.
package confloader
