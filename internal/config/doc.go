// Package config loads the career coach configuration from defaults, an
// optional YAML file and COACH_-prefixed environment variables, and validates
// it before any component is built.
package config
