// Package config resolves AMap credentials and log settings from environment
// variables or a TOML config file, with precedence: environment > file >
// environment fallback with defaults. It exposes one immutable snapshot per
// process through an init-once, reloadable Manager.
package config
