// Package application provides application initialization and dependency
// wiring. It resolves runtime parameters from the environment, assembles the
// map client, handlers, router, and HTTP server, and keeps the main package
// focused on CLI parsing and process lifecycle.
package application
