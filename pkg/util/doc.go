// Package util provides small generic helpers shared across the wizard
// engine, including a set implementation used by the state transition
// tables and the server's socket registry
package util
