// Package api defines the shared types exchanged between the wizard engine,
// its persistence and remote boundaries, and the HTTP surface
package api
