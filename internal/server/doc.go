// Package server implements the HTTP API for the intake engine
//
// This package provides REST endpoints for wizard session commands, draft
// management, health checks, Prometheus metrics, and WebSocket event
// streaming
package server
