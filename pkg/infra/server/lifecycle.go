// Package server runs HTTP servers and background components under one
// lifecycle with graceful shutdown.
package server

import "context"

// Lifecycle defines the lifecycle interface for servers.
type Lifecycle interface {
	// Start starts the server. It must return once the server accepts work.
	Start(ctx context.Context) error
	// Stop stops the server gracefully.
	Stop(ctx context.Context) error
}

// Runnable represents a component that can be started and stopped.
type Runnable interface {
	Lifecycle
	// Name returns the server name for identification.
	Name() string
}

// ShutdownHook releases a resource after every server has stopped.
type ShutdownHook func(ctx context.Context) error
