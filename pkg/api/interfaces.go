// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/freed/pkg/capture"
)

// CaptureStore defines the frame capture operations the API needs
type CaptureStore interface {
	Put(frame []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*capture.Entry, error)
	List(limit int) ([]capture.Entry, error)
	Delete(id ksuid.KSUID) error
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer runs the API server until ctx is cancelled
	StartServer(ctx context.Context, config ServerConfig, store CaptureStore, log zerolog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
