// Package commands implements the tablescope subcommands.
package commands

import (
	"context"
	"io"

	"github.com/koustreak/tablescope/internal/backend"
	"github.com/koustreak/tablescope/internal/config"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/filestore/minio"
	"github.com/koustreak/tablescope/internal/logger"
)

// Runtime is what every command gets from the root command: the loaded
// configuration and a logger built from it.
type Runtime struct {
	Config *config.Config
	Log    *logger.Logger

	logCloser io.Closer
}

// NewRuntime wraps cfg and log. closer, if set, is closed by Close.
func NewRuntime(cfg *config.Config, log *logger.Logger, closer io.Closer) *Runtime {
	if log == nil {
		log = logger.Nop()
	}
	return &Runtime{Config: cfg, Log: log, logCloser: closer}
}

// Close releases the log output.
func (rt *Runtime) Close() error {
	if rt.logCloser == nil {
		return nil
	}
	err := rt.logCloser.Close()
	rt.logCloser = nil
	return err
}

// Backend creates a client for the configured backend.
func (rt *Runtime) Backend() (*backend.Client, error) {
	return backend.New(rt.Config.BackendClient(), rt.Log)
}

type runtimeKey struct{}

// WithRuntime stores rt in ctx.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// RuntimeFrom returns the runtime stored in ctx, or one with the default
// configuration when there is none.
func RuntimeFrom(ctx context.Context) *Runtime {
	if rt, ok := ctx.Value(runtimeKey{}).(*Runtime); ok {
		return rt
	}
	return NewRuntime(config.Default(), logger.FromContext(ctx), nil)
}

// openStore connects to the configured object store. Replaced in tests.
var openStore = func(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
	d, err := minio.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}
