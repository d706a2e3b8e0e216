package projector

import (
	"context"
	"time"

	Logger "github.com/eventatlas/portalfeed/utils/log"
)

// GracefulRetryDelay is how long a crashed module waits before restarting.
const GracefulRetryDelay = 3 * time.Second

// Module is a long-running unit of the projector. Its lifetime is bound to
// the engine's root context.
type Module interface {
	// RunModule blocks until the module finishes or the context is canceled.
	// A non-nil error asks the engine to restart the module.
	RunModule(ctx context.Context) error

	// Name uniquely identifies the module instance. Two instances of the same
	// module must not share a name.
	Name() string

	// Shutdown releases any resource the module holds. Called once during
	// engine shutdown, after the root context is canceled.
	Shutdown()
}

// RunModuleWithGracefulRestart reruns the module after a short delay whenever
// it exits with an error, until it exits cleanly or the context ends.
func RunModuleWithGracefulRestart(ctx context.Context, module Module) {
	for {
		err := module.RunModule(ctx)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		Logger.Log.Errorf("module %s exited with error %v, retry in %s",
			module.Name(), err, GracefulRetryDelay)
		time.Sleep(GracefulRetryDelay)
	}
}
