package projector

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	Logger "github.com/eventatlas/portalfeed/utils/log"
)

// Engine runs the projector modules and owns the event bus they share.
type Engine struct {
	// Modules run for the engine's whole lifetime, one goroutine each.
	Modules []Module

	// Root context the modules run under.
	ctx context.Context

	// Cancels the root context; drives graceful shutdown.
	cancel context.CancelFunc

	// In-process event bus shared by all modules. A channel implementation is
	// enough for a single projector instance; a brokered bus can slot in here
	// if the projector ever runs sharded.
	EventBus *gochannel.GoChannel
}

func NewEngine(ms []Module, ctx context.Context, cancel context.CancelFunc, e *gochannel.GoChannel) *Engine {
	return &Engine{
		Modules:  ms,
		ctx:      ctx,
		cancel:   cancel,
		EventBus: e,
	}
}

// Run executes every module and blocks until all of them finish.
func (e *Engine) Run() {
	var wg sync.WaitGroup
	for idx := range e.Modules {
		wg.Add(1)
		go func(m Module) {
			defer wg.Done()
			Logger.Log.Infof("starting module %s", m.Name())
			RunModuleWithGracefulRestart(e.ctx, m)
			Logger.Log.Infof("module %s finished execution", m.Name())
		}(e.Modules[idx])
	}
	wg.Wait()
}

// Shutdown cancels the root context and waits for every module to clean up.
func (e *Engine) Shutdown() {
	Logger.Log.Infoln("starting graceful shutdown")
	e.cancel()

	var wg sync.WaitGroup
	for idx := range e.Modules {
		wg.Add(1)
		go func(m Module) {
			defer wg.Done()
			m.Shutdown()
			Logger.Log.Infof("module %s shut down", m.Name())
		}(e.Modules[idx])
	}
	wg.Wait()
}
