package projector

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	name      string
	runs      int32
	shutdowns int32
}

func (f *fakeModule) RunModule(ctx context.Context) error {
	atomic.AddInt32(&f.runs, 1)
	<-ctx.Done()
	return nil
}

func (f *fakeModule) Name() string { return f.name }

func (f *fakeModule) Shutdown() {
	atomic.AddInt32(&f.shutdowns, 1)
}

func TestEngineRunAndShutdown(t *testing.T) {
	eventbus := gochannel.NewGoChannel(
		gochannel.Config{}, watermill.NewStdLogger(false, false))
	ctx, cancel := context.WithCancel(context.Background())

	first := &fakeModule{name: "first"}
	second := &fakeModule{name: "second"}
	engine := NewEngine([]Module{first, second}, ctx, cancel, eventbus)

	done := make(chan struct{})
	go func() {
		engine.Run()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&first.runs) == 1 && atomic.LoadInt32(&second.runs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	engine.Shutdown()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after shutdown")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&first.shutdowns))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second.shutdowns))
}

func TestRunModuleStopsOnCleanExit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &fakeModule{name: "clean"}

	done := make(chan struct{})
	go func() {
		RunModuleWithGracefulRestart(ctx, m)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("module loop did not exit on clean return")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.runs))
}
