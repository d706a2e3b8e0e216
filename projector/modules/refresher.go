package modules

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/projector"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

type RefresherConfig struct {
	// Name of the refresher.
	Name string
}

// Refresher consumes refresh requests and rebuilds the named portal's access
// projection, publishing an outcome per attempt. Requests may be processed
// concurrently: each refresh replaces the portal's rows wholesale inside a
// transaction, so the last writer wins and no interleaving is visible.
type Refresher struct {
	Config RefresherConfig

	Resolver *federation.Resolver

	EventBus *gochannel.GoChannel
}

func NewRefresher(config RefresherConfig, resolver *federation.Resolver, e *gochannel.GoChannel) *Refresher {
	return &Refresher{
		Config:   config,
		Resolver: resolver,
		EventBus: e,
	}
}

func (r *Refresher) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, projector.TOPIC_REFRESH_REQUEST)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		var req projector.RefreshRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Logger.Log.Errorf("%s cannot decode refresh request: %v", r.Config.Name, err)
			continue
		}

		go r.refreshAndPublish(&req)
	}

	return nil
}

// refreshAndPublish performs one refresh and reports the outcome on the bus.
// A failed refresh is an outcome, not a module error: one bad portal must not
// restart the whole module.
func (r *Refresher) refreshAndPublish(req *projector.RefreshRequest) {
	start := time.Now()
	err := r.Resolver.RefreshPortalAccess(req.PortalID)

	outcome := projector.RefreshOutcome{
		PortalID:   req.PortalID,
		Ok:         err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		outcome.Error = err.Error()
		Logger.Log.Errorf("refresh failed for portal %s: %v", req.PortalID, err)
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		Logger.Log.Errorf("cannot encode refresh outcome for portal %s: %v", req.PortalID, err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := r.EventBus.Publish(projector.TOPIC_REFRESH_OUTCOME, msg); err != nil {
		Logger.Log.Errorf("cannot publish refresh outcome for portal %s: %v", req.PortalID, err)
	}
}

func (r *Refresher) Name() string {
	return r.Config.Name
}

func (r *Refresher) Shutdown() {}
