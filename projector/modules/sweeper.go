package modules

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"github.com/eventatlas/portalfeed/projector"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

type SweeperConfig struct {
	// Name of the sweeper.
	Name string

	// Seconds between full sweeps.
	SweepEverySecond int64
}

// Sweeper periodically publishes one refresh request per active portal. It is
// the safety net that bounds projection staleness: even if a writer skipped
// its synchronous refresh, the next sweep repairs the projection.
type Sweeper struct {
	Config SweeperConfig

	DB *gorm.DB

	EventBus *gochannel.GoChannel
}

func NewSweeper(config SweeperConfig, db *gorm.DB, e *gochannel.GoChannel) *Sweeper {
	return &Sweeper{
		Config:   config,
		DB:       db,
		EventBus: e,
	}
}

// SweepOnce fans one refresh request per active portal onto the event bus and
// returns how many it published.
func (s *Sweeper) SweepOnce() (int, error) {
	ids, err := projector.ActivePortalIDs(s.DB)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		payload, err := json.Marshal(projector.RefreshRequest{PortalID: id, Sweep: true})
		if err != nil {
			return 0, err
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := s.EventBus.Publish(projector.TOPIC_REFRESH_REQUEST, msg); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (s *Sweeper) RunModule(ctx context.Context) error {
	// Sweep at startup so a fresh deployment converges without waiting a full
	// interval.
	if _, err := s.SweepOnce(); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(s.Config.SweepEverySecond) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			count, err := s.SweepOnce()
			if err != nil {
				return err
			}
			Logger.Log.Infof("%s requested refresh for %d portals", s.Config.Name, count)
		}
	}
}

func (s *Sweeper) Name() string {
	return s.Config.Name
}

func (s *Sweeper) Shutdown() {}
