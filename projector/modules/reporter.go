package modules

import (
	"context"
	"encoding/json"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/eventatlas/portalfeed/projector"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

type ReporterConfig struct {
	// Name of the reporter.
	Name string
}

// Reporter aggregates refresh outcomes into Datadog counters so staleness and
// failure rates are visible per portal.
type Reporter struct {
	Config ReporterConfig

	Statsd statsd.ClientInterface

	EventBus *gochannel.GoChannel
}

func NewReporter(config ReporterConfig, statsd statsd.ClientInterface, e *gochannel.GoChannel) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// ReportRefreshOutcome bumps the ok or fail counter, tagged with the portal.
func ReportRefreshOutcome(outcome *projector.RefreshOutcome, statsd statsd.ClientInterface) {
	counter := projector.DDOG_REFRESH_OK_COUNTER
	if !outcome.Ok {
		counter = projector.DDOG_REFRESH_FAIL_COUNTER
	}
	if err := statsd.Incr(counter, []string{"portal:" + outcome.PortalID}, 1); err != nil {
		Logger.Log.Infoln("cannot report refresh outcome")
	}
}

func (r *Reporter) ProcessRefreshOutcomes(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, projector.TOPIC_REFRESH_OUTCOME)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		var outcome projector.RefreshOutcome
		if err := json.Unmarshal(msg.Payload, &outcome); err != nil {
			Logger.Log.Errorf("%s cannot decode refresh outcome: %v", r.Config.Name, err)
			continue
		}

		ReportRefreshOutcome(&outcome, r.Statsd)
	}

	return nil
}

func (r *Reporter) RunModule(ctx context.Context) error {
	return r.ProcessRefreshOutcomes(ctx)
}

func (r *Reporter) Name() string {
	return r.Config.Name
}

func (r *Reporter) Shutdown() {}
