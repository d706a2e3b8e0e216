package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/eventatlas/portalfeed/app_config"
	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/projector"
	"github.com/eventatlas/portalfeed/projector/modules"
	"github.com/eventatlas/portalfeed/utils"
	"github.com/eventatlas/portalfeed/utils/dotenv"
	Flag "github.com/eventatlas/portalfeed/utils/flag"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

var (
	AppConfigPath *string
	// Configuration to customize binary startup.
	AppConfig app_config.ProjectorAppConfig
)

func init() {
	AppConfigPath = flag.String("app_config_path", "cmd/projector/config.yaml", "path to projector app config")
}

func NewDogStatsdClient(addr string) *statsd.Client {
	client, err := statsd.New(addr)
	if err != nil {
		panic(err)
	}
	return client
}

func main() {
	Flag.ParseFlags()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	Logger.InitLogger()

	AppConfig = app_config.ParseProjectorAppConfig(*AppConfigPath)

	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)

	eventbus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            AppConfig.CHANNEL_BUFFER_SIZE,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)
	ctx, cancel := context.WithCancel(context.Background())

	resolver := federation.NewResolver(db)

	// Initialize all engine modules here.
	ms := []projector.Module{
		// Reporter turns refresh outcomes into Datadog counters.
		modules.NewReporter(
			modules.ReporterConfig{Name: "reporter"},
			NewDogStatsdClient(AppConfig.STATSD_ADDR),
			eventbus,
		),
		// Refresher rebuilds one portal's access projection per request.
		modules.NewRefresher(
			modules.RefresherConfig{Name: "refresher"},
			resolver,
			eventbus,
		),
		// Sweeper fans a refresh request per active portal onto the bus.
		modules.NewSweeper(
			modules.SweeperConfig{
				Name:             "sweeper",
				SweepEverySecond: AppConfig.SWEEP_EVERY_SECOND,
			},
			db,
			eventbus,
		),
	}

	engine := projector.NewEngine(ms, ctx, cancel, eventbus)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		engine.Shutdown()
	}()

	// blocking call.
	engine.Run()

	Logger.Log.Infoln("engine stopped execution.")
}
