package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/geo"
	"github.com/eventatlas/portalfeed/server"
	"github.com/eventatlas/portalfeed/server/middlewares"
	"github.com/eventatlas/portalfeed/utils"
	"github.com/eventatlas/portalfeed/utils/dotenv"
	Flag "github.com/eventatlas/portalfeed/utils/flag"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Logger.Log.Info("api server shutdown")
}

func main() {
	defer cleanup()

	Flag.ParseFlags()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	// Reinitialize with parsed flags and loaded env so the service tag and
	// Datadog hook are right.
	Logger.InitLogger()

	utils.StartTracer()
	utils.StartProfiler()

	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)

	env := &server.HandlerEnv{
		DB:       db,
		Resolver: federation.NewResolver(db),
	}

	// The snapshot cache is optional: without redis the feed is rendered on
	// every request.
	if snapshots, err := utils.GetFeedSnapshotStore(); err != nil {
		Logger.Log.Warnf("feed snapshot cache disabled: %v", err)
	} else {
		env.Snapshots = snapshots
	}

	// Neighborhood boundary data is optional as well; without it the nearby
	// endpoint accepts any neighborhood filter.
	if path := os.Getenv("BOUNDARY_DATA_PATH"); path != "" {
		env.Boundaries = geo.NewBoundaryCache(geo.FileLoader(path))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(gintrace.Middleware(Flag.ServiceName))
	router.Use(middlewares.RequestId())
	router.Use(middlewares.RequestLogger())

	server.RegisterRoutes(router, env)

	Logger.Log.Info("api server starts up")
	router.Run(":8080")
}
