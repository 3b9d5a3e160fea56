package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/clientlibs"
	"github.com/rajramo61/aem-core-wcm-components/internal/config"
	"github.com/rajramo61/aem-core-wcm-components/internal/services"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
	"github.com/rajramo61/aem-core-wcm-components/internal/store/local"
	"github.com/rajramo61/aem-core-wcm-components/internal/store/primary"
)

// DataStore is the full surface both store implementations provide.
type DataStore interface {
	store.ResourceStore
	store.PageStore
	store.LibraryStore
	store.ResolverFactory
	store.JobStore
}

type App struct {
	Config *config.Config

	Store     DataStore
	Resources store.ResourceStore
	Pages     store.PageStore
	Libraries store.LibraryStore
	Resolvers store.ResolverFactory
	Jobs      store.JobStore
	JobClient store.JobClient

	Manager    *clientlibs.Manager
	Provider   *clientlibs.FSProvider
	Aggregator *services.AggregatorService

	closeStore func()
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initClientLibs(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initAggregator()

	log.Println("Service wiring complete.")
	return app, nil
}

func (a *App) initStore(ctx context.Context) error {
	switch a.Config.Database.Driver {
	case "postgres":
		ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.DSN)
		if err != nil {
			return fmt.Errorf("init primary store: %w", err)
		}
		a.Store = ps
		a.closeStore = ps.Close
	case "sqlite":
		ls, err := local.NewStore(ctx, a.Config.Database.DSN)
		if err != nil {
			return fmt.Errorf("init local store: %w", err)
		}
		a.Store = ls
		a.closeStore = func() {
			if err := ls.Close(); err != nil {
				log.Errorf("Closing local store: %v", err)
			}
		}
	default:
		return fmt.Errorf("unknown database driver: %s", a.Config.Database.Driver)
	}

	a.Resources = a.Store
	a.Pages = a.Store
	a.Libraries = a.Store
	a.Resolvers = a.Store
	a.Jobs = a.Store
	return nil
}

func (a *App) initJobClient() error {
	jc, err := store.NewAsynqJobClient(a.Config.Redis.Address, a.Config.Redis.Password, a.Config.Redis.DB, a.Jobs)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

func (a *App) initClientLibs(ctx context.Context) error {
	a.Manager = clientlibs.NewManager(clientlibs.ManagerDeps{
		Store:        a.Libraries,
		Minify:       a.Config.ClientLibs.Minify,
		CacheEnabled: a.Config.ClientLibs.CacheEnabled,
	})

	if len(a.Config.ClientLibs.SearchPaths) == 0 {
		return nil
	}
	a.Provider = clientlibs.NewFSProvider(a.Libraries, a.Config.ClientLibs.SearchPaths, func() {
		a.Manager.Invalidate(context.Background())
	})
	if err := a.Provider.LoadAll(ctx); err != nil {
		return fmt.Errorf("load client libraries: %w", err)
	}
	return nil
}

func (a *App) initAggregator() {
	a.Aggregator = services.NewAggregatorService(services.AggregatorServiceDeps{
		Manager:           a.Manager,
		Resolvers:         a.Resolvers,
		ResourceTypeRegex: a.Config.ClientLibs.ResourceTypeRegex,
	})
}

func (a *App) cleanupPartialInit() {
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.Errorf("Closing job client: %v", err)
		}
	}
	if a.closeStore != nil {
		a.closeStore()
	}
}

// Close releases the app's connections. Safe to call once after NewApp
// succeeded.
func (a *App) Close() {
	a.cleanupPartialInit()
}
