package app

import (
	"context"

	"github.com/pbooth01/cli2ansible/internal/application/clean"
	"github.com/pbooth01/cli2ansible/internal/application/compile"
	"github.com/pbooth01/cli2ansible/internal/application/ingest"
	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/ai"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/ansible"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/capture"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/config"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/objectstore"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/store"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/translator"
	"github.com/pbooth01/cli2ansible/internal/pkg/logger"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	Logger         ports.Logger

	IngestService  *ingest.Service
	CompileService *compile.Service
	CleanService   *clean.Service

	Repo        ports.SessionRepository
	ObjectStore ports.ObjectStore
	Parser      ports.CaptureParser
	Cleaner     ports.Cleaner

	sqlStore *store.SQLiteStore
}

// BuildContainer constructs the dependency graph from the resolved
// configuration. CleanService.Cleaner is nil when no provider is configured.
func BuildContainer(ctx context.Context, configPath string) (*Container, error) {
	cfgLoader := config.NewFileLoader(configPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.Level)

	repo, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	objects, err := objectstore.NewFileStore(cfg.Storage.ArtifactDir, "")
	if err != nil {
		repo.Close()
		return nil, err
	}

	parser := capture.NewParser(cfg.Parser)

	cleaner, err := ai.NewFactory().ForSettings(cfg.Cleaner)
	if err != nil {
		repo.Close()
		return nil, err
	}

	ingestService := &ingest.Service{
		Repo:           repo,
		Parser:         parser,
		Store:          objects,
		Logger:         log,
		MaxUploadBytes: cfg.Parser.MaxUploadBytes,
	}
	compileService := &compile.Service{
		Repo:       repo,
		Translator: translator.NewRulesEngine(),
		Generator:  ansible.NewGenerator(),
		Store:      objects,
		Logger:     log,
	}
	cleanService := &clean.Service{
		Repo:        repo,
		Cleaner:     cleaner,
		MaxCommands: cfg.Cleaner.MaxCommands,
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		Logger:         log,
		IngestService:  ingestService,
		CompileService: compileService,
		CleanService:   cleanService,
		Repo:           repo,
		ObjectStore:    objects,
		Parser:         parser,
		Cleaner:        cleaner,
		sqlStore:       repo,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.sqlStore != nil {
		return c.sqlStore.Close()
	}
	return nil
}
