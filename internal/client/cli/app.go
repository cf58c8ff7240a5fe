// Package cli is the interactive shell of the catalog client. It plays the
// role of the mobile navigation shell: it withholds the first prompt until
// the session gate has resolved, and routes commands to the services.
package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/jpalacios/herbascan/internal/client/api"
	"github.com/jpalacios/herbascan/internal/client/config"
	"github.com/jpalacios/herbascan/internal/client/repositories"
	"github.com/jpalacios/herbascan/internal/client/repositories/metadata"
	"github.com/jpalacios/herbascan/internal/client/services"
	"github.com/jpalacios/herbascan/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	client  api.Client
	gate    *services.SessionGate
	catalog *services.CatalogService
	scans   *services.ScanController
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := repositories.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.BaseURL, c.RequestTimeout)
	store := metadata.NewSQLiteRepository(db)

	return &App{
		config:  c,
		client:  apiClient,
		gate:    services.NewSessionGate(apiClient, store, logger),
		catalog: services.NewCatalogService(apiClient, logger),
		scans:   services.NewScanController(),
		log:     logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.Root(ctx)
}
