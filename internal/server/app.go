// Package server assembles the storage backend from configuration: logger,
// metadata and blob stores with their retry policy, the envelope cipher,
// quota accounting and the services built on top of them.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securestorage/internal/cryptox"
	"github.com/dmitrijs2005/securestorage/internal/logging"
	"github.com/dmitrijs2005/securestorage/internal/retryx"
	"github.com/dmitrijs2005/securestorage/internal/server/blobs"
	"github.com/dmitrijs2005/securestorage/internal/server/config"
	"github.com/dmitrijs2005/securestorage/internal/server/identity"
	"github.com/dmitrijs2005/securestorage/internal/server/quota"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/files"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securestorage/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Seams for tests.
var (
	openDB      = sql.Open
	openS3Store = func(ctx context.Context, c blobs.S3Config) (blobs.Store, error) {
		return blobs.NewS3Store(ctx, c)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	closers []io.Closer

	Files    *services.FileService
	Accounts *services.AccountService
	Sessions *services.SessionService
}

// NewApp wires every component selected by c. The master key is resolved
// once here and held by the cipher for the life of the App.
func NewApp(ctx context.Context, c *config.Config) (app *App, err error) {
	logger, logCloser, err := logging.New(c.Log)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app = &App{config: c, logger: logger, closers: []io.Closer{logCloser}}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	policy := retryx.Policy{
		Retries: uint64(c.StoreRetries),
		Base:    c.StoreRetryBase,
		Timeout: c.StoreTimeout,
	}

	repo, err := app.initMetadata(c)
	if err != nil {
		return nil, err
	}
	store, err := app.initBlobs(ctx, c)
	if err != nil {
		return nil, err
	}

	masterKey, err := cryptox.LoadMasterKey(c.MasterKey, c.MasterKeyPassphrase, c.MasterKeySalt)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	cipher, err := cryptox.NewEnvelopeCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}

	retryingRepo := files.NewRetryingRepository(repo, policy)
	fs := services.NewFileService(
		retryingRepo,
		blobs.NewRetryingStore(store, policy),
		cipher,
		quota.NewAccountant(retryingRepo, c.StorageQuota),
		logger,
	)

	var provider identity.Provider = identity.NoopProvider{}
	sessions := services.NewSessionService(nil, nil, c.SecretKey, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if app.db != nil {
		provider = identity.NewPostgresProvider(app.db, app.manager)
		sessions = services.NewSessionService(
			app.manager.Users(app.db),
			app.manager.RefreshTokens(app.db),
			c.SecretKey, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration,
		)
	}

	app.Files = fs
	app.Accounts = services.NewAccountService(fs, provider, logger)
	app.Sessions = sessions

	logger.Info(ctx, "storage backend ready",
		"metadata_backend", c.MetadataBackend, "blob_backend", c.BlobBackend, "quota_bytes", c.StorageQuota)
	return app, nil
}

func (app *App) initMetadata(c *config.Config) (files.Repository, error) {
	switch c.MetadataBackend {
	case config.BackendPostgres:
		db, err := openDB("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.manager = repomanager.NewPostgresRepositoryManager()
		app.closers = append(app.closers, db)
		return app.manager.Files(db), nil

	case config.BackendBolt:
		repo, err := files.OpenBoltRepository(c.BoltPath, app.logger)
		if err != nil {
			return nil, fmt.Errorf("bolt init error: %w", err)
		}
		app.closers = append(app.closers, repo)
		return repo, nil

	case config.BackendMemory:
		return files.NewMemoryRepository(), nil
	}
	return nil, fmt.Errorf("unknown metadata backend %q", c.MetadataBackend)
}

func (app *App) initBlobs(ctx context.Context, c *config.Config) (blobs.Store, error) {
	switch c.BlobBackend {
	case config.BlobBackendS3:
		store, err := openS3Store(ctx, blobs.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		return store, nil

	case config.BlobBackendMemory:
		return blobs.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
}

func (app *App) Logger() logging.Logger { return app.logger }

// Migrate applies the schema migrations. Backends without a schema have
// nothing to do.
func (app *App) Migrate(ctx context.Context) error {
	if app.db == nil {
		app.logger.Info(ctx, "no migrations for backend", "metadata_backend", app.config.MetadataBackend)
		return nil
	}
	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return err
	}
	app.logger.Info(ctx, "migrations applied")
	return nil
}

// Close releases the database, the bolt file and the log file, in reverse
// order of acquisition.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
