package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/logging"
	"github.com/dmitrijs2005/securestorage/internal/server/blobs"
	"github.com/dmitrijs2005/securestorage/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.MetadataBackend = config.BackendMemory
	c.BlobBackend = config.BlobBackendMemory
	c.MasterKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	c.StoreRetries = 0
	c.Log = logging.Config{Level: "debug", File: filepath.Join(t.TempDir(), "app.log"), NoStdout: true}
	return c
}

func newTestApp(t *testing.T, c *config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_MemoryBackends(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx := context.Background()

	require.NoError(t, app.Migrate(ctx))

	pair, err := app.Sessions.Issue(ctx, "u1")
	require.NoError(t, err)
	owner, err := app.Sessions.Authenticate(pair.AccessToken)
	require.NoError(t, err)

	rec, err := app.Files.Upload(ctx, owner, "report.pdf", "application/pdf", []byte("contents"))
	require.NoError(t, err)

	got, _, err := app.Files.Download(ctx, owner, rec.FileID)
	require.NoError(t, err)
	assert.Equal(t, []byte("contents"), got)

	removal, err := app.Accounts.DeleteAccount(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{rec.FileID}, removal.Purge.Deleted)

	_, err = app.Sessions.Register(ctx, "alice")
	assert.Error(t, err, "memory backend has no local users")
}

func TestNewApp_Bolt(t *testing.T) {
	c := testConfig(t)
	c.MetadataBackend = config.BackendBolt
	c.BoltPath = filepath.Join(t.TempDir(), "meta.db")
	ctx := context.Background()

	app, err := NewApp(ctx, c)
	require.NoError(t, err)
	rec, err := app.Files.Upload(ctx, "u1", "a.txt", "", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, app.Close())

	// Records survive a restart; the memory blob store does not.
	app = newTestApp(t, c)
	meta, err := app.Files.GetMetadata(ctx, "u1", rec.FileID)
	require.NoError(t, err)
	assert.Equal(t, rec.SizeBytes, meta.SizeBytes)
}

func TestNewApp_S3(t *testing.T) {
	var got blobs.S3Config
	orig := openS3Store
	openS3Store = func(_ context.Context, c blobs.S3Config) (blobs.Store, error) {
		got = c
		return blobs.NewMemoryStore(), nil
	}
	t.Cleanup(func() { openS3Store = orig })

	c := testConfig(t)
	c.BlobBackend = config.BlobBackendS3
	newTestApp(t, c)

	assert.Equal(t, blobs.S3Config{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	}, got)
}

func TestNewApp_S3Failure(t *testing.T) {
	orig := openS3Store
	openS3Store = func(context.Context, blobs.S3Config) (blobs.Store, error) {
		return nil, errors.New("no credentials")
	}
	t.Cleanup(func() { openS3Store = orig })

	c := testConfig(t)
	c.BlobBackend = config.BlobBackendS3
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "no credentials")
}

func TestNewApp_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		assert.Equal(t, "postgres://test", dsn)
		return db, nil
	}
	t.Cleanup(func() { openDB = orig })

	c := testConfig(t)
	c.MetadataBackend = config.BackendPostgres
	c.DatabaseDSN = "postgres://test"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, app.db)

	mock.ExpectClose()
	require.NoError(t, app.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_BadMasterKeyReleasesResources(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := openDB
	openDB = func(string, string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { openDB = orig })

	c := testConfig(t)
	c.MetadataBackend = config.BackendPostgres
	c.MasterKey = ""

	mock.ExpectClose()
	app, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Nil(t, app)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := testConfig(t)
	c.Log.Level = "loud"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "logger init error")
}
