package services

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/securestorage/internal/cryptox"
	"github.com/dmitrijs2005/securestorage/internal/logging"
	"github.com/dmitrijs2005/securestorage/internal/server/blobs"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
	"github.com/dmitrijs2005/securestorage/internal/server/quota"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/files"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

// faultyStore wraps a MemoryStore and fails selected calls.
type faultyStore struct {
	*blobs.MemoryStore
	putErr    error
	getErr    error
	deleteErr map[string]error
}

func (s *faultyStore) Put(ctx context.Context, key string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, key, data)
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *faultyStore) Delete(ctx context.Context, key string) error {
	if err, ok := s.deleteErr[key]; ok {
		return err
	}
	return s.MemoryStore.Delete(ctx, key)
}

// faultyRepository wraps a MemoryRepository and fails selected calls.
type faultyRepository struct {
	*files.MemoryRepository
	createErr error
	deleteErr error
	listErr   error
}

func (r *faultyRepository) Create(ctx context.Context, f *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryRepository.Create(ctx, f)
}

func (r *faultyRepository) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.MemoryRepository.Delete(ctx, id)
}

func (r *faultyRepository) ListByOwner(ctx context.Context, owner string) ([]*models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.MemoryRepository.ListByOwner(ctx, owner)
}

type logEntry struct {
	level string
	msg   string
}

// recordingLogger keeps every message so tests can assert on them.
type recordingLogger struct {
	mu      sync.Mutex
	entries *[]logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: &[]logEntry{}}
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(_ context.Context, msg string, _ ...any) { l.add("debug", msg) }
func (l *recordingLogger) Info(_ context.Context, msg string, _ ...any)  { l.add("info", msg) }
func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any)  { l.add("warn", msg) }
func (l *recordingLogger) Error(_ context.Context, msg string, _ ...any) { l.add("error", msg) }
func (l *recordingLogger) With(...any) logging.Logger                    { return l }

func (l *recordingLogger) has(level, prefix string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range *l.entries {
		if e.level == level && len(e.msg) >= len(prefix) && e.msg[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

type fixture struct {
	svc    *FileService
	repo   *faultyRepository
	store  *faultyStore
	cipher *cryptox.EnvelopeCipher
	logger *recordingLogger
}

func newFixture(t *testing.T, limit int64) *fixture {
	t.Helper()

	cipher, err := cryptox.NewEnvelopeCipher(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)

	repo := &faultyRepository{MemoryRepository: files.NewMemoryRepository()}
	store := &faultyStore{MemoryStore: blobs.NewMemoryStore(), deleteErr: map[string]error{}}
	logger := newRecordingLogger()

	return &fixture{
		svc:    NewFileService(repo, store, cipher, quota.NewAccountant(repo, limit), logger),
		repo:   repo,
		store:  store,
		cipher: cipher,
		logger: logger,
	}
}

func (f *fixture) upload(t *testing.T, owner, name string, data []byte) *models.File {
	t.Helper()
	rec, err := f.svc.Upload(context.Background(), owner, name, "text/plain", data)
	require.NoError(t, err)
	return rec
}
