package files

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

// MemoryRepository is a process-local Repository used by the "memory"
// backend and by tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.File
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.File)}
}

func (r *MemoryRepository) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[file.FileID]; ok {
		return checkDuplicate(&existing, file)
	}
	r.items[file.FileID] = *file
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, fileID string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.items[fileID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &f, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[fileID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.items, fileID)
	return nil
}

// ListByOwner returns ownerID's records sorted by file_id.
func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.File
	for _, f := range r.items {
		if f.OwnerID == ownerID {
			f := f
			result = append(result, &f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FileID < result[j].FileID })
	return result, nil
}
