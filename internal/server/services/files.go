// Package services contains the storage business logic: FileService ties
// encrypted blobs to their metadata records and enforces ownership and
// quota; AccountService removes everything a user owns.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/cryptox"
	"github.com/dmitrijs2005/securestorage/internal/logging"
	"github.com/dmitrijs2005/securestorage/internal/server/blobs"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
	"github.com/dmitrijs2005/securestorage/internal/server/quota"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/files"
	"github.com/google/uuid"
)

// newFileID is a seam for tests.
var newFileID = func() string { return uuid.NewString() }

// FileService composes the envelope cipher, blob store, record store and
// quota accountant into the file operations.
//
// Every operation on an existing file goes through authorize, which loads
// the record and checks that it belongs to the caller.
//
// Stores are not locked across steps. Operations are ordered so that a
// partial failure leaves at worst a blob with no record, never the reverse:
// upload writes the blob before the record, delete removes the blob before
// the record.
type FileService struct {
	files  files.Repository
	blobs  blobs.Store
	cipher *cryptox.EnvelopeCipher
	quota  *quota.Accountant
	logger logging.Logger
}

func NewFileService(repo files.Repository, store blobs.Store, cipher *cryptox.EnvelopeCipher, q *quota.Accountant, logger logging.Logger) *FileService {
	return &FileService{
		files:  repo,
		blobs:  store,
		cipher: cipher,
		quota:  q,
		logger: logger.With("module", "files"),
	}
}

// PurgeFailure names a file PurgeAll could not remove.
type PurgeFailure struct {
	FileID string
	Err    error
}

// PurgeReport lists what PurgeAll removed and what it could not.
type PurgeReport struct {
	Deleted      []string
	Failed       []PurgeFailure
	ProfilePhoto StepOutcome
}

// Complete reports whether every file was removed.
func (r *PurgeReport) Complete() bool { return len(r.Failed) == 0 }

// StorageKey is where the ciphertext of fileID lives: "<owner>/<file>".
func StorageKey(ownerID, fileID string) string {
	return ownerID + "/" + fileID
}

// ProfilePhotoKey is the conventional blob key of an owner's profile photo.
func ProfilePhotoKey(ownerID string) string {
	return common.ProfilePhotoPrefix + ownerID
}

func validateOwner(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: empty owner id", common.ErrorValidation)
	}
	if strings.Contains(ownerID, "/") {
		return fmt.Errorf("%w: owner id must not contain '/'", common.ErrorValidation)
	}
	return nil
}

// authorize loads fileID and checks it belongs to ownerID.
func (s *FileService) authorize(ctx context.Context, ownerID, fileID string) (*models.File, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if fileID == "" {
		return nil, fmt.Errorf("%w: empty file id", common.ErrorValidation)
	}

	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		s.logger.Warn(ctx, "file access denied", "file_id", fileID, "owner_id", ownerID)
		return nil, common.ErrorUnauthorized
	}
	return f, nil
}

// Upload encrypts data under a fresh data key and stores it for ownerID.
//
// Quota is checked before anything is written. If the blob is stored but the
// record write fails, the blob is left orphaned, logged, and the error wraps
// common.ErrMetadataWrite.
func (s *FileService) Upload(ctx context.Context, ownerID, filename, contentType string, data []byte) (*models.File, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", common.ErrorValidation)
	}
	if contentType == "" {
		contentType = common.DefaultContentType
	}
	size := int64(len(data))

	if err := s.quota.Admit(ctx, ownerID, size); err != nil {
		if errors.Is(err, common.ErrStorageLimitExceeded) {
			s.logger.Warn(ctx, "upload rejected by quota", "owner_id", ownerID, "size_bytes", size, "error", err)
		}
		return nil, err
	}

	fileID := newFileID()
	if fileID == "" {
		return nil, fmt.Errorf("%w: generated file id is empty", common.ErrorValidation)
	}
	storageKey := StorageKey(ownerID, fileID)

	key := s.cipher.GenerateDataKey()
	defer common.WipeByteArray(key)
	nonce := s.cipher.GenerateNonce()

	ciphertext, err := s.cipher.Encrypt(data, key, nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt: %v", common.ErrorInternal, err)
	}
	wrapped, err := s.cipher.WrapKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: wrap key: %v", common.ErrorInternal, err)
	}

	if err := s.blobs.Put(ctx, storageKey, ciphertext); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	record := &models.File{
		FileID:         fileID,
		OwnerID:        ownerID,
		Filename:       filename,
		StorageKey:     storageKey,
		WrappedDataKey: wrapped,
		Nonce:          cryptox.EncodeNonce(nonce),
		ContentType:    contentType,
		SizeBytes:      size,
	}
	if err := s.files.Create(ctx, record); err != nil {
		s.logger.Error(ctx, "orphaned blob: metadata write failed after blob was stored",
			"file_id", fileID, "owner_id", ownerID, "storage_key", storageKey, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrMetadataWrite, err)
	}

	s.logger.Info(ctx, "file stored", "file_id", fileID, "owner_id", ownerID, "size_bytes", size)
	return record, nil
}

// Download returns the plaintext of fileID and its record. Decryption
// failures wrap common.ErrAuthenticationFailed or common.ErrKeyUnwrapFailed
// and never return partial plaintext.
func (s *FileService) Download(ctx context.Context, ownerID, fileID string) ([]byte, *models.File, error) {
	f, err := s.authorize(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}

	ciphertext, err := s.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "orphaned record: blob missing", "file_id", fileID, "storage_key", f.StorageKey)
		}
		return nil, nil, fmt.Errorf("fetch blob: %w", err)
	}

	key, err := s.cipher.UnwrapKey(f.WrappedDataKey)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(key)

	nonce, err := cryptox.DecodeNonce(f.Nonce)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := s.cipher.Decrypt(ciphertext, key, nonce)
	if err != nil {
		s.logger.Error(ctx, "file failed authentication", "file_id", fileID, "error", err)
		return nil, nil, err
	}
	return plaintext, f, nil
}

// GetMetadata returns the record of fileID without touching the blob.
func (s *FileService) GetMetadata(ctx context.Context, ownerID, fileID string) (*models.File, error) {
	return s.authorize(ctx, ownerID, fileID)
}

// List returns every record owned by ownerID.
func (s *FileService) List(ctx context.Context, ownerID string) ([]*models.File, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}
	return s.files.ListByOwner(ctx, ownerID)
}

// Usage returns the bytes ownerID has stored and the quota.
func (s *FileService) Usage(ctx context.Context, ownerID string) (int64, int64, error) {
	if err := validateOwner(ownerID); err != nil {
		return 0, 0, err
	}
	used, err := s.quota.UsedStorage(ctx, ownerID)
	if err != nil {
		return 0, 0, err
	}
	return used, s.quota.Limit(), nil
}

// Delete removes fileID. Deleting a file that is already gone succeeds.
//
// The blob goes first. If that fails nothing else is touched. If the blob
// is gone but the record delete fails, the error wraps
// common.ErrInconsistency.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID string) error {
	f, err := s.authorize(ctx, ownerID, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	return s.remove(ctx, f)
}

func (s *FileService) remove(ctx context.Context, f *models.File) error {
	if err := s.blobs.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("delete blob: %w", err)
	}

	if err := s.files.Delete(ctx, f.FileID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "orphaned record: blob deleted but record remains",
			"file_id", f.FileID, "owner_id", f.OwnerID, "error", err)
		return fmt.Errorf("%w: delete record: %w", common.ErrInconsistency, err)
	}

	s.logger.Info(ctx, "file deleted", "file_id", f.FileID, "owner_id", f.OwnerID)
	return nil
}

// PurgeAll deletes every file of ownerID through the single-file path and
// then, best-effort, the owner's profile photo. It keeps going past
// failures; when any file could not be removed the returned error wraps
// common.ErrPurgeIncomplete and the report names the failures.
func (s *FileService) PurgeAll(ctx context.Context, ownerID string) (*PurgeReport, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	list, err := s.files.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	report := &PurgeReport{}
	for _, f := range list {
		if err := s.remove(ctx, f); err != nil {
			report.Failed = append(report.Failed, PurgeFailure{FileID: f.FileID, Err: err})
			continue
		}
		report.Deleted = append(report.Deleted, f.FileID)
	}

	report.ProfilePhoto = bestEffort(ctx, s.logger, "delete_profile_photo", func(ctx context.Context) error {
		err := s.blobs.Delete(ctx, ProfilePhotoKey(ownerID))
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	})

	if !report.Complete() {
		errs := make([]error, 0, len(report.Failed))
		for _, f := range report.Failed {
			errs = append(errs, fmt.Errorf("%s: %w", f.FileID, f.Err))
		}
		s.logger.Warn(ctx, "purge incomplete", "owner_id", ownerID,
			"deleted", len(report.Deleted), "failed", len(report.Failed))
		return report, fmt.Errorf("%w: %d of %d files remain: %w",
			common.ErrPurgeIncomplete, len(report.Failed), len(list), errors.Join(errs...))
	}

	s.logger.Info(ctx, "purge complete", "owner_id", ownerID, "deleted", len(report.Deleted))
	return report, nil
}
