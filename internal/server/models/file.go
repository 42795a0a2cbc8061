// Package models defines server-side data models persisted by the stores.
package models

import "encoding/json"

// File is the metadata record of one stored file. The encrypted content
// itself lives in the blob store under StorageKey.
//
// Records are created once on upload and never updated in place.
type File struct {
	// FileID is the globally unique primary key.
	FileID string `json:"file_id"`
	// OwnerID is the uploading user.
	OwnerID string `json:"owner_id"`
	// Filename is the original display name.
	Filename string `json:"filename"`
	// StorageKey locates the ciphertext: "<owner_id>/<file_id>".
	StorageKey string `json:"storage_key"`
	// WrappedDataKey is the per-file data key wrapped under the master key, base64.
	WrappedDataKey string `json:"wrapped_data_key"`
	// Nonce is the AES-GCM nonce used for the content, base64.
	Nonce string `json:"nonce"`
	// ContentType is advisory, used to label downloads.
	ContentType string `json:"content_type"`
	// SizeBytes is the plaintext length, used for quota accounting.
	SizeBytes int64 `json:"size_bytes"`
}

// fileJSON accepts both current field names and the ones used by records
// written before the rename (s3_key, encrypted_aes_key, iv, file_size).
type fileJSON struct {
	FileID         string `json:"file_id"`
	OwnerID        string `json:"owner_id"`
	Filename       string `json:"filename"`
	StorageKey     string `json:"storage_key"`
	WrappedDataKey string `json:"wrapped_data_key"`
	Nonce          string `json:"nonce"`
	ContentType    string `json:"content_type"`
	SizeBytes      *int64 `json:"size_bytes"`

	LegacyS3Key           string `json:"s3_key"`
	LegacyEncryptedAESKey string `json:"encrypted_aes_key"`
	LegacyIV              string `json:"iv"`
	LegacyFileSize        *int64 `json:"file_size"`
}

// UnmarshalJSON decodes a record, falling back to legacy field names when the
// current ones are absent. A missing or null size decodes as 0.
func (f *File) UnmarshalJSON(b []byte) error {
	var v fileJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*f = File{
		FileID:         v.FileID,
		OwnerID:        v.OwnerID,
		Filename:       v.Filename,
		StorageKey:     firstNonEmpty(v.StorageKey, v.LegacyS3Key),
		WrappedDataKey: firstNonEmpty(v.WrappedDataKey, v.LegacyEncryptedAESKey),
		Nonce:          firstNonEmpty(v.Nonce, v.LegacyIV),
		ContentType:    v.ContentType,
	}
	switch {
	case v.SizeBytes != nil:
		f.SizeBytes = *v.SizeBytes
	case v.LegacyFileSize != nil:
		f.SizeBytes = *v.LegacyFileSize
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
