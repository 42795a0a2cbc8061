package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/securestorage/internal/logging"
	"github.com/dmitrijs2005/securestorage/internal/timex"
)

// FileConfig is the on-disk shape of Config. It uses timex.Duration for
// interval fields so both "10s" and integer nanoseconds are accepted.
//
// It is seeded from the current Config before decoding, so keys missing
// from the file keep their previous values.
type FileConfig struct {
	MetadataBackend string `json:"metadata_backend" toml:"metadata_backend"`
	DatabaseDSN     string `json:"database_dsn" toml:"database_dsn"`
	BoltPath        string `json:"bolt_path" toml:"bolt_path"`

	BlobBackend    string `json:"blob_backend" toml:"blob_backend"`
	S3RootUser     string `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password" toml:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket" toml:"s3_bucket"`
	S3Region       string `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint" toml:"s3_base_endpoint"`

	MasterKey           string `json:"master_key" toml:"master_key"`
	MasterKeyPassphrase string `json:"master_key_passphrase" toml:"master_key_passphrase"`
	MasterKeySalt       string `json:"master_key_salt" toml:"master_key_salt"`

	StorageQuota int64 `json:"storage_quota" toml:"storage_quota"`

	SecretKey                    string         `json:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" toml:"refresh_token_validity_duration"`

	StoreTimeout   timex.Duration `json:"store_timeout" toml:"store_timeout"`
	StoreRetries   int            `json:"store_retries" toml:"store_retries"`
	StoreRetryBase timex.Duration `json:"store_retry_base" toml:"store_retry_base"`

	Log logging.Config `json:"log" toml:"log"`
}

func toFile(c *Config) *FileConfig {
	return &FileConfig{
		MetadataBackend:              c.MetadataBackend,
		DatabaseDSN:                  c.DatabaseDSN,
		BoltPath:                     c.BoltPath,
		BlobBackend:                  c.BlobBackend,
		S3RootUser:                   c.S3RootUser,
		S3RootPassword:               c.S3RootPassword,
		S3Bucket:                     c.S3Bucket,
		S3Region:                     c.S3Region,
		S3BaseEndpoint:               c.S3BaseEndpoint,
		MasterKey:                    c.MasterKey,
		MasterKeyPassphrase:          c.MasterKeyPassphrase,
		MasterKeySalt:                c.MasterKeySalt,
		StorageQuota:                 c.StorageQuota,
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		StoreTimeout:                 timex.Duration{Duration: c.StoreTimeout},
		StoreRetries:                 c.StoreRetries,
		StoreRetryBase:               timex.Duration{Duration: c.StoreRetryBase},
		Log:                          c.Log,
	}
}

func (f *FileConfig) apply(c *Config) {
	c.MetadataBackend = f.MetadataBackend
	c.DatabaseDSN = f.DatabaseDSN
	c.BoltPath = f.BoltPath
	c.BlobBackend = f.BlobBackend
	c.S3RootUser = f.S3RootUser
	c.S3RootPassword = f.S3RootPassword
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.MasterKey = f.MasterKey
	c.MasterKeyPassphrase = f.MasterKeyPassphrase
	c.MasterKeySalt = f.MasterKeySalt
	c.StorageQuota = f.StorageQuota
	c.SecretKey = f.SecretKey
	c.AccessTokenValidityDuration = f.AccessTokenValidityDuration.Duration
	c.RefreshTokenValidityDuration = f.RefreshTokenValidityDuration.Duration
	c.StoreTimeout = f.StoreTimeout.Duration
	c.StoreRetries = f.StoreRetries
	c.StoreRetryBase = f.StoreRetryBase.Duration
	c.Log = f.Log
}

// parseFile overlays the file at path onto config. The format follows the
// extension: .json or .toml.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	f := toFile(config)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, f)
	case ".toml":
		err = toml.Unmarshal(data, f)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	f.apply(config)
	return nil
}
