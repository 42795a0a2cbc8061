package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SECURESTORAGE_"

// loadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays SECURESTORAGE_* variables onto config.
func parseEnv(config *Config) error {
	strs := map[string]*string{
		"METADATA_BACKEND":      &config.MetadataBackend,
		"DATABASE_DSN":          &config.DatabaseDSN,
		"BOLT_PATH":             &config.BoltPath,
		"BLOB_BACKEND":          &config.BlobBackend,
		"S3_ROOT_USER":          &config.S3RootUser,
		"S3_ROOT_PASSWORD":      &config.S3RootPassword,
		"S3_BUCKET":             &config.S3Bucket,
		"S3_REGION":             &config.S3Region,
		"S3_BASE_ENDPOINT":      &config.S3BaseEndpoint,
		"MASTER_KEY":            &config.MasterKey,
		"MASTER_KEY_PASSPHRASE": &config.MasterKeyPassphrase,
		"MASTER_KEY_SALT":       &config.MasterKeySalt,
		"SECRET_KEY":            &config.SecretKey,
		"LOG_LEVEL":             &config.Log.Level,
		"LOG_FORMAT":            &config.Log.Format,
		"LOG_FILE":              &config.Log.File,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_VALIDITY": &config.RefreshTokenValidityDuration,
		"STORE_TIMEOUT":          &config.StoreTimeout,
		"STORE_RETRY_BASE":       &config.StoreRetryBase,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv(EnvPrefix + "STORAGE_QUOTA"); ok {
		q, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSTORAGE_QUOTA: %w", EnvPrefix, err)
		}
		config.StorageQuota = q
	}
	if v, ok := os.LookupEnv(EnvPrefix + "STORE_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSTORE_RETRIES: %w", EnvPrefix, err)
		}
		config.StoreRetries = n
	}
	return nil
}
