package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Store names accepted by Config.Store
const (
	StoreAmbry    = "ambry"
	StoreS3       = "s3"
	StorePostgres = "postgres"
	StoreMongoDB  = "mongodb"
)

// Config is the startup configuration. It is built once and passed to the
// components that need it.
type Config struct {
	// Blob store endpoint
	BaseURL   string
	Port      int
	ServiceID string
	Timeout   time.Duration

	Mountpoint string
	AllowOther bool

	Verbose   bool
	FuseDebug bool

	// Store selects where blobs live. Only the ambry store is reached over HTTP.
	Store string

	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3Prefix     string
	S3PasswdFile string

	PostgresURL   string
	PostgresTable string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Load reads configuration from AMBRYFS_* environment variables.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:         getenv("AMBRYFS_BASE_URL", ""),
		ServiceID:       getenv("AMBRYFS_SERVICE_ID", "ambryfs"),
		Mountpoint:      getenv("AMBRYFS_MOUNTPOINT", ""),
		Store:           getenv("AMBRYFS_STORE", StoreAmbry),
		S3Bucket:        getenv("AMBRYFS_S3_BUCKET", ""),
		S3Region:        getenv("AMBRYFS_S3_REGION", "us-east-1"),
		S3Endpoint:      getenv("AMBRYFS_S3_ENDPOINT", ""),
		S3Prefix:        getenv("AMBRYFS_S3_PREFIX", ""),
		S3PasswdFile:    getenv("AMBRYFS_PASSWD_FILE", ""),
		PostgresURL:     getenv("AMBRYFS_POSTGRES_URL", ""),
		PostgresTable:   getenv("AMBRYFS_POSTGRES_TABLE", "blobs"),
		MongoURI:        getenv("AMBRYFS_MONGO_URI", ""),
		MongoDatabase:   getenv("AMBRYFS_MONGO_DATABASE", "ambryfs"),
		MongoCollection: getenv("AMBRYFS_MONGO_COLLECTION", "blobs"),
	}

	var err error
	if cfg.Port, err = getenvInt("AMBRYFS_PORT", 0); err != nil {
		return Config{}, err
	}
	if cfg.Timeout, err = getenvDuration("AMBRYFS_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.Verbose, err = getenvBool("AMBRYFS_VERBOSE", false); err != nil {
		return Config{}, err
	}
	if cfg.FuseDebug, err = getenvBool("AMBRYFS_FUSE_DEBUG", false); err != nil {
		return Config{}, err
	}
	if cfg.AllowOther, err = getenvBool("AMBRYFS_ALLOW_OTHER", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AddFlags registers command-line overrides. Defaults are the current
// values, so flags win over the environment.
func (c *Config) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.BaseURL, "ambry_base_url", c.BaseURL, "blob store base URL, e.g. http://localhost")
	flags.IntVar(&c.Port, "ambry_port", c.Port, "blob store port")
	flags.StringVar(&c.ServiceID, "service_id", c.ServiceID, "value of the x-ambry-service-id header")
	flags.DurationVar(&c.Timeout, "timeout", c.Timeout, "per-request timeout (0 = none)")
	flags.StringVar(&c.Mountpoint, "mountpoint", c.Mountpoint, "mount point directory")
	flags.BoolVar(&c.AllowOther, "allow_other", c.AllowOther, "allow other users to access the mount")
	flags.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "log every filesystem call and store request")
	flags.BoolVar(&c.FuseDebug, "fuse_debug", c.FuseDebug, "log FUSE protocol messages")
	flags.StringVar(&c.Store, "store", c.Store, "blob store: ambry, s3, postgres or mongodb")
	flags.StringVar(&c.S3Bucket, "s3_bucket", c.S3Bucket, "S3 bucket (store=s3)")
	flags.StringVar(&c.S3Region, "s3_region", c.S3Region, "S3 region (store=s3)")
	flags.StringVar(&c.S3Endpoint, "s3_endpoint", c.S3Endpoint, "S3-compatible endpoint URL (store=s3)")
	flags.StringVar(&c.S3Prefix, "s3_prefix", c.S3Prefix, "key prefix for blobs (store=s3)")
	flags.StringVar(&c.S3PasswdFile, "passwd_file", c.S3PasswdFile, "S3 credentials file (store=s3)")
	flags.StringVar(&c.PostgresURL, "postgres_url", c.PostgresURL, "PostgreSQL connection string (store=postgres)")
	flags.StringVar(&c.PostgresTable, "postgres_table", c.PostgresTable, "PostgreSQL blob table (store=postgres)")
	flags.StringVar(&c.MongoURI, "mongo_uri", c.MongoURI, "MongoDB URI (store=mongodb)")
	flags.StringVar(&c.MongoDatabase, "mongo_database", c.MongoDatabase, "MongoDB database (store=mongodb)")
	flags.StringVar(&c.MongoCollection, "mongo_collection", c.MongoCollection, "MongoDB collection (store=mongodb)")
}

// Validate checks required settings for the selected store.
func (c *Config) Validate() error {
	var errs []error
	if c.Mountpoint == "" {
		errs = append(errs, errors.New("mountpoint is required"))
	}
	if c.ServiceID == "" {
		errs = append(errs, errors.New("service id must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}

	switch c.Store {
	case StoreAmbry:
		if c.BaseURL == "" {
			errs = append(errs, errors.New("ambry_base_url is required"))
		} else if err := validateBaseURL(c.BaseURL); err != nil {
			errs = append(errs, err)
		}
		if c.Port < 1 || c.Port > 65535 {
			errs = append(errs, fmt.Errorf("ambry_port must be between 1 and 65535, got %d", c.Port))
		}
	case StoreS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3_bucket is required for store=s3"))
		}
	case StorePostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("postgres_url is required for store=postgres"))
		}
	case StoreMongoDB:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("mongo_uri is required for store=mongodb"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	return errors.Join(errs...)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid ambry_base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ambry_base_url must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("ambry_base_url has no host: %q", raw)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
