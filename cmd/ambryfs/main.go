package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ambryfs/ambryfs-go/internal/config"
	"github.com/ambryfs/ambryfs-go/internal/credentials"
	"github.com/ambryfs/ambryfs-go/internal/fuse"
	"github.com/ambryfs/ambryfs-go/internal/storage"
	"github.com/ambryfs/ambryfs-go/internal/storage/s3"
	"github.com/ambryfs/ambryfs-go/internal/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logrus.WithError(err).Fatal("ambryfs failed")
	}
}

func run(ctx context.Context, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("ambryfs", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ambryfs [flags] [mountpoint]\n\n")
		flags.PrintDefaults()
	}
	cfg.AddFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if cfg.Mountpoint == "" && flags.NArg() > 0 {
		cfg.Mountpoint = flags.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg)

	doer, closeStore, err := newDoer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	adapter := transport.NewAdapter(baseURL(cfg), cfg.Port, cfg.ServiceID, doer)
	filesystem := fuse.NewFilesystem(adapter)

	logrus.WithFields(logrus.Fields{
		"store":      cfg.Store,
		"base_url":   baseURL(cfg),
		"port":       cfg.Port,
		"service_id": cfg.ServiceID,
		"mountpoint": cfg.Mountpoint,
	}).Info("mounting blob store")

	return fuse.Mount(ctx, cfg.Mountpoint, filesystem, fuse.MountOptions{
		AllowOther: cfg.AllowOther,
		Debug:      cfg.FuseDebug,
	})
}

func setupLogging(cfg config.Config) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	switch {
	case cfg.FuseDebug:
		logrus.SetLevel(logrus.TraceLevel)
	case cfg.Verbose:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// baseURL is only meaningful for the ambry store; the other stores ignore it
// but it still shows up in logs.
func baseURL(cfg config.Config) string {
	if cfg.Store == config.StoreAmbry || cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return "http://" + cfg.Store
}

// newDoer returns the transport for the configured store and a function that
// releases it.
func newDoer(ctx context.Context, cfg config.Config) (transport.Doer, func(), error) {
	if cfg.Store == config.StoreAmbry {
		return transport.NewHTTPDoer(cfg.Timeout), func() {}, nil
	}

	storeCfg := storage.Config{
		Type:            storage.Type(cfg.Store),
		PostgresConnStr: cfg.PostgresURL,
		PostgresTable:   cfg.PostgresTable,
		MongoURI:        cfg.MongoURI,
		MongoDatabase:   cfg.MongoDatabase,
		MongoCollection: cfg.MongoCollection,
	}
	if cfg.Store == config.StoreS3 {
		creds, err := loadCredentials(cfg)
		if err != nil {
			return nil, nil, err
		}
		storeCfg.S3 = s3.Config{
			Bucket:      cfg.S3Bucket,
			Region:      cfg.S3Region,
			Endpoint:    cfg.S3Endpoint,
			Prefix:      cfg.S3Prefix,
			Credentials: creds,
		}
	}

	backend, err := storage.NewBackend(ctx, storeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	closeStore := func() {
		if err := backend.Close(); err != nil {
			logrus.WithError(err).Warn("closing store")
		}
	}
	return storage.NewDoer(backend), closeStore, nil
}

// loadCredentials reads static S3 credentials. Without a passwd file or
// credential variables it returns nil and the default AWS chain applies.
func loadCredentials(cfg config.Config) (*credentials.Credentials, error) {
	creds := credentials.NewCredentials()
	if cfg.S3PasswdFile != "" {
		if err := creds.LoadFromPasswdFile(cfg.S3PasswdFile, cfg.S3Bucket); err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
		return creds, nil
	}
	if err := creds.LoadFromEnvironment(); err != nil {
		logrus.WithError(err).Debug("no static S3 credentials, using the default chain")
		return nil, nil
	}
	return creds, nil
}
