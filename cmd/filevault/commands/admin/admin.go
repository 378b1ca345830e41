// Package admin implements account and file administration commands
// for operators running a FileVault server.
package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gaganb-30/cloud-store/pkg/admin"
	"github.com/Gaganb-30/cloud-store/pkg/config"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/quota"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
	"github.com/Gaganb-30/cloud-store/pkg/storage/localfs"
	"github.com/Gaganb-30/cloud-store/pkg/storage/s3store"
)

// Cmd is the admin subcommand.
var Cmd = &cobra.Command{
	Use:   "admin",
	Short: "Account and file administration",
	Long: `Administer FileVault accounts and files directly against the
configured metadata store and storage backend.

These commands operate offline, against the same database and storage
backend the running server uses; they do not call the HTTP API. Run
them on a host with access to both.`,
}

func init() {
	Cmd.AddCommand(promoteCmd)
	Cmd.AddCommand(demoteCmd)
	Cmd.AddCommand(blockCmd)
	Cmd.AddCommand(restrictCmd)
	Cmd.AddCommand(unblockCmd)
	Cmd.AddCommand(bulkDeleteCmd)
}

// services bundles the store and admin.Service a command needs, plus
// the close func to defer.
type services struct {
	store *metadatastore.Store
	admin *admin.Service
	close func()
}

func connect(ctx context.Context, configPath string) (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := metadatastore.New(ctx, metadatastore.Config{
		Driver:       metadatastore.Driver(cfg.Database.Driver),
		DSN:          cfg.Database.DSN,
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}

	provider, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open storage backend: %w", err)
	}

	ledger := quota.New(store, quota.Defaults{
		FreeMaxStorage:    int64(cfg.Quota.FreeBytes),
		FreeMaxFileSize:   int64(cfg.Upload.MaxFileSizeFree),
		FreeMaxFiles:      model.Unlimited,
		PremiumMaxStorage: cfg.Quota.PremiumBytes,
		PremiumMaxFiles:   model.Unlimited,
	})

	svc := admin.New(store, provider, ledger)

	return &services{
		store: store,
		admin: svc,
		close: func() { _ = store.Close() },
	}, nil
}

func newStorageProvider(ctx context.Context, cfg config.StorageConfig) (storage.Provider, error) {
	switch cfg.Provider {
	case "local":
		return localfs.New(localfs.DefaultConfig(cfg.LocalRoot))
	case "s3":
		client, err := s3store.NewClientFromConfig(ctx, cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretAccessKey, cfg.S3UsePathStyle)
		if err != nil {
			return nil, err
		}
		return s3store.New(ctx, s3store.Config{
			Client:    client,
			Bucket:    cfg.S3Bucket,
			KeyPrefix: cfg.S3KeyPrefix,
			PartSize:  int64(cfg.S3PartSize),
		})
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
