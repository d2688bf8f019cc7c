package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/backup"
	"github.com/dmitrijs2005/kakeibo/internal/client/client"
	"github.com/dmitrijs2005/kakeibo/internal/client/config"
	"github.com/dmitrijs2005/kakeibo/internal/client/services"
	"github.com/dmitrijs2005/kakeibo/internal/client/storage"
	"github.com/dmitrijs2005/kakeibo/internal/logging"
	"github.com/spf13/cobra"
)

var Version = "dev"

type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	Now func() time.Time

	// NewUploader picks the snapshot destination. A non-empty dir selects
	// a local directory instead of the configured bucket.
	NewUploader func(ctx context.Context, cfg config.BackupConfig, dir string) (backup.Uploader, error)

	cfgFile string

	cfg      *config.Config
	log      logging.Logger
	reader   *bufio.Reader
	store    *storage.Store
	provider config.Provider
	client   client.Client
	expenses services.ExpenseService
	sync     services.SyncService
	merge    services.MergeService
}

func NewApp() *App {
	return &App{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Now:         time.Now,
		NewUploader: defaultUploader,
	}
}

func defaultUploader(ctx context.Context, cfg config.BackupConfig, dir string) (backup.Uploader, error) {
	if dir != "" {
		return backup.DirUploader{Dir: config.ExpandPath(dir)}, nil
	}
	return backup.NewS3Uploader(ctx, cfg)
}

// Execute runs the command tree with args and releases the store
// afterwards.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.Command()
	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	defer func() {
		if err := a.Close(); err != nil && a.log != nil {
			a.log.Error(ctx, "failed to close storage", "error", err)
		}
	}()
	return root.ExecuteContext(ctx)
}

// setup is the root PersistentPreRunE.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	_ = v.BindPFlag("database.path", flags.Lookup("db"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := logging.New(a.Err, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	store, err := storage.Open(ctx, cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.store = store
	a.reader = bufio.NewReader(a.In)
	a.provider = config.NewMetadataProvider(store.Metadata, cfg.BaseURL, cfg.AccessKey)
	a.client = client.NewHTTPClient(a.provider, client.WithTimeout(cfg.RequestTimeout))
	a.expenses = services.NewExpenseService(store.DB, a.Now)
	a.sync = services.NewSyncService(a.client, a.expenses, log)
	a.merge = services.NewMergeService(store.DB, a.client, log,
		services.WithPageSize(cfg.PageSize),
		services.WithMergeClock(a.Now))

	log.Debug(ctx, "store opened", "path", cfg.DatabasePath)
	return nil
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *App) backupService(ctx context.Context, dir string) (services.BackupService, error) {
	up, err := a.NewUploader(ctx, a.cfg.Backup, dir)
	if err != nil {
		return nil, err
	}

	pass := a.cfg.Backup.Passphrase
	if pass == "" {
		if pass, err = GetSecret(a.reader, "Backup passphrase", a.Out); err != nil {
			return nil, err
		}
	}
	return services.NewBackupService(a.store.DB, up, pass, a.log, a.Now), nil
}
