package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jredh-dev/foodshare/config"
	"github.com/jredh-dev/foodshare/internal/database"
	"github.com/jredh-dev/foodshare/internal/kv"
	"github.com/jredh-dev/foodshare/internal/lifecycle"
	"github.com/jredh-dev/foodshare/internal/store"
)

// VersionInfo holds build-time version information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App is the state shared by every command in one invocation. The store is
// opened on first use so that help and version work without one.
type App struct {
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Config  *config.Config
	Logger  *slog.Logger
	Version VersionInfo
	Now     func() time.Time

	st  store.Store
	svc *lifecycle.Service
}

// NewApp creates an App writing to stdout and stderr.
func NewApp(cfg *config.Config, logger *slog.Logger, v VersionInfo) *App {
	return &App{
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
		Config:  cfg,
		Logger:  logger,
		Version: v,
		Now:     time.Now,
	}
}

// Service returns the lifecycle service, opening the store if needed.
func (a *App) Service(ctx context.Context) (*lifecycle.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	st, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}

	lc := a.Config.Lifecycle
	opts := []lifecycle.Option{
		lifecycle.WithEconomics(lifecycle.Economics{
			CreditsPerDelivery:   lc.CreditsPerDelivery,
			RupeesPerCredit:      lc.RupeesPerCredit,
			SponsorSlots:         lc.SponsorSlots,
			DefaultVolunteerID:   lc.DefaultVolunteerID,
			DefaultVolunteerName: lc.DefaultVolunteerName,
		}),
		lifecycle.WithClock(a.now),
	}
	if a.Logger != nil {
		opts = append(opts, lifecycle.WithLogger(a.Logger))
	}
	a.svc = lifecycle.New(st, opts...)
	return a.svc, nil
}

// Store returns the configured store, opening it if needed.
func (a *App) Store(ctx context.Context) (store.Store, error) {
	if a.st != nil {
		return a.st, nil
	}
	st, err := OpenStore(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	a.st = st
	return st, nil
}

// Close closes the store if one was opened.
func (a *App) Close() error {
	if a.st == nil {
		return nil
	}
	err := a.st.Close()
	a.st, a.svc = nil, nil
	return err
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// OpenStore opens the store selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	sc := cfg.Store
	repoOpts := []kv.Option{
		kv.WithPrefix(sc.KeyPrefix),
		kv.WithDefaultVolunteer(cfg.Lifecycle.DefaultVolunteerID),
	}

	switch sc.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(sc.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		return database.Open(sc.SQLitePath)
	case config.DriverMemory:
		return kv.NewRepository(kv.NewMemory(), repoOpts...), nil
	case config.DriverRedis:
		r, err := kv.NewRedis(ctx, kv.RedisOptions{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return kv.NewRepository(r, repoOpts...), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}
