package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/batch"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/export"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/history"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/logging"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/lookup"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/notifications"
)

// Daemon owns the scan services and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *batch.Store
	resolver  *lookup.Resolver
	finalizer *export.Finalizer
	history   *history.Store
	notifier  notifications.Service

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	BatchFile    string
	DataRows     int
	ArchiveDir   string
	LockFilePath string
	SnipeEnabled bool
	APIAddress   string
}

// New constructs a daemon with initialized dependencies. The history store is
// optional.
func New(cfg *config.Config, store *batch.Store, resolver *lookup.Resolver, finalizer *export.Finalizer, hist *history.Store, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || resolver == nil || finalizer == nil {
		return nil, errors.New("daemon requires config, store, resolver, and finalizer")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "crcscand.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		resolver:  resolver,
		finalizer: finalizer,
		history:   hist,
		notifier:  notifier,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the instance lock, prepares the batch file, and brings up the
// HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another crcscand instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.store.EnsureInitialized(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("initialize batch: %w", err)
	}

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("crcscand started",
		logging.String("lock", d.lockPath),
		logging.String("batch", d.store.Path()))
	return nil
}

// Stop shuts down the API server and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("crcscand stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.history != nil {
		return d.history.Close()
	}
	return nil
}

// APIAddress returns the bound address of the HTTP API, or "" before Start.
func (d *Daemon) APIAddress() string {
	if d.api == nil {
		return ""
	}
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	rows, err := d.store.DataRowCount(ctx)
	if err != nil {
		d.logger.Warn("count batch rows", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		BatchFile:    d.store.Path(),
		DataRows:     rows,
		ArchiveDir:   d.cfg.Paths.ArchiveDir,
		LockFilePath: d.lockPath,
		SnipeEnabled: d.resolver.RegistryEnabled(),
		APIAddress:   d.APIAddress(),
	}
}

// Finalize exports the current batch and fires the configured notifications.
func (d *Daemon) Finalize(ctx context.Context) (string, error) {
	status := d.Status(ctx)
	filename, err := d.finalizer.Finalize(ctx)
	if err != nil {
		if !errors.Is(err, batch.ErrNoBatch) {
			if notifyErr := d.notifier.NotifyError(ctx, err, "finalize"); notifyErr != nil {
				d.logger.Warn("send error notification", logging.Error(notifyErr))
			}
		}
		return "", err
	}
	if notifyErr := d.notifier.NotifyBatchFinalized(ctx, filename, status.DataRows); notifyErr != nil {
		d.logger.Warn("send finalize notification", logging.Error(notifyErr))
	}
	return filename, nil
}
