package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/logging"
)

const lockRetryDelay = 10 * time.Millisecond

// serialColumn is the fixed position of the Serial Number field in a row.
const serialColumn = 2

// Store owns the working batch file and its locking discipline. Every
// operation holds the store lock for its full duration: an in-process mutex
// serializes goroutines and an advisory flock on a sibling .lock file
// serializes independent daemon processes sharing a data directory.
//
// Duplicate checks re-read the file rather than consulting cached state, so
// the file stays the single source of truth across processes.
type Store struct {
	path    string
	headers []string
	logger  *slog.Logger

	mu       sync.Mutex
	fileLock *flock.Flock
}

// NewStore builds a Store for the configured batch file.
func NewStore(cfg *config.Config, logger *slog.Logger) *Store {
	path := cfg.BatchFilePath()
	return &Store{
		path:     path,
		headers:  append([]string(nil), cfg.Batch.Headers...),
		logger:   logging.NewComponentLogger(logger, "record-store"),
		fileLock: flock.New(path + ".lock"),
	}
}

// Path returns the batch file location.
func (s *Store) Path() string {
	return s.path
}

// withLock runs fn while holding both the in-process and cross-process locks.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure data directory: %w", err)
	}
	locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return errors.New("batch lock unavailable")
	}
	defer func() {
		if unlockErr := s.fileLock.Unlock(); unlockErr != nil {
			s.logger.Warn("release batch lock", logging.Error(unlockErr))
		}
	}()

	return fn()
}

// EnsureInitialized creates the batch file with its header row when the file
// is absent or empty. Idempotent.
func (s *Store) EnsureInitialized(ctx context.Context) error {
	return s.withLock(ctx, func() error {
		return s.ensureLocked()
	})
}

func (s *Store) ensureLocked() error {
	info, err := os.Stat(s.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat batch file: %w", err)
	}
	return s.writeRows([][]string{s.headers})
}

// Append runs the duplicate check and appends one row as a single atomic
// operation. A candidate whose trimmed serial matches an existing row
// case-insensitively returns ErrDuplicateSerial without writing. An absent
// Temple Tag is stored as the N/A sentinel.
func (s *Store) Append(ctx context.Context, rec Record) error {
	serial := NormalizeSerial(rec.SerialNumber)

	return s.withLock(ctx, func() error {
		if err := s.ensureLocked(); err != nil {
			return err
		}

		if serial != "" && s.containsSerialLocked(serial) {
			return ErrDuplicateSerial
		}

		tag := rec.TempleTag
		if strings.TrimSpace(tag) == "" {
			tag = MissingTagSentinel
		}
		row := []string{rec.EquipmentType, rec.ItemDescription, serial, tag}

		file, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open batch file: %w", err)
		}
		defer file.Close()

		writer := csv.NewWriter(file)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("flush row: %w", err)
		}
		return nil
	})
}

// containsSerialLocked scans the persisted batch for a case-insensitive serial
// match. A read failure is logged and treated as no match, mirroring the
// append-anyway behavior the tool has always had for unreadable batches.
func (s *Store) containsSerialLocked(serial string) bool {
	rows, err := s.readRowsLocked()
	if err != nil {
		s.logger.Error("read batch during duplicate check", logging.Error(err))
		return false
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) > serialColumn && strings.EqualFold(strings.TrimSpace(row[serialColumn]), serial) {
			return true
		}
	}
	return false
}

// Recent returns up to n data rows, most recent first. n defaults to 5.
func (s *Store) Recent(ctx context.Context, n int) ([][]string, error) {
	if n <= 0 {
		n = 5
	}

	var out [][]string
	err := s.withLock(ctx, func() error {
		if err := s.ensureLocked(); err != nil {
			return err
		}
		rows, err := s.readRowsLocked()
		if err != nil {
			return err
		}
		if len(rows) <= 1 {
			return nil
		}
		data := rows[1:]
		if len(data) > n {
			data = data[len(data)-n:]
		}
		out = make([][]string, 0, len(data))
		for i := len(data) - 1; i >= 0; i-- {
			out = append(out, append([]string(nil), data[i]...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DataRowCount reports the number of data rows currently in the batch.
// A missing batch file counts as zero.
func (s *Store) DataRowCount(ctx context.Context) (int, error) {
	count := 0
	err := s.withLock(ctx, func() error {
		rows, err := s.readRowsLocked()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if len(rows) > 1 {
			count = len(rows) - 1
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reset truncates the batch back to a header-only file without exporting.
func (s *Store) Reset(ctx context.Context) error {
	return s.withLock(ctx, func() error {
		return s.writeRows([][]string{s.headers})
	})
}

// Drain reads every row of the batch (header included), hands them to
// convert, and deletes the batch file once convert succeeds. The whole
// read+convert+delete sequence holds the store lock. A missing batch file
// yields ErrNoBatch; a convert failure leaves the batch untouched.
func (s *Store) Drain(ctx context.Context, convert func(rows [][]string) error) error {
	return s.withLock(ctx, func() error {
		if _, err := os.Stat(s.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return ErrNoBatch
			}
			return fmt.Errorf("stat batch file: %w", err)
		}
		rows, err := s.readRowsLocked()
		if err != nil {
			return err
		}
		if err := convert(rows); err != nil {
			return err
		}
		if err := os.Remove(s.path); err != nil {
			return fmt.Errorf("remove drained batch: %w", err)
		}
		return nil
	})
}

func (s *Store) readRowsLocked() ([][]string, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return rows, nil
}

func (s *Store) writeRows(rows [][]string) error {
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create batch file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write batch file: %w", err)
	}
	return nil
}
