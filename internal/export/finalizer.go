package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/batch"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/history"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/logging"
)

// SheetTitle names the single sheet of every export workbook.
const SheetTitle = "Scan Data"

const columnPadding = 2

// Finalizer converts the accumulated batch into an archived spreadsheet and
// rotates the batch back to its empty state.
type Finalizer struct {
	store      *batch.Store
	history    *history.Store
	archiveDir string
	basename   string
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Finalizer.
type Option func(*Finalizer)

// WithClock overrides the time source used for export file names.
func WithClock(now func() time.Time) Option {
	return func(f *Finalizer) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFinalizer builds a Finalizer. The history store is optional; when nil,
// exports are simply not recorded.
func NewFinalizer(cfg *config.Config, store *batch.Store, hist *history.Store, logger *slog.Logger, opts ...Option) *Finalizer {
	f := &Finalizer{
		store:      store,
		history:    hist,
		archiveDir: cfg.Paths.ArchiveDir,
		basename:   cfg.Batch.ExportBasename,
		logger:     logging.NewComponentLogger(logger, "finalizer"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Finalize drains the current batch into a dated xlsx file in the archive
// directory and deletes the batch file. It returns the export file name.
// A missing batch yields batch.ErrNoBatch; any conversion or write failure
// leaves the batch untouched and no partial file visible in the archive.
func (f *Finalizer) Finalize(ctx context.Context) (string, error) {
	var (
		filename string
		dataRows int
	)

	err := f.store.Drain(ctx, func(rows [][]string) error {
		if err := os.MkdirAll(f.archiveDir, 0o755); err != nil {
			return fmt.Errorf("ensure archive directory: %w", err)
		}

		dest, name := f.nextExportPath()
		if err := writeWorkbook(rows, dest); err != nil {
			return err
		}

		filename = name
		if len(rows) > 1 {
			dataRows = len(rows) - 1
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	f.logger.Info("batch finalized",
		logging.String("filename", filename),
		logging.Int("data_rows", dataRows))

	if f.history != nil {
		if _, err := f.history.RecordExport(ctx, filename, dataRows); err != nil {
			f.logger.Warn("record export history", logging.Error(err))
		}
	}

	return filename, nil
}

// nextExportPath picks the first free dated name: YYYYMMDD-<basename>.xlsx,
// then -1, -2, ... on collision. Existing exports are never overwritten.
func (f *Finalizer) nextExportPath() (string, string) {
	base := fmt.Sprintf("%s-%s", f.now().Format("20060102"), f.basename)
	name := base + ".xlsx"
	dest := filepath.Join(f.archiveDir, name)

	counter := 1
	for {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest, name
		}
		name = fmt.Sprintf("%s-%d.xlsx", base, counter)
		dest = filepath.Join(f.archiveDir, name)
		counter++
	}
}

// writeWorkbook renders every batch row, header included, into a one-sheet
// workbook. The file is written beside dest and renamed into place so readers
// of the archive directory never see a partial export.
func writeWorkbook(rows [][]string, dest string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", SheetTitle); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	var widths []int
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("resolve cell name: %w", err)
			}
			if err := wb.SetCellValue(SheetTitle, cell, value); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
			for len(widths) <= colIdx {
				widths = append(widths, 0)
			}
			if len(value) > widths[colIdx] {
				widths[colIdx] = len(value)
			}
		}
	}

	for colIdx, width := range widths {
		col, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return fmt.Errorf("resolve column name: %w", err)
		}
		if err := wb.SetColWidth(SheetTitle, col, col, float64(width+columnPadding)); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := wb.Write(out); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish workbook: %w", err)
	}
	return nil
}
