package batch_test

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/batch"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/testsupport"
)

func TestEnsureInitializedWritesHeaderOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	if err := store.EnsureInitialized(ctx); err != nil {
		t.Fatalf("EnsureInitialized failed: %v", err)
	}
	if err := store.EnsureInitialized(ctx); err != nil {
		t.Fatalf("second EnsureInitialized failed: %v", err)
	}

	rows := readBatchFile(t, store.Path())
	if len(rows) != 1 {
		t.Fatalf("expected header-only file, got %d rows", len(rows))
	}
	if rows[0][2] != "Serial Number" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
}

func TestAppendRejectsCaseInsensitiveDuplicate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	first := batch.Record{EquipmentType: "Laptop", ItemDescription: "Dell Latitude", SerialNumber: "ABC123", TempleTag: "CPH1000"}
	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("first append failed: %v", err)
	}

	dup := batch.Record{EquipmentType: "Laptop", SerialNumber: "abc123 "}
	err := store.Append(ctx, dup)
	if !errors.Is(err, batch.ErrDuplicateSerial) {
		t.Fatalf("expected ErrDuplicateSerial, got %v", err)
	}

	rows := readBatchFile(t, store.Path())
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row after duplicate, got %d rows", len(rows))
	}
}

func TestAppendAllowsEmptySerials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Append(ctx, batch.Record{EquipmentType: "Monitor", SerialNumber: "  "}); err != nil {
			t.Fatalf("append %d with empty serial failed: %v", i, err)
		}
	}

	rows := readBatchFile(t, store.Path())
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	for _, row := range rows[1:] {
		if row[2] != "" {
			t.Fatalf("expected empty serial stored, got %q", row[2])
		}
	}
}

func TestAppendDefaultsMissingTempleTag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	if err := store.Append(ctx, batch.Record{EquipmentType: "Desktop", SerialNumber: "XYZ9"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	rows := readBatchFile(t, store.Path())
	if got := rows[1][3]; got != batch.MissingTagSentinel {
		t.Fatalf("expected %q temple tag, got %q", batch.MissingTagSentinel, got)
	}
}

func TestRecentReturnsLastFiveMostRecentFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		rec := batch.Record{EquipmentType: "Laptop", SerialNumber: fmt.Sprintf("SER-%d", i)}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	items, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	for i, want := range []string{"SER-7", "SER-6", "SER-5", "SER-4", "SER-3"} {
		if items[i][2] != want {
			t.Fatalf("item %d: expected serial %q, got %q", i, want, items[i][2])
		}
	}
}

func TestRecentOnEmptyBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)

	items, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestResetTruncatesToHeader(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	if err := store.Append(ctx, batch.Record{SerialNumber: "KEEP-1"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	rows := readBatchFile(t, store.Path())
	if len(rows) != 1 {
		t.Fatalf("expected header-only file after reset, got %d rows", len(rows))
	}

	// The old serial must be appendable again.
	if err := store.Append(ctx, batch.Record{SerialNumber: "KEEP-1"}); err != nil {
		t.Fatalf("append after reset failed: %v", err)
	}
}

func TestDrainMissingBatchReturnsErrNoBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)

	err := store.Drain(context.Background(), func([][]string) error { return nil })
	if !errors.Is(err, batch.ErrNoBatch) {
		t.Fatalf("expected ErrNoBatch, got %v", err)
	}
}

func TestDrainFailureLeavesBatchIntact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	if err := store.Append(ctx, batch.Record{SerialNumber: "STAY-1"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	wantErr := errors.New("conversion exploded")
	err := store.Drain(ctx, func([][]string) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected convert error, got %v", err)
	}

	if _, statErr := os.Stat(store.Path()); statErr != nil {
		t.Fatalf("batch file should survive a failed drain: %v", statErr)
	}
}

func TestDrainDeletesBatchOnSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	if err := store.Append(ctx, batch.Record{SerialNumber: "GONE-1"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	var got [][]string
	if err := store.Drain(ctx, func(rows [][]string) error {
		got = rows
		return nil
	}); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected header + 1 row handed to convert, got %d", len(got))
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("batch file should be deleted after drain, stat err: %v", err)
	}

	items, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent after drain failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty recent list after drain, got %d items", len(items))
	}
}

func TestDataRowCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := batch.NewStore(cfg, nil)
	ctx := context.Background()

	count, err := store.DataRowCount(ctx)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 rows for missing batch, got %d (err %v)", count, err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, batch.Record{SerialNumber: fmt.Sprintf("C-%d", i)}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	count, err = store.DataRowCount(ctx)
	if err != nil {
		t.Fatalf("DataRowCount failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 data rows, got %d", count)
	}
}

func readBatchFile(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open batch file: %v", err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read batch file: %v", err)
	}
	return rows
}
