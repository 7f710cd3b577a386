package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JasonZhangjc/stock-query/internal/domain"
)

func TestCodeFileRoundTrip(t *testing.T) {
	f := NewCodeFile(filepath.Join(t.TempDir(), "nested", "stocks.json"))

	want := []string{"600000", "000001"}
	if err := f.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load returned %d codes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("code[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := os.Stat(f.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestCodeFileSchema(t *testing.T) {
	f := NewCodeFile(filepath.Join(t.TempDir(), "stocks.json"))
	if err := f.Save([]string{"0600000"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got, want := string(data), `{"stocks":[{"code":"0600000"}]}`; got != want {
		t.Errorf("file content = %s, want %s", got, want)
	}
}

func TestCodeFileSaveEmpty(t *testing.T) {
	f := NewCodeFile(filepath.Join(t.TempDir(), "stocks.json"))
	if err := f.Save(nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load returned %v, want empty", got)
	}
}

func TestCodeFileLoadErrors(t *testing.T) {
	dir := t.TempDir()

	missing := NewCodeFile(filepath.Join(dir, "absent.json"))
	if _, err := missing.Load(); err == nil {
		t.Error("Load of a missing file should fail")
	}

	corruptPath := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corruptPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCodeFile(corruptPath).Load(); err == nil {
		t.Error("Load of a corrupt file should fail")
	}
}

func TestCodeFileSkipsBlankCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.json")
	if err := os.WriteFile(path, []byte(`{"stocks":[{"code":"a"},{},{"code":""},{"code":"b"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewCodeFile(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Load = %v, want [a b]", got)
	}
}

func sampleStocks() []domain.Stock {
	return []domain.Stock{
		{Title: "PFBANK", Code: "0600000", Price: 7.52, Percent: 0.0123, Open: 7.43, PrevClose: 7.43, High: 7.55, Low: 7.40},
		{Title: "PAB", Code: "1000001", Price: 11.2, Percent: -0.004, Open: 11.25, PrevClose: 11.245, High: 11.3, Low: 11.1},
	}
}

func TestQuoteLogRecordAndRead(t *testing.T) {
	ctx := context.Background()
	log, err := OpenQuoteLog(filepath.Join(t.TempDir(), "quotes.db"))
	if err != nil {
		t.Fatalf("OpenQuoteLog: %v", err)
	}
	defer log.Close()

	t1 := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	stocks := sampleStocks()
	if err := log.Record(ctx, t1, stocks); err != nil {
		t.Fatalf("Record t1: %v", err)
	}
	stocks[0].Price = 7.60
	if err := log.Record(ctx, t2, stocks[:1]); err != nil {
		t.Fatalf("Record t2: %v", err)
	}

	all, err := log.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All returned %d rows, want 3", len(all))
	}
	if all[0].Timestamp != t1.UnixMilli() || all[2].Timestamp != t2.UnixMilli() {
		t.Errorf("rows not ordered by time: %+v", all)
	}

	latest, err := log.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("Latest returned %d rows, want 2", len(latest))
	}
	if latest[0].Code != "0600000" || latest[0].Price != 7.60 {
		t.Errorf("latest[0] = %+v, want 0600000 at 7.60", latest[0])
	}
	if latest[1].Code != "1000001" || latest[1].Timestamp != t1.UnixMilli() {
		t.Errorf("latest[1] = %+v, want 1000001 from t1", latest[1])
	}
}

func TestQuoteLogRecordEmpty(t *testing.T) {
	ctx := context.Background()
	log, err := OpenQuoteLog(filepath.Join(t.TempDir(), "quotes.db"))
	if err != nil {
		t.Fatalf("OpenQuoteLog: %v", err)
	}
	defer log.Close()

	if err := log.Record(ctx, time.Now(), nil); err != nil {
		t.Fatalf("Record(nil): %v", err)
	}
	all, err := log.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("All returned %d rows, want 0", len(all))
	}
}

func TestExportParquet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	log, err := OpenQuoteLog(filepath.Join(dir, "quotes.db"))
	if err != nil {
		t.Fatalf("OpenQuoteLog: %v", err)
	}
	defer log.Close()

	at := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	if err := log.Record(ctx, at, sampleStocks()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	rows, err := log.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}

	out := filepath.Join(dir, "export", "quotes.parquet")
	if err := ExportParquet(out, rows); err != nil {
		t.Fatalf("ExportParquet: %v", err)
	}
	got, err := ReadParquet(out)
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("read %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row[%d] = %+v, want %+v", i, got[i], rows[i])
		}
	}
}
