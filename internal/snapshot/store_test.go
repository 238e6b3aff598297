package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveGetReadImage(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "snaps"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	meta, err := store.Save(Meta{Ticker: "AAPL", Period: "1mo", Format: "svg", Points: 2}, []byte("<svg/>"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.ID == "" || meta.CreatedAt.IsZero() || meta.SizeBytes != len("<svg/>") {
		t.Fatalf("Save() meta = %+v; want id, time and size filled", meta)
	}

	got, err := store.Get(meta.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Ticker != "AAPL" || got.Points != 2 {
		t.Fatalf("Get() = %+v", got)
	}

	img, format, err := store.ReadImage(meta.ID)
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}
	if format != "svg" || string(img) != "<svg/>" {
		t.Fatalf("ReadImage() = (%q, %q)", img, format)
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Save(Meta{ID: "../escape", Format: "png"}, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Save() with bad id error = %v; want ErrInvalid", err)
	}
	if _, err := store.Save(Meta{Format: "gif"}, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Save() with bad format error = %v; want ErrInvalid", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, ticker := range []string{"A", "B", "C"} {
		if _, err := store.Save(Meta{Ticker: ticker, Format: "png", CreatedAt: base.Add(time.Duration(i) * time.Hour)}, []byte{1}); err != nil {
			t.Fatalf("Save(%s) error = %v", ticker, err)
		}
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 3 || metas[0].Ticker != "C" || metas[2].Ticker != "A" {
		t.Fatalf("List() order = %+v", metas)
	}
}

func TestGetMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Get(NewID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v; want ErrNotFound", err)
	}
}

func TestDeleteLogsImageCleanupFailureWhenImageMissing(t *testing.T) {
	dir := t.TempDir()
	store := &Store{dir: dir}
	id := "123e4567-e89b-12d3-a456-426614174000"
	jsonPath := filepath.Join(dir, id+".json")

	metaBytes, err := json.Marshal(Meta{ID: id, Format: "png"})
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	if err := os.WriteFile(jsonPath, metaBytes, 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	var buf bytes.Buffer
	oldLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(oldLogger)
	})

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete() = %v; want nil", err)
	}
	if !strings.Contains(buf.String(), "snapshot image cleanup failed") {
		t.Fatalf("expected image cleanup debug log, got %q", buf.String())
	}
	if _, err := os.Stat(jsonPath); !os.IsNotExist(err) {
		t.Fatalf("meta file still present: %v", err)
	}
}
