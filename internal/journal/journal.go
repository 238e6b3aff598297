// Package journal appends client activity to date-organized JSONL files.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/pang/internal/analysis"
	"github.com/dgnsrekt/pang/internal/forms"
)

var (
	ErrClosed     = errors.New("journal is closed")
	ErrBufferFull = errors.New("journal buffer full")
)

// Entry is one journal line.
type Entry struct {
	Time     time.Time       `json:"time"`
	Kind     string          `json:"kind"`
	Form     *FormEntry      `json:"form,omitempty"`
	Analysis *analysis.Event `json:"analysis,omitempty"`
}

// FormEntry records a form outcome. It never carries credentials.
type FormEntry struct {
	Name  string      `json:"name"`
	State forms.State `json:"state"`
	OK    bool        `json:"ok"`
}

// Writer queues entries and writes them from one goroutine.
type Writer struct {
	baseDir     string
	name        string
	maxSizeMB   int
	writeCh     chan Entry
	done        chan struct{}
	wg          sync.WaitGroup
	currentDate string
	logger      *lumberjack.Logger
	mu          sync.Mutex
	closeOnce   sync.Once
	now         func() time.Time
}

// NewWriter starts a writer that rotates files per UTC date and at maxSizeMB.
func NewWriter(baseDir, name string, bufferSize, maxSizeMB int) *Writer {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	w := &Writer{
		baseDir:   baseDir,
		name:      name,
		maxSizeMB: maxSizeMB,
		writeCh:   make(chan Entry, bufferSize),
		done:      make(chan struct{}),
		now:       time.Now,
	}
	w.wg.Add(1)
	go w.writeLoop()
	return w
}

// Write queues an entry without blocking.
func (w *Writer) Write(e Entry) error {
	if e.Time.IsZero() {
		e.Time = w.now().UTC()
	}
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.writeCh <- e:
		return nil
	case <-w.done:
		return ErrClosed
	default:
		slog.Warn("journal buffer full, dropping entry", "kind", e.Kind)
		return ErrBufferFull
	}
}

// RecordForm implements forms.Recorder.
func (w *Writer) RecordForm(kind string, state forms.State, ok bool) {
	if err := w.Write(Entry{Kind: "form", Form: &FormEntry{Name: kind, State: state, OK: ok}}); err != nil {
		slog.Debug("journal form entry dropped", "error", err)
	}
}

// RecordAnalysis implements analysis.Recorder.
func (w *Writer) RecordAnalysis(ev analysis.Event) {
	if err := w.Write(Entry{Kind: "analysis", Analysis: &ev}); err != nil {
		slog.Debug("journal analysis entry dropped", "error", err)
	}
}

// Close flushes queued entries and closes the current file.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		return w.logger.Close()
	}
	return nil
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()
	for {
		select {
		case e := <-w.writeCh:
			w.writeEntry(e)
		case <-w.done:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		select {
		case e := <-w.writeCh:
			w.writeEntry(e)
		default:
			return
		}
	}
}

func (w *Writer) writeEntry(e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("journal entry marshal failed", "error", err, "kind", e.Kind)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	date := e.Time.UTC().Format("2006-01-02")
	if w.logger == nil || date != w.currentDate {
		if err := w.rotateForDate(date); err != nil {
			slog.Error("journal rotate failed", "error", err, "date", date)
			return
		}
	}

	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("journal write failed", "error", err, "kind", e.Kind)
	}
}

func (w *Writer) rotateForDate(date string) error {
	if w.logger != nil {
		if err := w.logger.Close(); err != nil {
			slog.Debug("journal close previous file failed", "error", err)
		}
	}

	dir := filepath.Join(w.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.logger = nil
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	filename := filepath.Join(dir, w.name+".jsonl")
	w.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    w.maxSizeMB,
		MaxBackups: 30,
		MaxAge:     90,
		LocalTime:  false,
	}
	w.currentDate = date
	slog.Debug("journal file opened", "file", filename)
	return nil
}
