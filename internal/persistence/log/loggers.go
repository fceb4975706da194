// Package log writes append-only compressed JSONL streams: the turn log used
// for replay and the command audit trail.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/game"
)

// JSONLZstdWriter appends JSON lines to <dir>/<prefix>-<segment>.jsonl.zst.
// Each open of a segment starts a new zstd frame, so a segment reopened
// after a restart stays readable as one stream.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu     sync.Mutex
	curSeg string
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{baseDir: baseDir, prefix: prefix}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(segment string, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if segment != w.curSeg || w.w == nil {
		if err := w.rotateLocked(segment); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Path is the file a segment is written to.
func (w *JSONLZstdWriter) Path(segment string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, segment))
}

func (w *JSONLZstdWriter) rotateLocked(segment string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.Path(segment)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curSeg = segment
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// ReadJSONL decodes every line of a compressed JSONL file into T.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []T
	jd := json.NewDecoder(dec)
	for {
		var v T
		err := jd.Decode(&v)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%s entry %d: %w", filepath.Base(path), len(out), err)
		}
		out = append(out, v)
	}
}

// TurnLogger writes one entry per turn, one file per seed.
type TurnLogger struct{ w *JSONLZstdWriter }

func NewTurnLogger(dir string) *TurnLogger {
	return &TurnLogger{w: NewJSONLZstdWriter(filepath.Join(dir, "turns"), "turns")}
}

func (l *TurnLogger) WriteTurn(e game.TurnLogEntry) error {
	return l.w.Write(fmt.Sprint(e.Seed), e)
}

func (l *TurnLogger) Path(seed int64) string { return l.w.Path(fmt.Sprint(seed)) }

func (l *TurnLogger) Close() error { return l.w.Close() }

// ReadTurnLog loads a turn log written by TurnLogger.
func ReadTurnLog(path string) ([]game.TurnLogEntry, error) {
	return ReadJSONL[game.TurnLogEntry](path)
}

// AuditEntry records one client request and how the engine answered it.
type AuditEntry struct {
	Time     time.Time       `json:"time"`
	Session  string          `json:"session"`
	Turn     int             `json:"turn"`
	Action   string          `json:"action"`
	Args     json.RawMessage `json:"args,omitempty"`
	Accepted bool            `json:"accepted"`
	Code     string          `json:"code,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// AuditLogger writes audit entries into one file per UTC day.
type AuditLogger struct{ w *JSONLZstdWriter }

func NewAuditLogger(dir string) *AuditLogger {
	return &AuditLogger{w: NewJSONLZstdWriter(filepath.Join(dir, "audit"), "audit")}
}

func (l *AuditLogger) WriteAudit(e AuditEntry) error {
	return l.w.Write(e.Time.UTC().Format("2006-01-02"), e)
}

func (l *AuditLogger) Close() error { return l.w.Close() }

// AuditFiles lists audit segments in date order.
func AuditFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "audit", "audit-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return strings.Compare(matches[i], matches[j]) < 0 })
	return matches, nil
}
