// Package snapshot is the persisted form of a game: the live state, AI goals,
// RNG positions and the undo timeline, stamped with a format version.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/history"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
)

// MainID is the key of the single persisted game.
const MainID = "main"

var ErrVersionMismatch = errors.New("snapshot version mismatch")

type Header struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Turn    int    `json:"turn"`
	Digest  string `json:"digest"`
}

type Snapshot struct {
	Header  Header           `json:"header"`
	Game    *model.GameState `json:"game"`
	AI      model.AIState    `json:"ai"`
	Rand    rng.State        `json:"rand"`
	History *history.History `json:"history,omitempty"`
}

// New stamps a snapshot of the given state. The state is not cloned; callers
// pass a copy they no longer mutate.
func New(version int, gs *model.GameState, ai model.AIState, st rng.State, h *history.History) Snapshot {
	return Snapshot{
		Header:  Header{Version: version, ID: MainID, Turn: gs.Turn, Digest: gs.Digest()},
		Game:    gs,
		AI:      ai,
		Rand:    st,
		History: h,
	}
}

// Encode writes a JSON header line followed by the JSON body, zstd
// compressed.
func Encode(w io.Writer, snap Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	hb, err := json.Marshal(snap.Header)
	if err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a snapshot written by Encode. A version other than want
// yields ErrVersionMismatch without decoding the body.
func Decode(r io.Reader, want int) (Snapshot, error) {
	var snap Snapshot
	dec, err := zstd.NewReader(r)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != want {
		return snap, fmt.Errorf("%w: have %d, want %d", ErrVersionMismatch, h.Version, want)
	}
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	if snap.Game == nil {
		return snap, fmt.Errorf("snapshot %s has no game state", h.ID)
	}
	return snap, nil
}

func Marshal(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(b []byte, want int) (Snapshot, error) {
	return Decode(bytes.NewReader(b), want)
}

func WriteFile(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ReadFile(path string, want int) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return Decode(f, want)
}
