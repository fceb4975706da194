package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
)

func snap(version, turn int) snapshot.Snapshot {
	gs := &model.GameState{
		Turn:                    turn,
		Money:                   1000,
		Agents:                  []model.Agent{},
		Factions:                []model.Faction{},
		Missions:                []model.Mission{},
		LeadInvestigations:      map[string]*model.LeadInvestigation{},
		LeadInvestigationCounts: map[string]int{},
	}
	return snapshot.New(version, gs, model.AIState{DesiredAgentCount: 8}, rng.State{Seed: 1}, nil)
}

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "game.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := s.Get(ctx, snapshot.MainID, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store: %v", err)
	}
	if err := s.Put(ctx, snap(1, 3)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, snap(1, 4)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, snapshot.MainID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Game.Turn != 4 || got.AI.DesiredAgentCount != 8 {
		t.Fatalf("got turn %d ai %+v", got.Game.Turn, got.AI)
	}
}

func TestVersionMismatchDeletesRow(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if err := s.Put(ctx, snap(1, 3)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Get(ctx, snapshot.MainID, 2); !errors.Is(err, snapshot.ErrVersionMismatch) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Get(ctx, snapshot.MainID, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale row survived: %v", err)
	}
}

type recorder struct {
	mu    sync.Mutex
	turns []int
}

func (r *recorder) Put(_ context.Context, s snapshot.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, s.Header.Turn)
	return nil
}

func TestWriterKeepsLatest(t *testing.T) {
	rec := &recorder{}
	w := NewWriter(rec, time.Hour, nil)
	for turn := 1; turn <= 50; turn++ {
		w.Save(snap(1, turn))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.turns) != 1 || rec.turns[0] != 50 {
		t.Fatalf("written = %v", rec.turns)
	}
	w.Save(snap(1, 51))
	if written, _ := w.Stats(); written != 1 {
		t.Fatalf("written after close = %d", written)
	}
}

func TestWriterToSQLite(t *testing.T) {
	s := openStore(t)
	w := NewWriter(s, 0, nil)
	w.Save(snap(1, 7))
	_ = w.Close()
	got, err := s.Get(context.Background(), snapshot.MainID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Header.Turn != 7 {
		t.Fatalf("turn = %d", got.Header.Turn)
	}
}
