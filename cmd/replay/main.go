// Command replay re-runs a turn log from its seed and verifies the state
// digest after every turn.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/config"
	persistlog "github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/log"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/game"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

func main() {
	var (
		logPath    = flag.String("log", "", "path to turns-<seed>.jsonl.zst")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: embedded)")
		snapPath   = flag.String("snapshot", "", "compare the replayed end state with this snapshot (optional)")
		verbose    = flag.Bool("v", false, "log engine activity")
	)
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "missing -log")
		os.Exit(2)
	}

	entries, err := persistlog.ReadTurnLog(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read turn log:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "turn log is empty")
		os.Exit(1)
	}

	tune := tuning.Defaults()
	if *tuningPath != "" {
		if tune, err = tuning.Load(*tuningPath); err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}
	logger := config.NewLogger(io.Discard, slog.LevelInfo)
	if *verbose {
		logger = config.NewLogger(os.Stderr, slog.LevelDebug)
	}
	cfg := game.Config{Tuning: &tune, Log: logger}

	ops := 0
	for _, e := range entries {
		ops += len(e.Ops)
	}
	fmt.Printf("turn log seed=%d entries=%d ops=%d turns=%d..%d\n",
		entries[0].Seed, len(entries), ops, entries[0].Turn, entries[len(entries)-1].Turn)

	eng, err := game.Replay(cfg, entries)
	if err != nil {
		if errors.Is(err, game.ErrReplayDiverged) {
			fmt.Fprintln(os.Stderr, "MISMATCH:", err)
		} else {
			fmt.Fprintln(os.Stderr, "replay:", err)
		}
		os.Exit(1)
	}
	gs := eng.GameState()
	fmt.Printf("OK turn=%d digest=%s\n", gs.Turn, gs.Digest())

	if *snapPath != "" {
		snap, err := snapshot.ReadFile(*snapPath, tune.Persistence.Version)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		if snap.Header.Digest != gs.Digest() {
			fmt.Fprintf(os.Stderr, "MISMATCH: snapshot digest %s\n", snap.Header.Digest)
			os.Exit(1)
		}
		fmt.Println("snapshot matches")
	}
}
