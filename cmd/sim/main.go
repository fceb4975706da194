// Command sim plays a game headlessly with an AI intellect and prints a
// summary.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/config"
	persistlog "github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/log"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/game"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

func main() {
	var cfg config.Sim
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "game seed")
	flag.IntVar(&cfg.Turns, "turns", cfg.Turns, "turns to delegate")
	flag.StringVar(&cfg.Intellect, "intellect", cfg.Intellect, "AI intellect name")
	flag.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "path to tuning.yaml (default: embedded)")
	var (
		money     = flag.Int("grant_money", 0, "money granted before the first turn")
		force     = flag.String("force", "", "forced rolls, e.g. agent_attack=0,enemy_attack=1")
		exportTo  = flag.String("export", "", "write the final snapshot to this path")
		turnLogTo = flag.String("turnlog", "", "write a replayable turn log under this directory")
	)
	flag.Parse()

	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	if err := run(cfg, *money, *force, *exportTo, *turnLogTo, logger); err != nil {
		fmt.Fprintln(os.Stderr, "sim:", err)
		os.Exit(1)
	}
}

func run(cfg config.Sim, money int, force, exportTo, turnLogTo string, logger *slog.Logger) error {
	tune := tuning.Defaults()
	if cfg.TuningPath != "" {
		t, err := tuning.Load(cfg.TuningPath)
		if err != nil {
			return err
		}
		tune = t
	}
	gc := game.Config{Seed: cfg.Seed, Tuning: &tune, Log: logger}
	if turnLogTo != "" {
		tl := persistlog.NewTurnLogger(turnLogTo)
		defer tl.Close()
		gc.TurnLog = tl
		defer fmt.Println("turn log:", tl.Path(cfg.Seed))
	}
	eng, err := game.New(gc)
	if err != nil {
		return err
	}
	defer eng.Close()

	overrides, err := parseForce(force)
	if err != nil {
		return err
	}
	for stream, v := range overrides {
		eng.Debug().SetRand(stream, v)
	}
	if money != 0 {
		if res := eng.Debug().GrantMoney(money); !res.Success {
			return fmt.Errorf("grant money: %s", res.ErrorMessage)
		}
	}

	played, err := eng.DelegateTurnsToAIPlayer(cfg.Intellect, cfg.Turns)
	if err != nil {
		return err
	}
	summarize(eng, played)

	if exportTo != "" {
		if err := snapshot.WriteFile(exportTo, eng.Snapshot()); err != nil {
			return err
		}
		fmt.Println("snapshot:", exportTo)
	}
	return nil
}

func parseForce(s string) (map[string]fixed6.F, error) {
	out := map[string]fixed6.F{}
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad -force entry %q", kv)
		}
		v, err := fixed6.Parse(val)
		if err != nil {
			return nil, fmt.Errorf("-force %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func summarize(eng *game.Engine, played int) {
	p := message.NewPrinter(language.English)
	gs := eng.GameState()

	outcome := "in progress"
	switch {
	case eng.IsGameWon():
		outcome = "won"
	case eng.IsGameOver():
		outcome = "lost"
	}
	p.Printf("seed %d: %s after %d turns (turn %d)\n", eng.Seed(), outcome, played, gs.Turn)
	p.Printf("money %d  funding %d  intel %s  panic %s%%\n", gs.Money, gs.Funding, gs.Intel, gs.Panic)
	p.Printf("agents %d employed, %d lost  caps: agents %d transport %d training %d\n",
		gs.EmployedCount(), len(gs.Agents)-gs.EmployedCount(), gs.AgentCap, gs.TransportCap, gs.TrainingCap)

	won, lost := 0, 0
	for _, m := range gs.Missions {
		switch m.State {
		case model.MissionWon:
			won++
		case model.MissionRetreated, model.MissionWiped:
			lost++
		}
	}
	p.Printf("missions %d won, %d failed\n", won, lost)
	for _, f := range gs.Factions {
		status := fmt.Sprintf("activity level %d", f.ActivityLevel)
		if f.Defeated {
			status = "defeated"
		}
		p.Printf("  %-24s %s\n", f.ID, status)
	}
	ai := eng.AIState()
	for u := model.Upgrade(0); u < model.UpgradeCount; u++ {
		if ai.Actual[u] > 0 {
			p.Printf("  upgrade %-22s x%d\n", u.Name(), ai.Actual[u])
		}
	}
	fmt.Println("digest:", gs.Digest())
}
