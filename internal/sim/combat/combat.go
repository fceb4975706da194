// Package combat resolves a deployed mission into a terminal outcome. It
// updates the agents and enemies involved but never touches the economy:
// rewards are returned for the turn orchestrator to apply in order.
package combat

import (
	"log/slog"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/invariant"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

type Result struct {
	MissionID      string
	Outcome        model.MissionState
	Rounds         int
	AllNeutralized bool
	Retreated      bool
	Casualties     []string
	Rewards        ruleset.Rewards
}

// Resolve runs the battle of a Deployed mission and settles its agents.
func Resolve(r *ruleset.Rules, gs *model.GameState, m *model.Mission, src rng.Source, log *slog.Logger) Result {
	invariant.Check(m.State == model.MissionDeployed, "mission %s resolved in state %s", m.ID, m.State)
	if log == nil {
		log = slog.Default()
	}

	var agents []*model.Agent
	for _, id := range m.AgentIDs {
		a := gs.Agent(id)
		invariant.Check(a != nil, "mission %s: unknown agent %s", m.ID, id)
		if a.State == model.OnMission {
			agents = append(agents, a)
		}
	}

	b := battle{rules: r, src: src, agents: agents, enemies: m.Enemies, gains: map[string]fixed6.F{}, bonus: gs.Bonuses.WeaponDamage}
	b.run()

	res := Result{
		MissionID:      m.ID,
		Rounds:         b.rounds,
		AllNeutralized: b.allNeutralized(),
		Retreated:      b.retreated,
	}
	invariant.Check(!(res.AllNeutralized && res.Retreated), "mission %s both won and retreated", m.ID)
	switch {
	case res.AllNeutralized:
		res.Outcome = model.MissionWon
	case res.Retreated:
		res.Outcome = model.MissionRetreated
	default:
		res.Outcome = model.MissionWiped
	}

	for _, a := range agents {
		if a.HitPoints <= 0 {
			a.Kill(gs.Turn)
			res.Casualties = append(res.Casualties, a.ID)
		}
	}
	conclude(r, agents, len(res.Casualties), b.gains)

	m.State = res.Outcome
	m.TurnResolved = gs.Turn
	switch {
	case res.Outcome == model.MissionWon:
		res.Rewards = r.MissionRewards(m)
	case m.Defensive():
		res.Rewards = r.DefensivePenalty(m)
	}

	log.Info("mission resolved",
		"mission", m.ID,
		"data", m.MissionDataID,
		"outcome", res.Outcome,
		"rounds", res.Rounds,
		"agents", len(agents),
		"casualties", len(res.Casualties),
	)
	return res
}

// Expire closes an Active mission whose countdown ran out.
func Expire(r *ruleset.Rules, gs *model.GameState, m *model.Mission) Result {
	invariant.Check(m.State == model.MissionActive, "mission %s expired in state %s", m.ID, m.State)
	m.State = model.MissionExpired
	m.TurnResolved = gs.Turn
	res := Result{MissionID: m.ID, Outcome: model.MissionExpired}
	if m.Defensive() {
		res.Rewards = r.DefensivePenalty(m)
	}
	return res
}

// conclude applies post-battle exhaustion, skill gain and recovery to the
// surviving agents.
func conclude(r *ruleset.Rules, agents []*model.Agent, casualties int, gains map[string]fixed6.F) {
	at := r.T.Agents
	brackets := 0
	if casualties > 0 && len(agents) > 0 {
		pct := fixed6.FromRatio(int64(casualties*100), int64(len(agents)))
		brackets = pct.DivInt(at.CasualtyBracketPct).CeilInt()
	}
	penalty := at.MissionConclusionExhaustion.Add(at.ExhaustionPerCasualtyBracket.MulInt(brackets))
	for _, a := range agents {
		if a.State == model.Terminated {
			continue
		}
		a.ExhaustionPct = a.ExhaustionPct.Add(penalty)
		a.Skill = a.Skill.Add(gains[a.ID]).Add(r.SurvivalSkillGain(a.MissionsTotal))
		a.MissionsTotal++
		a.StandDown()
	}
}
