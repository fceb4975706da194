// Package turn advances the game by one turn. The pipeline order is fixed:
// agents, factions, investigations and missions, economy, bookkeeping.
// Mission rewards are applied after every mission of the turn has been
// evaluated and before suppression decays.
package turn

import (
	"log/slog"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/combat"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/invariant"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

var hundred = fixed6.FromInt(100)

type advancer struct {
	r      *ruleset.Rules
	gs     *model.GameState
	src    rng.Source
	log    *slog.Logger
	report *model.TurnReport
}

// Advance runs the pipeline once and returns the turn report, which is also
// stored as gs.LastTurnReport.
func Advance(r *ruleset.Rules, gs *model.GameState, src rng.Source, log *slog.Logger) *model.TurnReport {
	if log == nil {
		log = slog.Default()
	}
	a := &advancer{
		r:   r,
		gs:  gs,
		src: src,
		log: log,
		report: &model.TurnReport{
			Turn:        gs.Turn,
			MoneyBefore: gs.Money,
			PanicBefore: gs.Panic,
		},
	}

	a.updateAgents()
	a.updateFactions()
	a.updateInvestigations()
	results := a.updateMissions()
	a.applyRewards(results)
	a.updateEconomy()

	gs.ActionsCount = 0
	gs.Turn++
	gs.TurnExpenditures = model.TurnExpenditures{}
	a.report.MoneyAfter = gs.Money
	a.report.PanicAfter = gs.Panic
	gs.LastTurnReport = a.report

	invariant.NoError(model.Validate(gs))
	log.Info("turn advanced",
		"turn", a.report.Turn,
		"money", gs.Money,
		"funding", gs.Funding,
		"panic", gs.Panic.String(),
		"missions", len(a.report.Missions),
		"leads", len(a.report.LeadsCompleted),
	)
	return a.report
}

func (a *advancer) updateAgents() {
	at := a.r.T.Agents
	bonus := a.gs.Bonuses
	for i := range a.gs.Agents {
		ag := &a.gs.Agents[i]
		if !ag.Employed() {
			continue
		}
		if ag.State == model.InTransit {
			arrive(ag)
		}
		switch ag.State {
		case model.OnAssignment:
			ag.ExhaustionPct = ag.ExhaustionPct.Add(at.WorkExhaustionPerTurn)
		case model.InTraining:
			ag.ExhaustionPct = ag.ExhaustionPct.Add(at.WorkExhaustionPerTurn)
			ag.Skill = ag.Skill.Add(at.TrainingSkillGainPerTurn).Add(bonus.TrainingSkillGain)
		case model.Available:
			a.rest(ag)
		case model.Recovering:
			pct := at.HitPointsRecoveryPct.Add(bonus.HitPointsRecovery)
			if ag.RecoveryTurns == 0 {
				ag.RecoveryTurns = recoveryTurns(ag, pct)
			}
			a.rest(ag)
			heal := ag.MaxHitPoints.Mul(pct).Div(hundred)
			ag.HitPoints = fixed6.Min(ag.MaxHitPoints, ag.HitPoints.Add(heal))
			ag.RecoveryTurns--
			if ag.RecoveryTurns <= 0 || !ag.Injured() {
				ag.HitPoints = ag.MaxHitPoints
				ag.RecoveryTurns = 0
				ag.State = model.Available
				ag.Assignment = model.Assignment{Kind: model.Standby}
			}
		}
	}
}

// recoveryTurns is ceil(lostPct / pct), at least 1. It is fixed when
// recovery starts; later recovery upgrades only speed up healing.
func recoveryTurns(ag *model.Agent, pct fixed6.F) int {
	invariant.Check(pct > 0, "hit point recovery pct %s", pct)
	lost := ag.MaxHitPoints.Sub(ag.HitPoints).Div(ag.MaxHitPoints).Mul(hundred)
	return max(1, lost.Div(pct).CeilInt())
}

func (a *advancer) rest(ag *model.Agent) {
	rec := a.r.T.Agents.ExhaustionRecoveryPerTurn.Add(a.gs.Bonuses.ExhaustionRecovery)
	ag.ExhaustionPct = fixed6.Max(0, ag.ExhaustionPct.Sub(rec))
}

// arrive moves an agent in transit into the state its assignment implies.
func arrive(ag *model.Agent) {
	switch ag.Assignment.Kind {
	case model.Contracting, model.Espionage, model.Investigation:
		ag.State = model.OnAssignment
	case model.Training:
		ag.State = model.InTraining
	case model.MissionDuty:
		ag.State = model.OnMission
	case model.Recovery:
		ag.State = model.Recovering
	case model.Standby:
		ag.State = model.Available
	default:
		invariant.Fail("agent %s in transit with assignment %s", ag.ID, ag.Assignment.Kind)
	}
}

func (a *advancer) updateFactions() {
	maxLevel := a.r.C.MaxActivityLevel()
	for i := range a.gs.Factions {
		f := &a.gs.Factions[i]
		if f.Defeated || f.Suppressed() {
			continue
		}
		if f.TurnsUntilNextOperation > 0 {
			f.TurnsUntilNextOperation--
			if f.TurnsUntilNextOperation == 0 {
				a.startOperation(f)
				f.TurnsUntilNextOperation = a.r.RollOperationFrequency(f.ActivityLevel, a.src)
			}
		}
		f.TurnsAtCurrentLevel++
		if f.TargetTurnsForLevelUp != catalogs.Never && f.TurnsAtCurrentLevel >= f.TargetTurnsForLevelUp && f.ActivityLevel < maxLevel {
			f.ActivityLevel++
			f.TurnsAtCurrentLevel = 0
			f.TargetTurnsForLevelUp = a.r.RollProgressionTurns(f.ActivityLevel, a.src)
			if f.TurnsUntilNextOperation == catalogs.Never {
				f.TurnsUntilNextOperation = a.r.RollOperationFrequency(f.ActivityLevel, a.src)
			}
			a.report.FactionsLeveledUp = append(a.report.FactionsLeveledUp, f.ID)
			a.log.Info("faction escalated", "faction", f.ID, "level", f.ActivityLevel)
		}
	}
}

func (a *advancer) startOperation(f *model.Faction) {
	level := a.r.RollOperationLevel(f.ActivityLevel, a.src)
	if level == 0 {
		return
	}
	ids := a.r.C.Missions.Defensive[f.FactionDataID]
	invariant.Check(level <= len(ids), "faction %s has no level %d operation", f.ID, level)
	def := a.r.MissionDef(ids[level-1])
	m := SpawnMission(a.r, a.gs, def)
	f.LastOperationTypeName = def.Name
	a.report.MissionsSpawned = append(a.report.MissionsSpawned, m.ID)
	a.log.Info("faction operation", "faction", f.ID, "level", level, "mission", m.ID)
}

// SpawnMission appends an Active mission of def created on the current turn.
func SpawnMission(r *ruleset.Rules, gs *model.GameState, def catalogs.MissionDef) *model.Mission {
	gs.Missions = append(gs.Missions, model.Mission{
		ID:             gs.NewMissionID(),
		MissionDataID:  def.ID,
		State:          model.MissionActive,
		AgentIDs:       []string{},
		Enemies:        r.SpawnEnemies(gs, def),
		OperationLevel: def.OperationLevel,
		FactionID:      def.FactionID,
		ExpiresIn:      def.ExpiresIn,
		TurnCreated:    gs.Turn,
	})
	return &gs.Missions[len(gs.Missions)-1]
}

func (a *advancer) updateInvestigations() {
	for _, inv := range a.gs.Investigations() {
		if inv.State != model.InvestigationActive {
			continue
		}
		for _, id := range inv.AgentIDs {
			ag := a.gs.Agent(id)
			invariant.Check(ag != nil, "investigation %s: unknown agent %s", inv.ID, id)
			if ag.State == model.OnAssignment {
				inv.AccumulatedIntel = inv.AccumulatedIntel.Add(a.r.LeadIntel(ag))
			}
		}
		if inv.AccumulatedIntel <= 0 {
			continue
		}
		lead, ok := a.r.LeadDef(inv.LeadID)
		invariant.Check(ok, "lead data %q missing", inv.LeadID)
		chance := fixed6.Min(fixed6.One, inv.AccumulatedIntel.Div(lead.Difficulty))
		if a.src.Roll(rng.LeadInvestigation) >= chance {
			continue
		}
		a.completeInvestigation(inv, lead)
	}
}

func (a *advancer) completeInvestigation(inv *model.LeadInvestigation, lead catalogs.LeadDef) {
	inv.State = model.InvestigationDone
	inv.TurnCompleted = a.gs.Turn
	a.gs.LeadInvestigationCounts[lead.ID]++
	for _, id := range inv.AgentIDs {
		if ag := a.gs.Agent(id); ag != nil && ag.Employed() {
			ag.StandDown()
		}
	}
	for _, mid := range lead.Missions {
		m := SpawnMission(a.r, a.gs, a.r.MissionDef(mid))
		a.report.MissionsSpawned = append(a.report.MissionsSpawned, m.ID)
	}
	a.report.LeadsCompleted = append(a.report.LeadsCompleted, lead.ID)
	a.log.Info("lead completed", "lead", lead.ID, "investigation", inv.ID, "intel", inv.AccumulatedIntel.String())
}

func (a *advancer) updateMissions() []combat.Result {
	var results []combat.Result
	for i := range a.gs.Missions {
		m := &a.gs.Missions[i]
		switch m.State {
		case model.MissionActive:
			if m.TurnCreated == a.gs.Turn {
				continue
			}
			m.ExpiresIn--
			if m.ExpiresIn <= 0 {
				results = append(results, combat.Expire(a.r, a.gs, m))
				a.log.Info("mission expired", "mission", m.ID, "data", m.MissionDataID)
			}
		case model.MissionDeployed:
			res := combat.Resolve(a.r, a.gs, m, a.src, a.log)
			a.report.AgentsLost = append(a.report.AgentsLost, res.Casualties...)
			results = append(results, res)
		}
	}
	return results
}

// applyRewards settles mission outcomes in mission order. Suppression is
// added to the value the faction step saw this turn.
func (a *advancer) applyRewards(results []combat.Result) {
	gs := a.gs
	for _, res := range results {
		rw := res.Rewards
		m := gs.Mission(res.MissionID)
		a.report.Missions = append(a.report.Missions, model.MissionOutcome{
			MissionID:     res.MissionID,
			MissionDataID: m.MissionDataID,
			State:         res.Outcome,
			Casualties:    len(res.Casualties),
			Rounds:        res.Rounds,
		})
		gs.Money += rw.Money
		a.report.MissionMoney += rw.Money
		gs.Funding = max(0, gs.Funding+rw.Funding)
		gs.Intel = gs.Intel.Add(rw.Intel)
		gs.Panic = fixed6.Max(0, gs.Panic.Sub(rw.PanicReduction))
		if rw.FactionID != "" {
			f := gs.Faction(rw.FactionID)
			invariant.Check(f != nil, "mission %s: unknown faction %s", m.ID, rw.FactionID)
			f.SuppressionTurns += rw.Suppression
			if rw.DefeatsFaction && !f.Defeated {
				f.Defeated = true
				a.report.FactionsDefeated = append(a.report.FactionsDefeated, f.ID)
				a.log.Info("faction defeated", "faction", f.ID)
			}
		}
		if rw.Existential {
			gs.ExistentialFailure = true
		}
	}
}

func (a *advancer) updateEconomy() {
	gs, r := a.gs, a.r
	income := r.ContractingIncome(gs)
	upkeep := r.AgentUpkeep(gs)
	intel := r.EspionageIntel(gs)
	gs.Money += gs.Funding + income - upkeep
	gs.Intel = gs.Intel.Add(intel)
	gs.Panic = gs.Panic.Add(r.PanicIncrease(gs))
	for i := range gs.Factions {
		if gs.Factions[i].SuppressionTurns > 0 {
			gs.Factions[i].SuppressionTurns--
		}
	}
	a.report.Funding = gs.Funding
	a.report.ContractingIncome = income
	a.report.Upkeep = upkeep
	a.report.IntelGained = intel
}
