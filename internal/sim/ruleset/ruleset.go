// Package ruleset holds the pure formulas of the game. Nothing here mutates
// state; rolls take the randomness seam explicitly.
package ruleset

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/invariant"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

var hundred = fixed6.FromInt(100)

// Rules binds the formulas to one tuning and content set.
type Rules struct {
	T tuning.Tuning
	C *catalogs.Catalogs
}

func New(t tuning.Tuning, c *catalogs.Catalogs) *Rules {
	return &Rules{T: t, C: c}
}

// EffectiveSkill is skill degraded by hit point loss and exhaustion, floored
// once at the end.
func EffectiveSkill(a *model.Agent) fixed6.F {
	if a.MaxHitPoints <= 0 || a.HitPoints <= 0 {
		return 0
	}
	hpFactor := a.HitPoints.Div(a.MaxHitPoints).Clamp(0, fixed6.One)
	exFactor := fixed6.One.Sub(a.ExhaustionPct.Div(hundred).Clamp(0, fixed6.One))
	return a.Skill.Mul(hpFactor).Mul(exFactor).Floor()
}

// EnemyEffectiveSkill scales skill by remaining hit points.
func EnemyEffectiveSkill(e *model.Enemy) fixed6.F {
	if e.MaxHitPoints <= 0 || e.HitPoints <= 0 {
		return 0
	}
	return e.Skill.Mul(e.HitPoints.Div(e.MaxHitPoints)).Floor()
}

// HitChance is att / (att + def), zero when both are zero.
func HitChance(att, def fixed6.F) fixed6.F {
	if att <= 0 {
		return 0
	}
	return att.Div(att.Add(def))
}

// RollProgressionTurns returns the turns a faction must spend at level
// before advancing, or catalogs.Never.
func (r *Rules) RollProgressionTurns(level int, src rng.Source) int {
	p := r.C.Activity(level).Progression
	if p[0] == catalogs.Never || level >= r.C.MaxActivityLevel() {
		return catalogs.Never
	}
	return rng.IntRange(src, rng.ActivityProgression, p[0], p[1])
}

// RollOperationFrequency returns the turns until the next operation, or
// catalogs.Never.
func (r *Rules) RollOperationFrequency(level int, src rng.Source) int {
	f := r.C.Activity(level).OperationFrequency
	if f[0] == catalogs.Never {
		return catalogs.Never
	}
	return rng.IntRange(src, rng.OperationFrequency, f[0], f[1])
}

// RollOperationLevel draws an operation level in 1..6, or 0 when the
// activity level has no weights.
func (r *Rules) RollOperationLevel(activityLevel int, src rng.Source) int {
	w := r.C.Activity(activityLevel).OperationWeights
	i := rng.Weighted(src, rng.OperationLevel, w[:])
	if i < 0 {
		return 0
	}
	return i + 1
}

// Rewards is what a resolved mission grants. Penalties are negative.
type Rewards struct {
	Money          int      `json:"money,omitempty"`
	Funding        int      `json:"funding,omitempty"`
	Intel          fixed6.F `json:"intel,omitempty"`
	PanicReduction fixed6.F `json:"panic_reduction,omitempty"`
	Suppression    int      `json:"suppression,omitempty"`
	FactionID      string   `json:"faction_id,omitempty"`
	DefeatsFaction bool     `json:"defeats_faction,omitempty"`
	// Existential is set when an existential operation was not stopped.
	Existential bool `json:"existential,omitempty"`
}

func (r *Rules) operation(level int) catalogs.OperationLevelDef {
	op, ok := r.C.Operation(level)
	invariant.Check(ok, "operation level %d has no table entry", level)
	return op
}

// DefensiveRewards is the payout for stopping a faction operation.
func (r *Rules) DefensiveRewards(m *model.Mission) Rewards {
	op := r.operation(m.OperationLevel)
	return Rewards{
		Money:       op.Money,
		Funding:     op.FundingReward,
		Suppression: op.Suppression,
		FactionID:   m.FactionID,
	}
}

// DefensivePenalty is applied when a faction operation is lost or expires.
func (r *Rules) DefensivePenalty(m *model.Mission) Rewards {
	op := r.operation(m.OperationLevel)
	return Rewards{
		Funding:        -op.FundingPenalty,
		PanicReduction: op.PanicIncrease.Neg(),
		FactionID:      m.FactionID,
		Existential:    op.Existential,
	}
}

// OffensiveRewards come from static mission data.
func (r *Rules) OffensiveRewards(m *model.Mission) Rewards {
	def := r.MissionDef(m.MissionDataID)
	return Rewards{
		Money:          def.Rewards.Money,
		Funding:        def.Rewards.Funding,
		Intel:          def.Rewards.Intel,
		PanicReduction: def.Rewards.PanicReduction,
		Suppression:    def.Rewards.Suppression,
		FactionID:      m.FactionID,
		DefeatsFaction: def.Rewards.DefeatsFaction,
	}
}

// MissionRewards dispatches on the mission kind.
func (r *Rules) MissionRewards(m *model.Mission) Rewards {
	if m.Defensive() {
		return r.DefensiveRewards(m)
	}
	return r.OffensiveRewards(m)
}

func (r *Rules) MissionDef(id string) catalogs.MissionDef {
	def, ok := r.C.Missions.ByID[id]
	invariant.Check(ok, "mission data %q missing", id)
	return def
}

func (r *Rules) LeadDef(id string) (catalogs.LeadDef, bool) {
	def, ok := r.C.Leads.ByID[id]
	return def, ok
}

// SpawnEnemies instantiates the enemy roster of a mission.
func (r *Rules) SpawnEnemies(gs *model.GameState, def catalogs.MissionDef) []model.Enemy {
	var out []model.Enemy
	for _, ec := range def.Enemies {
		ed, ok := r.C.Enemies.ByID[ec.Type]
		invariant.Check(ok, "enemy data %q missing", ec.Type)
		for i := 0; i < ec.Count; i++ {
			out = append(out, model.Enemy{
				ID:           gs.NewEnemyID(),
				Type:         ed.ID,
				Skill:        ed.Skill,
				HitPoints:    ed.HitPoints,
				MaxHitPoints: ed.HitPoints,
				WeaponMin:    ed.WeaponMin,
				WeaponMax:    ed.WeaponMax,
			})
		}
	}
	return out
}

// UpgradePrice is base + purchased * increase.
func (r *Rules) UpgradePrice(u model.Upgrade, purchased int) int {
	ut := r.T.Upgrades[u.Name()]
	return ut.Price + purchased*ut.PriceIncrease
}

func (r *Rules) UpgradeIncrement(u model.Upgrade) fixed6.F {
	return r.T.Upgrades[u.Name()].Increment
}

// AgentUpkeep is the per-turn cost of every employed agent.
func (r *Rules) AgentUpkeep(gs *model.GameState) int {
	return gs.EmployedCount() * r.T.Economy.AgentUpkeep
}

func sumEffectiveSkill(gs *model.GameState, kind model.AssignmentKind) fixed6.F {
	var total fixed6.F
	for i := range gs.Agents {
		a := &gs.Agents[i]
		if a.State == model.OnAssignment && a.Assignment.Kind == kind {
			total = total.Add(EffectiveSkill(a))
		}
	}
	return total
}

// ContractingIncome is the money contracting agents earn this turn.
func (r *Rules) ContractingIncome(gs *model.GameState) int {
	return sumEffectiveSkill(gs, model.Contracting).Mul(r.T.Economy.ContractingIncomePerSkill).Int()
}

// EspionageIntel is the intel espionage agents gather this turn.
func (r *Rules) EspionageIntel(gs *model.GameState) fixed6.F {
	return sumEffectiveSkill(gs, model.Espionage).Mul(r.T.Economy.EspionageIntelPerSkill)
}

// LeadIntel is what one agent adds to an investigation per turn.
func (r *Rules) LeadIntel(a *model.Agent) fixed6.F {
	return EffectiveSkill(a).Mul(r.T.Economy.LeadIntelPerSkill)
}

// ProjectedMoney is the balance after the next turn's economy step, ignoring
// mission outcomes.
func (r *Rules) ProjectedMoney(gs *model.GameState) int {
	return gs.Money + gs.Funding + r.ContractingIncome(gs) - r.AgentUpkeep(gs)
}

// PanicIncrease sums the threat of every unsuppressed, undefeated faction.
func (r *Rules) PanicIncrease(gs *model.GameState) fixed6.F {
	var total fixed6.F
	for i := range gs.Factions {
		f := &gs.Factions[i]
		if f.Defeated || f.Suppressed() {
			continue
		}
		total = total.Add(r.C.Activity(f.ActivityLevel).PanicPerTurn)
	}
	return total
}

// SurvivalSkillGain is indexed by lifetime missions, clamped to the table.
func (r *Rules) SurvivalSkillGain(missionsTotal int) fixed6.F {
	tbl := r.T.Agents.SurvivalSkillGain
	if missionsTotal < 0 {
		missionsTotal = 0
	}
	if missionsTotal >= len(tbl) {
		missionsTotal = len(tbl) - 1
	}
	return tbl[missionsTotal]
}

// DependenciesMet reports whether every lead dependency is satisfied: a lead
// completed at least once or a mission won at least once.
func (r *Rules) DependenciesMet(gs *model.GameState, lead catalogs.LeadDef) bool {
	for _, dep := range lead.DependsOn {
		if _, isLead := r.C.Leads.ByID[dep]; isLead {
			if gs.LeadInvestigationCounts[dep] == 0 {
				return false
			}
			continue
		}
		if !gs.MissionWon(dep) {
			return false
		}
	}
	return true
}

// LeadAvailable reports whether a new investigation of lead may start.
func (r *Rules) LeadAvailable(gs *model.GameState, lead catalogs.LeadDef) bool {
	if !r.DependenciesMet(gs, lead) {
		return false
	}
	if !lead.Repeatable && gs.LeadInvestigationCounts[lead.ID] > 0 {
		return false
	}
	if lead.FactionID != "" {
		if f := gs.Faction(lead.FactionID); f != nil && f.Defeated {
			return false
		}
	}
	return gs.ActiveInvestigation(lead.ID) == nil
}

// AvailableLeads lists leads in catalog order that could be investigated now.
func (r *Rules) AvailableLeads(gs *model.GameState) []catalogs.LeadDef {
	var out []catalogs.LeadDef
	for _, id := range r.C.Leads.Order {
		l := r.C.Leads.ByID[id]
		if r.LeadAvailable(gs, l) {
			out = append(out, l)
		}
	}
	return out
}

// IsGameOver reports a lost game.
func IsGameOver(gs *model.GameState) bool {
	return gs.Panic >= hundred || gs.Money < 0 || gs.ExistentialFailure
}

// IsGameWon reports whether the winning lead has been completed.
func (r *Rules) IsGameWon(gs *model.GameState) bool {
	for _, id := range r.C.Leads.Order {
		if r.C.Leads.ByID[id].WinsGame && gs.LeadInvestigationCounts[id] > 0 {
			return true
		}
	}
	return false
}
