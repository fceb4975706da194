package intellect

import (
	"sort"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

// Selection narrows SelectNextBestReadyAgents.
type Selection struct {
	Count int
	// MaxExhaustion excludes agents at or above it.
	MaxExhaustion fixed6.F
	// Reserve agents are left unpicked out of the eligible pool.
	Reserve int
	// IdleOnly skips agents already earning on contracting or espionage.
	IdleOnly bool
	// Skip holds agents already claimed this turn.
	Skip map[string]bool
}

// SelectNextBestReadyAgents returns up to s.Count ready agents, best
// effective skill first, ties broken by id.
func SelectNextBestReadyAgents(gs *model.GameState, s Selection) []*model.Agent {
	var pool []*model.Agent
	for i := range gs.Agents {
		a := &gs.Agents[i]
		if !a.Ready() || s.Skip[a.ID] || a.ExhaustionPct >= s.MaxExhaustion {
			continue
		}
		if s.IdleOnly && a.State != model.Available {
			continue
		}
		pool = append(pool, a)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := ruleset.EffectiveSkill(pool[i]), ruleset.EffectiveSkill(pool[j])
		if si != sj {
			return si > sj
		}
		return pool[i].ID < pool[j].ID
	})
	n := min(s.Count, len(pool)-s.Reserve)
	if n <= 0 {
		return nil
	}
	return pool[:n]
}

func ids(agents []*model.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	return out
}

type assignment struct {
	b       *Basic
	p       Player
	claimed map[string]bool
}

// Assign places agents for the coming turn, most urgent work first.
func (b *Basic) Assign(p Player) {
	as := &assignment{b: b, p: p, claimed: map[string]bool{}}
	as.recallExhausted()
	as.deploy(true)
	as.deploy(false)
	as.investigate()
	as.train()
	as.work()
}

func (as *assignment) claim(agents []*model.Agent) []string {
	for _, a := range agents {
		as.claimed[a.ID] = true
	}
	return ids(agents)
}

func (as *assignment) pick(s Selection) []*model.Agent {
	s.Skip = as.claimed
	s.Reserve = as.b.rules.T.AI.ReserveAgents
	return SelectNextBestReadyAgents(as.p.Game(), s)
}

func (as *assignment) recallExhausted() {
	gs := as.p.Game()
	ceiling := as.b.rules.T.AI.WorkExhaustionCeiling
	var out []string
	for i := range gs.Agents {
		a := &gs.Agents[i]
		if !a.Working() || a.ExhaustionPct < ceiling {
			continue
		}
		switch a.Assignment.Kind {
		case model.Contracting, model.Espionage, model.Training, model.Investigation:
			out = append(out, a.ID)
		}
	}
	if len(out) > 0 {
		as.b.log.Debug("recalling exhausted agents", "agents", len(out))
		as.p.Act(actions.RecallAgents{AgentIDs: out})
	}
}

func enemyStrength(m *model.Mission) fixed6.F {
	var total fixed6.F
	for i := range m.Enemies {
		total = total.Add(ruleset.EnemyEffectiveSkill(&m.Enemies[i]))
	}
	return total
}

// deploy sends teams to Active missions of one kind, in creation order. A
// mission is skipped when no team within the transport cap is strong enough.
func (as *assignment) deploy(defensive bool) {
	gs := as.p.Game()
	t := as.b.rules.T.AI
	var targets []string
	for i := range gs.Missions {
		m := &gs.Missions[i]
		if m.State == model.MissionActive && m.Defensive() == defensive {
			targets = append(targets, m.ID)
		}
	}
	for _, id := range targets {
		m := gs.Mission(id)
		need := enemyStrength(m).Mul(t.MissionStrengthMargin)
		room := gs.TransportCap - gs.DeployedCount()
		if room <= 0 {
			return
		}
		pool := as.pick(Selection{Count: room, MaxExhaustion: t.MissionExhaustionCeiling})
		var team []*model.Agent
		var strength fixed6.F
		for _, a := range pool {
			if strength >= need {
				break
			}
			team = append(team, a)
			strength = strength.Add(ruleset.EffectiveSkill(a))
		}
		if strength < need || len(team) == 0 {
			as.b.log.Debug("mission skipped", "mission", id, "need", need.String(), "have", strength.String())
			continue
		}
		as.p.Act(actions.DeployAgentsToMission{MissionID: id, AgentIDs: as.claim(team)})
		as.b.log.Info("agents deployed", "mission", id, "agents", len(team), "defensive", defensive)
	}
}

// worthReinvestigating holds for a repeatable lead none of whose missions is
// open or already won.
func worthReinvestigating(gs *model.GameState, lead catalogs.LeadDef) bool {
	for _, mid := range lead.Missions {
		if gs.MissionWon(mid) {
			return false
		}
		for i := range gs.Missions {
			m := &gs.Missions[i]
			if m.MissionDataID == mid && !m.State.Terminal() {
				return false
			}
		}
	}
	return true
}

func (as *assignment) investigate() {
	gs := as.p.Game()
	t := as.b.rules.T.AI
	perLead := t.AgentsPerInvestigation

	for _, inv := range gs.Investigations() {
		if inv.State != model.InvestigationActive || len(inv.AgentIDs) >= perLead {
			continue
		}
		team := as.pick(Selection{Count: perLead - len(inv.AgentIDs), MaxExhaustion: t.WorkExhaustionCeiling})
		if len(team) == 0 {
			return
		}
		as.p.Act(actions.AddAgentsToInvestigation{InvestigationID: inv.ID, AgentIDs: as.claim(team)})
	}

	var fresh, repeat []catalogs.LeadDef
	for _, lead := range as.b.rules.AvailableLeads(gs) {
		switch {
		case gs.LeadInvestigationCounts[lead.ID] == 0:
			fresh = append(fresh, lead)
		case worthReinvestigating(gs, lead):
			repeat = append(repeat, lead)
		}
	}
	for _, lead := range append(fresh, repeat...) {
		team := as.pick(Selection{Count: perLead, MaxExhaustion: t.WorkExhaustionCeiling})
		if len(team) == 0 {
			return
		}
		as.p.Act(actions.StartLeadInvestigation{LeadID: lead.ID, AgentIDs: as.claim(team)})
		as.b.log.Info("investigation started", "lead", lead.ID, "agents", len(team))
	}
}

func (as *assignment) train() {
	gs := as.p.Game()
	free := gs.TrainingCap - gs.TrainingCount()
	if free <= 0 {
		return
	}
	team := as.pick(Selection{Count: free, MaxExhaustion: as.b.rules.T.AI.WorkExhaustionCeiling, IdleOnly: true})
	if len(team) > 0 {
		as.p.Act(actions.AssignAgentsToTraining{AgentIDs: as.claim(team)})
	}
}

// work sends idle agents to contracting until projected income covers twice
// the upkeep, then to espionage.
func (as *assignment) work() {
	gs := as.p.Game()
	r := as.b.rules
	idle := as.pick(Selection{Count: len(gs.Agents), MaxExhaustion: r.T.AI.WorkExhaustionCeiling, IdleOnly: true})
	if len(idle) == 0 {
		return
	}
	target := 2 * r.AgentUpkeep(gs)
	income := contractingEstimate(r, gs)
	var contract, spy []*model.Agent
	for _, a := range idle {
		if income < target {
			contract = append(contract, a)
			income += ruleset.EffectiveSkill(a).Mul(r.T.Economy.ContractingIncomePerSkill).Int()
			continue
		}
		spy = append(spy, a)
	}
	if len(contract) > 0 {
		as.p.Act(actions.AssignAgentsToContracting{AgentIDs: as.claim(contract)})
	}
	if len(spy) > 0 {
		as.p.Act(actions.AssignAgentsToEspionage{AgentIDs: as.claim(spy)})
	}
}

// contractingEstimate counts agents already on or heading to contracting.
func contractingEstimate(r *ruleset.Rules, gs *model.GameState) int {
	var total fixed6.F
	for i := range gs.Agents {
		a := &gs.Agents[i]
		if a.Employed() && a.Assignment.Kind == model.Contracting {
			total = total.Add(ruleset.EffectiveSkill(a))
		}
	}
	return total.Mul(r.T.Economy.ContractingIncomePerSkill).Int()
}
