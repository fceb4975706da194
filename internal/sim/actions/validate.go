package actions

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/protocol"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

func checkNotOver(env Env) Result {
	if ruleset.IsGameOver(env.Game) {
		return reject(protocol.ErrGameOver, "the game is lost")
	}
	if env.Rules.IsGameWon(env.Game) {
		return reject(protocol.ErrGameOver, "the game is won")
	}
	return okResult
}

type agentCheck func(env Env, a *model.Agent) Result

// checkAgents resolves ids and runs every check on each agent.
func checkAgents(env Env, ids []string, checks ...agentCheck) Result {
	if len(ids) == 0 {
		return reject(protocol.ErrBadRequest, "no agents selected")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return reject(protocol.ErrBadRequest, "agent %s selected twice", id)
		}
		seen[id] = true
		a := env.Game.Agent(id)
		if a == nil {
			return reject(protocol.ErrInvalidTarget, "agent %s not found", id)
		}
		for _, c := range checks {
			if r := c(env, a); !r.OK {
				return r
			}
		}
	}
	return okResult
}

func ready(_ Env, a *model.Agent) Result {
	if !a.Ready() {
		return reject(protocol.ErrBlocked, "agent %s is not ready (%s, %s)", a.ID, a.State, a.Assignment.Kind)
	}
	return okResult
}

func rested(env Env, a *model.Agent) Result {
	if a.ExhaustionPct >= env.Rules.T.Agents.MaxExhaustion {
		return reject(protocol.ErrBlocked, "agent %s is too exhausted (%s%%)", a.ID, a.ExhaustionPct)
	}
	return okResult
}

func notAlready(kind model.AssignmentKind) agentCheck {
	return func(_ Env, a *model.Agent) Result {
		if a.Assignment.Kind == kind {
			return reject(protocol.ErrConflict, "agent %s is already on %s", a.ID, kind)
		}
		return okResult
	}
}

func validateHire(env Env, _ Command) Result {
	gs := env.Game
	cost := env.Rules.T.Economy.HireCost
	if gs.EmployedCount() >= gs.AgentCap {
		return reject(protocol.ErrCapacity, "agent cap of %d reached", gs.AgentCap)
	}
	if gs.Money < cost {
		return reject(protocol.ErrNoResource, "hiring costs %d, have %d", cost, gs.Money)
	}
	return okResult
}

func validateSack(env Env, cmd Command) Result {
	return checkAgents(env, cmd.(SackAgents).AgentIDs, ready)
}

func validateContracting(env Env, cmd Command) Result {
	return checkAgents(env, cmd.(AssignAgentsToContracting).AgentIDs, ready, rested, notAlready(model.Contracting))
}

func validateEspionage(env Env, cmd Command) Result {
	return checkAgents(env, cmd.(AssignAgentsToEspionage).AgentIDs, ready, rested, notAlready(model.Espionage))
}

func validateTraining(env Env, cmd Command) Result {
	ids := cmd.(AssignAgentsToTraining).AgentIDs
	if r := checkAgents(env, ids, ready, rested); !r.OK {
		return r
	}
	gs := env.Game
	if gs.TrainingCount()+len(ids) > gs.TrainingCap {
		return reject(protocol.ErrCapacity, "training cap of %d exceeded", gs.TrainingCap)
	}
	return okResult
}

func recallable(_ Env, a *model.Agent) Result {
	switch a.Assignment.Kind {
	case model.Contracting, model.Espionage, model.Training, model.Investigation:
		if a.State == model.OnAssignment || a.State == model.InTraining || a.State == model.InTransit {
			return okResult
		}
	}
	return reject(protocol.ErrBlocked, "agent %s cannot be recalled from %s", a.ID, a.Assignment.Kind)
}

func validateRecall(env Env, cmd Command) Result {
	return checkAgents(env, cmd.(RecallAgents).AgentIDs, recallable)
}

// checkLead applies the lead rules shared by the validator and the AI.
func checkLead(env Env, lead catalogs.LeadDef) Result {
	gs := env.Game
	if !env.Rules.DependenciesMet(gs, lead) {
		return reject(protocol.ErrBlocked, "lead %s is not unlocked", lead.ID)
	}
	if !lead.Repeatable && gs.LeadInvestigationCounts[lead.ID] > 0 {
		return reject(protocol.ErrConflict, "lead %s was already investigated", lead.ID)
	}
	if gs.ActiveInvestigation(lead.ID) != nil {
		return reject(protocol.ErrConflict, "lead %s is already under investigation", lead.ID)
	}
	if lead.FactionID != "" {
		if f := gs.Faction(lead.FactionID); f != nil && f.Defeated {
			return reject(protocol.ErrBlocked, "faction %s is defeated", f.ID)
		}
	}
	return okResult
}

func validateStartInvestigation(env Env, cmd Command) Result {
	c := cmd.(StartLeadInvestigation)
	lead, ok := env.Rules.LeadDef(c.LeadID)
	if !ok {
		return reject(protocol.ErrInvalidTarget, "lead %s not found", c.LeadID)
	}
	if r := checkLead(env, lead); !r.OK {
		return r
	}
	return checkAgents(env, c.AgentIDs, ready, rested)
}

func validateAddToInvestigation(env Env, cmd Command) Result {
	c := cmd.(AddAgentsToInvestigation)
	inv, ok := env.Game.LeadInvestigations[c.InvestigationID]
	if !ok {
		return reject(protocol.ErrInvalidTarget, "investigation %s not found", c.InvestigationID)
	}
	if inv.State != model.InvestigationActive {
		return reject(protocol.ErrConflict, "investigation %s is %s", inv.ID, inv.State)
	}
	return checkAgents(env, c.AgentIDs, ready, rested)
}

func validateDeploy(env Env, cmd Command) Result {
	c := cmd.(DeployAgentsToMission)
	gs := env.Game
	m := gs.Mission(c.MissionID)
	if m == nil {
		return reject(protocol.ErrInvalidTarget, "mission %s not found", c.MissionID)
	}
	if m.State != model.MissionActive {
		return reject(protocol.ErrConflict, "mission %s is %s", m.ID, m.State)
	}
	if r := checkAgents(env, c.AgentIDs, ready, rested); !r.OK {
		return r
	}
	if gs.DeployedCount()+len(c.AgentIDs) > gs.TransportCap {
		return reject(protocol.ErrCapacity, "transport cap of %d exceeded", gs.TransportCap)
	}
	return okResult
}

func validateBuyUpgrade(env Env, cmd Command) Result {
	u := cmd.(BuyUpgrade).Upgrade
	if !u.Valid() {
		return reject(protocol.ErrBadRequest, "unknown upgrade %d", int(u))
	}
	price := env.Rules.UpgradePrice(u, env.AI.Actual[u])
	if env.Game.Money < price {
		return reject(protocol.ErrNoResource, "%s costs %d, have %d", u.Label(), price, env.Game.Money)
	}
	return okResult
}

func validateAdvanceTurn(Env, Command) Result { return okResult }

func validateRaiseDesiredAgentCount(Env, Command) Result { return okResult }

func validateRaiseDesiredUpgrade(env Env, cmd Command) Result {
	u := cmd.(RaiseDesiredUpgrade).Upgrade
	if !u.Valid() {
		return reject(protocol.ErrBadRequest, "unknown upgrade %d", int(u))
	}
	for o := model.Upgrade(0); o < model.UpgradeCount; o++ {
		if env.AI.Pending(o) {
			return reject(protocol.ErrConflict, "%s is still pending", o.Label())
		}
	}
	return okResult
}

func validateDebugSetActivityLevel(env Env, cmd Command) Result {
	c := cmd.(DebugSetActivityLevel)
	if env.Game.Faction(c.FactionID) == nil {
		return reject(protocol.ErrInvalidTarget, "faction %s not found", c.FactionID)
	}
	if c.Level < 0 || c.Level > env.Rules.C.MaxActivityLevel() {
		return reject(protocol.ErrBadRequest, "activity level %d out of range", c.Level)
	}
	return okResult
}

func validateDebugGrantMoney(_ Env, cmd Command) Result {
	if cmd.(DebugGrantMoney).Amount == 0 {
		return reject(protocol.ErrBadRequest, "amount must be non-zero")
	}
	return okResult
}
