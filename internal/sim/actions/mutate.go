package actions

import (
	"slices"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/invariant"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/turn"
)

func each(env Env, ids []string, fn func(a *model.Agent)) {
	for _, id := range ids {
		a := env.Game.Agent(id)
		invariant.Check(a != nil, "validated agent %s vanished", id)
		fn(a)
	}
}

// leave detaches an agent from the investigation it is working, abandoning
// the investigation once nobody is left on it.
func leave(gs *model.GameState, a *model.Agent) {
	if a.Assignment.Kind != model.Investigation {
		return
	}
	inv, ok := gs.LeadInvestigations[a.Assignment.TargetID]
	if !ok {
		return
	}
	inv.AgentIDs = slices.DeleteFunc(inv.AgentIDs, func(id string) bool { return id == a.ID })
	if len(inv.AgentIDs) == 0 && inv.State == model.InvestigationActive {
		inv.State = model.InvestigationAbandoned
	}
}

func mutateHire(env Env, _ Command) {
	gs := env.Game
	cost := env.Rules.T.Economy.HireCost
	a := env.Rules.NewAgent(gs)
	a.SendTo(model.Standby, "")
	gs.Agents = append(gs.Agents, a)
	gs.Money -= cost
	gs.TurnExpenditures.Hiring += cost
	env.log().Debug("agent hired", "agent", a.ID, "money", gs.Money)
}

func mutateSack(env Env, cmd Command) {
	turnNo := env.Game.Turn
	each(env, cmd.(SackAgents).AgentIDs, func(a *model.Agent) {
		a.State = model.SackedState
		a.Assignment = model.Assignment{Kind: model.Sacked}
		a.TurnTerminated = turnNo
	})
}

func mutateContracting(env Env, cmd Command) {
	each(env, cmd.(AssignAgentsToContracting).AgentIDs, func(a *model.Agent) {
		a.SendTo(model.Contracting, "")
	})
}

func mutateEspionage(env Env, cmd Command) {
	each(env, cmd.(AssignAgentsToEspionage).AgentIDs, func(a *model.Agent) {
		a.SendTo(model.Espionage, "")
	})
}

func mutateTraining(env Env, cmd Command) {
	each(env, cmd.(AssignAgentsToTraining).AgentIDs, func(a *model.Agent) {
		a.SendTo(model.Training, "")
	})
}

func mutateRecall(env Env, cmd Command) {
	each(env, cmd.(RecallAgents).AgentIDs, func(a *model.Agent) {
		leave(env.Game, a)
		a.StandDown()
	})
}

func mutateStartInvestigation(env Env, cmd Command) {
	c := cmd.(StartLeadInvestigation)
	gs := env.Game
	id, seq := gs.NewInvestigationID()
	gs.LeadInvestigations[id] = &model.LeadInvestigation{
		ID:        id,
		Seq:       seq,
		LeadID:    c.LeadID,
		AgentIDs:  slices.Clone(c.AgentIDs),
		StartTurn: gs.Turn,
		State:     model.InvestigationActive,
	}
	each(env, c.AgentIDs, func(a *model.Agent) {
		a.SendTo(model.Investigation, id)
	})
	env.log().Debug("investigation started", "investigation", id, "lead", c.LeadID, "agents", len(c.AgentIDs))
}

func mutateAddToInvestigation(env Env, cmd Command) {
	c := cmd.(AddAgentsToInvestigation)
	inv := env.Game.LeadInvestigations[c.InvestigationID]
	inv.AgentIDs = append(inv.AgentIDs, c.AgentIDs...)
	each(env, c.AgentIDs, func(a *model.Agent) {
		a.SendTo(model.Investigation, inv.ID)
	})
}

func mutateDeploy(env Env, cmd Command) {
	c := cmd.(DeployAgentsToMission)
	m := env.Game.Mission(c.MissionID)
	m.State = model.MissionDeployed
	m.AgentIDs = slices.Clone(c.AgentIDs)
	each(env, c.AgentIDs, func(a *model.Agent) {
		a.SendTo(model.MissionDuty, m.ID)
	})
	env.log().Debug("agents deployed", "mission", m.ID, "agents", len(c.AgentIDs))
}

func mutateBuyUpgrade(env Env, cmd Command) {
	u := cmd.(BuyUpgrade).Upgrade
	gs, r := env.Game, env.Rules
	price := r.UpgradePrice(u, env.AI.Actual[u])
	inc := r.UpgradeIncrement(u)
	gs.Money -= price
	gs.TurnExpenditures.Upgrades += price
	env.AI.Actual[u]++
	switch u {
	case model.AgentCapUpgrade:
		gs.AgentCap += inc.Int()
	case model.TransportCapUpgrade:
		gs.TransportCap += inc.Int()
	case model.TrainingCapUpgrade:
		gs.TrainingCap += inc.Int()
	case model.WeaponDamageUpgrade:
		gs.Bonuses.WeaponDamage = gs.Bonuses.WeaponDamage.Add(inc)
	case model.TrainingSkillGainUpgrade:
		gs.Bonuses.TrainingSkillGain = gs.Bonuses.TrainingSkillGain.Add(inc)
	case model.ExhaustionRecoveryUpgrade:
		gs.Bonuses.ExhaustionRecovery = gs.Bonuses.ExhaustionRecovery.Add(inc)
	case model.HitPointsRecoveryUpgrade:
		gs.Bonuses.HitPointsRecovery = gs.Bonuses.HitPointsRecovery.Add(inc)
	}
	env.log().Debug("upgrade bought", "upgrade", u.Name(), "price", price, "money", gs.Money)
}

func mutateAdvanceTurn(env Env, _ Command) {
	turn.Advance(env.Rules, env.Game, env.Rand, env.Log)
}

func mutateRaiseDesiredAgentCount(env Env, _ Command) {
	env.AI.DesiredAgentCount++
}

func mutateRaiseDesiredUpgrade(env Env, cmd Command) {
	u := cmd.(RaiseDesiredUpgrade).Upgrade
	env.AI.Desired[u] = max(env.AI.Desired[u], env.AI.Actual[u]) + 1
}

func mutateDebugSetActivityLevel(env Env, cmd Command) {
	c := cmd.(DebugSetActivityLevel)
	f := env.Game.Faction(c.FactionID)
	f.ActivityLevel = c.Level
	f.TurnsAtCurrentLevel = 0
	f.TargetTurnsForLevelUp = env.Rules.RollProgressionTurns(c.Level, env.Rand)
	f.TurnsUntilNextOperation = env.Rules.RollOperationFrequency(c.Level, env.Rand)
	env.log().Warn("debug activity level set", "faction", f.ID, "level", c.Level)
}

func mutateDebugGrantMoney(env Env, cmd Command) {
	env.Game.Money += cmd.(DebugGrantMoney).Amount
	env.log().Warn("debug money granted", "amount", cmd.(DebugGrantMoney).Amount)
}
