package turn

import (
	"testing"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

func newGame(t *testing.T, seed int64) (*ruleset.Rules, *model.GameState, *rng.Streams) {
	t.Helper()
	c, err := catalogs.Load()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	r := ruleset.New(tuning.Defaults(), c)
	src := rng.New(seed)
	gs, _ := r.InitialState(src)
	return r, gs, src
}

func investigate(gs *model.GameState, leadID string, agents ...int) *model.LeadInvestigation {
	id, seq := gs.NewInvestigationID()
	inv := &model.LeadInvestigation{ID: id, Seq: seq, LeadID: leadID, StartTurn: gs.Turn, State: model.InvestigationActive}
	for _, i := range agents {
		a := &gs.Agents[i]
		a.SendTo(model.Investigation, id)
		inv.AgentIDs = append(inv.AgentIDs, a.ID)
	}
	gs.LeadInvestigations[id] = inv
	return inv
}

func TestAdvanceEconomyAndBookkeeping(t *testing.T) {
	r, gs, src := newGame(t, 1)
	gs.ActionsCount = 4
	gs.TurnExpenditures.Hiring = 50
	rep := Advance(r, gs, src, nil)
	if gs.Turn != 2 || gs.ActionsCount != 0 || gs.TurnExpenditures.Hiring != 0 {
		t.Fatalf("bookkeeping: turn=%d actions=%d", gs.Turn, gs.ActionsCount)
	}
	if gs.Money != 1000+20-40 {
		t.Fatalf("money = %d", gs.Money)
	}
	if gs.Panic != fixed6.MustParse("0.3") {
		t.Fatalf("panic = %s", gs.Panic)
	}
	if rep.Upkeep != 40 || rep.MoneyBefore != 1000 || rep.MoneyAfter != 980 {
		t.Fatalf("report = %+v", rep)
	}
	if gs.LastTurnReport != rep {
		t.Fatalf("report not stored")
	}
}

func TestInvestigationCompletesAndSpawnsMissions(t *testing.T) {
	r, gs, src := newGame(t, 1)
	src.Set(rng.LeadInvestigation, 0)
	gs.LeadInvestigationCounts["lead-criminal-orgs"] = 1
	inv := investigate(gs, "lead-red-dawn-member", 0, 1)

	rep := Advance(r, gs, src, nil)
	if inv.State != model.InvestigationDone || inv.TurnCompleted != 1 {
		t.Fatalf("investigation = %+v", inv)
	}
	// Two agents at 99 effective skill after a turn of work.
	if inv.AccumulatedIntel != fixed6.MustParse("19.8") {
		t.Fatalf("intel = %s", inv.AccumulatedIntel)
	}
	if gs.LeadInvestigationCounts["lead-red-dawn-member"] != 1 {
		t.Fatalf("counts = %v", gs.LeadInvestigationCounts)
	}
	if len(gs.Missions) != 1 || gs.Missions[0].MissionDataID != "mission-apprehend-red-dawn-member" {
		t.Fatalf("missions = %+v", gs.Missions)
	}
	if gs.Missions[0].ExpiresIn != 6 || gs.Missions[0].TurnCreated != 1 {
		t.Fatalf("spawned mission = %+v", gs.Missions[0])
	}
	if rep.LeadsCompleted[0] != "lead-red-dawn-member" {
		t.Fatalf("report = %+v", rep)
	}
	a := gs.Agents[0]
	if a.State != model.InTransit || a.Assignment.Kind != model.Standby {
		t.Fatalf("investigator = %+v", a)
	}
	// One turn of work.
	if a.ExhaustionPct != fixed6.FromInt(1) {
		t.Fatalf("exhaustion = %s", a.ExhaustionPct)
	}
}

func TestInvestigationFailsOnHighRoll(t *testing.T) {
	r, gs, src := newGame(t, 1)
	src.Set(rng.LeadInvestigation, fixed6.One)
	inv := investigate(gs, "lead-criminal-orgs", 0)
	Advance(r, gs, src, nil)
	if inv.State != model.InvestigationActive || inv.AccumulatedIntel != fixed6.MustParse("9.9") {
		t.Fatalf("investigation = %+v", inv)
	}
}

func TestDeployedMissionResolvesWithDeferredRewards(t *testing.T) {
	r, gs, src := newGame(t, 1)
	src.Set(rng.AgentAttack, 0)
	src.Set(rng.EnemyAttack, fixed6.One)
	m := SpawnMission(r, gs, r.MissionDef("mission-apprehend-exalt-member"))
	m.State = model.MissionDeployed
	for i := 0; i < 3; i++ {
		gs.Agents[i].SendTo(model.MissionDuty, m.ID)
		m.AgentIDs = append(m.AgentIDs, gs.Agents[i].ID)
	}

	rep := Advance(r, gs, src, nil)
	if gs.Missions[0].State != model.MissionWon {
		t.Fatalf("mission = %s", gs.Missions[0].State)
	}
	if gs.Money != 1000+100+21-40 {
		t.Fatalf("money = %d", gs.Money)
	}
	exalt := gs.Faction("exalt")
	if exalt.SuppressionTurns != 1 {
		t.Fatalf("suppression = %d", exalt.SuppressionTurns)
	}
	// Exalt was suppressed when panic was computed.
	if gs.Panic != fixed6.MustParse("0.2") {
		t.Fatalf("panic = %s", gs.Panic)
	}
	if rep.MissionMoney != 100 || len(rep.Missions) != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestActiveMissionExpires(t *testing.T) {
	r, gs, src := newGame(t, 1)
	def := r.MissionDef(r.C.Missions.Defensive["black-lotus"][1])
	m := SpawnMission(r, gs, def)
	id := m.ID
	// The spawning turn does not count down.
	for i := 0; i < def.ExpiresIn; i++ {
		Advance(r, gs, src, nil)
	}
	if got := gs.Mission(id).State; got != model.MissionActive {
		t.Fatalf("expired early: %s", got)
	}
	Advance(r, gs, src, nil)
	if got := gs.Mission(id).State; got != model.MissionExpired {
		t.Fatalf("state = %s", got)
	}
	if gs.Funding != 18 {
		t.Fatalf("funding = %d", gs.Funding)
	}
	if gs.Panic < fixed6.FromInt(3) {
		t.Fatalf("panic = %s", gs.Panic)
	}
}

func TestExistentialExpiryEndsGame(t *testing.T) {
	r, gs, src := newGame(t, 1)
	m := SpawnMission(r, gs, r.MissionDef(r.C.Missions.Defensive["exalt"][5]))
	m.ExpiresIn = 1
	Advance(r, gs, src, nil)
	Advance(r, gs, src, nil)
	if !ruleset.IsGameOver(gs) {
		t.Fatalf("expired existential operation must end the game")
	}
}

func TestFactionOperationAndProgression(t *testing.T) {
	r, gs, src := newGame(t, 1)
	src.Set(rng.OperationLevel, 0)
	f := &gs.Factions[0]
	f.TurnsUntilNextOperation = 1
	f.TargetTurnsForLevelUp = 1
	g := &gs.Factions[1]
	g.TurnsUntilNextOperation = 1
	g.SuppressionTurns = 2

	rep := Advance(r, gs, src, nil)
	if len(gs.Missions) != 1 {
		t.Fatalf("missions = %d", len(gs.Missions))
	}
	m := gs.Missions[0]
	if m.OperationLevel != 1 || m.FactionID != f.ID || m.State != model.MissionActive {
		t.Fatalf("operation mission = %+v", m)
	}
	if f.LastOperationTypeName == "" || f.TurnsUntilNextOperation < 15 {
		t.Fatalf("faction after operation = %+v", f)
	}
	if f.ActivityLevel != 2 || f.TurnsAtCurrentLevel != 0 || f.TargetTurnsForLevelUp < 40 {
		t.Fatalf("faction after level up = %+v", f)
	}
	if rep.FactionsLeveledUp[0] != f.ID {
		t.Fatalf("report = %+v", rep)
	}
	if g.TurnsUntilNextOperation != 1 || g.SuppressionTurns != 1 {
		t.Fatalf("suppressed faction = %+v", g)
	}
}

func TestRecoveryRestoresHitPoints(t *testing.T) {
	r, gs, src := newGame(t, 1)
	a := &gs.Agents[0]
	a.HitPoints = fixed6.FromInt(25)
	a.SendTo(model.Recovery, "")
	Advance(r, gs, src, nil)
	// 5 of 30 lost is 16.7%; at 10% per turn that is ceil(1.67) = 2 turns.
	if a.HitPoints != fixed6.FromInt(28) || a.State != model.Recovering || a.RecoveryTurns != 1 {
		t.Fatalf("after one turn: %+v", a)
	}
	Advance(r, gs, src, nil)
	if a.HitPoints != a.MaxHitPoints || a.State != model.Available || a.Assignment.Kind != model.Standby || a.RecoveryTurns != 0 {
		t.Fatalf("after two turns: %+v", a)
	}
}

func TestRecoveryTurnsFollowLostPercentage(t *testing.T) {
	r, gs, src := newGame(t, 1)
	a := &gs.Agents[0]
	a.HitPoints = fixed6.FromInt(3)
	a.SendTo(model.Recovery, "")
	Advance(r, gs, src, nil)
	// 27 of 30 lost is 90%: nine turns, one already spent.
	if a.RecoveryTurns != 8 {
		t.Fatalf("recovery turns = %d, want 8", a.RecoveryTurns)
	}
	for i := 0; i < 7; i++ {
		Advance(r, gs, src, nil)
		if a.State != model.Recovering {
			t.Fatalf("left recovery early after %d more turns: %+v", i+1, a)
		}
	}
	Advance(r, gs, src, nil)
	if a.State != model.Available || a.HitPoints != a.MaxHitPoints {
		t.Fatalf("after nine turns: %+v", a)
	}
}

func TestTrainingAndRest(t *testing.T) {
	r, gs, src := newGame(t, 1)
	gs.Agents[0].SendTo(model.Training, "")
	gs.Agents[1].ExhaustionPct = fixed6.FromInt(3)
	Advance(r, gs, src, nil)
	if gs.Agents[0].State != model.InTraining || gs.Agents[0].Skill != fixed6.FromInt(101) {
		t.Fatalf("trainee = %+v", gs.Agents[0])
	}
	if gs.Agents[1].ExhaustionPct != 0 {
		t.Fatalf("rested = %s", gs.Agents[1].ExhaustionPct)
	}
}

func TestAdvanceIsDeterministic(t *testing.T) {
	run := func() string {
		r, gs, src := newGame(t, 99)
		investigate(gs, "lead-criminal-orgs", 0, 1)
		for i := 0; i < 60; i++ {
			Advance(r, gs, src, nil)
		}
		return gs.Digest()
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("digest mismatch: %s vs %s", a, b)
	}
}
