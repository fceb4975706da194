package ruleset

import (
	"testing"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

func newRules(t *testing.T) *Rules {
	t.Helper()
	c, err := catalogs.Load()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	return New(tuning.Defaults(), c)
}

func TestEffectiveSkill(t *testing.T) {
	a := model.Agent{
		Skill:         fixed6.FromInt(100),
		HitPoints:     fixed6.FromInt(20),
		MaxHitPoints:  fixed6.FromInt(30),
		ExhaustionPct: fixed6.FromInt(10),
	}
	if got := EffectiveSkill(&a); got != fixed6.FromInt(60) {
		t.Fatalf("effective = %s, want 60", got)
	}
	a.ExhaustionPct = fixed6.FromInt(150)
	if got := EffectiveSkill(&a); got != 0 {
		t.Fatalf("fully exhausted = %s", got)
	}
	a.ExhaustionPct = 0
	a.HitPoints = 0
	if got := EffectiveSkill(&a); got != 0 {
		t.Fatalf("dead = %s", got)
	}
}

func TestHitChance(t *testing.T) {
	if got := HitChance(fixed6.FromInt(100), fixed6.FromInt(100)); got != fixed6.MustParse("0.5") {
		t.Fatalf("even = %s", got)
	}
	if got := HitChance(0, fixed6.FromInt(10)); got != 0 {
		t.Fatalf("no attacker = %s", got)
	}
}

func TestRolls(t *testing.T) {
	r := newRules(t)
	src := rng.New(1)
	for i := 0; i < 50; i++ {
		n := r.RollProgressionTurns(1, src)
		if n < 30 || n > 45 {
			t.Fatalf("progression = %d", n)
		}
	}
	if got := r.RollProgressionTurns(7, src); got != catalogs.Never {
		t.Fatalf("level 7 progression = %d", got)
	}
	if got := r.RollOperationFrequency(0, src); got != catalogs.Never {
		t.Fatalf("level 0 frequency = %d", got)
	}
	if got := r.RollOperationLevel(0, src); got != 0 {
		t.Fatalf("level 0 operation = %d", got)
	}
	for i := 0; i < 50; i++ {
		if got := r.RollOperationLevel(1, src); got != 1 && got != 2 {
			t.Fatalf("level 1 operation = %d", got)
		}
	}
}

func TestUpgradePrice(t *testing.T) {
	r := newRules(t)
	if got := r.UpgradePrice(model.TrainingCapUpgrade, 0); got != 200 {
		t.Fatalf("first training cap = %d", got)
	}
	if got := r.UpgradePrice(model.WeaponDamageUpgrade, 2); got != 500 {
		t.Fatalf("third weapon damage = %d", got)
	}
}

func TestEconomy(t *testing.T) {
	r := newRules(t)
	gs, _ := r.InitialState(rng.New(1))
	if got := r.AgentUpkeep(gs); got != 40 {
		t.Fatalf("upkeep = %d", got)
	}
	gs.Agents[0].State = model.OnAssignment
	gs.Agents[0].Assignment = model.Assignment{Kind: model.Contracting}
	gs.Agents[1].State = model.OnAssignment
	gs.Agents[1].Assignment = model.Assignment{Kind: model.Espionage}
	if got := r.ContractingIncome(gs); got != 20 {
		t.Fatalf("income = %d", got)
	}
	if got := r.EspionageIntel(gs); got != fixed6.FromInt(10) {
		t.Fatalf("intel = %s", got)
	}
	if got := r.ProjectedMoney(gs); got != 1000+20+20-40 {
		t.Fatalf("projected = %d", got)
	}
}

func TestLeadAvailability(t *testing.T) {
	r := newRules(t)
	gs, _ := r.InitialState(rng.New(1))
	avail := r.AvailableLeads(gs)
	if len(avail) != 1 || avail[0].ID != "lead-criminal-orgs" {
		t.Fatalf("initial leads = %v", avail)
	}
	gs.LeadInvestigationCounts["lead-criminal-orgs"] = 1
	avail = r.AvailableLeads(gs)
	if len(avail) != 3 {
		t.Fatalf("after criminal orgs: %d leads", len(avail))
	}
	safehouse := r.C.Leads.ByID["lead-exalt-safehouse"]
	if r.LeadAvailable(gs, safehouse) {
		t.Fatalf("safehouse needs a won apprehend mission")
	}
	gs.Missions = append(gs.Missions, model.Mission{ID: "mission-001", MissionDataID: "mission-apprehend-exalt-member", State: model.MissionWon})
	if !r.LeadAvailable(gs, safehouse) {
		t.Fatalf("safehouse should be available")
	}
	gs.Factions[1].Defeated = true
	if r.LeadAvailable(gs, safehouse) {
		t.Fatalf("defeated faction leads are closed")
	}
}

func TestTerminalPredicates(t *testing.T) {
	r := newRules(t)
	gs, _ := r.InitialState(rng.New(1))
	if IsGameOver(gs) || r.IsGameWon(gs) {
		t.Fatalf("fresh game is terminal")
	}
	gs.Panic = fixed6.FromInt(100)
	if !IsGameOver(gs) {
		t.Fatalf("panic 100 must end the game")
	}
	gs.Panic = 0
	gs.Money = -1
	if !IsGameOver(gs) {
		t.Fatalf("debt must end the game")
	}
	gs.Money = 0
	gs.LeadInvestigationCounts["lead-peace-on-earth"] = 1
	if !r.IsGameWon(gs) {
		t.Fatalf("peace on earth must win")
	}
}

func TestPanicIncreaseSkipsSuppressed(t *testing.T) {
	r := newRules(t)
	gs, _ := r.InitialState(rng.New(1))
	full := r.PanicIncrease(gs)
	if full != fixed6.MustParse("0.3") {
		t.Fatalf("three level 1 factions = %s", full)
	}
	gs.Factions[0].SuppressionTurns = 2
	gs.Factions[1].Defeated = true
	if got := r.PanicIncrease(gs); got != fixed6.MustParse("0.1") {
		t.Fatalf("one active faction = %s", got)
	}
}

func TestSurvivalSkillGainClamps(t *testing.T) {
	r := newRules(t)
	if got := r.SurvivalSkillGain(0); got != fixed6.FromInt(9) {
		t.Fatalf("first = %s", got)
	}
	if got := r.SurvivalSkillGain(100); got != fixed6.FromInt(1) {
		t.Fatalf("clamped = %s", got)
	}
}
