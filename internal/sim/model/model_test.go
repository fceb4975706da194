package model

import (
	"testing"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

func healthyAgent(id string) Agent {
	return Agent{
		ID:           id,
		State:        Available,
		Assignment:   Assignment{Kind: Standby},
		Skill:        fixed6.FromInt(100),
		HitPoints:    fixed6.FromInt(30),
		MaxHitPoints: fixed6.FromInt(30),
	}
}

func TestUpgradeNamesMatchTuning(t *testing.T) {
	tu := tuning.Defaults()
	if len(tuning.UpgradeNames) != int(UpgradeCount) {
		t.Fatalf("upgrade count mismatch")
	}
	for u := Upgrade(0); u < UpgradeCount; u++ {
		if tuning.UpgradeNames[u] != u.Name() {
			t.Fatalf("order mismatch at %d: %s vs %s", u, tuning.UpgradeNames[u], u.Name())
		}
		if _, ok := tu.Upgrades[u.Name()]; !ok {
			t.Fatalf("tuning has no %s", u.Name())
		}
		if p, ok := ParseUpgrade(u.Name()); !ok || p != u {
			t.Fatalf("ParseUpgrade(%s) = %v %v", u.Name(), p, ok)
		}
	}
	if _, ok := ParseUpgrade("jetpacks"); ok {
		t.Fatalf("unknown upgrade parsed")
	}
}

func TestCheckAgent(t *testing.T) {
	a := healthyAgent("agent-001")
	if err := CheckAgent(&a); err != nil {
		t.Fatalf("healthy: %v", err)
	}

	hurt := a
	hurt.HitPoints = fixed6.FromInt(10)
	if err := CheckAgent(&hurt); err == nil {
		t.Fatalf("injured agent on standby must fail")
	}
	hurt.SendTo(Recovery, "")
	if err := CheckAgent(&hurt); err != nil {
		t.Fatalf("injured in transit to recovery: %v", err)
	}

	dead := a
	dead.Kill(3)
	if err := CheckAgent(&dead); err != nil {
		t.Fatalf("dead: %v", err)
	}
	dead.State = Available
	if err := CheckAgent(&dead); err == nil {
		t.Fatalf("zero hp alive agent must fail")
	}

	over := a
	over.HitPoints = fixed6.FromInt(31)
	if err := CheckAgent(&over); err == nil {
		t.Fatalf("hp above max must fail")
	}
}

func TestReady(t *testing.T) {
	a := healthyAgent("a")
	if !a.Ready() {
		t.Fatalf("available must be ready")
	}
	a.State = OnAssignment
	a.Assignment = Assignment{Kind: Contracting}
	if !a.Ready() {
		t.Fatalf("contracting must be ready")
	}
	a.Assignment = Assignment{Kind: Investigation, TargetID: "investigation-001"}
	if a.Ready() {
		t.Fatalf("investigating must not be ready")
	}
}

func TestCloneIsDeep(t *testing.T) {
	gs := &GameState{
		Agents:                  []Agent{healthyAgent("agent-001")},
		Missions:                []Mission{{ID: "mission-001", AgentIDs: []string{"agent-001"}, Enemies: []Enemy{{ID: "enemy-0001"}}}},
		LeadInvestigations:      map[string]*LeadInvestigation{"investigation-001": {ID: "investigation-001", AgentIDs: []string{"agent-001"}}},
		LeadInvestigationCounts: map[string]int{"lead-criminal-orgs": 1},
		LastTurnReport:          &TurnReport{LeadsCompleted: []string{"lead-criminal-orgs"}},
	}
	before := gs.Digest()
	c := gs.Clone()
	if c.Digest() != before {
		t.Fatalf("clone digest differs")
	}
	c.Agents[0].Skill = 0
	c.Missions[0].AgentIDs[0] = "x"
	c.Missions[0].Enemies[0].ID = "x"
	c.LeadInvestigations["investigation-001"].AgentIDs[0] = "x"
	c.LeadInvestigationCounts["lead-criminal-orgs"] = 5
	c.LastTurnReport.LeadsCompleted[0] = "x"
	if gs.Digest() != before {
		t.Fatalf("mutating the clone changed the original")
	}
}

func TestValidateReportsAll(t *testing.T) {
	gs := &GameState{Agents: []Agent{healthyAgent("a"), healthyAgent("b")}}
	gs.Agents[0].HitPoints = -1
	gs.Agents[1].State = Terminated
	gs.Panic = -1
	err := Validate(gs)
	if err == nil {
		t.Fatalf("expected errors")
	}
}
