package intellect

import (
	"testing"

	"github.com/expr-lang/expr/vm"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/catalogs"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

// player applies commands straight to an actions.Env.
type player struct {
	t   *testing.T
	env actions.Env
	log []actions.Kind
}

func (p *player) Game() *model.GameState   { return p.env.Game }
func (p *player) AI() model.AIState        { return *p.env.AI }
func (p *player) Rules() *ruleset.Rules    { return p.env.Rules }
func (p *player) Rand() rng.Source         { return p.env.Rand }
func (p *player) Act(cmd actions.Command) {
	p.t.Helper()
	if res := actions.Apply(p.env, cmd); !res.OK {
		p.t.Fatalf("%s rejected: %s %s", cmd.Kind(), res.Code, res.Message)
	}
	p.log = append(p.log, cmd.Kind())
}

func newPlayer(t *testing.T) *player {
	t.Helper()
	c, err := catalogs.Load()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	r := ruleset.New(tuning.Defaults(), c)
	src := rng.New(3)
	gs, ai := r.InitialState(src)
	return &player{t: t, env: actions.Env{Rules: r, Game: gs, AI: &ai, Rand: src}}
}

func newBasic(t *testing.T, p *player) *Basic {
	t.Helper()
	b, err := NewBasic(p.Rules(), nil)
	if err != nil {
		t.Fatalf("NewBasic: %v", err)
	}
	return b
}

func TestRulesCompileInPriorityOrder(t *testing.T) {
	list, err := compileRules(purchaseRules())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].Priority > list[i-1].Priority {
			t.Fatalf("%s before %s", list[i-1].Name, list[i].Name)
		}
	}
	if list[0].Name != "hire-agent" || list[len(list)-1].Name != "pick-agent" {
		t.Fatalf("first=%s last=%s", list[0].Name, list[len(list)-1].Name)
	}
}

func TestPurchaseFromDefaultState(t *testing.T) {
	p := newPlayer(t)
	b := newBasic(t, p)
	b.Purchase(p)

	gs, ai := p.Game(), p.AI()
	if gs.EmployedCount() != 8 {
		t.Fatalf("agents = %d", gs.EmployedCount())
	}
	if ai.Actual[model.TrainingCapUpgrade] != 1 || ai.TotalPurchased() != 1 {
		t.Fatalf("actual = %v", ai.Actual)
	}
	if gs.Money != 600 {
		t.Fatalf("money = %d", gs.Money)
	}
	if ai.DesiredAgentCount != 9 {
		t.Fatalf("desired agents = %d", ai.DesiredAgentCount)
	}
}

func TestPurchaseNeverLeavesTwoGoalsOpen(t *testing.T) {
	p := newPlayer(t)
	p.env.Game.Money = 100000
	b := newBasic(t, p)
	b.Purchase(p)
	ai := p.AI()
	open := 0
	for u := model.Upgrade(0); u < model.UpgradeCount; u++ {
		if ai.Pending(u) {
			open++
		}
	}
	if open > 1 {
		t.Fatalf("%d goals open: %+v", open, ai)
	}
	if p.Game().TransportCap < ratioTarget(ai.DesiredAgentCount, tuning.Defaults().AI.TransportCapRatio)-2 {
		t.Fatalf("transport cap %d lags desired agents %d", p.Game().TransportCap, ai.DesiredAgentCount)
	}
}

func TestGoalsSurviveHumanPurchases(t *testing.T) {
	p := newPlayer(t)
	p.Act(actions.BuyUpgrade{Upgrade: model.TrainingCapUpgrade})
	p.Act(actions.BuyUpgrade{Upgrade: model.TrainingCapUpgrade})
	b := newBasic(t, p)
	b.Purchase(p)
	if got := p.AI().Actual[model.TrainingCapUpgrade]; got != 2 {
		t.Fatalf("training cap bought by AI on top of human purchases: %d", got)
	}
}

func TestSelectNextBestReadyAgents(t *testing.T) {
	p := newPlayer(t)
	gs := p.Game()
	gs.Agents[0].Skill = fixed6.FromInt(90)
	gs.Agents[1].Skill = fixed6.FromInt(150)
	gs.Agents[2].ExhaustionPct = fixed6.FromInt(40)
	gs.Agents[3].State = model.Recovering

	got := ids(SelectNextBestReadyAgents(gs, Selection{Count: 5, MaxExhaustion: fixed6.FromInt(30)}))
	if len(got) != 2 || got[0] != "agent-002" || got[1] != "agent-001" {
		t.Fatalf("picked %v", got)
	}
	got = ids(SelectNextBestReadyAgents(gs, Selection{Count: 5, MaxExhaustion: fixed6.FromInt(30), Reserve: 1}))
	if len(got) != 1 || got[0] != "agent-002" {
		t.Fatalf("with reserve picked %v", got)
	}
	got = ids(SelectNextBestReadyAgents(gs, Selection{Count: 5, MaxExhaustion: fixed6.FromInt(30), Skip: map[string]bool{"agent-002": true}}))
	if len(got) != 1 || got[0] != "agent-001" {
		t.Fatalf("with skip picked %v", got)
	}
}

func TestAssignStartsFirstLead(t *testing.T) {
	p := newPlayer(t)
	b := newBasic(t, p)
	b.Assign(p)
	gs := p.Game()
	inv := gs.ActiveInvestigation("lead-criminal-orgs")
	if inv == nil || len(inv.AgentIDs) != 2 {
		t.Fatalf("investigation = %+v", inv)
	}
	var contracting int
	for i := range gs.Agents {
		if gs.Agents[i].Assignment.Kind == model.Contracting {
			contracting++
		}
	}
	if contracting != 2 {
		t.Fatalf("contracting = %d", contracting)
	}
}

func TestAssignDeploysStrongEnoughTeam(t *testing.T) {
	p := newPlayer(t)
	r := p.Rules()
	gs := p.Game()
	def := r.MissionDef("mission-apprehend-red-dawn-member")
	gs.Missions = append(gs.Missions, model.Mission{
		ID: "mission-001", MissionDataID: def.ID, State: model.MissionActive, AgentIDs: []string{},
		Enemies: r.SpawnEnemies(gs, def), FactionID: def.FactionID, ExpiresIn: def.ExpiresIn,
	})
	b := newBasic(t, p)
	b.Assign(p)
	m := gs.Mission("mission-001")
	// Two initiates at skill 40: 96 needed, one agent at 100 suffices.
	if m.State != model.MissionDeployed || len(m.AgentIDs) != 1 {
		t.Fatalf("mission = %+v", m)
	}
}

func TestRecallExhaustedWorkers(t *testing.T) {
	p := newPlayer(t)
	p.Act(actions.AssignAgentsToContracting{AgentIDs: []string{"agent-001"}})
	a := p.Game().Agent("agent-001")
	a.State = model.OnAssignment
	a.ExhaustionPct = fixed6.FromInt(60)
	b := newBasic(t, p)
	b.Assign(p)
	if a.Assignment.Kind != model.Standby {
		t.Fatalf("agent = %+v", a)
	}
}

func TestRegistry(t *testing.T) {
	p := newPlayer(t)
	if _, err := New("basic", p.Rules(), nil); err != nil {
		t.Fatalf("basic: %v", err)
	}
	if _, err := New("oracle", p.Rules(), nil); err == nil {
		t.Fatalf("unknown intellect accepted")
	}
	if names := Names(); len(names) != 1 || names[0] != "basic" {
		t.Fatalf("names = %v", names)
	}
}

func TestWeightedPickThresholdRoundsUp(t *testing.T) {
	list, err := compileRules(purchaseRules())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var weighted *Rule
	for _, r := range list {
		if r.Name == "pick-weighted" {
			weighted = r
		}
	}
	if weighted == nil {
		t.Fatalf("pick-weighted rule missing")
	}

	p := newPlayer(t)
	cases := []struct {
		desired, purchased int
		want               bool
	}{
		{8, 1, false},
		{8, 2, true},
		{9, 2, false}, // 9/4 = 2.25 needs 3
		{9, 3, true},
	}
	for _, c := range cases {
		p.env.AI.DesiredAgentCount = c.desired
		env := newEnv(p.Rules(), p.Game(), p.AI())
		env.TotalPurchased = c.purchased
		out, err := vm.Run(weighted.program, env)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if out.(bool) != c.want {
			t.Fatalf("desired=%d purchased=%d: got %v (threshold %d)", c.desired, c.purchased, out, env.UpgradeThreshold)
		}
	}
}
