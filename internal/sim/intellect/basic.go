package intellect

import (
	"fmt"
	"log/slog"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/actions"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/invariant"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

// Basic buys toward slowly rising goals, then spreads agents over missions,
// leads, training and income.
type Basic struct {
	rules *ruleset.Rules
	log   *slog.Logger
	list  []*Rule
}

func NewBasic(r *ruleset.Rules, log *slog.Logger) (*Basic, error) {
	if log == nil {
		log = slog.Default()
	}
	list, err := compileRules(purchaseRules())
	if err != nil {
		return nil, err
	}
	return &Basic{rules: r, log: log, list: list}, nil
}

func (b *Basic) Name() string { return "basic" }

func (b *Basic) PlayTurn(p Player) {
	b.Purchase(p)
	b.Assign(p)
}

// purchaseRules is the checklist. Buying whatever is pending always comes
// before choosing a new goal, so at most one goal is open at a time.
func purchaseRules() []*Rule {
	rules := []*Rule{
		{
			Name:         "hire-agent",
			Priority:     1000,
			Category:     "buy",
			ConditionSrc: `Agents < DesiredAgents && Agents < AgentCap`,
			Action:       actionHire,
		},
		{
			Name:         "raise-agent-cap",
			Priority:     900,
			Category:     "goal",
			ConditionSrc: `Agents < DesiredAgents && Agents >= AgentCap && !AnyPending()`,
			Action:       raiseUpgrade(model.AgentCapUpgrade),
		},
	}
	for u := model.Upgrade(0); u < model.UpgradeCount; u++ {
		rules = append(rules, &Rule{
			Name:         "buy-" + u.Name(),
			Priority:     800 - 10*int(u),
			Category:     "buy",
			ConditionSrc: fmt.Sprintf(`Pending(%q)`, u.Name()),
			Action:       actionBuy(u),
		})
	}
	rules = append(rules,
		&Rule{
			Name:         "pick-transport-cap",
			Priority:     500,
			Category:     "goal",
			ConditionSrc: `TransportCap < TransportTarget`,
			Action:       raiseUpgrade(model.TransportCapUpgrade),
		},
		&Rule{
			Name:         "pick-training-cap",
			Priority:     490,
			Category:     "goal",
			ConditionSrc: `TrainingCap < TrainingTarget`,
			Action:       raiseUpgrade(model.TrainingCapUpgrade),
		},
		&Rule{
			Name:         "pick-weighted",
			Priority:     480,
			Category:     "goal",
			ConditionSrc: `TotalPurchased >= UpgradeThreshold`,
			Action:       actionWeightedPick,
		},
		&Rule{
			Name:         "pick-agent",
			Priority:     0,
			Category:     "goal",
			ConditionSrc: `true`,
			Action:       actionRaiseAgents,
		},
	)
	return rules
}

// purchase is the state of one purchase pass.
type purchase struct {
	b      *Basic
	p      Player
	env    Env
	bought int
}

// Purchase runs the checklist until a purchase is unaffordable or the
// per-turn bound is hit.
func (b *Basic) Purchase(p Player) {
	pc := &purchase{b: b, p: p}
	limit := b.rules.T.AI.MaxPurchasesPerTurn
	for i := 0; ; i++ {
		if i >= limit {
			b.log.Warn("purchase loop bound reached", "turn", p.Game().Turn, "steps", i)
			return
		}
		ai := p.AI()
		checkGoals(ai)
		pc.env = newEnv(b.rules, p.Game(), ai)
		r, err := first(b.list, pc.env)
		invariant.NoError(err)
		if r == nil {
			return
		}
		b.log.Debug("rule fired", "rule", r.Name, "category", r.Category)
		if !r.Action(pc) {
			return
		}
	}
}

// checkGoals asserts that at most one upgrade is pending, and by exactly one.
func checkGoals(ai model.AIState) {
	pending := 0
	for u := model.Upgrade(0); u < model.UpgradeCount; u++ {
		if !ai.Pending(u) {
			continue
		}
		pending++
		invariant.Check(ai.Desired[u] == ai.Actual[u]+1,
			"%s desired %d, actual %d", u.Name(), ai.Desired[u], ai.Actual[u])
	}
	invariant.Check(pending <= 1, "%d upgrades pending at once", pending)
}

func (pc *purchase) afford(what string, price int) bool {
	turns := pc.b.rules.T.AI.RequiredTurnsOfSavings
	if pc.env.Affordable(price, turns) {
		return true
	}
	pc.b.log.Info("purchase deferred",
		"item", what,
		"price", price,
		"money", pc.env.Money,
		"required_savings", pc.env.Upkeep*turns,
		"shortfall", pc.env.Upkeep*turns-(pc.env.Money-price),
	)
	return false
}

func actionHire(pc *purchase) bool {
	if !pc.afford("agent", pc.b.rules.T.Economy.HireCost) {
		return false
	}
	pc.p.Act(actions.HireAgent{})
	pc.bought++
	return true
}

func actionBuy(u model.Upgrade) ActionFunc {
	return func(pc *purchase) bool {
		price := pc.b.rules.UpgradePrice(u, pc.p.AI().Actual[u])
		if !pc.afford(u.Name(), price) {
			return false
		}
		pc.p.Act(actions.BuyUpgrade{Upgrade: u})
		pc.bought++
		return true
	}
}

func raiseUpgrade(u model.Upgrade) ActionFunc {
	return func(pc *purchase) bool {
		pc.p.Act(actions.RaiseDesiredUpgrade{Upgrade: u})
		return true
	}
}

func actionRaiseAgents(pc *purchase) bool {
	pc.p.Act(actions.RaiseDesiredAgentCount{})
	return true
}

// actionWeightedPick raises either the agent goal or one stat upgrade.
func actionWeightedPick(pc *purchase) bool {
	t := pc.b.rules.T.AI
	stats := model.StatUpgrades()
	weights := []int{t.AgentPickWeight}
	for range stats {
		weights = append(weights, t.StatUpgradePickWeight)
	}
	i := rng.Weighted(pc.p.Rand(), rng.AIDesiredPick, weights)
	if i <= 0 {
		return actionRaiseAgents(pc)
	}
	return raiseUpgrade(stats[i-1])(pc)
}
