package intellect

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
)

// Env is the view purchase rules evaluate against. Desired and Actual are
// keyed by upgrade name.
type Env struct {
	Money            int
	Upkeep           int
	Agents           int
	DesiredAgents    int
	AgentCap         int
	TransportCap     int
	TrainingCap      int
	TransportTarget  int
	TrainingTarget   int
	TotalPurchased   int
	// UpgradeThreshold is ceil(DesiredAgents / divisor): total purchases
	// needed before the weighted pick opens up.
	UpgradeThreshold int
	Desired          map[string]int
	Actual           map[string]int
}

func newEnv(r *ruleset.Rules, gs *model.GameState, ai model.AIState) Env {
	t := r.T.AI
	env := Env{
		Money:            gs.Money,
		Upkeep:           r.AgentUpkeep(gs),
		Agents:           gs.EmployedCount(),
		DesiredAgents:    ai.DesiredAgentCount,
		AgentCap:         gs.AgentCap,
		TransportCap:     gs.TransportCap,
		TrainingCap:      gs.TrainingCap,
		TransportTarget:  ratioTarget(ai.DesiredAgentCount, t.TransportCapRatio),
		TrainingTarget:   ratioTarget(ai.DesiredAgentCount, t.TrainingCapRatio),
		TotalPurchased:   ai.TotalPurchased(),
		UpgradeThreshold: fixed6.FromRatio(int64(ai.DesiredAgentCount), int64(t.UpgradeThresholdDivisor)).CeilInt(),
		Desired:          make(map[string]int, model.UpgradeCount),
		Actual:           make(map[string]int, model.UpgradeCount),
	}
	for u := model.Upgrade(0); u < model.UpgradeCount; u++ {
		env.Desired[u.Name()] = ai.Desired[u]
		env.Actual[u.Name()] = ai.Actual[u]
	}
	return env
}

func ratioTarget(n int, ratio fixed6.F) int {
	return fixed6.FromInt(n).Mul(ratio).CeilInt()
}

// Pending reports whether the named upgrade is wanted but not yet bought.
func (e Env) Pending(name string) bool { return e.Desired[name] > e.Actual[name] }

func (e Env) AnyPending() bool {
	for _, name := range tuning.UpgradeNames {
		if e.Pending(name) {
			return true
		}
	}
	return false
}

// Affordable applies the savings rule: what is left after paying must cover
// upkeep for the required number of turns.
func (e Env) Affordable(price, turns int) bool {
	return e.Money-price >= e.Upkeep*turns
}
