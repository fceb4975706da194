package combat

import (
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

type battle struct {
	rules   *ruleset.Rules
	src     rng.Source
	agents  []*model.Agent
	enemies []model.Enemy
	gains   map[string]fixed6.F
	// bonus is added to every agent hit.
	bonus fixed6.F

	rounds    int
	retreated bool
}

func (b *battle) neutralized(e *model.Enemy) bool {
	if e.HitPoints <= 0 {
		return true
	}
	return e.HitPoints <= e.MaxHitPoints.Mul(b.rules.T.Combat.IncapacitationThreshold)
}

func (b *battle) allNeutralized() bool {
	for i := range b.enemies {
		if !b.neutralized(&b.enemies[i]) {
			return false
		}
	}
	return true
}

func (b *battle) firstTarget() *model.Enemy {
	for i := range b.enemies {
		if !b.neutralized(&b.enemies[i]) {
			return &b.enemies[i]
		}
	}
	return nil
}

func (b *battle) survivors() []*model.Agent {
	var out []*model.Agent
	for _, a := range b.agents {
		if a.HitPoints > 0 {
			out = append(out, a)
		}
	}
	return out
}

func (b *battle) strength() fixed6.F {
	var total fixed6.F
	for _, a := range b.agents {
		if a.HitPoints > 0 {
			total = total.Add(ruleset.EffectiveSkill(a))
		}
	}
	return total
}

func (b *battle) run() {
	ct := b.rules.T.Combat
	if len(b.agents) == 0 {
		return
	}
	retreatBelow := b.strength().Mul(ct.RetreatThreshold)
	for b.rounds < ct.MaxRounds {
		round := b.rounds
		b.rounds++

		b.agentsAttack()
		if b.allNeutralized() {
			return
		}
		b.enemiesAttack(round)
		if len(b.survivors()) == 0 {
			return
		}
		if b.strength() < retreatBelow {
			b.retreated = true
			return
		}
	}
	// Out of rounds with agents standing: they fall back.
	b.retreated = true
}

func (b *battle) agentsAttack() {
	ct := b.rules.T.Combat
	for _, a := range b.agents {
		if a.HitPoints <= 0 {
			continue
		}
		target := b.firstTarget()
		if target == nil {
			return
		}
		chance := ruleset.HitChance(ruleset.EffectiveSkill(a), ruleset.EnemyEffectiveSkill(target))
		if b.src.Roll(rng.AgentAttack) >= chance {
			continue
		}
		dmg := fixed6.FromInt(rng.IntRange(b.src, rng.AgentDamage, ct.AgentWeaponMin, ct.AgentWeaponMax))
		target.HitPoints = fixed6.Max(0, target.HitPoints.Sub(dmg.Add(b.bonus)))
		b.gains[a.ID] = b.gains[a.ID].Add(ct.SkillGainPerHit)
	}
}

func (b *battle) enemiesAttack(round int) {
	for i := range b.enemies {
		e := &b.enemies[i]
		if b.neutralized(e) {
			continue
		}
		alive := b.survivors()
		if len(alive) == 0 {
			return
		}
		target := alive[(i+round)%len(alive)]
		chance := ruleset.HitChance(ruleset.EnemyEffectiveSkill(e), ruleset.EffectiveSkill(target))
		if b.src.Roll(rng.EnemyAttack) >= chance {
			continue
		}
		dmg := fixed6.FromInt(rng.IntRange(b.src, rng.EnemyDamage, e.WeaponMin, e.WeaponMax))
		target.HitPoints = fixed6.Max(0, target.HitPoints.Sub(dmg))
	}
}
