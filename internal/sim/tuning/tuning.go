package tuning

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
)

//go:embed tuning.yaml
var defaultYAML []byte

type Tuning struct {
	Initial     Initial                  `yaml:"initial"`
	Economy     Economy                  `yaml:"economy"`
	Agents      Agents                   `yaml:"agents"`
	Combat      Combat                   `yaml:"combat"`
	Upgrades    map[string]UpgradeTuning `yaml:"upgrades"`
	AI          AI                       `yaml:"ai"`
	History     History                  `yaml:"history"`
	Persistence Persistence              `yaml:"persistence"`
}

type Initial struct {
	Money             int      `yaml:"money"`
	Funding           int      `yaml:"funding"`
	Intel             fixed6.F `yaml:"intel"`
	Agents            int      `yaml:"agents"`
	AgentSkill        fixed6.F `yaml:"agent_skill"`
	AgentMaxHitPoints fixed6.F `yaml:"agent_max_hit_points"`
	AgentCap          int      `yaml:"agent_cap"`
	TransportCap      int      `yaml:"transport_cap"`
	TrainingCap       int      `yaml:"training_cap"`
}

type Economy struct {
	HireCost                  int      `yaml:"hire_cost"`
	AgentUpkeep               int      `yaml:"agent_upkeep"`
	ContractingIncomePerSkill fixed6.F `yaml:"contracting_income_per_skill"`
	EspionageIntelPerSkill    fixed6.F `yaml:"espionage_intel_per_skill"`
	LeadIntelPerSkill         fixed6.F `yaml:"lead_intel_per_skill"`
}

type Agents struct {
	WorkExhaustionPerTurn        fixed6.F   `yaml:"work_exhaustion_per_turn"`
	ExhaustionRecoveryPerTurn    fixed6.F   `yaml:"exhaustion_recovery_per_turn"`
	TrainingSkillGainPerTurn     fixed6.F   `yaml:"training_skill_gain_per_turn"`
	HitPointsRecoveryPct         fixed6.F   `yaml:"hit_points_recovery_pct"`
	MissionConclusionExhaustion  fixed6.F   `yaml:"mission_conclusion_exhaustion"`
	ExhaustionPerCasualtyBracket fixed6.F   `yaml:"exhaustion_per_casualty_bracket"`
	CasualtyBracketPct           int        `yaml:"casualty_bracket_pct"`
	SurvivalSkillGain            []fixed6.F `yaml:"survival_skill_gain"`
	MaxExhaustion                fixed6.F   `yaml:"max_exhaustion"`
}

type Combat struct {
	MaxRounds               int      `yaml:"max_rounds"`
	RetreatThreshold        fixed6.F `yaml:"retreat_threshold"`
	IncapacitationThreshold fixed6.F `yaml:"incapacitation_threshold"`
	AgentWeaponMin          int      `yaml:"agent_weapon_min"`
	AgentWeaponMax          int      `yaml:"agent_weapon_max"`
	SkillGainPerHit         fixed6.F `yaml:"skill_gain_per_hit"`
}

type UpgradeTuning struct {
	Price         int      `yaml:"price"`
	PriceIncrease int      `yaml:"price_increase"`
	Increment     fixed6.F `yaml:"increment"`
}

type AI struct {
	InitialDesiredAgentCount int      `yaml:"initial_desired_agent_count"`
	RequiredTurnsOfSavings   int      `yaml:"required_turns_of_savings"`
	TransportCapRatio        fixed6.F `yaml:"transport_cap_ratio"`
	TrainingCapRatio         fixed6.F `yaml:"training_cap_ratio"`
	UpgradeThresholdDivisor  int      `yaml:"upgrade_threshold_divisor"`
	AgentPickWeight          int      `yaml:"agent_pick_weight"`
	StatUpgradePickWeight    int      `yaml:"stat_upgrade_pick_weight"`
	MissionExhaustionCeiling fixed6.F `yaml:"mission_exhaustion_ceiling"`
	WorkExhaustionCeiling    fixed6.F `yaml:"work_exhaustion_ceiling"`
	MissionStrengthMargin    fixed6.F `yaml:"mission_strength_margin"`
	AgentsPerInvestigation   int      `yaml:"agents_per_investigation"`
	ReserveAgents            int      `yaml:"reserve_agents"`
	MaxPurchasesPerTurn      int      `yaml:"max_purchases_per_turn"`
}

type History struct {
	Limit     int `yaml:"limit"`
	KeepTurns int `yaml:"keep_turns"`
}

type Persistence struct {
	Version int `yaml:"version"`
}

// Defaults returns the embedded tuning. It panics if the embedded document
// is invalid, which is a build defect.
func Defaults() Tuning {
	t, err := parse(defaultYAML, Tuning{})
	if err != nil {
		panic(err)
	}
	return t
}

// Load overlays the file at path onto Defaults, so a partial file only
// changes the keys it names.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return parse(raw, Defaults())
}

func parse(raw []byte, base Tuning) (Tuning, error) {
	t := base
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tuning{}, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// UpgradeNames lists every purchasable upgrade in checklist order.
var UpgradeNames = []string{
	"agent_cap",
	"transport_cap",
	"training_cap",
	"weapon_damage",
	"training_skill_gain",
	"exhaustion_recovery",
	"hit_points_recovery",
}

func (t Tuning) Validate() error {
	for _, name := range UpgradeNames {
		u, ok := t.Upgrades[name]
		if !ok {
			return fmt.Errorf("upgrades: missing %s", name)
		}
		if u.Price <= 0 || u.PriceIncrease < 0 || u.Increment <= 0 {
			return fmt.Errorf("upgrades.%s: price and increment must be positive", name)
		}
	}
	if t.Combat.MaxRounds <= 0 {
		return fmt.Errorf("combat.max_rounds must be positive")
	}
	if t.Combat.AgentWeaponMin > t.Combat.AgentWeaponMax {
		return fmt.Errorf("combat: agent_weapon_min > agent_weapon_max")
	}
	if len(t.Agents.SurvivalSkillGain) == 0 {
		return fmt.Errorf("agents.survival_skill_gain is empty")
	}
	if t.Agents.CasualtyBracketPct <= 0 {
		return fmt.Errorf("agents.casualty_bracket_pct must be positive")
	}
	if t.Agents.HitPointsRecoveryPct <= 0 {
		return fmt.Errorf("agents.hit_points_recovery_pct must be positive")
	}
	if t.AI.UpgradeThresholdDivisor <= 0 {
		return fmt.Errorf("ai.upgrade_threshold_divisor must be positive")
	}
	if t.History.KeepTurns < 1 {
		return fmt.Errorf("history.keep_turns must be at least 1")
	}
	if t.Initial.Agents > t.Initial.AgentCap {
		return fmt.Errorf("initial.agents exceeds initial.agent_cap")
	}
	return nil
}
