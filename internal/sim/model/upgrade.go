package model

import "fmt"

// Upgrade identifies a purchasable capability. The order is the purchase
// checklist order.
type Upgrade int

const (
	AgentCapUpgrade Upgrade = iota
	TransportCapUpgrade
	TrainingCapUpgrade
	WeaponDamageUpgrade
	TrainingSkillGainUpgrade
	ExhaustionRecoveryUpgrade
	HitPointsRecoveryUpgrade
	UpgradeCount
)

var upgradeNames = [UpgradeCount]string{
	"agent_cap",
	"transport_cap",
	"training_cap",
	"weapon_damage",
	"training_skill_gain",
	"exhaustion_recovery",
	"hit_points_recovery",
}

var upgradeLabels = [UpgradeCount]string{
	"Agent cap",
	"Transport cap",
	"Training cap",
	"Weapon damage",
	"Training skill gain",
	"Exhaustion recovery",
	"Hit points recovery",
}

func (u Upgrade) Valid() bool { return u >= 0 && u < UpgradeCount }

// Name is the stable key used in tuning files and the wire protocol.
func (u Upgrade) Name() string {
	if !u.Valid() {
		return "unknown"
	}
	return upgradeNames[u]
}

func (u Upgrade) Label() string {
	if !u.Valid() {
		return "Unknown"
	}
	return upgradeLabels[u]
}

// Stat upgrades raise bonuses rather than caps.
func (u Upgrade) Stat() bool { return u >= WeaponDamageUpgrade && u < UpgradeCount }

func (u Upgrade) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("invalid upgrade %d", int(u))
	}
	return []byte(u.Name()), nil
}

func (u *Upgrade) UnmarshalText(b []byte) error {
	v, ok := ParseUpgrade(string(b))
	if !ok {
		return fmt.Errorf("unknown upgrade %q", b)
	}
	*u = v
	return nil
}

func ParseUpgrade(name string) (Upgrade, bool) {
	for i, n := range upgradeNames {
		if n == name {
			return Upgrade(i), true
		}
	}
	return 0, false
}

// StatUpgrades lists the stat upgrades in checklist order.
func StatUpgrades() []Upgrade {
	return []Upgrade{WeaponDamageUpgrade, TrainingSkillGainUpgrade, ExhaustionRecoveryUpgrade, HitPointsRecoveryUpgrade}
}

// AIState is the AI's goal tracking. Actual is shared with human play: every
// BuyUpgrade increments it regardless of who bought.
type AIState struct {
	DesiredAgentCount int               `json:"desired_agent_count"`
	Desired           [UpgradeCount]int `json:"desired"`
	Actual            [UpgradeCount]int `json:"actual"`
}

// TotalPurchased sums the actual upgrade counters.
func (s *AIState) TotalPurchased() int {
	n := 0
	for _, v := range s.Actual {
		n += v
	}
	return n
}

// Pending reports whether the AI still wants u bought.
func (s *AIState) Pending(u Upgrade) bool { return s.Desired[u] > s.Actual[u] }
