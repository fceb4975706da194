package model

import "github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"

type Faction struct {
	ID                    string `json:"id"`
	FactionDataID         string `json:"faction_data_id"`
	ActivityLevel         int    `json:"activity_level"`
	TurnsAtCurrentLevel   int    `json:"turns_at_current_level"`
	TargetTurnsForLevelUp int    `json:"target_turns_for_progression"`
	// TurnsUntilNextOperation is -1 when the level never operates.
	TurnsUntilNextOperation int    `json:"turns_until_next_operation"`
	SuppressionTurns        int    `json:"suppression_turns"`
	LastOperationTypeName   string `json:"last_operation_type_name,omitempty"`
	Defeated                bool   `json:"defeated,omitempty"`
}

func (f *Faction) Suppressed() bool { return f.SuppressionTurns > 0 }

type MissionState string

const (
	MissionActive    MissionState = "Active"
	MissionDeployed  MissionState = "Deployed"
	MissionWon       MissionState = "Won"
	MissionRetreated MissionState = "Retreated"
	MissionWiped     MissionState = "Wiped"
	MissionExpired   MissionState = "Expired"
)

func (s MissionState) Terminal() bool {
	switch s {
	case MissionWon, MissionRetreated, MissionWiped, MissionExpired:
		return true
	}
	return false
}

type Enemy struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Skill        fixed6.F `json:"skill"`
	HitPoints    fixed6.F `json:"hit_points"`
	MaxHitPoints fixed6.F `json:"max_hit_points"`
	WeaponMin    int      `json:"weapon_min"`
	WeaponMax    int      `json:"weapon_max"`
}

type Mission struct {
	ID            string       `json:"id"`
	MissionDataID string       `json:"mission_data_id"`
	State         MissionState `json:"state"`
	AgentIDs      []string     `json:"agent_ids"`
	Enemies       []Enemy      `json:"enemies"`
	// OperationLevel is zero for offensive missions.
	OperationLevel int    `json:"operation_level,omitempty"`
	FactionID      string `json:"faction_id"`
	ExpiresIn      int    `json:"expires_in"`
	TurnCreated    int    `json:"turn_created"`
	TurnResolved   int    `json:"turn_resolved,omitempty"`
}

func (m *Mission) Defensive() bool { return m.OperationLevel > 0 }

type InvestigationState string

const (
	InvestigationActive    InvestigationState = "Active"
	InvestigationDone      InvestigationState = "Done"
	InvestigationAbandoned InvestigationState = "Abandoned"
)

type LeadInvestigation struct {
	ID               string             `json:"id"`
	Seq              int                `json:"seq"`
	LeadID           string             `json:"lead_id"`
	AccumulatedIntel fixed6.F           `json:"accumulated_intel"`
	AgentIDs         []string           `json:"agent_ids"`
	StartTurn        int                `json:"start_turn"`
	State            InvestigationState `json:"state"`
	TurnCompleted    int                `json:"turn_completed,omitempty"`
}
