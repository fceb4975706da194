package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"
)

// Bonuses are the cumulative effects of stat upgrades.
type Bonuses struct {
	WeaponDamage       fixed6.F `json:"weapon_damage"`
	TrainingSkillGain  fixed6.F `json:"training_skill_gain"`
	ExhaustionRecovery fixed6.F `json:"exhaustion_recovery"`
	HitPointsRecovery  fixed6.F `json:"hit_points_recovery"`
}

// TurnExpenditures is money spent by actions during the current turn.
type TurnExpenditures struct {
	Hiring   int `json:"hiring"`
	Upgrades int `json:"upgrades"`
}

type MissionOutcome struct {
	MissionID     string       `json:"mission_id"`
	MissionDataID string       `json:"mission_data_id"`
	State         MissionState `json:"state"`
	Casualties    int          `json:"casualties,omitempty"`
	Rounds        int          `json:"rounds,omitempty"`
}

// TurnReport describes what the last AdvanceTurn did.
type TurnReport struct {
	Turn              int              `json:"turn"`
	MoneyBefore       int              `json:"money_before"`
	MoneyAfter        int              `json:"money_after"`
	Funding           int              `json:"funding"`
	ContractingIncome int              `json:"contracting_income"`
	Upkeep            int              `json:"upkeep"`
	MissionMoney      int              `json:"mission_money"`
	IntelGained       fixed6.F         `json:"intel_gained"`
	PanicBefore       fixed6.F         `json:"panic_before"`
	PanicAfter        fixed6.F         `json:"panic_after"`
	Missions          []MissionOutcome `json:"missions,omitempty"`
	MissionsSpawned   []string         `json:"missions_spawned,omitempty"`
	LeadsCompleted    []string         `json:"leads_completed,omitempty"`
	AgentsLost        []string         `json:"agents_lost,omitempty"`
	FactionsLeveledUp []string         `json:"factions_leveled_up,omitempty"`
	FactionsDefeated  []string         `json:"factions_defeated,omitempty"`
}

// GameState is the aggregate root. It is owned by one engine and mutated in
// place; Clone is the only copy boundary.
type GameState struct {
	Turn                    int                           `json:"turn"`
	ActionsCount            int                           `json:"actions_count"`
	Money                   int                           `json:"money"`
	Funding                 int                           `json:"funding"`
	Intel                   fixed6.F                      `json:"intel"`
	AgentCap                int                           `json:"agent_cap"`
	TransportCap            int                           `json:"transport_cap"`
	TrainingCap             int                           `json:"training_cap"`
	Panic                   fixed6.F                      `json:"panic"`
	Bonuses                 Bonuses                       `json:"bonuses"`
	Agents                  []Agent                       `json:"agents"`
	Factions                []Faction                     `json:"factions"`
	Missions                []Mission                     `json:"missions"`
	LeadInvestigations      map[string]*LeadInvestigation `json:"lead_investigations"`
	LeadInvestigationCounts map[string]int                `json:"lead_investigation_counts"`
	TurnExpenditures        TurnExpenditures              `json:"turn_expenditures"`
	LastTurnReport          *TurnReport                   `json:"last_turn_report,omitempty"`
	// ExistentialFailure is set when a level 6 operation was not stopped.
	ExistentialFailure bool `json:"existential_failure,omitempty"`

	NextAgentSeq         int `json:"next_agent_seq"`
	NextMissionSeq       int `json:"next_mission_seq"`
	NextInvestigationSeq int `json:"next_investigation_seq"`
	NextEnemySeq         int `json:"next_enemy_seq"`
}

func (gs *GameState) NewAgentID() string {
	gs.NextAgentSeq++
	return fmt.Sprintf("agent-%03d", gs.NextAgentSeq)
}

func (gs *GameState) NewMissionID() string {
	gs.NextMissionSeq++
	return fmt.Sprintf("mission-%03d", gs.NextMissionSeq)
}

func (gs *GameState) NewInvestigationID() (string, int) {
	gs.NextInvestigationSeq++
	return fmt.Sprintf("investigation-%03d", gs.NextInvestigationSeq), gs.NextInvestigationSeq
}

func (gs *GameState) NewEnemyID() string {
	gs.NextEnemySeq++
	return fmt.Sprintf("enemy-%04d", gs.NextEnemySeq)
}

func (gs *GameState) Agent(id string) *Agent {
	for i := range gs.Agents {
		if gs.Agents[i].ID == id {
			return &gs.Agents[i]
		}
	}
	return nil
}

func (gs *GameState) Mission(id string) *Mission {
	for i := range gs.Missions {
		if gs.Missions[i].ID == id {
			return &gs.Missions[i]
		}
	}
	return nil
}

func (gs *GameState) Faction(id string) *Faction {
	for i := range gs.Factions {
		if gs.Factions[i].ID == id {
			return &gs.Factions[i]
		}
	}
	return nil
}

// ActiveInvestigation returns the Active investigation of leadID, if any.
func (gs *GameState) ActiveInvestigation(leadID string) *LeadInvestigation {
	for _, inv := range gs.LeadInvestigations {
		if inv.LeadID == leadID && inv.State == InvestigationActive {
			return inv
		}
	}
	return nil
}

// Investigations returns every investigation ordered by creation.
func (gs *GameState) Investigations() []*LeadInvestigation {
	out := make([]*LeadInvestigation, 0, len(gs.LeadInvestigations))
	for _, inv := range gs.LeadInvestigations {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// EmployedCount is the number of agents counting against the agent cap.
func (gs *GameState) EmployedCount() int {
	n := 0
	for i := range gs.Agents {
		if gs.Agents[i].Employed() {
			n++
		}
	}
	return n
}

// DeployedCount is the number of agents bound to a mission.
func (gs *GameState) DeployedCount() int {
	n := 0
	for i := range gs.Agents {
		a := &gs.Agents[i]
		if a.Assignment.Kind == MissionDuty && a.Employed() {
			n++
		}
	}
	return n
}

// TrainingCount is the number of agents in or heading to training.
func (gs *GameState) TrainingCount() int {
	n := 0
	for i := range gs.Agents {
		a := &gs.Agents[i]
		if a.Assignment.Kind == Training && a.Employed() {
			n++
		}
	}
	return n
}

// MissionWon reports whether any mission of missionDataID has been won.
func (gs *GameState) MissionWon(missionDataID string) bool {
	for i := range gs.Missions {
		m := &gs.Missions[i]
		if m.MissionDataID == missionDataID && m.State == MissionWon {
			return true
		}
	}
	return false
}

// Clone deep-copies the state. Nil and empty collections are preserved as
// such so that clones encode identically.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Agents = slices.Clone(gs.Agents)
	out.Factions = slices.Clone(gs.Factions)
	out.Missions = slices.Clone(gs.Missions)
	for i := range out.Missions {
		out.Missions[i].AgentIDs = slices.Clone(gs.Missions[i].AgentIDs)
		out.Missions[i].Enemies = slices.Clone(gs.Missions[i].Enemies)
	}
	if gs.LeadInvestigations != nil {
		out.LeadInvestigations = make(map[string]*LeadInvestigation, len(gs.LeadInvestigations))
		for id, inv := range gs.LeadInvestigations {
			c := *inv
			c.AgentIDs = slices.Clone(inv.AgentIDs)
			out.LeadInvestigations[id] = &c
		}
	}
	out.LeadInvestigationCounts = maps.Clone(gs.LeadInvestigationCounts)
	if gs.LastTurnReport != nil {
		r := *gs.LastTurnReport
		r.Missions = slices.Clone(r.Missions)
		r.MissionsSpawned = slices.Clone(r.MissionsSpawned)
		r.LeadsCompleted = slices.Clone(r.LeadsCompleted)
		r.AgentsLost = slices.Clone(r.AgentsLost)
		r.FactionsLeveledUp = slices.Clone(r.FactionsLeveledUp)
		r.FactionsDefeated = slices.Clone(r.FactionsDefeated)
		out.LastTurnReport = &r
	}
	return &out
}

// Digest is the sha256 of the canonical JSON encoding.
func (gs *GameState) Digest() string {
	b, err := json.Marshal(gs)
	if err != nil {
		panic(fmt.Sprintf("digest: %v", err))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (s AIState) Clone() AIState { return s }
