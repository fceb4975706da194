// Package actions is the player action surface. Each command kind has a
// validator that never mutates and a mutator that assumes a passed
// validation.
package actions

import "github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"

type Kind int

const (
	KindHireAgent Kind = iota
	KindSackAgents
	KindAssignAgentsToContracting
	KindAssignAgentsToEspionage
	KindAssignAgentsToTraining
	KindRecallAgents
	KindStartLeadInvestigation
	KindAddAgentsToInvestigation
	KindDeployAgentsToMission
	KindBuyUpgrade
	KindAdvanceTurn
	KindRaiseDesiredAgentCount
	KindRaiseDesiredUpgrade
	KindDebugSetActivityLevel
	KindDebugGrantMoney
	kindCount
)

var kindNames = [...]string{
	KindHireAgent:                 "hireAgent",
	KindSackAgents:                "sackAgents",
	KindAssignAgentsToContracting: "assignAgentsToContracting",
	KindAssignAgentsToEspionage:   "assignAgentsToEspionage",
	KindAssignAgentsToTraining:    "assignAgentsToTraining",
	KindRecallAgents:              "recallAgents",
	KindStartLeadInvestigation:    "startLeadInvestigation",
	KindAddAgentsToInvestigation:  "addAgentsToInvestigation",
	KindDeployAgentsToMission:     "deployAgentsToMission",
	KindBuyUpgrade:                "buyUpgrade",
	KindAdvanceTurn:               "advanceTurn",
	KindRaiseDesiredAgentCount:    "raiseDesiredAgentCount",
	KindRaiseDesiredUpgrade:       "raiseDesiredUpgrade",
	KindDebugSetActivityLevel:     "debugSetActivityLevel",
	KindDebugGrantMoney:           "debugGrantMoney",
}

// Both directions: a kind without a name, or a name without a kind, fails
// to compile.
var (
	_ [int(kindCount) - len(kindNames)]struct{}
	_ [len(kindNames) - int(kindCount)]struct{}
)

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// PlayerAction kinds count toward actionsCount.
func (k Kind) PlayerAction() bool { return k <= KindBuyUpgrade }

// Checkpointed kinds produce an undo checkpoint. Everything else is
// housekeeping and only replaces the present state.
func (k Kind) Checkpointed() bool { return k.PlayerAction() || k == KindAdvanceTurn }

// Debug kinds are reachable only through debug tooling.
func (k Kind) Debug() bool { return k == KindDebugSetActivityLevel || k == KindDebugGrantMoney }

// Command is a closed sum type; only this package implements it.
type Command interface {
	Kind() Kind
	sealed()
}

type HireAgent struct{}

type SackAgents struct {
	AgentIDs []string `json:"agent_ids"`
}

type AssignAgentsToContracting struct {
	AgentIDs []string `json:"agent_ids"`
}

type AssignAgentsToEspionage struct {
	AgentIDs []string `json:"agent_ids"`
}

type AssignAgentsToTraining struct {
	AgentIDs []string `json:"agent_ids"`
}

type RecallAgents struct {
	AgentIDs []string `json:"agent_ids"`
}

type StartLeadInvestigation struct {
	LeadID   string   `json:"lead_id"`
	AgentIDs []string `json:"agent_ids"`
}

type AddAgentsToInvestigation struct {
	InvestigationID string   `json:"investigation_id"`
	AgentIDs        []string `json:"agent_ids"`
}

type DeployAgentsToMission struct {
	MissionID string   `json:"mission_id"`
	AgentIDs  []string `json:"agent_ids"`
}

type BuyUpgrade struct {
	Upgrade model.Upgrade `json:"upgrade"`
}

type AdvanceTurn struct{}

type RaiseDesiredAgentCount struct{}

type RaiseDesiredUpgrade struct {
	Upgrade model.Upgrade `json:"upgrade"`
}

type DebugSetActivityLevel struct {
	FactionID string `json:"faction_id"`
	Level     int    `json:"level"`
}

type DebugGrantMoney struct {
	Amount int `json:"amount"`
}

func (HireAgent) Kind() Kind                 { return KindHireAgent }
func (SackAgents) Kind() Kind                { return KindSackAgents }
func (AssignAgentsToContracting) Kind() Kind { return KindAssignAgentsToContracting }
func (AssignAgentsToEspionage) Kind() Kind   { return KindAssignAgentsToEspionage }
func (AssignAgentsToTraining) Kind() Kind    { return KindAssignAgentsToTraining }
func (RecallAgents) Kind() Kind              { return KindRecallAgents }
func (StartLeadInvestigation) Kind() Kind    { return KindStartLeadInvestigation }
func (AddAgentsToInvestigation) Kind() Kind  { return KindAddAgentsToInvestigation }
func (DeployAgentsToMission) Kind() Kind     { return KindDeployAgentsToMission }
func (BuyUpgrade) Kind() Kind                { return KindBuyUpgrade }
func (AdvanceTurn) Kind() Kind               { return KindAdvanceTurn }
func (RaiseDesiredAgentCount) Kind() Kind    { return KindRaiseDesiredAgentCount }
func (RaiseDesiredUpgrade) Kind() Kind       { return KindRaiseDesiredUpgrade }
func (DebugSetActivityLevel) Kind() Kind     { return KindDebugSetActivityLevel }
func (DebugGrantMoney) Kind() Kind           { return KindDebugGrantMoney }

func (HireAgent) sealed()                 {}
func (SackAgents) sealed()                {}
func (AssignAgentsToContracting) sealed() {}
func (AssignAgentsToEspionage) sealed()   {}
func (AssignAgentsToTraining) sealed()    {}
func (RecallAgents) sealed()              {}
func (StartLeadInvestigation) sealed()    {}
func (AddAgentsToInvestigation) sealed()  {}
func (DeployAgentsToMission) sealed()     {}
func (BuyUpgrade) sealed()                {}
func (AdvanceTurn) sealed()               {}
func (RaiseDesiredAgentCount) sealed()    {}
func (RaiseDesiredUpgrade) sealed()       {}
func (DebugSetActivityLevel) sealed()     {}
func (DebugGrantMoney) sealed()           {}
