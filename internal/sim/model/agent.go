package model

import "github.com/konrad-jamrozik/game-ts-sub002/internal/sim/fixed6"

type AgentState string

const (
	Available    AgentState = "Available"
	InTransit    AgentState = "InTransit"
	OnAssignment AgentState = "OnAssignment"
	OnMission    AgentState = "OnMission"
	Recovering   AgentState = "Recovering"
	InTraining   AgentState = "InTraining"
	Terminated   AgentState = "Terminated"
	SackedState  AgentState = "Sacked"
)

type AssignmentKind string

const (
	Standby       AssignmentKind = "Standby"
	Contracting   AssignmentKind = "Contracting"
	Espionage     AssignmentKind = "Espionage"
	Training      AssignmentKind = "Training"
	Recovery      AssignmentKind = "Recovery"
	Investigation AssignmentKind = "Investigation"
	MissionDuty   AssignmentKind = "Mission"
	KIA           AssignmentKind = "KIA"
	Sacked        AssignmentKind = "Sacked"
)

// Assignment is what an agent is (or is travelling to be) doing. TargetID is
// set for Investigation and Mission.
type Assignment struct {
	Kind     AssignmentKind `json:"kind"`
	TargetID string         `json:"target_id,omitempty"`
}

type Agent struct {
	ID             string     `json:"id"`
	State          AgentState `json:"state"`
	Assignment     Assignment `json:"assignment"`
	Skill          fixed6.F   `json:"skill"`
	ExhaustionPct  fixed6.F   `json:"exhaustion_pct"`
	HitPoints      fixed6.F   `json:"hit_points"`
	MaxHitPoints   fixed6.F   `json:"max_hit_points"`
	MissionsTotal  int        `json:"missions_total"`
	// RecoveryTurns counts down the turns left in Recovering.
	RecoveryTurns  int        `json:"recovery_turns,omitempty"`
	TurnHired      int        `json:"turn_hired"`
	TurnTerminated int        `json:"turn_terminated,omitempty"`
}

// Employed agents count against the agent cap and draw upkeep.
func (a *Agent) Employed() bool {
	return a.State != Terminated && a.State != SackedState
}

// Ready agents can take a new assignment without being recalled first.
func (a *Agent) Ready() bool {
	if a.State == Available {
		return true
	}
	return a.State == OnAssignment &&
		(a.Assignment.Kind == Contracting || a.Assignment.Kind == Espionage)
}

func (a *Agent) Injured() bool { return a.HitPoints < a.MaxHitPoints }

// Working agents accrue exhaustion each turn.
func (a *Agent) Working() bool {
	switch a.State {
	case OnAssignment, InTraining:
		return true
	}
	return false
}

func (a *Agent) assign(kind AssignmentKind, target string) {
	a.Assignment = Assignment{Kind: kind, TargetID: target}
}

// SendTo puts the agent in transit toward a new assignment.
func (a *Agent) SendTo(kind AssignmentKind, target string) {
	a.State = InTransit
	a.assign(kind, target)
}

// StandDown sends the agent home, or to recovery when injured.
func (a *Agent) StandDown() {
	if a.Injured() {
		a.SendTo(Recovery, "")
		return
	}
	a.SendTo(Standby, "")
}

// Kill terminates the agent on turn.
func (a *Agent) Kill(turn int) {
	a.HitPoints = 0
	a.State = Terminated
	a.assign(KIA, "")
	a.TurnTerminated = turn
}
