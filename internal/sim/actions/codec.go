package actions

import (
	"encoding/json"
	"fmt"
)

// newCommand returns a pointer to the zero command of kind k.
func newCommand(k Kind) (any, error) {
	switch k {
	case KindHireAgent:
		return &HireAgent{}, nil
	case KindSackAgents:
		return &SackAgents{}, nil
	case KindAssignAgentsToContracting:
		return &AssignAgentsToContracting{}, nil
	case KindAssignAgentsToEspionage:
		return &AssignAgentsToEspionage{}, nil
	case KindAssignAgentsToTraining:
		return &AssignAgentsToTraining{}, nil
	case KindRecallAgents:
		return &RecallAgents{}, nil
	case KindStartLeadInvestigation:
		return &StartLeadInvestigation{}, nil
	case KindAddAgentsToInvestigation:
		return &AddAgentsToInvestigation{}, nil
	case KindDeployAgentsToMission:
		return &DeployAgentsToMission{}, nil
	case KindBuyUpgrade:
		return &BuyUpgrade{}, nil
	case KindAdvanceTurn:
		return &AdvanceTurn{}, nil
	case KindRaiseDesiredAgentCount:
		return &RaiseDesiredAgentCount{}, nil
	case KindRaiseDesiredUpgrade:
		return &RaiseDesiredUpgrade{}, nil
	case KindDebugSetActivityLevel:
		return &DebugSetActivityLevel{}, nil
	case KindDebugGrantMoney:
		return &DebugGrantMoney{}, nil
	}
	return nil, fmt.Errorf("unknown action kind %d", int(k))
}

// Marshal encodes cmd as its kind name and JSON arguments.
func Marshal(cmd Command) (string, json.RawMessage, error) {
	b, err := json.Marshal(cmd)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", cmd.Kind(), err)
	}
	return cmd.Kind().String(), b, nil
}

// Unmarshal decodes a command from its kind name and JSON arguments. Empty
// args decode to the zero command.
func Unmarshal(name string, args json.RawMessage) (Command, error) {
	k, ok := ParseKind(name)
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	ptr, err := newCommand(k)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, ptr); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	return deref(ptr), nil
}

func deref(ptr any) Command {
	switch c := ptr.(type) {
	case *HireAgent:
		return *c
	case *SackAgents:
		return *c
	case *AssignAgentsToContracting:
		return *c
	case *AssignAgentsToEspionage:
		return *c
	case *AssignAgentsToTraining:
		return *c
	case *RecallAgents:
		return *c
	case *StartLeadInvestigation:
		return *c
	case *AddAgentsToInvestigation:
		return *c
	case *DeployAgentsToMission:
		return *c
	case *BuyUpgrade:
		return *c
	case *AdvanceTurn:
		return *c
	case *RaiseDesiredAgentCount:
		return *c
	case *RaiseDesiredUpgrade:
		return *c
	case *DebugSetActivityLevel:
		return *c
	case *DebugGrantMoney:
		return *c
	}
	return nil
}
