package actions

import (
	"fmt"
	"log/slog"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/protocol"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/model"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/rng"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/ruleset"
)

// Env is everything a handler may read or, in a mutator, write.
type Env struct {
	Rules *ruleset.Rules
	Game  *model.GameState
	AI    *model.AIState
	Rand  rng.Source
	Log   *slog.Logger
}

// Result is the outcome of validation. Rejections are data, not errors.
type Result struct {
	OK      bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"error_message,omitempty"`
}

var okResult = Result{OK: true}

func reject(code, format string, args ...any) Result {
	return Result{Code: code, Message: fmt.Sprintf(format, args...)}
}

type handler struct {
	validate func(Env, Command) Result
	mutate   func(Env, Command)
}

var handlers = [...]handler{
	KindHireAgent:                 {validateHire, mutateHire},
	KindSackAgents:                {validateSack, mutateSack},
	KindAssignAgentsToContracting: {validateContracting, mutateContracting},
	KindAssignAgentsToEspionage:   {validateEspionage, mutateEspionage},
	KindAssignAgentsToTraining:    {validateTraining, mutateTraining},
	KindRecallAgents:              {validateRecall, mutateRecall},
	KindStartLeadInvestigation:    {validateStartInvestigation, mutateStartInvestigation},
	KindAddAgentsToInvestigation:  {validateAddToInvestigation, mutateAddToInvestigation},
	KindDeployAgentsToMission:     {validateDeploy, mutateDeploy},
	KindBuyUpgrade:                {validateBuyUpgrade, mutateBuyUpgrade},
	KindAdvanceTurn:               {validateAdvanceTurn, mutateAdvanceTurn},
	KindRaiseDesiredAgentCount:    {validateRaiseDesiredAgentCount, mutateRaiseDesiredAgentCount},
	KindRaiseDesiredUpgrade:       {validateRaiseDesiredUpgrade, mutateRaiseDesiredUpgrade},
	KindDebugSetActivityLevel:     {validateDebugSetActivityLevel, mutateDebugSetActivityLevel},
	KindDebugGrantMoney:           {validateDebugGrantMoney, mutateDebugGrantMoney},
}

var (
	_ [int(kindCount) - len(handlers)]struct{}
	_ [len(handlers) - int(kindCount)]struct{}
)

func init() {
	for k := Kind(0); k < kindCount; k++ {
		if handlers[k].validate == nil || handlers[k].mutate == nil {
			panic(fmt.Sprintf("actions: no handler for %s", k))
		}
	}
}

func (e Env) log() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

// Validate checks cmd against the current state without mutating it.
func Validate(env Env, cmd Command) Result {
	if cmd == nil {
		return reject(protocol.ErrBadRequest, "nil command")
	}
	k := cmd.Kind()
	if !k.Debug() && k != KindRaiseDesiredAgentCount && k != KindRaiseDesiredUpgrade {
		if r := checkNotOver(env); !r.OK {
			return r
		}
	}
	return handlers[k].validate(env, cmd)
}

// Apply validates cmd and, only on success, mutates the state. Player
// actions increment actionsCount.
func Apply(env Env, cmd Command) Result {
	res := Validate(env, cmd)
	if cmd == nil {
		return res
	}
	if !res.OK {
		env.log().Debug("action rejected", "action", cmd.Kind().String(), "code", res.Code, "reason", res.Message)
		return res
	}
	handlers[cmd.Kind()].mutate(env, cmd)
	if cmd.Kind().PlayerAction() {
		env.Game.ActionsCount++
	}
	return res
}
