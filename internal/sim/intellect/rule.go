package intellect

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ActionFunc runs when a rule's condition holds. It reports whether the
// purchase loop should evaluate again.
type ActionFunc func(p *purchase) bool

// Rule is one line of the purchase checklist: a condition over Env and the
// step it triggers.
type Rule struct {
	Name         string
	Priority     int    // higher = evaluated first
	Category     string // "buy" spends money, "goal" only moves targets
	ConditionSrc string
	program      *vm.Program
	Action       ActionFunc
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}

// first returns the highest priority rule whose condition holds.
func first(rules []*Rule, env Env) (*Rule, error) {
	for _, r := range rules {
		out, err := vm.Run(r.program, env)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		if match, ok := out.(bool); ok && match {
			return r, nil
		}
	}
	return nil, nil
}
