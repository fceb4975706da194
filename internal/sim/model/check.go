package model

import (
	"errors"
	"fmt"
)

// CheckAgent verifies the hit point and assignment invariants of one agent.
func CheckAgent(a *Agent) error {
	if a.HitPoints < 0 || a.HitPoints > a.MaxHitPoints {
		return fmt.Errorf("agent %s: hit points %s outside [0, %s]", a.ID, a.HitPoints, a.MaxHitPoints)
	}
	if (a.HitPoints == 0) != (a.State == Terminated) {
		return fmt.Errorf("agent %s: hit points %s with state %s", a.ID, a.HitPoints, a.State)
	}
	if a.State == Terminated {
		if a.Assignment.Kind != KIA {
			return fmt.Errorf("agent %s: terminated with assignment %s", a.ID, a.Assignment.Kind)
		}
		return nil
	}
	if a.State == SackedState {
		if a.Assignment.Kind != Sacked {
			return fmt.Errorf("agent %s: sacked with assignment %s", a.ID, a.Assignment.Kind)
		}
		return nil
	}
	if a.Injured() && a.Assignment.Kind != Recovery {
		return fmt.Errorf("agent %s: injured with assignment %s", a.ID, a.Assignment.Kind)
	}
	if a.Assignment.Kind == Recovery && a.State != Recovering && a.State != InTransit {
		return fmt.Errorf("agent %s: recovery assignment in state %s", a.ID, a.State)
	}
	if a.ExhaustionPct < 0 {
		return fmt.Errorf("agent %s: negative exhaustion %s", a.ID, a.ExhaustionPct)
	}
	return nil
}

// Validate checks every cross-entity invariant of the state.
func Validate(gs *GameState) error {
	var errs []error
	for i := range gs.Agents {
		if err := CheckAgent(&gs.Agents[i]); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range gs.Factions {
		f := &gs.Factions[i]
		if f.ActivityLevel < 0 || f.ActivityLevel > 7 {
			errs = append(errs, fmt.Errorf("faction %s: activity level %d", f.ID, f.ActivityLevel))
		}
		if f.SuppressionTurns < 0 {
			errs = append(errs, fmt.Errorf("faction %s: negative suppression", f.ID))
		}
	}
	for i := range gs.Missions {
		m := &gs.Missions[i]
		if m.State == MissionDeployed && len(m.AgentIDs) == 0 {
			errs = append(errs, fmt.Errorf("mission %s: deployed without agents", m.ID))
		}
		for _, id := range m.AgentIDs {
			if gs.Agent(id) == nil {
				errs = append(errs, fmt.Errorf("mission %s: unknown agent %s", m.ID, id))
			}
		}
	}
	for id, inv := range gs.LeadInvestigations {
		if id != inv.ID {
			errs = append(errs, fmt.Errorf("investigation %s stored under %s", inv.ID, id))
		}
	}
	if gs.Panic < 0 {
		errs = append(errs, fmt.Errorf("negative panic %s", gs.Panic))
	}
	return errors.Join(errs...)
}
