package state

import "github.com/calehh/hac-dao/types"

// OnPeriodAdvance is the per-block tick. It settles at most one access
// proposal and at most one project round, each only when its voting window
// has elapsed. Any error here means the ledger is inconsistent.
func (s *State) OnPeriodAdvance() (events []types.Event, err error) {
	err = s.atomic(func() error {
		accessEvents, _, err := s.settleAccess()
		if err != nil {
			return err
		}
		projectEvents, _, err := s.settleProject()
		if err != nil {
			return err
		}
		events = append(accessEvents, projectEvents...)
		return nil
	})
	if err != nil {
		return nil, settled(err)
	}
	return events, nil
}
