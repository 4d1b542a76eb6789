package assignment

import (
	"context"
	"sort"

	"fulfillment-be/internal/officer"
)

type OfficerDirectory interface {
	Get(ctx context.Context, userID string) (*officer.Officer, error)
	ListActive(ctx context.Context) ([]*officer.Officer, error)
	ListEligible(ctx context.Context, excludeID string) ([]*officer.Officer, error)
}

type WorkloadCounter interface {
	ActiveOrderCounts(ctx context.Context) (map[string]int, error)
}

// Candidate is an officer with spare capacity and its current workload.
type Candidate struct {
	Officer      *officer.Officer
	ActiveOrders int
}

// Selector picks the least busy officer with spare capacity. Results are
// computed on every call and may be stale by the time they are acted on.
type Selector struct {
	officers          OfficerDirectory
	workload          WorkloadCounter
	fallbackAnyActive bool
}

func NewSelector(officers OfficerDirectory, workload WorkloadCounter, fallbackAnyActive bool) *Selector {
	return &Selector{officers: officers, workload: workload, fallbackAnyActive: fallbackAnyActive}
}

// Select returns nil when no officer can take another order.
func (s *Selector) Select(ctx context.Context, excludeID string) (*Candidate, error) {
	counts, err := s.workload.ActiveOrderCounts(ctx)
	if err != nil {
		return nil, err
	}

	eligible, err := s.officers.ListEligible(ctx, excludeID)
	if err != nil {
		return nil, err
	}
	if c := PickOfficer(eligible, counts, excludeID, true); c != nil || !s.fallbackAnyActive {
		return c, nil
	}

	active, err := s.officers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return PickOfficer(active, counts, excludeID, false), nil
}

// PickOfficer filters officers to active ones under capacity (and AVAILABLE
// when requireAvailable), then returns the one with the fewest active
// orders, ties broken by the lowest user id.
func PickOfficer(officers []*officer.Officer, counts map[string]int, excludeID string, requireAvailable bool) *Candidate {
	candidates := make([]Candidate, 0, len(officers))
	for _, o := range officers {
		if o == nil || !o.Active || o.UserID == excludeID {
			continue
		}
		if requireAvailable && o.AvailabilityStatus != officer.Available {
			continue
		}
		active := counts[o.UserID]
		if active >= o.MaxActiveOrders {
			continue
		}
		candidates = append(candidates, Candidate{Officer: o, ActiveOrders: active})
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ActiveOrders != candidates[j].ActiveOrders {
			return candidates[i].ActiveOrders < candidates[j].ActiveOrders
		}
		return candidates[i].Officer.UserID < candidates[j].Officer.UserID
	})
	return &candidates[0]
}
