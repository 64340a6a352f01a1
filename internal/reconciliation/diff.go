package reconciliation

import (
	"sort"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

// chainPlan is the set of writes that brings one wallet's stored holdings on
// one chain in line with what the provider returned.
type chainPlan struct {
	newCollections []model.Collection
	toCreate       []model.Token
	toTouch        []string
	toDelete       []string
}

func (p chainPlan) empty() bool {
	return len(p.newCollections) == 0 && len(p.toCreate) == 0 &&
		len(p.toTouch) == 0 && len(p.toDelete) == 0
}

// collectionAddresses returns the distinct collection addresses in fetched,
// in fetch order.
func collectionAddresses(fetched []model.NormalizedCollection) []string {
	seen := make(map[string]bool, len(fetched))
	out := make([]string, 0, len(fetched))
	for _, c := range fetched {
		if seen[c.TokenAddress] {
			continue
		}
		seen[c.TokenAddress] = true
		out = append(out, c.TokenAddress)
	}
	return out
}

// diffChain computes the plan for owner. existingCollections holds the
// collection addresses already stored; existingIDs are the token ids stored
// for owner on this chain. When complete is false the fetch was truncated,
// so absence from fetched proves nothing and no deletes are planned.
func diffChain(
	owner string,
	fetched []model.NormalizedCollection,
	existingCollections map[string]bool,
	existingIDs []string,
	complete bool,
	observedAt time.Time,
) chainPlan {
	var plan chainPlan

	stored := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		stored[id] = true
	}

	planned := make(map[string]bool)
	fetchedIDs := make(map[string]bool)
	for _, c := range fetched {
		if !existingCollections[c.TokenAddress] && !planned[c.TokenAddress] {
			planned[c.TokenAddress] = true
			plan.newCollections = append(plan.newCollections, c.ToCollection())
		}
		for _, t := range c.ToTokens(observedAt) {
			if fetchedIDs[t.ID] {
				continue
			}
			fetchedIDs[t.ID] = true
			t.OwnerWalletAddress = owner
			if stored[t.ID] {
				plan.toTouch = append(plan.toTouch, t.ID)
			} else {
				plan.toCreate = append(plan.toCreate, t)
			}
		}
	}

	if complete {
		for _, id := range existingIDs {
			if !fetchedIDs[id] {
				plan.toDelete = append(plan.toDelete, id)
			}
		}
		sort.Strings(plan.toDelete)
	}
	return plan
}
