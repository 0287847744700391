package witness

import (
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/set"
)

// HealthCheck is one client's accusation that a set of peers failed to
// respond during the round.
type HealthCheck struct {
	From    roster.ClientID
	Against []roster.ClientID
}

// AccusationTally counts, per accused committee index, how many distinct
// accusers named them this round.
type AccusationTally struct {
	counts map[int]set.Set[roster.ClientID]
}

// NewAccusationTally returns an empty tally.
func NewAccusationTally() *AccusationTally {
	return &AccusationTally{counts: make(map[int]set.Set[roster.ClientID])}
}

// Record adds hc's accusations to the tally. An accuser must itself be an
// active committee member and an accusation against a non-active client is
// ignored (InvalidHealthCheck at the caller, who should already have
// rejected it before calling Record).
func (t *AccusationTally) Record(epoch *roster.EpochRoster, hc HealthCheck) {
	if _, ok := epoch.IndexOf(hc.From); !ok {
		return
	}
	for _, accused := range hc.Against {
		idx, ok := epoch.IndexOf(accused)
		if !ok {
			continue
		}
		accusers, ok := t.counts[idx]
		if !ok {
			accusers = set.NewSet[roster.ClientID](0)
			t.counts[idx] = accusers
		}
		accusers.Add(hc.From)
	}
}

// Majority returns the committee indices accused by a strict majority of
// epoch's committee: these should be Ejected and slashed.
func (t *AccusationTally) Majority(epoch *roster.EpochRoster) []int {
	threshold := epoch.Len()/2 + 1

	var ejected []int
	for i := 0; i < epoch.Len(); i++ {
		if t.counts[i].Len() >= threshold {
			ejected = append(ejected, i)
		}
	}
	return ejected
}
