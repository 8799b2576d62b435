package badges

import (
	"time"

	"github.com/google/uuid"
)

// Delta is the minimal set of persistence operations turning the stored
// badge records into the freshly computed set.
type Delta struct {
	ToCreate []BadgeRecord
	ToRemove []BadgeType
	// Final is the resulting badge set, used to rewrite the denormalized
	// cache in the same atomic apply.
	Final []BadgeType
}

// Empty reports whether applying the delta would be a no-op
func (d Delta) Empty() bool {
	return len(d.ToCreate) == 0 && len(d.ToRemove) == 0
}

// Reconcile diffs the stored badge records against the computed set.
//
// A held, unexpired badge present in both keeps its record untouched, so
// the original awardedAt survives recomputation. An expired rolling badge
// is removed even if still eligible; eligibility then produces a fresh
// award with a new timestamp. Pure computation, no failure mode.
func Reconcile(contractorID uuid.UUID, existing []BadgeRecord, current BadgeSet, now time.Time) Delta {
	var delta Delta

	held := NewBadgeSet()
	for _, rec := range existing {
		if rec.Expired(now) {
			delta.ToRemove = append(delta.ToRemove, rec.Type)
			continue
		}
		held.Add(rec.Type)
	}

	final := NewBadgeSet()
	for _, t := range held.Types() {
		if current.Has(t) {
			final.Add(t)
			continue
		}
		delta.ToRemove = append(delta.ToRemove, t)
	}

	for _, t := range current.Types() {
		if held.Has(t) {
			continue
		}
		delta.ToCreate = append(delta.ToCreate, newAward(contractorID, t, now))
		final.Add(t)
	}

	delta.Final = final.Types()
	return delta
}

func newAward(contractorID uuid.UUID, t BadgeType, now time.Time) BadgeRecord {
	rec := BadgeRecord{
		ID:           uuid.New(),
		ContractorID: contractorID,
		Type:         t,
		DisplayName:  t.DisplayName(),
		Description:  t.Description(),
		AwardedAt:    now,
	}
	if t.Expires() {
		exp := now.Add(AwardValidity)
		rec.ExpiresAt = &exp
	}
	return rec
}
