package badges

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reconcileNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestReconcileNewAwards(t *testing.T) {
	id := uuid.New()
	delta := Reconcile(id, nil, NewBadgeSet(BadgeVerifiedPro, BadgeTopRated), reconcileNow)

	require.Len(t, delta.ToCreate, 2)
	assert.Empty(t, delta.ToRemove)
	assert.ElementsMatch(t, []BadgeType{BadgeTopRated, BadgeVerifiedPro}, delta.Final)

	for _, rec := range delta.ToCreate {
		assert.Equal(t, id, rec.ContractorID)
		assert.Equal(t, reconcileNow, rec.AwardedAt)
		switch rec.Type {
		case BadgeVerifiedPro:
			assert.Nil(t, rec.ExpiresAt, "verified_pro is permanent")
		case BadgeTopRated:
			require.NotNil(t, rec.ExpiresAt)
			assert.Equal(t, reconcileNow.Add(AwardValidity), *rec.ExpiresAt)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	id := uuid.New()
	current := NewBadgeSet(BadgeVerifiedPro, BadgeQuickResponder)

	first := Reconcile(id, nil, current, reconcileNow)
	require.Len(t, first.ToCreate, 2)

	// apply the first delta, reconcile again: no churn
	second := Reconcile(id, first.ToCreate, current, reconcileNow.Add(time.Hour))
	assert.True(t, second.Empty())
	assert.Equal(t, first.Final, second.Final)
}

func TestReconcilePreservesAwardedAt(t *testing.T) {
	id := uuid.New()
	awarded := reconcileNow.Add(-30 * 24 * time.Hour)
	exp := awarded.Add(AwardValidity)
	existing := []BadgeRecord{
		{ID: uuid.New(), ContractorID: id, Type: BadgeTopRated, AwardedAt: awarded, ExpiresAt: &exp},
	}

	delta := Reconcile(id, existing, NewBadgeSet(BadgeTopRated), reconcileNow)

	// held badge is untouched: no create, no remove, original award stands
	assert.True(t, delta.Empty())
	assert.Equal(t, []BadgeType{BadgeTopRated}, delta.Final)
}

func TestReconcileExpiredBadgeReawarded(t *testing.T) {
	id := uuid.New()
	awarded := reconcileNow.Add(-2 * AwardValidity)
	exp := awarded.Add(AwardValidity)
	existing := []BadgeRecord{
		{ID: uuid.New(), ContractorID: id, Type: BadgeQuickResponder, AwardedAt: awarded, ExpiresAt: &exp},
	}

	// still eligible: expired record is replaced by a fresh award
	delta := Reconcile(id, existing, NewBadgeSet(BadgeQuickResponder), reconcileNow)

	assert.Equal(t, []BadgeType{BadgeQuickResponder}, delta.ToRemove)
	require.Len(t, delta.ToCreate, 1)
	assert.Equal(t, reconcileNow, delta.ToCreate[0].AwardedAt)
}

func TestReconcileExpiredBadgeNotReawardedWhenIneligible(t *testing.T) {
	id := uuid.New()
	awarded := reconcileNow.Add(-2 * AwardValidity)
	exp := awarded.Add(AwardValidity)
	existing := []BadgeRecord{
		{ID: uuid.New(), ContractorID: id, Type: BadgeBestOfYear, AwardedAt: awarded, ExpiresAt: &exp},
	}

	delta := Reconcile(id, existing, NewBadgeSet(), reconcileNow)

	assert.Equal(t, []BadgeType{BadgeBestOfYear}, delta.ToRemove)
	assert.Empty(t, delta.ToCreate)
	assert.Empty(t, delta.Final)
}

func TestScenarioEDowngradeRemovesEliteOnly(t *testing.T) {
	id := uuid.New()
	awarded := reconcileNow.Add(-10 * 24 * time.Hour)
	exp := awarded.Add(AwardValidity)
	existing := []BadgeRecord{
		{ID: uuid.New(), ContractorID: id, Type: BadgeEliteMember, AwardedAt: awarded},
		{ID: uuid.New(), ContractorID: id, Type: BadgeTopRated, AwardedAt: awarded, ExpiresAt: &exp},
	}

	// tier dropped elite -> free; top_rated eligibility unchanged
	delta := Reconcile(id, existing, NewBadgeSet(BadgeTopRated), reconcileNow)

	assert.Equal(t, []BadgeType{BadgeEliteMember}, delta.ToRemove)
	assert.Empty(t, delta.ToCreate)
	assert.Equal(t, []BadgeType{BadgeTopRated}, delta.Final)
}
