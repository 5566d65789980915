package services

import (
	"context"
	"testing"
	"time"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRecordAndList(t *testing.T) {
	db := setupTestDB(t)
	events := &fakePublisher{}
	svc := NewProgressService(db, nopLog, events)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	target := 70.0
	require.NoError(t, db.Model(u).Update("target_weight", target).Error)

	jan := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)

	r1, err := svc.Record(ctx, u.ID, ProgressInput{Weight: 81, RecordedAt: &jan})
	require.NoError(t, err)
	assert.Equal(t, 25.0, r1.BMI)
	assert.Equal(t, 1790.0, r1.BMR)

	r2, err := svc.Record(ctx, u.ID, ProgressInput{Weight: 78, RecordedAt: &feb, BodyFatPercentage: ptr(22.5)})
	require.NoError(t, err)
	assert.Equal(t, 1760.0, r2.BMR)
	assert.Equal(t, []string{EventProgressRecorded, EventProgressRecorded}, events.kinds())

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", u.ID).Error)
	assert.Equal(t, 78.0, stored.Weight)

	list, err := svc.List(ctx, u.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID)

	from, to, err := ParseRange("2025-01-01", "2025-01-10")
	require.NoError(t, err)
	ranged, err := svc.List(ctx, u.ID, from, to)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, r1.ID, ranged[0].ID)

	latest, err := svc.Latest(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, r2.ID, latest.ID)

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Entries)
	require.NotNil(t, sum.StartWeight)
	assert.Equal(t, 81.0, *sum.StartWeight)
	assert.Equal(t, 78.0, sum.CurrentWeight)
	assert.Equal(t, -3.0, sum.Change)
	require.NotNil(t, sum.RemainingTarget)
	assert.Equal(t, -8.0, *sum.RemainingTarget)

	other := seedUser(t, db, "b@example.com")
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, r1.ID), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, u.ID, r1.ID))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID, r1.ID), ErrNotFound)
}

func TestProgressEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProgressService(db, nopLog, nil)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")

	_, err := svc.Latest(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, sum.Entries)
	assert.Nil(t, sum.StartWeight)
	assert.Equal(t, 81.0, sum.CurrentWeight)
	assert.Nil(t, sum.RemainingTarget)

	_, err = svc.Record(ctx, uuid.New(), ProgressInput{Weight: 70})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseRange(t *testing.T) {
	from, to, err := ParseRange("", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	from, to, err = ParseRange("2025-03-01T10:00:00+03:00", "2025-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, 23, to.Hour())

	_, _, err = ParseRange("yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = ParseRange("2025-03-02", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
