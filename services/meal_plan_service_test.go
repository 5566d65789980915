package services

import (
	"context"
	"testing"

	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealPlanLifecycle(t *testing.T) {
	db := setupTestDB(t)
	events := &fakePublisher{}
	svc := NewMealPlanService(db, nopLog, events)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")
	f := seedFood(t, db, "Kabsa", "Main")

	p, err := svc.Create(ctx, u.ID, MealPlanInput{WeekStartDate: "2025-01-05"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-11", p.WeekEndDate.Format(dateLayout))
	assert.Empty(t, p.MealFoods)

	mf, err := svc.AddMealFood(ctx, u.ID, p.ID, MealFoodInput{FoodID: f.ID, MealType: "lunch", DayOfWeek: ptr(1), ServingSize: 150})
	require.NoError(t, err)
	assert.Equal(t, 300.0, mf.Calories)
	assert.Equal(t, 15.0, mf.Protein)
	assert.Equal(t, 450.0, mf.Sodium)

	_, err = svc.AddMealFood(ctx, u.ID, p.ID, MealFoodInput{FoodID: f.ID, MealType: "breakfast", DayOfWeek: ptr(2), ServingSize: 50})
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, got.MealFoods, 2)
	require.NotNil(t, got.TotalCalories)
	assert.Equal(t, 400.0, *got.TotalCalories)
	assert.Equal(t, 20.0, *got.TotalProtein)
	require.NotNil(t, got.MealFoods[0].Food)
	assert.Equal(t, "Kabsa", got.MealFoods[0].Food.Name)

	lunch, err := svc.MealFoods(ctx, u.ID, p.ID, MealFoodFilter{MealType: "lunch"})
	require.NoError(t, err)
	assert.Len(t, lunch, 1)
	day2, err := svc.MealFoods(ctx, u.ID, p.ID, MealFoodFilter{Day: ptr(2)})
	require.NoError(t, err)
	assert.Len(t, day2, 1)
	none, err := svc.MealFoods(ctx, u.ID, p.ID, MealFoodFilter{Day: ptr(2), MealType: "lunch"})
	require.NoError(t, err)
	assert.Empty(t, none)
	_, err = svc.MealFoods(ctx, u.ID, p.ID, MealFoodFilter{Day: ptr(7)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	consumed, err := svc.SetConsumed(ctx, u.ID, p.ID, mf.ID, true)
	require.NoError(t, err)
	assert.True(t, consumed.IsConsumed)
	assert.NotNil(t, consumed.ConsumedAt)
	assert.Equal(t, []string{EventMealFoodConsumed}, events.kinds())

	sum, err := svc.Summary(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.MealCount)
	assert.Equal(t, 1, sum.ConsumedCount)
	assert.Equal(t, 400.0, sum.TotalCalories)
	assert.Equal(t, 300.0, sum.ConsumedCalories)
	assert.Equal(t, 75.0, sum.ConsumedPct)
	assert.Equal(t, 4.0, sum.TotalFiber)
	assert.Equal(t, 600.0, sum.TotalSodium)
	assert.Equal(t, round2(400.0/7), sum.AvgDailyCalories)

	unconsumed, err := svc.SetConsumed(ctx, u.ID, p.ID, mf.ID, false)
	require.NoError(t, err)
	assert.False(t, unconsumed.IsConsumed)
	assert.Nil(t, unconsumed.ConsumedAt)

	require.NoError(t, svc.RemoveMealFood(ctx, u.ID, p.ID, mf.ID))
	got, err = svc.Get(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.MealFoods, 1)
	assert.Equal(t, 100.0, *got.TotalCalories)
	assert.ErrorIs(t, svc.RemoveMealFood(ctx, u.ID, p.ID, mf.ID), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, u.ID, p.ID))
	_, err = svc.Get(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var left int64
	require.NoError(t, db.Model(&models.MealFood{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestMealPlanIsolation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMealPlanService(db, nopLog, nil)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	f := seedFood(t, db, "Kabsa", "Main")

	p, err := svc.Create(ctx, owner.ID, MealPlanInput{WeekStartDate: "2025-01-05"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddMealFood(ctx, other.ID, p.ID, MealFoodInput{FoodID: f.ID, MealType: "lunch", DayOfWeek: ptr(0), ServingSize: 100})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, p.ID), ErrNotFound)

	plans, err := svc.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestMealPlanValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMealPlanService(db, nopLog, nil)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com")

	_, err := svc.Create(ctx, u.ID, MealPlanInput{WeekStartDate: "2025-01-05", WeekEndDate: "2025-01-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, u.ID, MealPlanInput{WeekStartDate: "05/01/2025"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	p, err := svc.Create(ctx, u.ID, MealPlanInput{WeekStartDate: "2025-01-05"})
	require.NoError(t, err)
	_, err = svc.AddMealFood(ctx, u.ID, p.ID, MealFoodInput{FoodID: uuid.New(), MealType: "lunch", DayOfWeek: ptr(0), ServingSize: 100})
	assert.ErrorIs(t, err, ErrNotFound)

	upd, err := svc.Update(ctx, u.ID, p.ID, MealPlanInput{WeekStartDate: "2025-01-12", WeekEndDate: "2025-01-14", IsGenerated: true})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-14", upd.WeekEndDate.Format(dateLayout))
	assert.True(t, upd.IsGenerated)
}
