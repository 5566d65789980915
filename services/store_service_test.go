package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStoreService(db, nopLog)
	ctx := context.Background()

	st, err := svc.Create(ctx, StoreInput{Name: "Panda", NameArabic: "بنده"})
	require.NoError(t, err)
	assert.True(t, st.IsActive)

	_, err = svc.Create(ctx, StoreInput{Name: "Panda"})
	assert.ErrorIs(t, err, ErrConflict)

	closed, err := svc.Create(ctx, StoreInput{Name: "Danube", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, closed.IsActive)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Update(ctx, closed.ID, StoreInput{Name: "Panda"})
	assert.ErrorIs(t, err, ErrConflict)
	upd, err := svc.Update(ctx, closed.ID, StoreInput{Name: "Danube", Website: "https://danube.sa", IsActive: ptr(true)})
	require.NoError(t, err)
	assert.True(t, upd.IsActive)
	assert.Equal(t, "https://danube.sa", upd.Website)

	require.NoError(t, svc.Delete(ctx, st.ID))
	_, err = svc.Get(ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorePricesAndComparison(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStoreService(db, nopLog)
	ctx := context.Background()
	f := seedFood(t, db, "Rice", "Grains")

	panda, err := svc.Create(ctx, StoreInput{Name: "Panda"})
	require.NoError(t, err)
	danube, err := svc.Create(ctx, StoreInput{Name: "Danube"})
	require.NoError(t, err)
	othaim, err := svc.Create(ctx, StoreInput{Name: "Othaim", IsActive: ptr(false)})
	require.NoError(t, err)

	_, err = svc.SetPrice(ctx, panda.ID, PriceInput{FoodID: f.ID, Price: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SetPrice(ctx, panda.ID, PriceInput{FoodID: uuid.New(), Price: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := svc.SetPrice(ctx, panda.ID, PriceInput{FoodID: f.ID, Price: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.Equal(t, "kg", first.Unit)

	again, err := svc.SetPrice(ctx, panda.ID, PriceInput{FoodID: f.ID, Price: decimal.RequireFromString("11.755"), Unit: "bag"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.Price.Equal(decimal.RequireFromString("11.76")))
	assert.False(t, again.LastUpdated.Before(first.LastUpdated))

	_, err = svc.SetPrice(ctx, danube.ID, PriceInput{FoodID: f.ID, Price: decimal.RequireFromString("9.99")})
	require.NoError(t, err)
	_, err = svc.SetPrice(ctx, othaim.ID, PriceInput{FoodID: f.ID, Price: decimal.RequireFromString("1.00")})
	require.NoError(t, err)

	prices, err := svc.Prices(ctx, panda.ID)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "bag", prices[0].Unit)

	cmp, err := svc.ComparePrices(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, cmp.Prices, 2)
	require.NotNil(t, cmp.Cheapest)
	assert.Equal(t, danube.ID, cmp.Cheapest.StoreID)
	require.NotNil(t, cmp.Cheapest.Store)
	assert.Equal(t, "Danube", cmp.Cheapest.Store.Name)

	_, err = svc.SetPrice(ctx, danube.ID, PriceInput{FoodID: f.ID, Price: decimal.RequireFromString("9.99"), IsAvailable: ptr(false)})
	require.NoError(t, err)
	cmp, err = svc.ComparePrices(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, cmp.Prices, 1)
	assert.Equal(t, panda.ID, cmp.Cheapest.StoreID)
}
