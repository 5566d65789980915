package services

import (
	"context"
	"sync"
	"testing"

	"github.com/mazn1600/SmartBite/config"
	"github.com/mazn1600/SmartBite/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, allergies ...string) *models.User {
	t.Helper()
	u := &models.User{
		Email:         email,
		PasswordHash:  "x",
		Name:          "Test User",
		Age:           30,
		Height:        180,
		Weight:        81,
		Gender:        "male",
		ActivityLevel: "moderately_active",
		Goal:          "weight_loss",
		Allergies:     allergies,
		IsActive:      true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.FoodCategory {
	t.Helper()
	c := &models.FoodCategory{Name: name, NameArabic: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedFood(t *testing.T, db *gorm.DB, name, category string, allergens ...string) *models.Food {
	t.Helper()
	f := &models.Food{
		Name:            name,
		NameArabic:      name,
		Category:        category,
		CaloriesPer100g: 200,
		ProteinPer100g:  10,
		CarbsPer100g:    25,
		FatPer100g:      5,
		FiberPer100g:    2,
		SugarPer100g:    1,
		SodiumPer100g:   300,
		Allergens:       allergens,
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

type publishedEvent struct {
	UserID uuid.UUID
	Kind   string
	Data   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(userID uuid.UUID, kind string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userID, kind, data})
}

func (p *fakePublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

type fakeMailer struct {
	sent map[string]string
	err  error
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, code string) error {
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = code
	return nil
}

var nopLog = zap.NewNop()
