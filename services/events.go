package services

import "github.com/google/uuid"

const (
	EventProgressRecorded = "progress.recorded"
	EventMealFoodConsumed = "meal_food.consumed"
	EventFavoriteAdded    = "favorite.added"
)

// EventPublisher pushes user-scoped events to connected clients.
type EventPublisher interface {
	Publish(userID uuid.UUID, kind string, data any)
}

func publish(p EventPublisher, userID uuid.UUID, kind string, data any) {
	if p != nil {
		p.Publish(userID, kind, data)
	}
}
