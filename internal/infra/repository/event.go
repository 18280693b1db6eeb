package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append writes an event to the outbox. Inside a transaction it commits or rolls back with it.
func (r *EventRepository) Append(ctx context.Context, event domain.Event, now time.Time) (rentchain.Event, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return rentchain.Event{}, err
	}

	model := models.EventLog{
		Type:     string(event.Type),
		Channels: strings.Join(event.Channels, ","),
		Payload:  string(payload),
		CDate:    now,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return rentchain.Event{}, err
	}
	return eventFromModel(model), nil
}

// ListSince returns events with an id greater than afterID, oldest first.
func (r *EventRepository) ListSince(ctx context.Context, afterID uint64, limit int) ([]rentchain.Event, error) {
	var rows []models.EventLog
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	events := make([]rentchain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, eventFromModel(row))
	}
	return events, nil
}

func eventFromModel(m models.EventLog) rentchain.Event {
	return rentchain.Event{
		ID:        m.ID,
		Type:      m.Type,
		Channels:  splitChannels(m.Channels),
		Payload:   json.RawMessage(m.Payload),
		CreatedAt: m.CDate,
	}
}
