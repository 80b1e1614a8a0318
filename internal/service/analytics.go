package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flappyjet-backend/internal/domain"
)

// ReportEvent appends an analytics event. With a Kafka publisher
// attached the write happens off the request path through the consumer;
// otherwise the event goes straight to the database.
func (s *GameService) ReportEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	if event.Name == "" {
		return domain.MissingField("eventName")
	}

	event.ID = uuid.NewString()
	event.ReceivedAt = time.Now().UTC()

	if s.analytics != nil {
		if err := s.analytics.Publish(event); err != nil {
			return fmt.Errorf("publishing analytics event: %w", err)
		}
		return nil
	}

	if err := s.postgres.InsertAnalyticsEvent(ctx, event); err != nil {
		return fmt.Errorf("inserting analytics event: %w", err)
	}
	return nil
}
