// Package gov
package gov

import (
	"context"

	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/types"
)

// recordEvent appends an audit record. The sink is fire-and-forget: a write
// failure is logged and never aborts the transition that produced it.
func (s *Service) recordEvent(ctx context.Context, entityType, entityID, eventType string, payload map[string]interface{}) {
	event := &types.Event{
		EntityType: entityType,
		EntityID:   entityID,
		Type:       eventType,
		Payload:    payload,
		CreatedAt:  s.now().Unix(),
	}
	if err := s.dbClient.InsertEvent(ctx, event); err != nil {
		s.logger.Warn("cannot record event",
			zap.String("entityType", entityType),
			zap.String("entityId", entityID),
			zap.String("eventType", eventType),
			zap.Error(err))
	}
}
