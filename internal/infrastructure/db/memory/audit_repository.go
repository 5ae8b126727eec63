package memory

import (
	"context"
	"maps"

	"github.com/storefront/catalog-api/internal/core/domain"
)

type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e := *event
	e.Attributes = maps.Clone(event.Attributes)
	r.s.audit = append(r.s.audit, e)
	return nil
}

// Events returns a copy of the stored audit trail in insertion order.
func (r *AuditRepository) Events() []domain.AuditEvent {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return append([]domain.AuditEvent(nil), r.s.audit...)
}
