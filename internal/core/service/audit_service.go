package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

const auditTimeout = 5 * time.Second

// AuditService persists audit events handed over by the dispatcher.
type AuditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

func (s *AuditService) Process(ctx context.Context, event domain.AuditEvent) error {
	if event.Type == "" {
		return fmt.Errorf("audit: event type is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("audit: insert %s: %w", event.Type, err)
	}
	s.log.Debug().
		Str("type", string(event.Type)).
		Str("subject", event.Subject).
		Str("actor", event.Actor).
		Msg("audit event stored")
	return nil
}

// Record stores event synchronously. Long-running processes wrap the service
// in the queue dispatcher instead; command-line tools use it directly so no
// event is lost on exit.
func (s *AuditService) Record(event domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()
	if err := s.Process(ctx, event); err != nil {
		s.log.Error().Err(err).Str("type", string(event.Type)).Msg("audit event dropped")
	}
}

// DiscardAudit drops every event. Used where no audit trail is wired.
type DiscardAudit struct{}

func (DiscardAudit) Record(domain.AuditEvent) {}

func actorOf(caller *domain.Session) string {
	if caller == nil {
		return ""
	}
	return caller.Subject
}

func auditEvent(t domain.AuditEventType, subject string, caller *domain.Session, attrs map[string]string) domain.AuditEvent {
	return domain.AuditEvent{
		Type:       t,
		Subject:    subject,
		Actor:      actorOf(caller),
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
}
