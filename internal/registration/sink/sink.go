// Package sink delivers completed registrations to their consumer. The wizard
// core calls Emit exactly once per successful submission.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"signup/internal/platform/kafka/producer"
	"signup/internal/platform/privacy"
	"signup/internal/registration/models"
)

//go:generate mockgen -source=sink.go -destination=mocks/mocks.go -package=mocks

// Memory keeps emitted registrations in process. Used by tests and as the
// default when no broker is configured.
type Memory struct {
	mu      sync.RWMutex
	records []*models.CompositeRegistration
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Emit(_ context.Context, reg *models.CompositeRegistration) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, reg)
	return nil
}

// Records returns the emitted registrations in emission order.
func (m *Memory) Records() []*models.CompositeRegistration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.CompositeRegistration, len(m.records))
	copy(out, m.records)
	return out
}

// Log writes a masked summary of each registration to the logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Emit(ctx context.Context, reg *models.CompositeRegistration) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	attrs := []any{
		"registration_id", reg.ID,
		"person_type", reg.PersonType,
		"national_id", privacy.MaskTail(reg.Identity.NationalID, 2),
		"submitted_at", reg.SubmittedAt,
	}
	if len(reg.Addresses) > 0 {
		attrs = append(attrs, "city", reg.Addresses[0].City, "state_code", reg.Addresses[0].StateCode)
	}
	for _, c := range reg.Contacts {
		switch c.Type {
		case models.ContactEmail:
			attrs = append(attrs, "email", privacy.MaskEmail(c.Value))
		case models.ContactPhone:
			attrs = append(attrs, "phone", privacy.MaskTail(c.Value, 4))
		}
	}
	l.logger.InfoContext(ctx, "registration completed", attrs...)
	return nil
}

// Publisher is the subset of the Kafka producer the sink needs.
type Publisher interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Kafka publishes each registration as JSON, keyed by registration ID.
type Kafka struct {
	publisher Publisher
	topic     string
}

func NewKafka(publisher Publisher, topic string) *Kafka {
	return &Kafka{publisher: publisher, topic: topic}
}

func (k *Kafka) Emit(ctx context.Context, reg *models.CompositeRegistration) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	payload, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	msg := &producer.Message{
		Topic: k.topic,
		Key:   []byte(reg.ID),
		Value: payload,
		Headers: map[string]string{
			"content-type": "application/json",
			"person-type":  string(reg.PersonType),
		},
	}
	if err := k.publisher.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish registration %s: %w", reg.ID, err)
	}
	return nil
}
