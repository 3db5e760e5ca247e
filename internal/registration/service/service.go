package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"signup/internal/platform/tracer"
	"signup/internal/registration/form"
	"signup/internal/registration/metrics"
	"signup/internal/registration/models"
	"signup/internal/registration/orchestrator"
	"signup/internal/registration/postalcode"
	"signup/internal/registration/session"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/platform/sentinel"
	psync "signup/pkg/platform/sync"
)

// Store holds live sessions.
// Error Contract:
// - Get and Delete return sentinel.ErrNotFound for unknown IDs
// - Get returns sentinel.ErrExpired for sessions past their TTL
type Store interface {
	Create(ctx context.Context, sess *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
}

const (
	defaultLookupWait    = 2 * time.Second
	defaultLookupTimeout = 10 * time.Second
)

// Service runs registration wizards on behalf of remote clients, one wizard
// per session.
type Service struct {
	store         Store
	lookups       postalcode.Client
	sink          orchestrator.Sink
	metrics       *metrics.Metrics
	logger        *slog.Logger
	tracer        tracer.Tracer
	lookupWait    time.Duration
	lookupTimeout time.Duration
	locks         *psync.ShardedMutex
	newID         func() string
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLookupWait bounds how long SetValues waits for a triggered lookup before
// answering with the lookup still pending. Zero disables waiting.
func WithLookupWait(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.lookupWait = d
		}
	}
}

func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func New(store Store, lookups postalcode.Client, sink orchestrator.Sink, opts ...Option) *Service {
	svc := &Service{
		store:         store,
		lookups:       lookups,
		sink:          sink,
		logger:        slog.New(slog.DiscardHandler),
		tracer:        tracer.NewNoop(),
		lookupWait:    defaultLookupWait,
		lookupTimeout: defaultLookupTimeout,
		locks:         psync.NewShardedMutex(),
		newID:         func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create starts a new wizard. An empty person type selects the default.
func (s *Service) Create(ctx context.Context, pt models.PersonType) (*SessionView, error) {
	if pt != "" && !pt.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "person_type must be INDIVIDUAL or ORGANIZATION")
	}
	wizard := orchestrator.New(s.lookups, s.sink,
		orchestrator.WithLogger(s.logger),
		orchestrator.WithTracer(s.tracer),
		orchestrator.WithLookupTimeout(s.lookupTimeout),
		orchestrator.WithPersonType(pt),
	)
	sess := &session.Session{ID: s.newID(), Wizard: wizard}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration session")
	}
	s.metrics.IncrementSessionsCreated()
	s.logger.InfoContext(ctx, "registration session created", "session_id", sess.ID)
	return newSessionView(sess, nil), nil
}

func (s *Service) Get(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSessionView(sess, nil), nil
}

// SetValues applies a batch of edits in order. Edits naming an unknown group
// or field reject the whole batch before anything is applied. When an edit
// triggers a postal-code lookup, the call waits up to the lookup wait window
// so the response can carry the patched address.
func (s *Service) SetValues(ctx context.Context, id string, edits []FieldEdit) (*SessionView, error) {
	if len(edits) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "values must not be empty")
	}
	for _, e := range edits {
		if !form.Known(e.Group, e.Field) {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown field %s.%s", e.Group, e.Field))
		}
	}
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(id)
	var handles []*orchestrator.Lookup
	for _, e := range edits {
		l, err := sess.Wizard.SetValue(ctx, e.Group, e.Field, e.Value)
		if err != nil {
			s.locks.Unlock(id)
			return nil, translateWizardError(err)
		}
		if e.Touched {
			if err := sess.Wizard.Touch(e.Group, e.Field); err != nil {
				s.locks.Unlock(id)
				return nil, translateWizardError(err)
			}
		}
		if l != nil {
			handles = append(handles, l)
		}
	}
	s.locks.Unlock(id)

	return newSessionView(sess, s.awaitLookups(ctx, handles)), nil
}

// awaitLookups collects the results that complete within the wait window.
func (s *Service) awaitLookups(ctx context.Context, handles []*orchestrator.Lookup) []orchestrator.LookupResult {
	if len(handles) == 0 {
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.lookupWait)
	defer cancel()

	var results []orchestrator.LookupResult
	for _, l := range handles {
		res, err := l.Wait(waitCtx)
		if err != nil {
			s.logger.DebugContext(ctx, "postal code lookup still pending", "postal_code", l.PostalCode)
			continue
		}
		results = append(results, res)
	}
	return results
}

func (s *Service) SelectPersonType(ctx context.Context, id string, pt models.PersonType) (*SessionView, error) {
	if !pt.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "person_type must be INDIVIDUAL or ORGANIZATION")
	}
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	s.locks.Do(id, func() {
		err = sess.Wizard.SelectPersonType(pt)
	})
	if err != nil {
		return nil, translateWizardError(err)
	}
	return newSessionView(sess, nil), nil
}

// Submit runs the wizard's submission. A rejection is not an error: the
// result carries the violations and the caller decides how to report them.
func (s *Service) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	outcome, err := sess.Wizard.Submit(ctx)
	if err != nil {
		if !errors.Is(err, orchestrator.ErrClosed) && !errors.Is(err, orchestrator.ErrSubmitting) {
			s.metrics.RecordSubmission("failed")
		}
		return nil, translateWizardError(err)
	}
	s.metrics.RecordSubmission(string(outcome.State))
	if !outcome.Succeeded() {
		s.logger.InfoContext(ctx, "registration rejected",
			"session_id", id,
			"violations", len(outcome.Violations),
		)
	}
	return &SubmitResult{Outcome: outcome, Session: *newSessionView(sess, nil)}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return translateStoreError(err)
	}
	s.metrics.RecordSessionsRemoved(1, false)
	return nil
}

// Lookup resolves a postal code directly, outside any wizard.
func (s *Service) Lookup(ctx context.Context, raw string) (postalcode.Result, error) {
	if !postalcode.Eligible(raw) {
		return postalcode.Result{}, dErrors.New(dErrors.CodeBadRequest, "postal code must have 8 digits")
	}
	return s.lookups.Lookup(ctx, postalcode.Normalize(raw)), nil
}

func (s *Service) session(ctx context.Context, id string) (*session.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "registration session not found")
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrExpired) {
			s.metrics.RecordSessionsRemoved(1, true)
		}
		return nil, translateStoreError(err)
	}
	return sess, nil
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "registration session not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration session")
	}
}

func translateWizardError(err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrClosed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "registration already submitted")
	case errors.Is(err, orchestrator.ErrSubmitting):
		return dErrors.Wrap(err, dErrors.CodeConflict, "registration submission in progress")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to deliver registration")
	}
}
