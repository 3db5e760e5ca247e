// Package orchestrator coordinates one registration wizard: it owns the
// identity, address and contact groups, drives postal-code lookups and
// assembles the composite record on submission.
//
// An Orchestrator is safe for concurrent use. Lookups run on their own
// goroutines and apply their results under the same lock as edits.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"signup/internal/platform/tracer"
	"signup/internal/registration/form"
	"signup/internal/registration/models"
	"signup/internal/registration/postalcode"
)

//go:generate mockgen -source=orchestrator.go -destination=mocks/mocks.go -package=mocks

var (
	// ErrClosed is returned for any mutation after a successful submission.
	ErrClosed = errors.New("registration already submitted")
	// ErrSubmitting is returned for mutations while a submission is in flight.
	ErrSubmitting = errors.New("registration submission in progress")
)

// State of the wizard.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateRejected   State = "rejected"
)

// ReasonIncompleteForm is the aggregate signal carried by a rejected submission.
const ReasonIncompleteForm = "incomplete_form"

// Sink receives every successfully assembled registration exactly once.
type Sink interface {
	Emit(ctx context.Context, reg *models.CompositeRegistration) error
}

type Orchestrator struct {
	mu       sync.Mutex
	identity *form.Group
	address  *form.Group
	contact  *form.Group
	selector *form.Selector
	state    State
	advisory *models.Advisory
	pending  int
	settled  chan struct{}

	lookups       postalcode.Client
	sink          Sink
	logger        *slog.Logger
	tracer        tracer.Tracer
	lookupTimeout time.Duration
	now           func() time.Time
	newID         func() string
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithLookupTimeout bounds each postal-code lookup. Default is 10 seconds.
func WithLookupTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.lookupTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithPersonType sets the initial person type. Default is Individual.
func WithPersonType(pt models.PersonType) Option {
	return func(o *Orchestrator) {
		if pt.IsValid() {
			o.selector.Select(pt)
		}
	}
}

func New(lookups postalcode.Client, sink Sink, opts ...Option) *Orchestrator {
	identity := form.NewIdentityGroup(models.Individual)
	o := &Orchestrator{
		identity:      identity,
		address:       form.NewAddressGroup(),
		contact:       form.NewContactGroup(),
		selector:      form.NewSelector(identity, models.Individual),
		state:         StateEditing,
		lookups:       lookups,
		sink:          sink,
		logger:        slog.New(slog.DiscardHandler),
		tracer:        tracer.NewNoop(),
		lookupTimeout: 10 * time.Second,
		now:           time.Now,
		newID:         func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *Orchestrator) group(name form.GroupName) *form.Group {
	switch name {
	case form.GroupIdentity:
		return o.identity
	case form.GroupAddress:
		return o.address
	case form.GroupContact:
		return o.contact
	default:
		return nil
	}
}

// checkOpen must be called with mu held.
func (o *Orchestrator) checkOpen() error {
	switch o.state {
	case StateSucceeded:
		return ErrClosed
	case StateSubmitting:
		return ErrSubmitting
	}
	return nil
}

// edited must be called with mu held.
func (o *Orchestrator) edited() {
	if o.state == StateRejected {
		o.state = StateEditing
	}
}

// SetValue forwards an edit to the named group. An edit that leaves
// address.postalCode with exactly eight digits starts a lookup and returns its
// handle; every other edit returns a nil handle. Unknown groups and fields are
// ignored.
func (o *Orchestrator) SetValue(ctx context.Context, group form.GroupName, field, value string) (*Lookup, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkOpen(); err != nil {
		return nil, err
	}
	g := o.group(group)
	if g == nil || !g.SetValue(field, value) {
		o.logger.WarnContext(ctx, "edit to unknown field ignored", "group", group, "field", field)
		return nil, nil
	}
	o.edited()

	if group != form.GroupAddress || field != form.FieldPostalCode {
		return nil, nil
	}
	o.advisory = nil
	if !postalcode.Eligible(value) {
		return nil, nil
	}
	return o.startLookup(ctx, postalcode.Normalize(value)), nil
}

// Touch records a user interaction with a field.
func (o *Orchestrator) Touch(group form.GroupName, field string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkOpen(); err != nil {
		return err
	}
	if g := o.group(group); g != nil {
		g.Touch(field)
	}
	return nil
}

// SelectPersonType re-derives identity requirements. Values are kept.
func (o *Orchestrator) SelectPersonType(pt models.PersonType) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkOpen(); err != nil {
		return err
	}
	o.selector.Select(pt)
	o.edited()
	return nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Settle blocks until no lookup is in flight or ctx ends.
func (o *Orchestrator) Settle(ctx context.Context) error {
	o.mu.Lock()
	if o.pending == 0 {
		o.mu.Unlock()
		return nil
	}
	settled := o.settled
	o.mu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("settle lookups: %w", ctx.Err())
	}
}
