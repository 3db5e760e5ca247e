package orchestrator

import (
	"context"
	"fmt"

	"signup/internal/platform/tracer"
	"signup/internal/registration/form"
	"signup/internal/registration/models"
)

// Violation names one invalid field.
type Violation struct {
	Group form.GroupName `json:"group"`
	Field string         `json:"field"`
}

// Outcome is the result of a submission attempt. Registration is set only on
// success; Reason and Violations only on rejection.
type Outcome struct {
	State        State
	Registration *models.CompositeRegistration
	Reason       string
	Violations   []Violation
}

func (o Outcome) Succeeded() bool {
	return o.State == StateSucceeded
}

// Submit validates all three groups. A valid form is assembled into a
// CompositeRegistration and handed to the sink; an invalid one has every field
// marked touched and is rejected with its violations. A sink failure returns
// the error and leaves the wizard editable.
func (o *Orchestrator) Submit(ctx context.Context) (outcome Outcome, err error) {
	ctx, span := o.tracer.Start(ctx, tracer.SpanRegistrationSubmit)
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrOutcome, string(outcome.State)))
		span.End(err)
	}()

	o.mu.Lock()
	if err := o.checkOpen(); err != nil {
		o.mu.Unlock()
		return Outcome{}, err
	}
	o.state = StateSubmitting

	if violations := o.violations(); len(violations) > 0 {
		o.identity.MarkAllTouched()
		o.address.MarkAllTouched()
		o.contact.MarkAllTouched()
		o.state = StateRejected
		o.mu.Unlock()
		return Outcome{State: StateRejected, Reason: ReasonIncompleteForm, Violations: violations}, nil
	}
	reg := o.assemble()
	o.mu.Unlock()

	emitErr := o.sink.Emit(ctx, reg)

	o.mu.Lock()
	defer o.mu.Unlock()
	if emitErr != nil {
		o.state = StateEditing
		o.logger.ErrorContext(ctx, "registration emit failed", "error", emitErr)
		return Outcome{}, fmt.Errorf("emit registration: %w", emitErr)
	}
	o.state = StateSucceeded
	o.logger.InfoContext(ctx, "registration submitted",
		"registration_id", reg.ID,
		"person_type", reg.PersonType,
	)
	return Outcome{State: StateSucceeded, Registration: reg}, nil
}

// violations must be called with mu held.
func (o *Orchestrator) violations() []Violation {
	var out []Violation
	for _, g := range []*form.Group{o.identity, o.address, o.contact} {
		if g.IsValid() {
			continue
		}
		for _, name := range g.Invalid() {
			out = append(out, Violation{Group: g.Name(), Field: name})
		}
	}
	return out
}

// assemble must be called with mu held.
func (o *Orchestrator) assemble() *models.CompositeRegistration {
	identity := o.identity.Snapshot()
	address := o.address.Snapshot()
	contact := o.contact.Snapshot()

	return &models.CompositeRegistration{
		ID: o.newID(),
		Identity: models.Identity{
			Name:        identity[form.FieldName],
			NationalID:  identity[form.FieldNationalID],
			SecondaryID: identity[form.FieldSecondaryID],
			BirthDate:   identity[form.FieldBirthDate],
			Gender:      identity[form.FieldGender],
		},
		PersonType: o.selector.Current(),
		Addresses: []models.Address{{
			PostalCode:   address[form.FieldPostalCode],
			Street:       address[form.FieldStreet],
			Number:       address[form.FieldNumber],
			Complement:   address[form.FieldComplement],
			Neighborhood: address[form.FieldNeighborhood],
			City:         address[form.FieldCity],
			StateCode:    address[form.FieldStateCode],
		}},
		Contacts: []models.Contact{
			{Type: contactType(contact[form.FieldEmailType], models.ContactEmail), Value: contact[form.FieldEmail]},
			{Type: contactType(contact[form.FieldPhoneType], models.ContactPhone), Value: contact[form.FieldPhone]},
		},
		SubmittedAt: o.now().UTC(),
	}
}

func contactType(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
