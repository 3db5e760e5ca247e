package orchestrator

import (
	"context"

	"signup/internal/registration/form"
	"signup/internal/registration/models"
	"signup/internal/registration/postalcode"
)

// LookupResult describes what a completed lookup did to the form.
type LookupResult struct {
	PostalCode string
	Status     postalcode.Status
	// Applied is true when the address fields were patched.
	Applied bool
	// Stale is true when the postal code changed before the result arrived;
	// nothing was mutated.
	Stale    bool
	Advisory *models.Advisory
}

// Lookup is a handle on one in-flight postal-code lookup.
type Lookup struct {
	PostalCode string
	done       chan struct{}
	result     LookupResult
}

func newLookup(postalCode string) *Lookup {
	return &Lookup{PostalCode: postalCode, done: make(chan struct{})}
}

func (l *Lookup) finish(r LookupResult) {
	l.result = r
	close(l.done)
}

// Done is closed once the result has been applied to the form.
func (l *Lookup) Done() <-chan struct{} {
	return l.done
}

// Result returns the outcome without blocking; ok is false while pending.
func (l *Lookup) Result() (LookupResult, bool) {
	select {
	case <-l.done:
		return l.result, true
	default:
		return LookupResult{}, false
	}
}

// Wait blocks until the lookup has been applied or ctx ends.
func (l *Lookup) Wait(ctx context.Context) (LookupResult, error) {
	select {
	case <-l.done:
		return l.result, nil
	case <-ctx.Done():
		return LookupResult{}, ctx.Err()
	}
}

// startLookup must be called with mu held. The lookup outlives the caller's
// context cancellation but not its values.
func (o *Orchestrator) startLookup(ctx context.Context, postalCode string) *Lookup {
	l := newLookup(postalCode)
	if o.pending == 0 {
		o.settled = make(chan struct{})
	}
	o.pending++
	go func() {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.lookupTimeout)
		defer cancel()
		res := o.lookups.Lookup(lctx, postalCode)

		o.mu.Lock()
		defer o.mu.Unlock()
		l.finish(o.applyLookup(lctx, postalCode, res))
		o.pending--
		if o.pending == 0 {
			close(o.settled)
		}
	}()
	return l
}

// applyLookup patches the address group if the result still matches the
// current postal code. Among matching results the last one applied wins.
// It must be called with mu held.
func (o *Orchestrator) applyLookup(ctx context.Context, postalCode string, res postalcode.Result) LookupResult {
	out := LookupResult{PostalCode: postalCode, Status: res.Status}

	if o.state == StateSucceeded || o.state == StateSubmitting {
		out.Stale = true
		return out
	}
	if current := postalcode.Normalize(o.address.Value(form.FieldPostalCode)); current != postalCode {
		adv := models.NewAdvisory(models.AdvisoryLookupStale, postalCode)
		out.Stale = true
		out.Advisory = &adv
		o.logger.DebugContext(ctx, "stale postal code lookup discarded", "status", res.Status)
		return out
	}

	switch res.Status {
	case postalcode.StatusFound:
		o.address.SetValue(form.FieldStreet, res.Address.Street)
		o.address.SetValue(form.FieldNeighborhood, res.Address.Neighborhood)
		o.address.SetValue(form.FieldCity, res.Address.City)
		o.address.SetValue(form.FieldStateCode, res.Address.StateCode)
		o.edited()
		o.advisory = nil
		out.Applied = true
	case postalcode.StatusNotFound:
		adv := models.NewAdvisory(models.AdvisoryPostalCodeNotFound, postalCode)
		o.advisory = &adv
		out.Advisory = &adv
	default:
		adv := models.NewAdvisory(models.AdvisoryLookupUnavailable, postalCode)
		o.advisory = &adv
		out.Advisory = &adv
		o.logger.WarnContext(ctx, "postal code lookup failed", "error", res.Err)
	}
	return out
}
