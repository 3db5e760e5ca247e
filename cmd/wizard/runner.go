package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"signup/internal/registration/form"
	"signup/internal/registration/models"
	"signup/internal/registration/orchestrator"
)

var errIncomplete = errors.New("form incomplete")

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// runner drives one orchestrator through the wizard steps until a submission
// succeeds or the user gives up.
type runner struct {
	wizard     *orchestrator.Orchestrator
	prompt     Prompter
	out        io.Writer
	format     string
	lookupWait time.Duration
}

func (r *runner) Run(ctx context.Context) (*models.CompositeRegistration, error) {
	for {
		if err := r.selectPersonType(); err != nil {
			return nil, err
		}
		for _, group := range form.Groups {
			if err := r.step(ctx, group); err != nil {
				return nil, err
			}
		}

		outcome, err := r.wizard.Submit(ctx)
		if err != nil {
			return nil, err
		}
		if outcome.Succeeded() {
			if err := r.print(outcome.Registration); err != nil {
				return nil, err
			}
			return outcome.Registration, nil
		}

		fmt.Fprintln(r.out, "The form is incomplete:")
		for _, v := range outcome.Violations {
			fmt.Fprintf(r.out, "  - %s.%s\n", v.Group, v.Field)
		}
		again, err := r.prompt.Confirm("Edit the registration again?")
		if err != nil {
			return nil, err
		}
		if !again {
			return nil, errIncomplete
		}
	}
}

func (r *runner) print(reg *models.CompositeRegistration) error {
	if r.format == formatYAML {
		data, err := yaml.Marshal(reg)
		if err != nil {
			return fmt.Errorf("encode registration: %w", err)
		}
		_, err = r.out.Write(data)
		return err
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(reg)
}

func (r *runner) selectPersonType() error {
	current := r.wizard.View().PersonType
	pt, err := r.prompt.SelectPersonType(current)
	if err != nil {
		return err
	}
	if pt == current {
		return nil
	}
	return r.wizard.SelectPersonType(pt)
}

// step fills one group. The address group asks for the postal code first so
// the lookup can prefill the remaining inputs.
func (r *runner) step(ctx context.Context, group form.GroupName) error {
	title := strings.ToUpper(string(group[:1])) + string(group[1:])
	if group != form.GroupAddress {
		return r.fill(ctx, group, title, r.fields(group, nil))
	}

	postal := func(f form.Field) bool { return f.Name == form.FieldPostalCode }
	if err := r.fill(ctx, group, title+": postal code", r.fields(group, postal)); err != nil {
		return err
	}
	rest := func(f form.Field) bool { return f.Name != form.FieldPostalCode }
	return r.fill(ctx, group, title, r.fields(group, rest))
}

func (r *runner) fields(group form.GroupName, keep func(form.Field) bool) []form.Field {
	view, ok := r.wizard.Group(group)
	if !ok {
		return nil
	}
	if keep == nil {
		return view.Fields
	}
	var out []form.Field
	for _, f := range view.Fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

func (r *runner) fill(ctx context.Context, group form.GroupName, title string, fields []form.Field) error {
	answers, err := r.prompt.Fill(title, fields)
	if err != nil {
		return err
	}
	for _, f := range fields {
		value, ok := answers[f.Name]
		if !ok {
			continue
		}
		if value != f.Value {
			handle, err := r.wizard.SetValue(ctx, group, f.Name, value)
			if err != nil {
				return err
			}
			if handle != nil {
				r.awaitLookup(ctx, handle)
			}
		}
		if err := r.wizard.Touch(group, f.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) awaitLookup(ctx context.Context, handle *orchestrator.Lookup) {
	waitCtx, cancel := context.WithTimeout(ctx, r.lookupWait)
	defer cancel()

	res, err := handle.Wait(waitCtx)
	switch {
	case err != nil:
		fmt.Fprintf(r.out, "Postal code %s is still being looked up, continue manually.\n", handle.PostalCode)
	case res.Applied:
		fmt.Fprintf(r.out, "Address filled from postal code %s.\n", res.PostalCode)
	case res.Advisory != nil && !res.Stale:
		fmt.Fprintf(r.out, "Note: %s.\n", res.Advisory.Message)
	}
}
