package main

import (
	"github.com/charmbracelet/huh"

	"signup/internal/registration/form"
	"signup/internal/registration/models"
)

// Prompter collects answers from the user.
type Prompter interface {
	SelectPersonType(current models.PersonType) (models.PersonType, error)
	Fill(title string, fields []form.Field) (map[string]string, error)
	Confirm(title string) (bool, error)
}

type huhPrompter struct{}

func (huhPrompter) SelectPersonType(current models.PersonType) (models.PersonType, error) {
	value := string(current)
	err := huh.NewSelect[string]().
		Title("Person type").
		Options(
			huh.NewOption("Individual", string(models.Individual)),
			huh.NewOption("Organization", string(models.Organization)),
		).
		Value(&value).
		Run()
	if err != nil {
		return "", err
	}
	return models.PersonType(value), nil
}

// Fill shows one input per field, prefilled with the current value.
func (huhPrompter) Fill(title string, fields []form.Field) (map[string]string, error) {
	values := make([]string, len(fields))
	inputs := make([]huh.Field, 0, len(fields))
	for i, f := range fields {
		values[i] = f.Value
		input := huh.NewInput().Title(label(f)).Value(&values[i])
		if f.Rule != "" {
			input = input.Description(f.Rule)
		}
		inputs = append(inputs, input)
	}

	if err := huh.NewForm(huh.NewGroup(inputs...).Title(title)).Run(); err != nil {
		return nil, err
	}

	answers := make(map[string]string, len(fields))
	for i, f := range fields {
		answers[f.Name] = values[i]
	}
	return answers, nil
}

func (huhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

func label(f form.Field) string {
	if f.Required {
		return f.Name + " *"
	}
	return f.Name
}
