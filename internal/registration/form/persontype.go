package form

import "signup/internal/registration/models"

// RequiredFields returns the identity fields required for pt. The secondary ID
// is only required for individuals; every other requirement is fixed.
func RequiredFields(pt models.PersonType) map[string]bool {
	required := map[string]bool{
		FieldName:       true,
		FieldNationalID: true,
		FieldBirthDate:  true,
		FieldGender:     true,
	}
	if pt == models.Individual {
		required[FieldSecondaryID] = true
	}
	return required
}

// ApplyPersonType re-derives the identity group's requirement flags in place.
// Values are never changed.
func ApplyPersonType(identity *Group, pt models.PersonType) {
	required := RequiredFields(pt)
	for _, name := range identity.order {
		identity.SetRequired(name, required[name])
	}
}

// Selector holds the current person type and keeps the identity group's
// requirements in line with it.
type Selector struct {
	current  models.PersonType
	identity *Group
}

func NewSelector(identity *Group, initial models.PersonType) *Selector {
	sel := &Selector{identity: identity}
	sel.Select(initial)
	return sel
}

func (sel *Selector) Select(pt models.PersonType) {
	sel.current = pt
	ApplyPersonType(sel.identity, pt)
}

func (sel *Selector) Current() models.PersonType {
	return sel.current
}
