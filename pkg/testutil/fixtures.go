package testutil

import (
	"signup/internal/registration/form"
	"signup/internal/registration/models"
)

// FieldValue is one answer in a registration fixture.
type FieldValue struct {
	Group form.GroupName
	Field string
	Value string
}

// PaulistaAddress is what the lookup fakes return for PaulistaPostalCode.
var PaulistaAddress = models.AddressRecord{
	Street:       "Avenida Paulista",
	Neighborhood: "Bela Vista",
	City:         "São Paulo",
	StateCode:    "SP",
}

const PaulistaPostalCode = "01310-100"

// FormBuilder assembles the answers a user would type, minus the address
// fields a successful lookup fills in.
type FormBuilder struct {
	values []FieldValue
}

// NewFormBuilder starts from a complete Individual registration.
func NewFormBuilder() *FormBuilder {
	return &FormBuilder{values: []FieldValue{
		{form.GroupIdentity, form.FieldName, "Ana Souza"},
		{form.GroupIdentity, form.FieldNationalID, "123.456.789-09"},
		{form.GroupIdentity, form.FieldSecondaryID, "12.345.678-9"},
		{form.GroupIdentity, form.FieldBirthDate, "1990-05-17"},
		{form.GroupIdentity, form.FieldGender, "F"},
		{form.GroupAddress, form.FieldPostalCode, PaulistaPostalCode},
		{form.GroupAddress, form.FieldNumber, "1578"},
		{form.GroupContact, form.FieldEmail, "ana@example.com"},
		{form.GroupContact, form.FieldPhone, "+55 11 99999-9999"},
	}}
}

// With sets or adds one answer.
func (b *FormBuilder) With(group form.GroupName, field, value string) *FormBuilder {
	for i, v := range b.values {
		if v.Group == group && v.Field == field {
			b.values[i].Value = value
			return b
		}
	}
	b.values = append(b.values, FieldValue{group, field, value})
	return b
}

// Without drops one answer.
func (b *FormBuilder) Without(group form.GroupName, field string) *FormBuilder {
	out := b.values[:0]
	for _, v := range b.values {
		if v.Group != group || v.Field != field {
			out = append(out, v)
		}
	}
	b.values = out
	return b
}

// WithManualAddress adds the fields a lookup would otherwise fill.
func (b *FormBuilder) WithManualAddress(addr models.AddressRecord) *FormBuilder {
	return b.
		With(form.GroupAddress, form.FieldStreet, addr.Street).
		With(form.GroupAddress, form.FieldNeighborhood, addr.Neighborhood).
		With(form.GroupAddress, form.FieldCity, addr.City).
		With(form.GroupAddress, form.FieldStateCode, addr.StateCode)
}

// Build returns a copy of the answers.
func (b *FormBuilder) Build() []FieldValue {
	out := make([]FieldValue, len(b.values))
	copy(out, b.values)
	return out
}
