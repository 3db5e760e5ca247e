// Package form models the wizard's field groups: ordered named fields with a
// value, a requirement flag, a touched flag and validity derived from both.
//
// A Group is not safe for concurrent use; its owner serializes access.
package form

import (
	s "signup/pkg/string"
)

// GroupName identifies one of the wizard's field groups.
type GroupName string

const (
	GroupIdentity GroupName = "identity"
	GroupAddress  GroupName = "address"
	GroupContact  GroupName = "contact"
)

// Groups lists the groups in wizard step order.
var Groups = []GroupName{GroupIdentity, GroupAddress, GroupContact}

// Rule is a type rule applied to non-blank values only.
type Rule struct {
	Name  string
	Check func(value string) bool
}

// Field is a read-only view of one field's state.
type Field struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Required bool   `json:"required"`
	Touched  bool   `json:"touched"`
	Valid    bool   `json:"valid"`
	Rule     string `json:"rule,omitempty"`
}

// FieldSpec declares a field when building a group.
type FieldSpec struct {
	Name     string
	Required bool
	Rule     *Rule
	Default  string
}

type field struct {
	name     string
	value    string
	required bool
	touched  bool
	valid    bool
	rule     *Rule
}

func (f *field) revalidate() {
	f.valid = isValid(f.value, f.required, f.rule)
}

func (f *field) view() Field {
	v := Field{Name: f.name, Value: f.value, Required: f.required, Touched: f.touched, Valid: f.valid}
	if f.rule != nil {
		v.Rule = f.rule.Name
	}
	return v
}

// isValid: required implies non-blank, non-blank implies the rule holds.
// Touched never participates.
func isValid(value string, required bool, rule *Rule) bool {
	if s.IsBlank(value) {
		return !required
	}
	if rule == nil {
		return true
	}
	return rule.Check(value)
}

// Group is an ordered set of named fields.
type Group struct {
	name   GroupName
	order  []string
	fields map[string]*field
}

func NewGroup(name GroupName, specs ...FieldSpec) *Group {
	g := &Group{
		name:   name,
		order:  make([]string, 0, len(specs)),
		fields: make(map[string]*field, len(specs)),
	}
	for _, spec := range specs {
		f := &field{name: spec.Name, value: spec.Default, required: spec.Required, rule: spec.Rule}
		f.revalidate()
		g.order = append(g.order, spec.Name)
		g.fields[spec.Name] = f
	}
	return g
}

func (g *Group) Name() GroupName {
	return g.name
}

// SetValue updates the field's value and recomputes its validity. The touched
// flag is left alone. Unknown names are ignored and reported as false.
func (g *Group) SetValue(name, value string) bool {
	f, ok := g.fields[name]
	if !ok {
		return false
	}
	f.value = value
	f.revalidate()
	return true
}

// SetRequired changes the requirement flag without touching the value.
func (g *Group) SetRequired(name string, required bool) bool {
	f, ok := g.fields[name]
	if !ok {
		return false
	}
	f.required = required
	f.revalidate()
	return true
}

// Touch records a user interaction with the field without changing its value.
func (g *Group) Touch(name string) bool {
	f, ok := g.fields[name]
	if !ok {
		return false
	}
	f.touched = true
	return true
}

func (g *Group) MarkAllTouched() {
	for _, f := range g.fields {
		f.touched = true
	}
}

// IsValid is true iff every field is valid.
func (g *Group) IsValid() bool {
	for _, f := range g.fields {
		if !f.valid {
			return false
		}
	}
	return true
}

// Invalid returns the names of invalid fields in declaration order.
func (g *Group) Invalid() []string {
	var names []string
	for _, name := range g.order {
		if !g.fields[name].valid {
			names = append(names, name)
		}
	}
	return names
}

// Snapshot copies the current values; later edits do not affect it.
func (g *Group) Snapshot() map[string]string {
	out := make(map[string]string, len(g.fields))
	for name, f := range g.fields {
		out[name] = f.value
	}
	return out
}

// Value returns the field's value, or "" for unknown names.
func (g *Group) Value(name string) string {
	if f, ok := g.fields[name]; ok {
		return f.value
	}
	return ""
}

func (g *Group) Has(name string) bool {
	_, ok := g.fields[name]
	return ok
}

func (g *Group) Field(name string) (Field, bool) {
	f, ok := g.fields[name]
	if !ok {
		return Field{}, false
	}
	return f.view(), true
}

// Fields returns every field in declaration order.
func (g *Group) Fields() []Field {
	out := make([]Field, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.fields[name].view())
	}
	return out
}
