package orchestrator

import (
	"signup/internal/registration/form"
	"signup/internal/registration/models"
)

// GroupView is a read-only projection of one group.
type GroupView struct {
	Name   form.GroupName `json:"name"`
	Valid  bool           `json:"valid"`
	Fields []form.Field   `json:"fields"`
}

// View is a read-only projection of the whole wizard for presentation layers.
type View struct {
	State          State             `json:"state"`
	PersonType     models.PersonType `json:"person_type"`
	Groups         []GroupView       `json:"groups"`
	Advisory       *models.Advisory  `json:"advisory,omitempty"`
	PendingLookups int               `json:"pending_lookups"`
}

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		State:          o.state,
		PersonType:     o.selector.Current(),
		PendingLookups: o.pending,
	}
	for _, g := range []*form.Group{o.identity, o.address, o.contact} {
		v.Groups = append(v.Groups, GroupView{Name: g.Name(), Valid: g.IsValid(), Fields: g.Fields()})
	}
	if o.advisory != nil {
		adv := *o.advisory
		v.Advisory = &adv
	}
	return v
}

// Snapshot copies one group's values. Unknown groups yield nil.
func (o *Orchestrator) Snapshot(group form.GroupName) map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()

	g := o.group(group)
	if g == nil {
		return nil
	}
	return g.Snapshot()
}

// Field returns one field's current state.
func (o *Orchestrator) Field(group form.GroupName, name string) (form.Field, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	g := o.group(group)
	if g == nil {
		return form.Field{}, false
	}
	return g.Field(name)
}

// Group returns a projection of one group.
func (o *Orchestrator) Group(name form.GroupName) (GroupView, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	g := o.group(name)
	if g == nil {
		return GroupView{}, false
	}
	return GroupView{Name: g.Name(), Valid: g.IsValid(), Fields: g.Fields()}, true
}
