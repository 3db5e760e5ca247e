package service

import (
	"signup/internal/registration/form"
	"signup/internal/registration/orchestrator"
	"signup/internal/registration/session"
)

// FieldEdit is one value change. Touched also records the interaction.
type FieldEdit struct {
	Group   form.GroupName
	Field   string
	Value   string
	Touched bool
}

// SessionView is a wizard projection plus any lookup outcomes that resolved
// while the request waited.
type SessionView struct {
	ID string
	orchestrator.View
	Lookups []orchestrator.LookupResult
}

func newSessionView(sess *session.Session, lookups []orchestrator.LookupResult) *SessionView {
	return &SessionView{ID: sess.ID, View: sess.Wizard.View(), Lookups: lookups}
}

// SubmitResult pairs the submission outcome with the wizard state after it.
type SubmitResult struct {
	Outcome orchestrator.Outcome
	Session SessionView
}
