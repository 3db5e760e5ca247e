package handler

import (
	"signup/internal/registration/models"
	"signup/internal/registration/orchestrator"
	"signup/internal/registration/postalcode"
	"signup/internal/registration/service"
)

type SessionResponse struct {
	ID             string                   `json:"id"`
	State          orchestrator.State       `json:"state"`
	PersonType     models.PersonType        `json:"person_type"`
	Groups         []orchestrator.GroupView `json:"groups"`
	Advisory       *models.Advisory         `json:"advisory,omitempty"`
	PendingLookups int                      `json:"pending_lookups"`
	Lookups        []LookupResponse         `json:"lookups,omitempty"`
}

type LookupResponse struct {
	PostalCode string            `json:"postal_code"`
	Status     postalcode.Status `json:"status"`
	Applied    bool              `json:"applied"`
	Stale      bool              `json:"stale"`
	Advisory   *models.Advisory  `json:"advisory,omitempty"`
}

type SubmitResponse struct {
	Status       orchestrator.State            `json:"status"`
	Error        string                        `json:"error,omitempty"`
	Registration *models.CompositeRegistration `json:"registration,omitempty"`
	Violations   []orchestrator.Violation      `json:"violations,omitempty"`
	Session      SessionResponse               `json:"session"`
}

type PostalCodeResponse struct {
	PostalCode string                `json:"postal_code"`
	Status     postalcode.Status     `json:"status"`
	Address    *models.AddressRecord `json:"address,omitempty"`
	Advisory   *models.Advisory      `json:"advisory,omitempty"`
}

func toSessionResponse(v *service.SessionView) SessionResponse {
	res := SessionResponse{
		ID:             v.ID,
		State:          v.State,
		PersonType:     v.PersonType,
		Groups:         v.Groups,
		Advisory:       v.Advisory,
		PendingLookups: v.PendingLookups,
	}
	for _, l := range v.Lookups {
		res.Lookups = append(res.Lookups, LookupResponse{
			PostalCode: l.PostalCode,
			Status:     l.Status,
			Applied:    l.Applied,
			Stale:      l.Stale,
			Advisory:   l.Advisory,
		})
	}
	return res
}

func toSubmitResponse(r *service.SubmitResult) SubmitResponse {
	return SubmitResponse{
		Status:       r.Outcome.State,
		Error:        r.Outcome.Reason,
		Registration: r.Outcome.Registration,
		Violations:   r.Outcome.Violations,
		Session:      toSessionResponse(&r.Session),
	}
}

func toPostalCodeResponse(code string, res postalcode.Result) PostalCodeResponse {
	out := PostalCodeResponse{PostalCode: code, Status: res.Status}
	switch res.Status {
	case postalcode.StatusFound:
		addr := res.Address
		out.Address = &addr
	case postalcode.StatusNotFound:
		adv := models.NewAdvisory(models.AdvisoryPostalCodeNotFound, code)
		out.Advisory = &adv
	default:
		adv := models.NewAdvisory(models.AdvisoryLookupUnavailable, code)
		out.Advisory = &adv
	}
	return out
}
