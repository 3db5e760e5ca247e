package handler

import (
	"fmt"
	"strings"

	"signup/internal/registration/form"
	"signup/internal/registration/models"
	"signup/internal/registration/service"
	dErrors "signup/pkg/domain-errors"
	limits "signup/pkg/platform/validation"
	"signup/pkg/validation"
)

// CreateRequest optionally picks the initial person type.
type CreateRequest struct {
	PersonType string `json:"person_type" validate:"omitempty,oneof=INDIVIDUAL ORGANIZATION"`
}

func (r *CreateRequest) Normalize() {
	if r == nil {
		return
	}
	r.PersonType = strings.ToUpper(strings.TrimSpace(r.PersonType))
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// FieldValue is one edit in a FieldsRequest. Value is taken verbatim.
type FieldValue struct {
	Group   string `json:"group" validate:"required"`
	Field   string `json:"field" validate:"required"`
	Value   string `json:"value"`
	Touched bool   `json:"touched"`
}

// FieldsRequest patches one or more field values.
type FieldsRequest struct {
	Values []FieldValue `json:"values" validate:"required,min=1,dive"`
}

func (r *FieldsRequest) Normalize() {
	if r == nil {
		return
	}
	for i := range r.Values {
		r.Values[i].Group = strings.ToLower(strings.TrimSpace(r.Values[i].Group))
		r.Values[i].Field = strings.TrimSpace(r.Values[i].Field)
	}
}

func (r *FieldsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := limits.CheckSliceCount("values", len(r.Values), limits.MaxFieldEdits); err != nil {
		return err
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	for _, v := range r.Values {
		if err := limits.CheckStringLength(v.Field, v.Value, limits.MaxFieldValueLength); err != nil {
			return err
		}
		group, ok := form.ParseGroupName(v.Group)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown group %q", v.Group))
		}
		if !form.Known(group, v.Field) {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown field %q in group %s", v.Field, group))
		}
	}
	return nil
}

// ToEdits converts a validated request into service edits.
func (r *FieldsRequest) ToEdits() []service.FieldEdit {
	edits := make([]service.FieldEdit, 0, len(r.Values))
	for _, v := range r.Values {
		edits = append(edits, service.FieldEdit{
			Group:   form.GroupName(v.Group),
			Field:   v.Field,
			Value:   v.Value,
			Touched: v.Touched,
		})
	}
	return edits
}

// PersonTypeRequest switches the person type.
type PersonTypeRequest struct {
	PersonType string `json:"person_type" validate:"required,oneof=INDIVIDUAL ORGANIZATION"`
}

func (r *PersonTypeRequest) Normalize() {
	if r == nil {
		return
	}
	r.PersonType = strings.ToUpper(strings.TrimSpace(r.PersonType))
}

func (r *PersonTypeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *PersonTypeRequest) ToPersonType() models.PersonType {
	return models.PersonType(r.PersonType)
}
