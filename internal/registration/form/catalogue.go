package form

import (
	"strings"

	"signup/internal/registration/models"
	s "signup/pkg/string"
	"signup/pkg/validation"
)

// Identity fields.
const (
	FieldName        = "name"
	FieldNationalID  = "nationalId"
	FieldSecondaryID = "secondaryId"
	FieldBirthDate   = "birthDate"
	FieldGender      = "gender"
)

// Address fields.
const (
	FieldPostalCode   = "postalCode"
	FieldStreet       = "street"
	FieldNumber       = "number"
	FieldComplement   = "complement"
	FieldNeighborhood = "neighborhood"
	FieldCity         = "city"
	FieldStateCode    = "stateCode"
)

// Contact fields.
const (
	FieldEmailType = "emailType"
	FieldEmail     = "email"
	FieldPhoneType = "phoneType"
	FieldPhone     = "phone"
)

var (
	RuleEmail = &Rule{Name: "email", Check: func(v string) bool {
		return validation.Var(strings.TrimSpace(v), "email")
	}}
	RuleDate = &Rule{Name: "date", Check: func(v string) bool {
		return validation.Var(strings.TrimSpace(v), "datetime=2006-01-02")
	}}
	RulePostalCode = &Rule{Name: "postal_code", Check: func(v string) bool {
		return len(s.DigitsOnly(v)) == 8
	}}
	RuleStateCode = &Rule{Name: "state_code", Check: func(v string) bool {
		return validation.Var(strings.TrimSpace(v), "alpha,len=2")
	}}
)

// NewIdentityGroup builds the identity group with requirements applied for pt.
func NewIdentityGroup(pt models.PersonType) *Group {
	g := NewGroup(GroupIdentity,
		FieldSpec{Name: FieldName},
		FieldSpec{Name: FieldNationalID},
		FieldSpec{Name: FieldSecondaryID},
		FieldSpec{Name: FieldBirthDate, Rule: RuleDate},
		FieldSpec{Name: FieldGender},
	)
	ApplyPersonType(g, pt)
	return g
}

func NewAddressGroup() *Group {
	return NewGroup(GroupAddress,
		FieldSpec{Name: FieldPostalCode, Required: true, Rule: RulePostalCode},
		FieldSpec{Name: FieldStreet, Required: true},
		FieldSpec{Name: FieldNumber, Required: true},
		FieldSpec{Name: FieldComplement},
		FieldSpec{Name: FieldNeighborhood, Required: true},
		FieldSpec{Name: FieldCity, Required: true},
		FieldSpec{Name: FieldStateCode, Required: true, Rule: RuleStateCode},
	)
}

func NewContactGroup() *Group {
	return NewGroup(GroupContact,
		FieldSpec{Name: FieldEmailType, Default: models.ContactEmail},
		FieldSpec{Name: FieldEmail, Required: true, Rule: RuleEmail},
		FieldSpec{Name: FieldPhoneType, Default: models.ContactPhone},
		FieldSpec{Name: FieldPhone, Required: true},
	)
}

var catalogue = map[GroupName][]string{
	GroupIdentity: {FieldName, FieldNationalID, FieldSecondaryID, FieldBirthDate, FieldGender},
	GroupAddress:  {FieldPostalCode, FieldStreet, FieldNumber, FieldComplement, FieldNeighborhood, FieldCity, FieldStateCode},
	GroupContact:  {FieldEmailType, FieldEmail, FieldPhoneType, FieldPhone},
}

// Known reports whether the group declares the field. Outer surfaces use it
// to reject input before it reaches a group.
func Known(group GroupName, name string) bool {
	for _, n := range catalogue[group] {
		if n == name {
			return true
		}
	}
	return false
}

// ParseGroupName returns false for names outside the catalogue.
func ParseGroupName(raw string) (GroupName, bool) {
	g := GroupName(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := catalogue[g]
	return g, ok
}
