// Package models holds the registration data shapes shared by the wizard core,
// its lookup client and its submission sinks.
package models

import (
	"strings"
	"time"

	dErrors "signup/pkg/domain-errors"
)

// PersonType distinguishes an individual from an organization. It drives which
// identity fields are required.
type PersonType string

const (
	Individual   PersonType = "INDIVIDUAL"
	Organization PersonType = "ORGANIZATION"
)

func (p PersonType) IsValid() bool {
	return p == Individual || p == Organization
}

func (p PersonType) String() string {
	return string(p)
}

// ParsePersonType accepts the wire values case-insensitively.
func ParsePersonType(s string) (PersonType, error) {
	p := PersonType(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "person_type must be INDIVIDUAL or ORGANIZATION")
	}
	return p, nil
}

// AddressRecord is what a postal-code lookup resolves to. Fields are optional
// one by one; a record with all of them empty is not a usable result.
type AddressRecord struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	StateCode    string `json:"state_code"`
}

// IsEmpty reports whether the record carries no address data at all.
func (a AddressRecord) IsEmpty() bool {
	return a.Street == "" && a.Neighborhood == "" && a.City == "" && a.StateCode == ""
}

// Identity is the identity section of a completed registration.
type Identity struct {
	Name        string `json:"name"`
	NationalID  string `json:"national_id"`
	SecondaryID string `json:"secondary_id,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

// Address is the address section of a completed registration.
type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	StateCode    string `json:"state_code"`
}

// Contact types used for the two contacts every registration carries.
const (
	ContactEmail = "EMAIL"
	ContactPhone = "PHONE"
)

type Contact struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CompositeRegistration is produced once, on a successful submission, and is
// never partially built.
type CompositeRegistration struct {
	ID          string     `json:"id"`
	Identity    Identity   `json:"identity"`
	PersonType  PersonType `json:"person_type"`
	Addresses   []Address  `json:"addresses"`
	Contacts    []Contact  `json:"contacts"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// AdvisoryKind classifies a non-fatal, user-facing lookup message.
type AdvisoryKind string

const (
	AdvisoryPostalCodeNotFound AdvisoryKind = "postal_code_not_found"
	AdvisoryLookupUnavailable  AdvisoryKind = "lookup_unavailable"
	AdvisoryLookupStale        AdvisoryKind = "lookup_stale"
)

// Advisory is a lookup outcome the user should see but that never blocks
// progress.
type Advisory struct {
	Kind       AdvisoryKind `json:"kind"`
	PostalCode string       `json:"postal_code"`
	Message    string       `json:"message"`
}

func NewAdvisory(kind AdvisoryKind, postalCode string) Advisory {
	return Advisory{Kind: kind, PostalCode: postalCode, Message: advisoryMessages[kind]}
}

var advisoryMessages = map[AdvisoryKind]string{
	AdvisoryPostalCodeNotFound: "postal code not recognized",
	AdvisoryLookupUnavailable:  "lookup unavailable, enter address manually",
	AdvisoryLookupStale:        "postal code changed before the lookup finished",
}
