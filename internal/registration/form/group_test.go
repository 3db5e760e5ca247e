package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type GroupSuite struct {
	suite.Suite
	group *Group
}

func TestGroupSuite(t *testing.T) {
	suite.Run(t, new(GroupSuite))
}

func (s *GroupSuite) SetupTest() {
	s.group = NewGroup("test",
		FieldSpec{Name: "required", Required: true},
		FieldSpec{Name: "optional"},
		FieldSpec{Name: "email", Rule: RuleEmail},
		FieldSpec{Name: "kind", Default: "EMAIL"},
	)
}

func (s *GroupSuite) TestValidityFollowsValueAndRequirement() {
	f, ok := s.group.Field("required")
	s.Require().True(ok)
	s.False(f.Valid, "blank required field is invalid")

	s.True(s.group.SetValue("required", "x"))
	f, _ = s.group.Field("required")
	s.True(f.Valid)

	s.group.SetValue("required", "   ")
	f, _ = s.group.Field("required")
	s.False(f.Valid, "whitespace counts as blank")
}

func (s *GroupSuite) TestOptionalBlankIsValidButRuleAppliesWhenFilled() {
	f, _ := s.group.Field("email")
	s.True(f.Valid)

	s.group.SetValue("email", "not-an-email")
	f, _ = s.group.Field("email")
	s.False(f.Valid)

	s.group.SetValue("email", "ana@example.com")
	f, _ = s.group.Field("email")
	s.True(f.Valid)
}

func (s *GroupSuite) TestSetValueLeavesTouchedAlone() {
	s.group.SetValue("required", "x")
	f, _ := s.group.Field("required")
	s.False(f.Touched)

	s.group.Touch("required")
	s.group.SetValue("required", "y")
	f, _ = s.group.Field("required")
	s.True(f.Touched)
}

func (s *GroupSuite) TestUnknownFieldIsIgnored() {
	before := s.group.Snapshot()
	s.False(s.group.SetValue("nope", "x"))
	s.False(s.group.Touch("nope"))
	s.False(s.group.SetRequired("nope", true))
	s.Equal(before, s.group.Snapshot())
}

func (s *GroupSuite) TestMarkAllTouchedDoesNotChangeValidity() {
	s.False(s.group.IsValid())
	s.group.MarkAllTouched()
	for _, f := range s.group.Fields() {
		s.True(f.Touched, f.Name)
	}
	s.False(s.group.IsValid())
}

func (s *GroupSuite) TestIsValidAndInvalid() {
	s.Equal([]string{"required"}, s.group.Invalid())
	s.group.SetValue("required", "x")
	s.True(s.group.IsValid())
	s.Empty(s.group.Invalid())
}

func (s *GroupSuite) TestSnapshotIsACopy() {
	s.group.SetValue("optional", "before")
	snap := s.group.Snapshot()
	s.group.SetValue("optional", "after")
	s.Equal("before", snap["optional"])
	s.Equal("EMAIL", snap["kind"])

	snap["optional"] = "mutated"
	s.Equal("after", s.group.Value("optional"))
}

func (s *GroupSuite) TestSetRequiredRevalidates() {
	s.True(s.group.SetRequired("optional", true))
	f, _ := s.group.Field("optional")
	s.True(f.Required)
	s.False(f.Valid)

	s.group.SetRequired("optional", false)
	f, _ = s.group.Field("optional")
	s.True(f.Valid)
}

func (s *GroupSuite) TestFieldsKeepDeclarationOrder() {
	var names []string
	for _, f := range s.group.Fields() {
		names = append(names, f.Name)
	}
	s.Equal([]string{"required", "optional", "email", "kind"}, names)
}

func TestRules(t *testing.T) {
	cases := []struct {
		rule  *Rule
		value string
		want  bool
	}{
		{RuleEmail, "ana@example.com", true},
		{RuleEmail, "ana@", false},
		{RuleDate, "1990-05-17", true},
		{RuleDate, "17/05/1990", false},
		{RuleDate, "1990-13-01", false},
		{RulePostalCode, "01310-100", true},
		{RulePostalCode, "01310100", true},
		{RulePostalCode, "0131010", false},
		{RuleStateCode, "SP", true},
		{RuleStateCode, "sp", true},
		{RuleStateCode, "S1", false},
		{RuleStateCode, "SPX", false},
	}
	for _, tc := range cases {
		t.Run(tc.rule.Name+"/"+tc.value, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rule.Check(tc.value))
		})
	}
}

func TestCatalogue(t *testing.T) {
	g, ok := ParseGroupName(" Address ")
	require.True(t, ok)
	assert.Equal(t, GroupAddress, g)

	_, ok = ParseGroupName("billing")
	assert.False(t, ok)

	assert.True(t, Known(GroupAddress, FieldPostalCode))
	assert.False(t, Known(GroupIdentity, FieldPostalCode))

	address := NewAddressGroup()
	assert.False(t, address.IsValid())
	for _, name := range []string{FieldPostalCode, FieldStreet, FieldNumber, FieldComplement, FieldNeighborhood, FieldCity, FieldStateCode} {
		assert.True(t, address.Has(name), name)
	}
	complement, _ := address.Field(FieldComplement)
	assert.False(t, complement.Required)

	contact := NewContactGroup()
	assert.Equal(t, "EMAIL", contact.Value(FieldEmailType))
	assert.Equal(t, "PHONE", contact.Value(FieldPhoneType))
}
