package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "signup/pkg/domain-errors"
)

// LimitsSuite checks the boundary: max passes, max+1 fails.
type LimitsSuite struct {
	suite.Suite
}

func TestLimitsSuite(t *testing.T) {
	suite.Run(t, new(LimitsSuite))
}

func (s *LimitsSuite) TestCheckSliceCount() {
	s.NoError(CheckSliceCount("values", MaxFieldEdits, MaxFieldEdits))
	s.NoError(CheckSliceCount("values", 0, MaxFieldEdits))

	err := CheckSliceCount("values", MaxFieldEdits+1, MaxFieldEdits)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "too many values: max 32 allowed")
}

func (s *LimitsSuite) TestCheckStringLength() {
	s.NoError(CheckStringLength("value", strings.Repeat("a", MaxFieldValueLength), MaxFieldValueLength))

	err := CheckStringLength("value", strings.Repeat("a", MaxFieldValueLength+1), MaxFieldValueLength)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "value exceeds max length of 256")
}
