package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorMessage() {
	s.Run("prefers message", func() {
		err := &Error{Code: CodeNotFound, Message: "registration session not found"}
		s.Equal("registration session not found", err.Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeConflict}
		s.Equal("conflict", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.True(errors.Is(New(CodeNotFound, "a"), &Error{Code: CodeNotFound}))
	s.False(errors.Is(New(CodeNotFound, "a"), &Error{Code: CodeConflict}))
	s.False((&Error{Code: CodeNotFound}).Is(errors.New("not found")))

	inner := &Error{Code: CodeUnavailable, Message: "lookup down"}
	outer := fmt.Errorf("submit: %w", inner)
	s.True(errors.Is(outer, &Error{Code: CodeUnavailable}))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps an existing code", func() {
		wrapped := Wrap(New(CodeNotFound, "session missing"), CodeInternal, "load session")
		s.True(HasCode(wrapped, CodeNotFound))
		s.Equal("load session", wrapped.Error())
	})

	s.Run("applies the code to plain errors", func() {
		root := errors.New("broker closed")
		wrapped := Wrap(root, CodeUnavailable, "emit registration")
		s.True(HasCode(wrapped, CodeUnavailable))
		s.ErrorIs(wrapped, root)
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.True(HasCode(New(CodeValidation, "bad"), CodeValidation))
}
