package errors_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationErrorMessageIsSorted() {
	ve := errors.NewValidationError()
	ve.AddFieldError("name", "is required")
	ve.AddFieldError("max_hp", "must be at least 0")

	s.True(ve.HasErrors())
	s.Equal("validation failed: max_hp: must be at least 0; name: is required", ve.Error())

	err := ve.ToError()
	s.Equal(errors.CodeInvalidArgument, err.Code)
	s.NotNil(err.Meta["validation_errors"])
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	s.Nil(errors.NewValidationBuilder().Build())
}

func (s *ValidationTestSuite) TestValidateRequired() {
	testCases := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{"valid value", "Goblin Ambush", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			errors.ValidateRequired("name", tc.value, vb)
			if tc.shouldErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}

func (s *ValidationTestSuite) TestValidateMaxLengthCountsCharacters() {
	vb := errors.NewValidationBuilder()
	errors.ValidateMaxLength("name", strings.Repeat("é", 100), 100, vb)
	s.NoError(vb.Build())

	vb = errors.NewValidationBuilder()
	errors.ValidateMaxLength("name", strings.Repeat("a", 101), 100, vb)
	s.Error(vb.Build())
}

func (s *ValidationTestSuite) TestValidateMinAndEnum() {
	vb := errors.NewValidationBuilder()
	errors.ValidateMin("max_hp", -1, 0, vb)
	errors.ValidateEnum("status", "PAUSED", []string{"PLANNING", "ACTIVE", "COMPLETED"}, vb)

	err := vb.Build()
	s.Require().Error(err)
	s.Contains(err.Error(), "max_hp: must be at least 0")
	s.Contains(err.Error(), "status: must be one of: PLANNING, ACTIVE, COMPLETED")
}
