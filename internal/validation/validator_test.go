package validation_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"tastebud/internal/apperr"
	"tastebud/internal/validation"
)

type sample struct {
	Name  string
	Count int
}

func TestValidateRunsRulesInOrderAndShortCircuits(t *testing.T) {
	var checked []string

	v := validation.New(
		validation.Rule[sample]{
			Check: func(s *sample) bool {
				checked = append(checked, "name")
				return s.Name != ""
			},
			Fail: apperr.BadRequest("name is required"),
		},
		validation.Rule[sample]{
			Check: func(s *sample) bool {
				checked = append(checked, "count")
				return s.Count > 0
			},
			Fail: apperr.BadRequest("count must be positive"),
		},
	)

	// Both rules fail; only the first failure is reported and the second
	// rule never runs.
	err := v.Validate(&sample{})
	assert.EqualError(t, err, "name is required")
	assert.Equal(t, []string{"name"}, checked)

	// First passes, second fails.
	checked = nil
	err = v.Validate(&sample{Name: "x"})
	assert.EqualError(t, err, "count must be positive")
	assert.Equal(t, []string{"name", "count"}, checked)

	// All pass.
	assert.NoError(t, v.Validate(&sample{Name: "x", Count: 1}))
}

func TestNormalizeMutatesBeforeLaterRules(t *testing.T) {
	v := validation.New(
		validation.Normalize(func(s *sample) {
			if s.Count == 0 {
				s.Count = 10
			}
		}),
		validation.Rule[sample]{
			Check: func(s *sample) bool { return s.Count <= 50 },
			Fail:  apperr.BadRequest("count too large"),
		},
	)

	s := &sample{}
	assert.NoError(t, v.Validate(s))
	assert.Equal(t, 10, s.Count)

	assert.EqualError(t, v.Validate(&sample{Count: 99}), "count too large")
}

func TestUpdateReviewValidatorTreatsAbsenceAsValid(t *testing.T) {
	v := validation.NewUpdateReviewValidator()

	assert.NoError(t, v.Validate(&validation.UpdateReviewPayload{}))

	rating := 20
	body := "still great"
	assert.NoError(t, v.Validate(&validation.UpdateReviewPayload{Rating: &rating, Body: &body}))

	bad := 21
	err := v.Validate(&validation.UpdateReviewPayload{Rating: &bad})
	assert.EqualError(t, err, "rating must be between 0 and 20")

	short := "x"
	err = v.Validate(&validation.UpdateReviewPayload{Body: &short})
	assert.EqualError(t, err, "body must be between 2 and 512 characters")
}

func TestCreateReviewValidatorRequiresRatingAndBody(t *testing.T) {
	v := validation.NewCreateReviewValidator()
	rating := 10
	body := "tasty"

	assert.EqualError(t, v.Validate(&validation.CreateReviewPayload{Rating: &rating, Body: &body}), "food_id is required")
	assert.EqualError(t, v.Validate(&validation.CreateReviewPayload{FoodID: 1, Body: &body}), "rating is required")
	assert.EqualError(t, v.Validate(&validation.CreateReviewPayload{FoodID: 1, Rating: &rating}), "body is required")
	assert.NoError(t, v.Validate(&validation.CreateReviewPayload{FoodID: 1, Rating: &rating, Body: &body}))

	// Boundary ratings are inclusive.
	for _, r := range []int{0, 20} {
		r := r
		assert.NoError(t, v.Validate(&validation.CreateReviewPayload{FoodID: 1, Rating: &r, Body: &body}))
	}
	for _, r := range []int{-1, 21} {
		r := r
		assert.Error(t, v.Validate(&validation.CreateReviewPayload{FoodID: 1, Rating: &r, Body: &body}))
	}
}

func TestListValidatorNormalizesPageWindow(t *testing.T) {
	v := validation.NewListValidator()

	p := &validation.ListPayload{}
	assert.NoError(t, v.Validate(p))
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = &validation.ListPayload{Limit: -5, Offset: -3}
	assert.NoError(t, v.Validate(p))
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)

	assert.EqualError(t, v.Validate(&validation.ListPayload{Limit: 101}), "page size too large")
	assert.NoError(t, v.Validate(&validation.ListPayload{Limit: 100}))
}

func TestRegisterValidatorDelegatesEmailCheck(t *testing.T) {
	v := validation.NewRegisterValidator(validator.New())

	err := v.Validate(&validation.RegisterPayload{
		Username: "alice",
		Email:    "not-an-email",
		Password: "password123",
	})
	assert.EqualError(t, err, "a valid email address is required")

	assert.NoError(t, v.Validate(&validation.RegisterPayload{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	}))
}
