package validation

import (
	"github.com/go-playground/validator/v10"

	"tastebud/internal/apperr"
	"tastebud/internal/models"
)

// Request payloads accepted by the services. Update payloads use pointer
// fields: nil means "leave unchanged" and is valid unless a presence rule
// says otherwise.

type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserPayload struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
}

type DeleteUserPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetRequestPayload struct {
	Email string `json:"email"`
}

type ResetConfirmPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type CreateRestaurantPayload struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
	PhotoBase64 string `json:"photo"`
}

type UpdateRestaurantPayload struct {
	Name        *string `json:"name"`
	ShortName   *string `json:"short_name"`
	Description *string `json:"description"`
	PhotoBase64 *string `json:"photo"`
}

type CreateFoodPayload struct {
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PhotoBase64  string `json:"photo"`
}

type UpdateFoodPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PhotoBase64 *string `json:"photo"`
}

type CreateReviewPayload struct {
	FoodID uint    `json:"food_id"`
	Rating *int    `json:"rating"`
	Body   *string `json:"body"`
}

type UpdateReviewPayload struct {
	Rating *int    `json:"rating"`
	Body   *string `json:"body"`
}

// ListPayload carries pagination and an optional substring filter. The
// normalization rules default the page bounds; callers after Validate always
// see a sane window.
type ListPayload struct {
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Filter string `json:"filter"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func ratingInRange(r int) bool {
	return r >= models.RatingMin && r <= models.RatingMax
}

func bodyInRange(b string) bool {
	return len(b) >= models.ReviewBodyMin && len(b) <= models.ReviewBodyMax
}

// NewRegisterValidator validates new-identity registration. All fields are
// required here; compare NewUpdateUserValidator where absence means "keep".
func NewRegisterValidator(vd *validator.Validate) *Validator[RegisterPayload] {
	return New(
		Rule[RegisterPayload]{
			Check: func(p *RegisterPayload) bool { return len(p.Username) >= 3 && len(p.Username) <= 100 },
			Fail:  apperr.BadRequest("username must be between 3 and 100 characters"),
		},
		Rule[RegisterPayload]{
			Check: func(p *RegisterPayload) bool { return vd.Var(p.Email, "required,email") == nil },
			Fail:  apperr.BadRequest("a valid email address is required"),
		},
		Rule[RegisterPayload]{
			Check: func(p *RegisterPayload) bool { return len(p.Password) >= 6 },
			Fail:  apperr.BadRequest("password must be at least 6 characters"),
		},
		Rule[RegisterPayload]{
			Check: func(p *RegisterPayload) bool { return len(p.Bio) <= 512 && len(p.Location) <= 100 },
			Fail:  apperr.BadRequest("bio or location too long"),
		},
	)
}

func NewLoginValidator() *Validator[LoginPayload] {
	return New(
		Rule[LoginPayload]{
			Check: func(p *LoginPayload) bool { return p.Username != "" },
			Fail:  apperr.BadRequest("username is required"),
		},
		Rule[LoginPayload]{
			Check: func(p *LoginPayload) bool { return p.Password != "" },
			Fail:  apperr.BadRequest("password is required"),
		},
	)
}

func NewUpdateUserValidator(vd *validator.Validate) *Validator[UpdateUserPayload] {
	return New(
		Rule[UpdateUserPayload]{
			Check: func(p *UpdateUserPayload) bool {
				return p.Email == nil || vd.Var(*p.Email, "required,email") == nil
			},
			Fail: apperr.BadRequest("a valid email address is required"),
		},
		Rule[UpdateUserPayload]{
			Check: func(p *UpdateUserPayload) bool { return p.Password == nil || len(*p.Password) >= 6 },
			Fail:  apperr.BadRequest("password must be at least 6 characters"),
		},
		Rule[UpdateUserPayload]{
			Check: func(p *UpdateUserPayload) bool { return p.Bio == nil || len(*p.Bio) <= 512 },
			Fail:  apperr.BadRequest("bio too long"),
		},
		Rule[UpdateUserPayload]{
			Check: func(p *UpdateUserPayload) bool { return p.Location == nil || len(*p.Location) <= 100 },
			Fail:  apperr.BadRequest("location too long"),
		},
	)
}

func NewDeleteUserValidator() *Validator[DeleteUserPayload] {
	return New(
		Rule[DeleteUserPayload]{
			Check: func(p *DeleteUserPayload) bool { return p.Username != "" && p.Password != "" },
			Fail:  apperr.BadRequest("username and password are required"),
		},
	)
}

func NewResetRequestValidator(vd *validator.Validate) *Validator[ResetRequestPayload] {
	return New(
		Rule[ResetRequestPayload]{
			Check: func(p *ResetRequestPayload) bool { return vd.Var(p.Email, "required,email") == nil },
			Fail:  apperr.BadRequest("a valid email address is required"),
		},
	)
}

func NewResetConfirmValidator() *Validator[ResetConfirmPayload] {
	return New(
		Rule[ResetConfirmPayload]{
			Check: func(p *ResetConfirmPayload) bool { return p.Token != "" },
			Fail:  apperr.BadRequest("reset token is required"),
		},
		Rule[ResetConfirmPayload]{
			Check: func(p *ResetConfirmPayload) bool { return len(p.Password) >= 6 },
			Fail:  apperr.BadRequest("password must be at least 6 characters"),
		},
	)
}

func NewCreateRestaurantValidator() *Validator[CreateRestaurantPayload] {
	return New(
		Rule[CreateRestaurantPayload]{
			Check: func(p *CreateRestaurantPayload) bool { return len(p.Name) >= 2 && len(p.Name) <= 100 },
			Fail:  apperr.BadRequest("restaurant name must be between 2 and 100 characters"),
		},
		Rule[CreateRestaurantPayload]{
			Check: func(p *CreateRestaurantPayload) bool { return len(p.ShortName) <= 30 },
			Fail:  apperr.BadRequest("short name too long"),
		},
		Rule[CreateRestaurantPayload]{
			Check: func(p *CreateRestaurantPayload) bool { return len(p.Description) <= 512 },
			Fail:  apperr.BadRequest("description too long"),
		},
	)
}

func NewUpdateRestaurantValidator() *Validator[UpdateRestaurantPayload] {
	return New(
		Rule[UpdateRestaurantPayload]{
			Check: func(p *UpdateRestaurantPayload) bool {
				return p.Name == nil || (len(*p.Name) >= 2 && len(*p.Name) <= 100)
			},
			Fail: apperr.BadRequest("restaurant name must be between 2 and 100 characters"),
		},
		Rule[UpdateRestaurantPayload]{
			Check: func(p *UpdateRestaurantPayload) bool { return p.ShortName == nil || len(*p.ShortName) <= 30 },
			Fail:  apperr.BadRequest("short name too long"),
		},
		Rule[UpdateRestaurantPayload]{
			Check: func(p *UpdateRestaurantPayload) bool { return p.Description == nil || len(*p.Description) <= 512 },
			Fail:  apperr.BadRequest("description too long"),
		},
	)
}

func NewCreateFoodValidator() *Validator[CreateFoodPayload] {
	return New(
		Rule[CreateFoodPayload]{
			Check: func(p *CreateFoodPayload) bool { return p.RestaurantID != 0 },
			Fail:  apperr.BadRequest("restaurant_id is required"),
		},
		Rule[CreateFoodPayload]{
			Check: func(p *CreateFoodPayload) bool { return len(p.Name) >= 2 && len(p.Name) <= 100 },
			Fail:  apperr.BadRequest("food name must be between 2 and 100 characters"),
		},
		Rule[CreateFoodPayload]{
			Check: func(p *CreateFoodPayload) bool { return len(p.Description) <= 512 },
			Fail:  apperr.BadRequest("description too long"),
		},
	)
}

func NewUpdateFoodValidator() *Validator[UpdateFoodPayload] {
	return New(
		Rule[UpdateFoodPayload]{
			Check: func(p *UpdateFoodPayload) bool {
				return p.Name == nil || (len(*p.Name) >= 2 && len(*p.Name) <= 100)
			},
			Fail: apperr.BadRequest("food name must be between 2 and 100 characters"),
		},
		Rule[UpdateFoodPayload]{
			Check: func(p *UpdateFoodPayload) bool { return p.Description == nil || len(*p.Description) <= 512 },
			Fail:  apperr.BadRequest("description too long"),
		},
	)
}

// NewCreateReviewValidator requires rating and body to be present; the update
// variant treats their absence as "leave unchanged".
func NewCreateReviewValidator() *Validator[CreateReviewPayload] {
	return New(
		Rule[CreateReviewPayload]{
			Check: func(p *CreateReviewPayload) bool { return p.FoodID != 0 },
			Fail:  apperr.BadRequest("food_id is required"),
		},
		Rule[CreateReviewPayload]{
			Check: func(p *CreateReviewPayload) bool { return p.Rating != nil },
			Fail:  apperr.BadRequest("rating is required"),
		},
		Rule[CreateReviewPayload]{
			Check: func(p *CreateReviewPayload) bool { return ratingInRange(*p.Rating) },
			Fail:  apperr.BadRequest("rating must be between 0 and 20"),
		},
		Rule[CreateReviewPayload]{
			Check: func(p *CreateReviewPayload) bool { return p.Body != nil },
			Fail:  apperr.BadRequest("body is required"),
		},
		Rule[CreateReviewPayload]{
			Check: func(p *CreateReviewPayload) bool { return bodyInRange(*p.Body) },
			Fail:  apperr.BadRequest("body must be between 2 and 512 characters"),
		},
	)
}

func NewUpdateReviewValidator() *Validator[UpdateReviewPayload] {
	return New(
		Rule[UpdateReviewPayload]{
			Check: func(p *UpdateReviewPayload) bool { return p.Rating == nil || ratingInRange(*p.Rating) },
			Fail:  apperr.BadRequest("rating must be between 0 and 20"),
		},
		Rule[UpdateReviewPayload]{
			Check: func(p *UpdateReviewPayload) bool { return p.Body == nil || bodyInRange(*p.Body) },
			Fail:  apperr.BadRequest("body must be between 2 and 512 characters"),
		},
	)
}

// NewListValidator normalizes the page window before checking it, so an
// absent limit becomes the default instead of a rejection.
func NewListValidator() *Validator[ListPayload] {
	return New(
		Normalize(func(p *ListPayload) {
			if p.Limit <= 0 {
				p.Limit = defaultPageSize
			}
			if p.Offset < 0 {
				p.Offset = 0
			}
		}),
		Rule[ListPayload]{
			Check: func(p *ListPayload) bool { return p.Limit <= maxPageSize },
			Fail:  apperr.BadRequest("page size too large"),
		},
	)
}
