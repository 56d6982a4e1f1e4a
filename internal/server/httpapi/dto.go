package httpapi

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

var letters = regexp.MustCompile(`^[а-яА-Яa-zA-Z0-9\-]+$`)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

func maxBytes(n int) validation.RuleFunc {
	return func(v any) error {
		if s, _ := v.(string); len(s) > n {
			return fmt.Errorf("must be at most %d bytes long", n)
		}
		return nil
	}
}

type tokenRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login returns the email to log in with; username is accepted as an alias.
func (r tokenRequest) login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

func (r tokenRequest) Validate() error {
	return validation.Errors{
		"username": validation.Validate(r.login(), validation.Required),
		"password": validation.Validate(r.Password, validation.Required),
	}.Filter()
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100), validation.Match(letters)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100), validation.Match(letters)),
		validation.Field(&r.Surname, validation.Length(0, 100), validation.Match(letters)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required,
			validation.Length(minPasswordLen, 0), validation.By(maxBytes(maxPasswordBytes))),
	)
}

func (r registerRequest) input() services.RegisterInput {
	return services.RegisterInput{
		Username: r.Username,
		Name:     r.Name,
		Surname:  r.Surname,
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
	}
}

type updateRequest struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Email   *string `json:"email"`
}

func (r updateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100), validation.Match(letters)),
		validation.Field(&r.Surname, validation.NilOrNotEmpty, validation.Length(1, 100), validation.Match(letters)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
	)
}

func (r updateRequest) patch() models.UserPatch {
	return models.UserPatch{Name: r.Name, Surname: r.Surname, Email: r.Email}
}

type userResponse struct {
	ID        uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	IsActive  bool      `json:"is_active"`
	HasAvatar bool      `json:"has_avatar"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		Roles:     u.Roles.Strings(),
		IsActive:  u.IsActive,
		HasAvatar: u.AvatarKey != "",
		CreatedAt: u.CreatedAt,
	}
}

type updatedResponse struct {
	UpdatedUserID uuid.UUID `json:"updated_user_id"`
	Message       string    `json:"message"`
}

type userIDResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Message string    `json:"message"`
}

type avatarUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type avatarResponse struct {
	URL string `json:"url"`
}
