package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajidhasan/farmcart-backend/pkg/db/models"
	"github.com/sajidhasan/farmcart-backend/pkg/enums"
)

// RegisterRequest is the payload for customer signup.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=7,max=20"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
}

// LoginRequest is the payload for customer login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CustomerSummary is the customer shape returned to clients.
type CustomerSummary struct {
	ID        uuid.UUID          `json:"id"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Role      enums.CustomerRole `json:"role"`
	Locale    string             `json:"locale"`
	CreatedAt time.Time          `json:"created_at"`
}

// LoginResponse carries the issued tokens plus the customer profile.
type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Customer     CustomerSummary `json:"customer"`
}

// FromModel maps a customer model to its API shape.
func FromModel(customer *models.Customer) CustomerSummary {
	return CustomerSummary{
		ID:        customer.ID,
		Email:     customer.Email,
		Phone:     customer.Phone,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Role:      customer.Role,
		Locale:    customer.Locale,
		CreatedAt: customer.CreatedAt,
	}
}
