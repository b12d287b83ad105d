package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// FreeSignupCredits is the credit allotment granted to every new account.
const FreeSignupCredits = 10

type User struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Name             string `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email            string `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password         string `gorm:"type:text" json:"-"`
	Role             string `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status           string `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	Credits          int64  `gorm:"not null;default:0" json:"credits"`
	StripeCustomerID string `gorm:"type:varchar(191);default:null;index" json:"-"`

	// Subscription state mirrored from the payment provider. Cleared on
	// customer.subscription.deleted, never touched by one-time purchases.
	SubscriptionID     string     `gorm:"type:varchar(191);default:null;index" json:"-"`
	SubscriptionStatus string     `gorm:"type:varchar(32);default:null" json:"subscription_status,omitempty"`
	SubscriptionPlan   string     `gorm:"type:varchar(50);default:null" json:"subscription_plan,omitempty"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`

	LastLoginAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a new active user with the free credit allotment.
// OAuth sign-ins pass an empty password; those accounts can only log in
// through their provider.
func CreateUser(username string, email string, password string) (*User, error) {
	u := &User{
		Name:    username,
		Email:   email,
		Role:    ROLE_USER,
		Status:  STATUS_ACTIVE,
		Credits: FreeSignupCredits,
	}

	if password != "" {
		pw, err := HashPassword(password)
		if err != nil {
			return nil, err
		}
		u.Password = pw
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// HasActiveSubscription reports whether the user currently holds an
// entitling subscription status.
func (u *User) HasActiveSubscription() bool {
	switch u.SubscriptionStatus {
	case "active", "trialing", "past_due":
		return true
	default:
		return false
	}
}
