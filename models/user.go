package models

import (
	"context"
	"errors"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:64" json:"tenant_id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"password"`
	Plan      string    `gorm:"size:20" json:"plan"`
	Role      UserRole  `gorm:"type:enum('A', 'C');default:C" json:"role"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	TenantId string   `json:"tenant_id" validate:"required"`
	Username string   `json:"username" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" validate:"required"`
	Plan     string   `json:"plan"`
	Role     UserRole `json:"role"`
}

/*
caches:
	User:$username
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.Username)
}

func (result *User) PrepareGive() {
	result.Password = ""
}

type LoginInfo struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	TenantId string `json:"tenant_id"`
	Plan     string `json:"plan"`
	Role     string `json:"role"`
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var result LoginInfo

	user := User{}

	// get User info
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return &result, err
	}
	if !exists {
		err = db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error
		if err != nil {
			return &result, errors.New("invalid username or password")
		}
	}

	// check login credentials
	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return &result, errors.New("invalid username or password")
	}

	if user.IsActive != nil && !*user.IsActive {
		return &result, errors.New("user is disabled")
	}

	// generate token & response
	token := uuid.New()
	result.Token = token.String()
	result.Name = user.Username
	result.TenantId = user.TenantId
	result.Plan = ParsePlan(user.Plan).Label()
	result.Role = string(user.Role)

	tokenLifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil {
		tokenLifespan = 24
	}

	// add new token to the user's tokens set
	if err := config.AddRedisSet("Tokens:"+user.Username, token.String()); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token.String(), user.Username, time.Duration(tokenLifespan)*time.Hour); err != nil {
		return &result, err
	}

	return &result, nil
}

// Logout destroys the current session token.
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, nil
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

// CreateUser creates a tenant-scoped user. The AfterCreate hook enqueues the
// user-created event that seeds the vehicle inventory snapshot.
func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	var count int64

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Or("email = ?", input.Email).Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate username or email")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	input.Email = strings.ToLower(input.Email)

	role := input.Role
	if role == "" {
		role = UserRoleClient
	}
	plan := ParsePlan(input.Plan)

	user := User{
		Username: html.EscapeString(strings.TrimSpace(input.Username)),
		TenantId: input.TenantId,
		Name:     input.Name,
		Email:    utils.NilIfEmpty(input.Email),
		Phone:    input.Phone,
		Password: string(hashedPassword),
		Plan:     plan.Label(),
		Role:     role,
		IsActive: boolPtr(true),
	}

	err = db.WithContext(ctx).Create(&user).Error
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {

	db := config.GetDB()
	var result User

	err := db.WithContext(ctx).First(&result, id).Error
	if err != nil {
		return &result, utils.ErrorRecordNotFound
	}

	result.PrepareGive()
	return &result, nil
}
