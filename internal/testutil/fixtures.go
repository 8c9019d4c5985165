package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/evan/item-vault/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email       string
	password    string
	fullName    *string
	isActive    bool
	isSuperuser bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
		isActive: true,
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithFullName sets the full name
func (b *UserBuilder) WithFullName(name string) *UserBuilder {
	b.fullName = &name
	return b
}

// Inactive marks the user as disabled
func (b *UserBuilder) Inactive() *UserBuilder {
	b.isActive = false
	return b
}

// Superuser marks the user as a superuser
func (b *UserBuilder) Superuser() *UserBuilder {
	b.isSuperuser = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:             uuid.New(),
		Email:          b.email,
		HashedPassword: string(hashedPassword),
		IsActive:       b.isActive,
		IsSuperuser:    b.isSuperuser,
		FullName:       b.fullName,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// ItemBuilder creates test items with a builder pattern
type ItemBuilder struct {
	owner       *domain.User
	title       string
	description *string
}

// NewItemBuilder creates a new ItemBuilder owned by the given user
func NewItemBuilder(owner *domain.User) *ItemBuilder {
	return &ItemBuilder{
		owner: owner,
		title: fmt.Sprintf("item-%s", uuid.New().String()[:8]),
	}
}

// WithTitle sets the title
func (b *ItemBuilder) WithTitle(title string) *ItemBuilder {
	b.title = title
	return b
}

// WithDescription sets the description
func (b *ItemBuilder) WithDescription(description string) *ItemBuilder {
	b.description = &description
	return b
}

// Build creates the item in the database
func (b *ItemBuilder) Build(t *testing.T, db *gorm.DB) *domain.Item {
	t.Helper()

	item := &domain.Item{
		ID:          uuid.New(),
		Title:       b.title,
		Description: b.description,
		OwnerID:     b.owner.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	return item
}

// TokenResponse matches the login response body
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates against the test server and returns the access token
func Login(t *testing.T, ts *TestServer, email, password string) string {
	t.Helper()

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := http.Post(ts.APIURL("/login/access-token"), "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected login status %d: %s", resp.StatusCode, body)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return tokenResp.AccessToken
}

// DoJSON performs an authenticated JSON request against the test server.
// A nil body sends no payload; an empty token sends no Authorization header.
func DoJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
