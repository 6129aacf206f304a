package entity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	userNameMinLen = 1
	userNameMaxLen = 100
	ageMin         = 0
	ageMax         = 150
)

// NormalizeUserName validates a display name and returns its trimmed
// form. Length limits count runes, not bytes, so multibyte names are not
// short-changed.
func NormalizeUserName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n < userNameMinLen || n > userNameMaxLen {
		return "", NewValidationError("name must be between %d and %d characters", userNameMinLen, userNameMaxLen)
	}
	return name, nil
}

// NormalizeEmail validates an email address and returns it trimmed and
// lowercased.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		return "", NewValidationError("email %q is not a valid email address", raw)
	}
	return email, nil
}

// ValidateAge checks an optional age; a nil age is always valid.
func ValidateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < ageMin || *age > ageMax {
		return NewValidationError("age must be between %d and %d", ageMin, ageMax)
	}
	return nil
}

// User represents a registered user.
type User struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Email     string         `json:"email" db:"email"`
	Age       *int           `json:"age,omitempty" db:"age"`
	Metadata  map[string]any `json:"metadata" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// NewUser builds a validated user with a generated ID and both timestamps
// set to the current instant.
func NewUser(name, email string, age *int, metadata map[string]any) (*User, error) {
	normalizedName, err := NormalizeUserName(name)
	if err != nil {
		return nil, err
	}
	normalizedEmail, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidateAge(age); err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.NewString(),
		Name:      normalizedName,
		Email:     normalizedEmail,
		Age:       age,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateName replaces the display name after validation.
func (u *User) UpdateName(name string) error {
	normalized, err := NormalizeUserName(name)
	if err != nil {
		return err
	}
	u.Name = normalized
	u.touch()
	return nil
}

// UpdateAge replaces the age; nil clears it.
func (u *User) UpdateAge(age *int) error {
	if err := ValidateAge(age); err != nil {
		return err
	}
	u.Age = age
	u.touch()
	return nil
}

// AddMetadata sets a single metadata key.
func (u *User) AddMetadata(key string, value any) {
	if u.Metadata == nil {
		u.Metadata = map[string]any{}
	}
	u.Metadata[key] = value
	u.touch()
}

// touch advances UpdatedAt, never letting it move backwards.
func (u *User) touch() {
	now := time.Now().UTC()
	if !now.After(u.UpdatedAt) {
		now = u.UpdatedAt.Add(time.Nanosecond)
	}
	u.UpdatedAt = now
}

// ToMap converts the user to its wire shape. Timestamps are RFC3339 with
// nanoseconds so the round trip through UserFromMap is lossless.
func (u *User) ToMap() map[string]any {
	m := map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"metadata":   u.Metadata,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	if u.Age != nil {
		m["age"] = *u.Age
	}
	return m
}

// UserFromMap rebuilds a user from its wire shape.
func UserFromMap(m map[string]any) (*User, error) {
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return nil, NewValidationError("user map is missing id")
	}
	name, _ := m["name"].(string)
	email, _ := m["email"].(string)

	var age *int
	switch v := m["age"].(type) {
	case nil:
	case int:
		age = &v
	case float64:
		n := int(v)
		age = &n
	default:
		return nil, NewValidationError("age must be an integer")
	}

	metadata, _ := m["metadata"].(map[string]any)
	if metadata == nil {
		metadata = map[string]any{}
	}

	createdAt, err := parseMapTime(m, "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseMapTime(m, "updated_at")
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Age:       age,
		Metadata:  metadata,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	return user, nil
}

func parseMapTime(m map[string]any, key string) (time.Time, error) {
	raw, ok := m[key].(string)
	if !ok {
		return time.Time{}, NewValidationError("%s must be an RFC3339 timestamp", key)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, NewValidationError("%s is not a valid timestamp: %v", key, err)
	}
	return t.UTC(), nil
}
