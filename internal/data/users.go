package data

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aoideee/storegate/internal/validator"
)

// User is a row of the users table.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	NormalizedEmail string    `json:"-"`
	UserName        string    `json:"user_name"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserInput is the body accepted when creating or editing a user. ID is only
// read by the edit endpoint.
type UserInput struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	UserName    string `json:"user_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// ValidateUser checks the fields of in.
func ValidateUser(v *validator.Validator, in UserInput) {
	v.Check(validator.NotBlank(in.Email), "email", "must be provided")
	v.Check(validator.Matches(in.Email, validator.EmailRX), "email", "must be a valid email address")
	v.Check(validator.NotBlank(in.UserName), "user_name", "must be provided")
}

// Apply copies the input fields onto u and renormalises the email.
func (in UserInput) Apply(u *User) {
	u.Email = in.Email
	u.NormalizedEmail = NormalizeEmail(in.Email)
	u.UserName = in.UserName
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.PhoneNumber = in.PhoneNumber
}

// NormalizeEmail returns the form used for case-insensitive email matching.
func NormalizeEmail(email string) string {
	return strings.ToUpper(strings.TrimSpace(email))
}

// likeEscaper escapes LIKE wildcards so the pattern matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const userColumns = `id, email, normalized_email, user_name, first_name, last_name, phone_number, created_at, updated_at`

// UserModel reads and writes the users table.
type UserModel struct {
	DB *sql.DB
}

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.NormalizedEmail,
		&u.UserName,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAll returns every user, oldest first.
func (m UserModel) GetAll(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns the user with the given id.
func (m UserModel) Get(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(m.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

// FindByEmail returns the first user whose normalised email contains email,
// ignoring case.
func (m UserModel) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE normalized_email LIKE '%' || $1 || '%'
		ORDER BY created_at, id
		LIMIT 1`

	pattern := likeEscaper.Replace(NormalizeEmail(email))
	u, err := scanUser(m.DB.QueryRowContext(ctx, query, pattern))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

// Insert stores user, generating an id when it has none, and fills in the
// timestamps.
func (m UserModel) Insert(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.NormalizedEmail = NormalizeEmail(user.Email)

	query := `
		INSERT INTO users (id, email, normalized_email, user_name, first_name, last_name, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := m.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.NormalizedEmail,
		user.UserName,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	return translateError(err)
}

// Update writes user back and refreshes its updated_at.
func (m UserModel) Update(ctx context.Context, user *User) error {
	user.NormalizedEmail = NormalizeEmail(user.Email)

	query := `
		UPDATE users
		SET email = $1, normalized_email = $2, user_name = $3, first_name = $4,
		    last_name = $5, phone_number = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
		RETURNING created_at, updated_at`

	args := []any{
		user.Email,
		user.NormalizedEmail,
		user.UserName,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.ID,
	}

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translateError(err)
}

// Delete removes the user with the given id.
func (m UserModel) Delete(ctx context.Context, id string) error {
	result, err := m.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
