package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/storegate/internal/data"
	"github.com/aoideee/storegate/internal/web"
)

var userColumns = []string{
	"id", "email", "normalized_email", "user_name", "first_name", "last_name", "phone_number", "created_at", "updated_at",
}

func newTestApp(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := &applicationDependencies{
		Responder: &web.Responder{Logger: logger},
		logger:    logger,
		models:    data.NewModels(db),
	}
	return app.routes(), mock
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, rdr))

	var env map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func failure(msg string) map[string]any {
	return map[string]any{"error": msg, "success": false}
}

func TestUsers_EmptyList(t *testing.T) {
	h, mock := newTestApp(t)
	mock.ExpectQuery(`FROM users`).WillReturnRows(sqlmock.NewRows(userColumns))

	rr, env := do(t, h, http.MethodGet, "/user", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, failure("User list is empty"), env)
}

func TestUsers_List(t *testing.T) {
	h, mock := newTestApp(t)
	now := time.Now()
	mock.ExpectQuery(`FROM users`).WillReturnRows(sqlmock.NewRows(userColumns).
		AddRow("u1", "ann@example.com", "ANN@EXAMPLE.COM", "ann", "", "", "", now, now))

	_, env := do(t, h, http.MethodGet, "/user", "")
	assert.Equal(t, true, env["success"])

	users := env["users"].([]any)
	require.Len(t, users, 1)
	user := users[0].(map[string]any)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.NotContains(t, user, "normalized_email")
}

func TestUsers_FindByEmail(t *testing.T) {
	h, mock := newTestApp(t)
	now := time.Now()

	mock.ExpectQuery(`normalized_email LIKE`).
		WithArgs("ANN@EXAMPLE.COM").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "ann@example.com", "ANN@EXAMPLE.COM", "ann", "", "", "", now, now))
	mock.ExpectQuery(`normalized_email LIKE`).
		WithArgs("NOBODY").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, env := do(t, h, http.MethodGet, "/user/email/ann@example.com", "")
	assert.Equal(t, "u1", env["user"].(map[string]any)["id"])

	_, env = do(t, h, http.MethodGet, "/user/email/nobody", "")
	assert.Equal(t, failure("There is no user with this email"), env)

	_, env = do(t, h, http.MethodGet, "/user/email/", "")
	assert.Equal(t, failure("Email field is empty"), env)

	rr, _ := do(t, h, http.MethodGet, "/user/u1/orders", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUsers_Create(t *testing.T) {
	h, mock := newTestApp(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "ann@example.com", "ANN@EXAMPLE.COM", "ann", "", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	rr, env := do(t, h, http.MethodPost, "/user", `{"id":"u1","email":"ann@example.com","user_name":"ann"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/user/u1", rr.Header().Get("Location"))
	assert.Equal(t, true, env["success"])
}

func TestUsers_CreateInvalid(t *testing.T) {
	h, _ := newTestApp(t)

	rr, env := do(t, h, http.MethodPost, "/user", `{"email":"nope"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{
		"error": map[string]any{
			"email":     "must be a valid email address",
			"user_name": "must be provided",
		},
		"success": false,
	}, env)
}

func TestUsers_Edit(t *testing.T) {
	h, mock := newTestApp(t)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "ann@example.com", "ANN@EXAMPLE.COM", "ann", "", "", "", now, now))
	mock.ExpectQuery(`UPDATE users`).
		WithArgs("new@example.com", "NEW@EXAMPLE.COM", "annie", "", "", "", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	rr, env := do(t, h, http.MethodPost, "/user/edit", `{"id":"u1","email":"new@example.com","user_name":"annie"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "new@example.com", env["user"].(map[string]any)["email"])
}

func TestUsers_EditFailures(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		h, _ := newTestApp(t)
		_, env := do(t, h, http.MethodPost, "/user/edit", `{"email":"a@b.co","user_name":"a"}`)
		assert.Equal(t, failure("Id field is empty"), env)
	})

	t.Run("unknown user", func(t *testing.T) {
		h, mock := newTestApp(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("u9").WillReturnRows(sqlmock.NewRows(userColumns))

		_, env := do(t, h, http.MethodPost, "/user/edit", `{"id":"u9","email":"a@b.co","user_name":"a"}`)
		assert.Equal(t, failure("There is no user with this id"), env)
	})

	t.Run("storage error stays internal", func(t *testing.T) {
		h, mock := newTestApp(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs("u1").
			WillReturnError(errors.New(`pq: relation "users" does not exist`))

		rr, env := do(t, h, http.MethodPost, "/user/edit", `{"id":"u1","email":"a@b.co","user_name":"a"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, failure("user could not be updated"), env)
		assert.NotContains(t, rr.Body.String(), "relation")
	})
}

func TestUsers_Delete(t *testing.T) {
	h, mock := newTestApp(t)
	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	_, env := do(t, h, http.MethodDelete, "/user/u1", "")
	assert.Equal(t, "user successfully deleted", env["message"])

	_, env = do(t, h, http.MethodDelete, "/user/u1", "")
	assert.Equal(t, failure("There is no user with this id"), env)
}

func TestProducts_ListValidation(t *testing.T) {
	h, _ := newTestApp(t)

	rr, env := do(t, h, http.MethodGet, "/product?page=0&page_size=500&sort=colour", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{
		"error": map[string]any{
			"page":      "must be between 1 and 10 million",
			"page_size": "must be between 1 and 100",
			"sort":      "invalid sort value",
		},
		"success": false,
	}, env)
}

func TestProducts_CreateAndShow(t *testing.T) {
	h, mock := newTestApp(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("lamp", "", 12.5, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))
	mock.ExpectQuery(`FROM products\s+WHERE id = \$1`).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "created_at", "updated_at"}))

	rr, env := do(t, h, http.MethodPost, "/product", `{"name":"lamp","price":12.5,"stock":3}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/product/7", rr.Header().Get("Location"))
	assert.Equal(t, float64(7), env["product"].(map[string]any)["id"])

	_, env = do(t, h, http.MethodGet, "/product/8", "")
	assert.Equal(t, failure("There is no product with this id"), env)

	_, env = do(t, h, http.MethodGet, "/product/abc", "")
	assert.Equal(t, failure("invalid id parameter"), env)
}
