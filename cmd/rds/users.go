// cmd/rds/users.go
// This file contains the user handlers. Logical misses answer 200 with a
// failure envelope. Storage faults answer 500, except on the edit path,
// which reports them as a failure envelope.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/storegate/internal/data"
	"github.com/aoideee/storegate/internal/validator"
	"github.com/aoideee/storegate/internal/web"
)

// listUsersHandler handles GET /user. An empty table is reported as a
// failure, matching what clients of the gateway expect.
func (app *applicationDependencies) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.models.Users.GetAll(r.Context())
	if err != nil {
		app.ServerErrorResponse(w, r, err)
		return
	}
	if len(users) == 0 {
		app.FailureResponse(w, r, "User list is empty")
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("users", users), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// showUserHandler handles GET /user/:id.
func (app *applicationDependencies) showUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.models.Users.Get(r.Context(), web.Param(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.FailureResponse(w, r, "There is no user with this id")
		default:
			app.ServerErrorResponse(w, r, err)
		}
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("user", user), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// findUserHandler handles GET /user/email/:email.
func (app *applicationDependencies) findUserHandler(w http.ResponseWriter, r *http.Request) {
	if web.Param(r, "id") != "email" {
		app.NotFoundResponse(w, r)
		return
	}

	email := web.Param(r, "value")
	if !validator.NotBlank(email) {
		app.FailureResponse(w, r, "Email field is empty")
		return
	}

	user, err := app.models.Users.FindByEmail(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.FailureResponse(w, r, "There is no user with this email")
		default:
			app.ServerErrorResponse(w, r, err)
		}
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("user", user), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// createUserHandler handles POST /user.
func (app *applicationDependencies) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var input data.UserInput
	if err := web.ReadJSON(w, r, &input); err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}

	v := validator.New()
	if data.ValidateUser(v, input); !v.Valid() {
		app.FailedValidationResponse(w, r, v.Errors)
		return
	}

	user := &data.User{ID: input.ID}
	input.Apply(user)

	err := app.models.Users.Insert(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateRecord):
			app.FailureResponse(w, r, "a user with this email or id already exists")
		default:
			app.ServerErrorResponse(w, r, err)
		}
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/user/%s", user.ID))

	err = web.WriteJSON(w, http.StatusCreated, web.Success("user", user), headers)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// updateUserHandler handles PUT /user/:id.
func (app *applicationDependencies) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var input data.UserInput
	if err := web.ReadJSON(w, r, &input); err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}

	app.saveUser(w, r, web.Param(r, "id"), input)
}

// editUserHandler handles POST /user/edit, where the user is named by the
// id inside the body.
func (app *applicationDependencies) editUserHandler(w http.ResponseWriter, r *http.Request) {
	var input data.UserInput
	if err := web.ReadJSON(w, r, &input); err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}
	if !validator.NotBlank(input.ID) {
		app.FailureResponse(w, r, "Id field is empty")
		return
	}

	app.saveUser(w, r, input.ID, input)
}

// saveUser applies input to the stored user id. Storage failures are logged
// and answered with a generic message; their text never reaches the client.
func (app *applicationDependencies) saveUser(w http.ResponseWriter, r *http.Request, id string, input data.UserInput) {
	v := validator.New()
	if data.ValidateUser(v, input); !v.Valid() {
		app.FailedValidationResponse(w, r, v.Errors)
		return
	}

	user, err := app.models.Users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			app.FailureResponse(w, r, "There is no user with this id")
			return
		}
		app.LogError(r, err)
		app.FailureResponse(w, r, "user could not be updated")
		return
	}

	input.Apply(user)

	err = app.models.Users.Update(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.FailureResponse(w, r, "There is no user with this id")
		case errors.Is(err, data.ErrDuplicateRecord):
			app.FailureResponse(w, r, "a user with this email already exists")
		default:
			app.LogError(r, err)
			app.FailureResponse(w, r, "user could not be updated")
		}
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("user", user), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// deleteUserHandler handles DELETE /user/:id.
func (app *applicationDependencies) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	err := app.models.Users.Delete(r.Context(), web.Param(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.FailureResponse(w, r, "There is no user with this id")
		default:
			app.ServerErrorResponse(w, r, err)
		}
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("message", "user successfully deleted"), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}
