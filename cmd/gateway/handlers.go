// cmd/gateway/handlers.go
// This file contains the HTTP handlers of the gateway. Each handler maps an
// inbound request onto a backend call through the dispatcher and relays the
// answer with respond(). Handlers are built per gateway.Route so the same code
// serves user, product, order and post.
package main

import (
	"encoding/json"
	"net/http"

	"github.com/aoideee/storegate/internal/gateway"
	"github.com/aoideee/storegate/internal/validator"
	"github.com/aoideee/storegate/internal/web"
)

// statusHandler handles GET /api and reports that the gateway is up.
func (app *applicationDependencies) statusHandler(w http.ResponseWriter, r *http.Request) {
	err := web.WriteJSON(w, http.StatusOK, web.Envelope{"response": http.StatusOK}, nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// listHandler handles GET /api/<resource>.
func (app *applicationDependencies) listHandler(route gateway.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := app.dispatcher.Get(r.Context(), route.Backend, route.Resource)
		app.respond(w, r, res, err)
	}
}

// showHandler handles GET /api/<resource>/:id.
func (app *applicationDependencies) showHandler(route gateway.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Reject a bad id here; the backend is never contacted for it.
		id, err := app.readID(r, route)
		if err != nil {
			app.dispatchFailure(w, r, err)
			return
		}

		res, err := app.dispatcher.Get(r.Context(), route.Backend, route.Resource, id)
		app.respond(w, r, res, err)
	}
}

// createHandler handles POST /api/<resource>. The body must be exactly one
// JSON value; its shape belongs to the backend.
func (app *applicationDependencies) createHandler(route gateway.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := app.readPayload(w, r)
		if !ok {
			return
		}

		res, err := app.dispatcher.Post(r.Context(), route.Backend, route.Resource, payload)
		app.respond(w, r, res, err)
	}
}

// updateHandler handles PUT /api/<resource>/:id.
func (app *applicationDependencies) updateHandler(route gateway.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := app.readID(r, route)
		if err != nil {
			app.dispatchFailure(w, r, err)
			return
		}

		payload, ok := app.readPayload(w, r)
		if !ok {
			return
		}

		res, err := app.dispatcher.Put(r.Context(), route.Backend, route.Resource, payload, id)
		app.respond(w, r, res, err)
	}
}

// deleteHandler handles DELETE /api/<resource>/:id.
func (app *applicationDependencies) deleteHandler(route gateway.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := app.readID(r, route)
		if err != nil {
			app.dispatchFailure(w, r, err)
			return
		}

		res, err := app.dispatcher.Delete(r.Context(), route.Backend, route.Resource, id)
		app.respond(w, r, res, err)
	}
}

// userLookupHandler handles GET /api/user/email/:email. An empty email is
// rejected here without contacting the backend.
func (app *applicationDependencies) userLookupHandler(route gateway.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The route is /api/user/:id/*value; only the "email" sub-path exists.
		if web.Param(r, "id") != "email" {
			app.NotFoundResponse(w, r)
			return
		}

		email := web.Param(r, "value")
		if !validator.NotBlank(email) {
			app.dispatchFailure(w, r, gateway.NewValidationError("Email field is empty"))
			return
		}

		res, err := app.dispatcher.Get(r.Context(), route.Backend, route.Resource, "email", email)
		app.respond(w, r, res, err)
	}
}

// editUserHandler handles POST /api/user/edit. The body must carry the id of
// the user being edited.
func (app *applicationDependencies) editUserHandler(route gateway.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A map is needed here to look at "id"; a JSON null decodes to a nil
		// map and fails the id check below.
		var payload map[string]any
		if err := web.ReadJSON(w, r, &payload); err != nil {
			app.FailureResponse(w, r, err.Error())
			return
		}

		id, _ := payload["id"].(string)
		if !validator.NotBlank(id) {
			app.dispatchFailure(w, r, gateway.NewValidationError("Id field is empty"))
			return
		}

		res, err := app.dispatcher.Post(r.Context(), route.Backend, route.Resource+"/edit", payload)
		app.respond(w, r, res, err)
	}
}

// readPayload decodes the request body as a single raw JSON value. The raw
// bytes are forwarded as-is, so a literal null is still sent as a JSON body.
// On failure the failure envelope has already been written and ok is false.
func (app *applicationDependencies) readPayload(w http.ResponseWriter, r *http.Request) (payload json.RawMessage, ok bool) {
	if err := web.ReadJSON(w, r, &payload); err != nil {
		app.FailureResponse(w, r, err.Error())
		return nil, false
	}
	return payload, true
}

// readID returns the :id segment, as an integer for numerically keyed
// resources.
func (app *applicationDependencies) readID(r *http.Request, route gateway.Route) (any, error) {
	if route.NumericID {
		id, err := web.ReadIDParam(r)
		if err != nil {
			return nil, gateway.NewValidationError(err.Error())
		}
		return id, nil
	}

	id := web.Param(r, "id")
	if !validator.NotBlank(id) {
		return nil, gateway.NewValidationError("Id field is empty")
	}
	return id, nil
}
