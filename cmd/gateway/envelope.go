// cmd/gateway/envelope.go
// This file contains the response policy of the gateway. Every dispatched
// request is answered with 200 and the backend body relayed byte for byte;
// whether the backend succeeded is carried only in that body. The backend's
// own status is exposed in BackendStatusHeader so the two layers can be told
// apart. Internal faults (unknown backend, unencodable payload) are the
// exception and return 500.
package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aoideee/storegate/internal/gateway"
)

// BackendStatusHeader carries the backend's HTTP status code.
const BackendStatusHeader = "X-Backend-Status"

// backendUnavailableMessage is the only text a client sees when a backend
// cannot be reached.
const backendUnavailableMessage = "the backend service is unavailable"

// respond relays res, or reports err if the dispatch failed.
func (app *applicationDependencies) respond(w http.ResponseWriter, r *http.Request, res *gateway.Result, err error) {
	if err != nil {
		app.dispatchFailure(w, r, err)
		return
	}
	app.relay(w, res)
}

// relay writes the backend body unchanged under an outer 200.
func (app *applicationDependencies) relay(w http.ResponseWriter, res *gateway.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(BackendStatusHeader, strconv.Itoa(res.StatusCode))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(res.Body))
}

// dispatchFailure maps a gateway error onto the response policy. Only the
// client-safe message of the error leaves the process.
func (app *applicationDependencies) dispatchFailure(w http.ResponseWriter, r *http.Request, err error) {
	// Anything that is not a *gateway.Error is an unexpected fault.
	var gerr *gateway.Error
	if !errors.As(err, &gerr) {
		app.ServerErrorResponse(w, r, err)
		return
	}

	switch gerr.Kind {
	case gateway.KindValidation:
		// Local validation: 200 with the validation message.
		app.FailureResponse(w, r, gerr.Message)
	case gateway.KindTransport:
		// Backend unreachable: log the cause, send a fixed message.
		app.LogError(r, err)
		app.FailureResponse(w, r, backendUnavailableMessage)
	default:
		// Unknown backend or encoding failure: logged, generic 500.
		app.ServerErrorResponse(w, r, err)
	}
}
