// cmd/mdb/handlers.go
// This file contains the document handlers. Each one is built for a single
// collection name and talks to Redis through data.DocumentModel.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/storegate/internal/data"
	"github.com/aoideee/storegate/internal/web"
)

// plural names the envelope key of a listing, e.g. "orders".
func plural(collection string) string {
	return collection + "s"
}

// listDocumentsHandler handles GET /<collection>.
func (app *applicationDependencies) listDocumentsHandler(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := app.documents.GetAll(r.Context(), collection)
		if err != nil {
			app.ServerErrorResponse(w, r, err)
			return
		}

		err = web.WriteJSON(w, http.StatusOK, web.Success(plural(collection), docs), nil)
		if err != nil {
			app.ServerErrorResponse(w, r, err)
		}
	}
}

// showDocumentHandler handles GET /<collection>/:id.
func (app *applicationDependencies) showDocumentHandler(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := app.documents.Get(r.Context(), collection, web.Param(r, "id"))
		if err != nil {
			app.documentError(w, r, collection, err)
			return
		}

		err = web.WriteJSON(w, http.StatusOK, web.Success(collection, doc), nil)
		if err != nil {
			app.ServerErrorResponse(w, r, err)
		}
	}
}

// createDocumentHandler handles POST /<collection>.
func (app *applicationDependencies) createDocumentHandler(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc data.Document
		if err := web.ReadJSON(w, r, &doc); err != nil {
			app.FailureResponse(w, r, err.Error())
			return
		}
		// A literal null decodes to a nil map.
		if doc == nil {
			app.FailureResponse(w, r, "body must be a JSON object")
			return
		}

		// Insert fills in a uuid when the body carries no id.
		err := app.documents.Insert(r.Context(), collection, doc)
		if err != nil {
			app.documentError(w, r, collection, err)
			return
		}

		headers := make(http.Header)
		headers.Set("Location", fmt.Sprintf("/%s/%s", collection, doc.ID()))

		err = web.WriteJSON(w, http.StatusCreated, web.Success(collection, doc), headers)
		if err != nil {
			app.ServerErrorResponse(w, r, err)
		}
	}
}

// updateDocumentHandler handles PUT /<collection>/:id.
func (app *applicationDependencies) updateDocumentHandler(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc data.Document
		if err := web.ReadJSON(w, r, &doc); err != nil {
			app.FailureResponse(w, r, err.Error())
			return
		}
		if doc == nil {
			app.FailureResponse(w, r, "body must be a JSON object")
			return
		}

		err := app.documents.Update(r.Context(), collection, web.Param(r, "id"), doc)
		if err != nil {
			app.documentError(w, r, collection, err)
			return
		}

		err = web.WriteJSON(w, http.StatusOK, web.Success(collection, doc), nil)
		if err != nil {
			app.ServerErrorResponse(w, r, err)
		}
	}
}

// deleteDocumentHandler handles DELETE /<collection>/:id.
func (app *applicationDependencies) deleteDocumentHandler(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.documents.Delete(r.Context(), collection, web.Param(r, "id"))
		if err != nil {
			app.documentError(w, r, collection, err)
			return
		}

		message := collection + " successfully deleted"
		err = web.WriteJSON(w, http.StatusOK, web.Success("message", message), nil)
		if err != nil {
			app.ServerErrorResponse(w, r, err)
		}
	}
}

// documentError maps storage errors onto the failure envelope. Anything it
// does not recognise is an internal fault and answers 500.
func (app *applicationDependencies) documentError(w http.ResponseWriter, r *http.Request, collection string, err error) {
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		app.FailureResponse(w, r, fmt.Sprintf("There is no %s with this id", collection))
	case errors.Is(err, data.ErrDuplicateRecord):
		app.FailureResponse(w, r, fmt.Sprintf("a %s with this id already exists", collection))
	case errors.Is(err, data.ErrInvalidDocumentID):
		app.FailureResponse(w, r, "id must be a string or number")
	default:
		app.ServerErrorResponse(w, r, err)
	}
}
