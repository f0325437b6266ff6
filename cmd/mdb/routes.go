// cmd/mdb/routes.go
// This file contains the MDB router. Orders and posts share one set of
// handlers, one route group per collection.
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers, for each collection c:
//
//	GET    /c       – list documents
//	GET    /c/:id   – document by id
//	POST   /c       – create a document
//	PUT    /c/:id   – replace a document
//	DELETE /c/:id   – delete a document
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// JSON bodies for unknown paths and wrong methods.
	router.NotFound = http.HandlerFunc(app.NotFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.MethodNotAllowedResponse)

	for _, c := range collections {
		router.HandlerFunc(http.MethodGet, "/"+c, app.listDocumentsHandler(c))
		router.HandlerFunc(http.MethodGet, "/"+c+"/:id", app.showDocumentHandler(c))
		router.HandlerFunc(http.MethodPost, "/"+c, app.createDocumentHandler(c))
		router.HandlerFunc(http.MethodPut, "/"+c+"/:id", app.updateDocumentHandler(c))
		router.HandlerFunc(http.MethodDelete, "/"+c+"/:id", app.deleteDocumentHandler(c))
	}

	// Outermost first: panics, request ids, then access logs.
	return app.RecoverPanic(app.RequestID(app.LogRequests(router)))
}
