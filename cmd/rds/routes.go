// cmd/rds/routes.go
// This file contains the RDS router: users and products over Postgres.
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers the RDS endpoints. Paths are relative to the base address
// the gateway is configured with.
//
//	GET    /user               – list users
//	GET    /user/:id           – user by id
//	GET    /user/email/:email  – first user whose email contains :email
//	POST   /user               – create a user
//	POST   /user/edit          – edit the user named by the body's id
//	PUT    /user/:id           – replace a user
//	DELETE /user/:id           – delete a user
//	GET    /product            – list products (paginated)
//	GET    /product/:id        – product by id
//	POST   /product            – create a product
//	PUT    /product/:id        – replace a product
//	DELETE /product/:id        – delete a product
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// JSON bodies for unknown paths and wrong methods.
	router.NotFound = http.HandlerFunc(app.NotFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.MethodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/user", app.listUsersHandler)
	router.HandlerFunc(http.MethodGet, "/user/:id", app.showUserHandler)
	// httprouter cannot hold a static "email" segment next to :id, so the
	// lookup is a catch-all under :id and the handler checks for "email".
	router.HandlerFunc(http.MethodGet, "/user/:id/*value", app.findUserHandler)
	router.HandlerFunc(http.MethodPost, "/user", app.createUserHandler)
	router.HandlerFunc(http.MethodPost, "/user/edit", app.editUserHandler)
	router.HandlerFunc(http.MethodPut, "/user/:id", app.updateUserHandler)
	router.HandlerFunc(http.MethodDelete, "/user/:id", app.deleteUserHandler)

	router.HandlerFunc(http.MethodGet, "/product", app.listProductsHandler)
	router.HandlerFunc(http.MethodGet, "/product/:id", app.showProductHandler)
	router.HandlerFunc(http.MethodPost, "/product", app.createProductHandler)
	router.HandlerFunc(http.MethodPut, "/product/:id", app.updateProductHandler)
	router.HandlerFunc(http.MethodDelete, "/product/:id", app.deleteProductHandler)

	// Outermost first: panics, request ids, then access logs.
	return app.RecoverPanic(app.RequestID(app.LogRequests(router)))
}
