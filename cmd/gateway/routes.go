// cmd/gateway/routes.go
// This file registers every gateway endpoint on the router and wraps the
// router in the middleware chain.
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/storegate/internal/gateway"
)

// routes registers every endpoint and wraps the router in middleware.
//
// Middleware chain (outermost → innermost):
//
//	RecoverPanic → RequestID → LogRequests → RateLimit → router
//
// For each resource r in gateway.Routes:
//
//	GET    /api/r       – list
//	GET    /api/r/:id   – single item
//	POST   /api/r       – create
//	PUT    /api/r/:id   – update
//	DELETE /api/r/:id   – delete
//
// plus GET /api, GET /api/user/email/:email, POST /api/user/edit and
// GET /metrics.
func (app *applicationDependencies) routes() http.Handler {
	// Initialize a new httprouter router instance.
	router := httprouter.New()

	// Use the JSON error helpers for unmatched routes and methods.
	router.NotFound = http.HandlerFunc(app.NotFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.MethodNotAllowedResponse)

	// Liveness endpoint.
	router.HandlerFunc(http.MethodGet, "/api", app.statusHandler)

	// CRUD endpoints, one set per entry of the routing table.

	for _, route := range gateway.Routes {
		base := "/api/" + route.Resource
		router.HandlerFunc(http.MethodGet, base, app.listHandler(route))
		router.HandlerFunc(http.MethodGet, base+"/:id", app.showHandler(route))
		router.HandlerFunc(http.MethodPost, base, app.createHandler(route))
		router.HandlerFunc(http.MethodPut, base+"/:id", app.updateHandler(route))
		router.HandlerFunc(http.MethodDelete, base+"/:id", app.deleteHandler(route))
	}

	// httprouter cannot hold a static "email" segment beside ":id", so user
	// lookups share the :id position and take the value as a catch-all.
	users, _ := gateway.Lookup("user")
	router.HandlerFunc(http.MethodGet, "/api/user/:id/*value", app.userLookupHandler(users))
	router.HandlerFunc(http.MethodPost, "/api/user/edit", app.editUserHandler(users))

	// Prometheus exposition of the dispatch metrics.
	router.Handler(http.MethodGet, "/metrics", app.metrics)

	// Wrap the router so every request passes through the middleware chain.

	return app.RecoverPanic(app.RequestID(app.LogRequests(app.RateLimit(app.config.Limiter, router))))
}
