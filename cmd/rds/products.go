// cmd/rds/products.go
// This file contains the product handlers. Product ids are positive integers.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/storegate/internal/data"
	"github.com/aoideee/storegate/internal/validator"
	"github.com/aoideee/storegate/internal/web"
)

// listProductsHandler handles GET /product?page=&page_size=&sort=.
func (app *applicationDependencies) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	filters := data.Filters{
		Page:         web.ReadInt(qs, "page", 1),
		PageSize:     web.ReadInt(qs, "page_size", 20),
		Sort:         web.ReadString(qs, "sort", "id"),
		SortSafeList: data.ProductSortSafeList,
	}

	v := validator.New()
	v.Check(filters.Page > 0 && filters.Page <= 10_000_000, "page", "must be between 1 and 10 million")
	v.Check(filters.PageSize > 0 && filters.PageSize <= 100, "page_size", "must be between 1 and 100")
	v.Check(validator.In(filters.Sort, filters.SortSafeList...), "sort", "invalid sort value")
	if !v.Valid() {
		app.FailedValidationResponse(w, r, v.Errors)
		return
	}

	products, metadata, err := app.models.Products.GetAll(r.Context(), filters)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
		return
	}

	env := web.Success("products", products)
	env["metadata"] = metadata
	err = web.WriteJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// showProductHandler handles GET /product/:id.
func (app *applicationDependencies) showProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r)
	if err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}

	product, err := app.models.Products.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.FailureResponse(w, r, "There is no product with this id")
		default:
			app.ServerErrorResponse(w, r, err)
		}
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("product", product), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// createProductHandler handles POST /product.
func (app *applicationDependencies) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var input data.ProductInput
	if err := web.ReadJSON(w, r, &input); err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}

	v := validator.New()
	if data.ValidateProduct(v, input); !v.Valid() {
		app.FailedValidationResponse(w, r, v.Errors)
		return
	}

	product := &data.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
	}

	err := app.models.Products.Insert(r.Context(), product)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/product/%d", product.ID))

	err = web.WriteJSON(w, http.StatusCreated, web.Success("product", product), headers)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// updateProductHandler handles PUT /product/:id. The body replaces every
// editable field.
func (app *applicationDependencies) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r)
	if err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}

	var input data.ProductInput
	if err := web.ReadJSON(w, r, &input); err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}

	v := validator.New()
	if data.ValidateProduct(v, input); !v.Valid() {
		app.FailedValidationResponse(w, r, v.Errors)
		return
	}

	product := &data.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
	}

	err = app.models.Products.Update(r.Context(), product)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.FailureResponse(w, r, "There is no product with this id")
		default:
			app.ServerErrorResponse(w, r, err)
		}
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("product", product), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}

// deleteProductHandler handles DELETE /product/:id.
func (app *applicationDependencies) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r)
	if err != nil {
		app.FailureResponse(w, r, err.Error())
		return
	}

	err = app.models.Products.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.FailureResponse(w, r, "There is no product with this id")
		default:
			app.ServerErrorResponse(w, r, err)
		}
		return
	}

	err = web.WriteJSON(w, http.StatusOK, web.Success("message", "product successfully deleted"), nil)
	if err != nil {
		app.ServerErrorResponse(w, r, err)
	}
}
