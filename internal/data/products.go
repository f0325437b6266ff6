package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aoideee/storegate/internal/validator"
)

// Product is a row of the products table.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductInput is the body accepted when creating or replacing a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// ValidateProduct checks the fields of in.
func ValidateProduct(v *validator.Validator, in ProductInput) {
	v.Check(validator.NotBlank(in.Name), "name", "must be provided")
	v.Check(len(in.Name) <= 200, "name", "must not be more than 200 bytes long")
	v.Check(in.Price >= 0, "price", "must not be negative")
	v.Check(in.Stock >= 0, "stock", "must not be negative")
}

// ProductSortSafeList lists the accepted values of the sort parameter.
var ProductSortSafeList = []string{"id", "name", "price", "stock", "-id", "-name", "-price", "-stock"}

// ProductModel reads and writes the products table.
type ProductModel struct {
	DB *sql.DB
}

// Insert stores product and fills in its id and timestamps.
func (m ProductModel) Insert(ctx context.Context, product *Product) error {
	query := `
		INSERT INTO products (name, description, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := m.DB.QueryRowContext(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	return translateError(err)
}

// Get returns the product with the given id.
func (m ProductModel) Get(ctx context.Context, id int64) (*Product, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, name, description, price, stock, created_at, updated_at
		FROM products
		WHERE id = $1`

	var product Product
	err := m.DB.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// GetAll returns one page of products. COUNT(*) OVER() yields the total in
// the same round trip.
func (m ProductModel) GetAll(ctx context.Context, filters Filters) ([]*Product, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, name, description, price, stock, created_at, updated_at
		FROM products
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	products := []*Product{}

	for rows.Next() {
		var product Product
		err := rows.Scan(
			&totalRecords,
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Stock,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		products = append(products, &product)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return products, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Update writes product back and refreshes its updated_at.
func (m ProductModel) Update(ctx context.Context, product *Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING created_at, updated_at`

	args := []any{
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.ID,
	}

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&product.CreatedAt, &product.UpdatedAt)
	return translateError(err)
}

// Delete removes the product with the given id.
func (m ProductModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
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
