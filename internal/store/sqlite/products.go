package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/vinodjarare/shopgraph/internal/models"
)

const productSelect = `
	SELECT p.id, p.name, p.price, p.quantity, p.owner_id, p.created_at, p.updated_at,
	       u.id, u.address, u.email, u.created_at, u.updated_at
	FROM products p
	JOIN users u ON u.id = p.owner_id`

// scanProduct scans a product row joined with its owner.
func scanProduct(scanner interface{ Scan(...interface{}) error }) (models.Product, error) {
	var p models.Product
	var owner models.User
	var createdAt, updatedAt, ownerCreatedAt, ownerUpdatedAt string

	err := scanner.Scan(
		&p.ID, &p.Name, &p.Price, &p.Quantity, &p.OwnerID, &createdAt, &updatedAt,
		&owner.ID, &owner.Address, &owner.Email, &ownerCreatedAt, &ownerUpdatedAt,
	)
	if err != nil {
		return models.Product{}, err
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Product{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Product{}, err
	}
	if owner.CreatedAt, err = parseTime(ownerCreatedAt); err != nil {
		return models.Product{}, err
	}
	if owner.UpdatedAt, err = parseTime(ownerUpdatedAt); err != nil {
		return models.Product{}, err
	}
	p.Owner = &owner
	return p, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateProduct inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	now := s.timestamp()
	product.ID = uuid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO products(id, name, price, quantity, owner_id, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		product.ID, product.Name, product.Price, product.Quantity, product.OwnerID, formatTime(now), formatTime(now))
	return mapError(err, "product "+product.Name)
}

// UpdateProduct overwrites the writable fields of an existing product.
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET name = ?, price = ?, quantity = ?, updated_at = ? WHERE id = ?",
		product.Name, product.Price, product.Quantity, formatTime(now), product.ID)
	if err != nil {
		return mapError(err, "product "+product.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapError(sql.ErrNoRows, "product with ID "+product.ID)
	}
	product.UpdatedAt = now
	return nil
}

// GetProductByID retrieves a single product by its ID.
func (s *Store) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, productSelect+" WHERE p.id = ?", id))
	return p, mapError(err, "product with ID "+id)
}

// GetProductByName retrieves a single product by its (lower-cased) name.
func (s *Store) GetProductByName(ctx context.Context, name string) (models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, productSelect+" WHERE p.name = ?", name))
	return p, mapError(err, "product "+name)
}

// CountProducts returns the number of products.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

// ListProductsByOwner returns every product owned by ownerID.
func (s *Store) ListProductsByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	return s.queryProducts(ctx, productSelect+" WHERE p.owner_id = ? ORDER BY p.created_at, p.rowid", ownerID)
}

// SearchProducts returns one page of name matches, newest first, and the total match count.
func (s *Store) SearchProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, int, error) {
	pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products p JOIN users u ON u.id = p.owner_id WHERE p.name LIKE ? ESCAPE '\'`,
		pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	products, err := s.queryProducts(ctx,
		productSelect+` WHERE p.name LIKE ? ESCAPE '\' ORDER BY p.created_at DESC, p.rowid DESC LIMIT ? OFFSET ?`,
		pattern, q.Limit, q.Skip())
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
