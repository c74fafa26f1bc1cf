package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clothify/shop-api/internal/model"
	"github.com/clothify/shop-api/internal/service"
	"github.com/clothify/shop-api/pkg/database"
)

// ProductRepository provides data access for the catalog: products,
// variants, inventory, colors and sizes.
type ProductRepository struct {
	pool database.TxQuerier
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithQuerier creates a ProductRepository with a custom
// querier. This is primarily used for testing.
func NewProductRepositoryWithQuerier(q database.TxQuerier) *ProductRepository {
	return &ProductRepository{pool: q}
}

// GetAll returns every active product with its variants and inventory.
func (r *ProductRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, sku, description, base_price, category_id, is_active, created_at, updated_at
		 FROM products WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	index := make(map[int64]int)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.BasePrice,
			&p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	if err := r.attachVariants(ctx, products, index); err != nil {
		return nil, err
	}
	if err := r.attachInventories(ctx, products, index); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) attachVariants(ctx context.Context, products []model.Product, index map[int64]int) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, sku, price, color_id, size_id
		 FROM product_variants ORDER BY id`)
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.ColorID, &v.SizeID); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate variants: %w", err)
	}
	return nil
}

func (r *ProductRepository) attachInventories(ctx context.Context, products []model.Product, index map[int64]int) error {
	rows, err := r.pool.Query(ctx,
		`SELECT i.id, i.variant_id, i.quantity, v.product_id
		 FROM inventories i JOIN product_variants v ON v.id = i.variant_id`)
	if err != nil {
		return fmt.Errorf("list inventories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var inv model.Inventory
		var productID int64
		if err := rows.Scan(&inv.ID, &inv.VariantID, &inv.Quantity, &productID); err != nil {
			return fmt.Errorf("scan inventory: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Inventories = append(products[i].Inventories, inv)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate inventories: %w", err)
	}
	return nil
}

// GetByID retrieves one product with variants and inventory.
// Returns nil, nil if the product is not found.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, sku, description, base_price, category_id, is_active, created_at, updated_at
		 FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.BasePrice,
			&p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	products := []model.Product{p}
	index := map[int64]int{p.ID: 0}
	if err := r.attachVariants(ctx, products, index); err != nil {
		return nil, err
	}
	if err := r.attachInventories(ctx, products, index); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// Insert inserts a new product and returns its id.
// Returns service.ErrProductExists when the SKU is already taken.
func (r *ProductRepository) Insert(ctx context.Context, p *model.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, sku, description, base_price, category_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now()) RETURNING id`,
		p.Name, p.SKU, p.Description, p.BasePrice, p.CategoryID, p.IsActive).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, service.ErrProductExists
		}
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// Update overwrites a product's editable fields.
// Returns service.ErrProductNotFound when no row matches the id.
func (r *ProductRepository) Update(ctx context.Context, id int64, p *model.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $2, sku = $3, description = $4, base_price = $5,
			category_id = $6, is_active = $7, updated_at = now()
		 WHERE id = $1`,
		id, p.Name, p.SKU, p.Description, p.BasePrice, p.CategoryID, p.IsActive)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrProductNotFound
	}
	return nil
}

// Delete removes a product.
// Returns service.ErrProductNotFound when no row matches the id.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrProductNotFound
	}
	return nil
}

// Categories returns the category tree as a flat list.
func (r *ProductRepository) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, parent_id FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// InsertCategory adds a category and returns its id.
// Returns service.ErrCategoryExists when the name is already taken.
func (r *ProductRepository) InsertCategory(ctx context.Context, c *model.Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, parent_id) VALUES ($1, $2) RETURNING id`,
		c.Name, c.ParentID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, service.ErrCategoryExists
		}
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

// UpdateCategory overwrites a category's name and parent.
// Returns service.ErrCategoryNotFound when no row matches the id.
func (r *ProductRepository) UpdateCategory(ctx context.Context, id int64, c *model.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, parent_id = $3 WHERE id = $1`,
		id, c.Name, c.ParentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCategoryExists
		}
		return fmt.Errorf("update category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category. Products keep their category_id and the
// FK sets it NULL.
// Returns service.ErrCategoryNotFound when no row matches the id.
func (r *ProductRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCategoryNotFound
	}
	return nil
}

// VariantByID retrieves one variant.
// Returns nil, nil if the variant is not found.
func (r *ProductRepository) VariantByID(ctx context.Context, id int64) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, sku, price, color_id, size_id
		 FROM product_variants WHERE id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.ColorID, &v.SizeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant %d: %w", id, err)
	}
	return &v, nil
}

// InventoryByVariant retrieves the stock record of a variant.
// Returns nil, nil when the variant has no inventory record (unbounded).
func (r *ProductRepository) InventoryByVariant(ctx context.Context, variantID int64) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.pool.QueryRow(ctx,
		`SELECT id, variant_id, quantity FROM inventories WHERE variant_id = $1`,
		variantID).Scan(&inv.ID, &inv.VariantID, &inv.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory for variant %d: %w", variantID, err)
	}
	return &inv, nil
}

// InsertVariant adds a sellable variant to a product and returns its id.
// Returns service.ErrVariantExists when the variant SKU is taken and
// service.ErrProductNotFound when the product id does not exist.
func (r *ProductRepository) InsertVariant(ctx context.Context, v *model.ProductVariant) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product_variants (product_id, sku, price, color_id, size_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		v.ProductID, v.SKU, v.Price, v.ColorID, v.SizeID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, service.ErrVariantExists
			case "23503":
				return 0, service.ErrProductNotFound
			}
		}
		return 0, fmt.Errorf("insert variant: %w", err)
	}
	return id, nil
}

// UpsertInventory sets a variant's on-hand stock, creating the record on
// first write.
// Returns service.ErrVariantNotFound when the variant id does not exist.
func (r *ProductRepository) UpsertInventory(ctx context.Context, variantID int64, quantity int) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.pool.QueryRow(ctx,
		`INSERT INTO inventories (variant_id, quantity) VALUES ($1, $2)
		 ON CONFLICT (variant_id) DO UPDATE SET quantity = EXCLUDED.quantity
		 RETURNING id, variant_id, quantity`,
		variantID, quantity).Scan(&inv.ID, &inv.VariantID, &inv.Quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, service.ErrVariantNotFound
		}
		return nil, fmt.Errorf("upsert inventory for variant %d: %w", variantID, err)
	}
	return &inv, nil
}

// DecrementInventory atomically takes quantity units off a variant's stock.
// The guard in the WHERE clause makes oversells impossible; zero rows
// affected means there was not enough stock. Variants without an inventory
// record are unbounded and are not decremented.
func (r *ProductRepository) DecrementInventory(ctx context.Context, tx database.TxQuerier, variantID int64, quantity int) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventories WHERE variant_id = $1)`, variantID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check inventory for variant %d: %w", variantID, err)
	}
	if !exists {
		return nil
	}

	tag, err := tx.Exec(ctx,
		`UPDATE inventories SET quantity = quantity - $2
		 WHERE variant_id = $1 AND quantity >= $2`,
		variantID, quantity)
	if err != nil {
		return fmt.Errorf("decrement inventory for variant %d: %w", variantID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrInsufficientStock
	}
	return nil
}

// Colors returns the color reference list.
func (r *ProductRepository) Colors(ctx context.Context) ([]model.Color, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, code FROM colors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	defer rows.Close()

	var colors []model.Color
	for rows.Next() {
		var c model.Color
		if err := rows.Scan(&c.ID, &c.Name, &c.Code); err != nil {
			return nil, fmt.Errorf("scan color: %w", err)
		}
		colors = append(colors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate colors: %w", err)
	}
	return colors, nil
}

// Sizes returns the size reference list.
func (r *ProductRepository) Sizes(ctx context.Context) ([]model.Size, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name FROM sizes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	defer rows.Close()

	var sizes []model.Size
	for rows.Next() {
		var s model.Size
		if err := rows.Scan(&s.ID, &s.Code, &s.Name); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		sizes = append(sizes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sizes: %w", err)
	}
	return sizes, nil
}

// InsertColor adds a color to the catalog and returns its id.
func (r *ProductRepository) InsertColor(ctx context.Context, c *model.Color) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO colors (name, code) VALUES ($1, $2) RETURNING id`, c.Name, c.Code).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert color: %w", err)
	}
	return id, nil
}

// InsertSize adds a size to the catalog and returns its id.
func (r *ProductRepository) InsertSize(ctx context.Context, s *model.Size) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sizes (code, name) VALUES ($1, $2) RETURNING id`, s.Code, s.Name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert size: %w", err)
	}
	return id, nil
}
