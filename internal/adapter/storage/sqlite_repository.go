package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/core/domain"
	"storefront/internal/port"
)

// SQLiteRepository mirrors the store's state into a single-file database.
// Monetary columns are stored as fixed-point text, never floats.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Init creates both tables when pointed at an empty database file.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id    TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			price TEXT NOT NULL,
			img   TEXT NOT NULL,
			stock INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id              TEXT PRIMARY KEY,
			product         TEXT NOT NULL,
			name            TEXT NOT NULL,
			contact         TEXT NOT NULL,
			email           TEXT NOT NULL,
			address         TEXT NOT NULL,
			productPrice    TEXT NOT NULL,
			deliveryCharges TEXT NOT NULL,
			totalAmount     TEXT NOT NULL,
			payment         TEXT NOT NULL,
			createdAt       TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadAll(ctx context.Context) (*port.Snapshot, error) {
	snap := &port.Snapshot{}

	rows, err := r.db.QueryContext(ctx, `SELECT id, title, price, img, stock FROM products`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		var priceText string
		if err := rows.Scan(&p.ID, &p.Title, &priceText, &p.Img, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price, err = decimal.NewFromString(priceText)
		if err != nil {
			return nil, fmt.Errorf("product %s price %q: %w", p.ID, priceText, err)
		}
		snap.Products = append(snap.Products, p)
		if seq := domain.IDSequence(p.ID); seq > snap.MaxProductSeq {
			snap.MaxProductSeq = seq
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	orderRows, err := r.db.QueryContext(ctx, `
		SELECT id, product, name, contact, email, address,
		       productPrice, deliveryCharges, totalAmount, payment, createdAt
		FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer orderRows.Close()

	for orderRows.Next() {
		var o domain.Order
		var priceText, deliveryText, totalText string
		if err := orderRows.Scan(&o.ID, &o.Product, &o.Name, &o.Contact, &o.Email, &o.Address,
			&priceText, &deliveryText, &totalText, &o.Payment, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.ProductPrice, err = decimal.NewFromString(priceText); err != nil {
			return nil, fmt.Errorf("order %s productPrice %q: %w", o.ID, priceText, err)
		}
		if o.DeliveryCharges, err = decimal.NewFromString(deliveryText); err != nil {
			return nil, fmt.Errorf("order %s deliveryCharges %q: %w", o.ID, deliveryText, err)
		}
		if o.TotalAmount, err = decimal.NewFromString(totalText); err != nil {
			return nil, fmt.Errorf("order %s totalAmount %q: %w", o.ID, totalText, err)
		}
		snap.Orders = append(snap.Orders, o)
		if seq := domain.IDSequence(o.ID); seq > snap.MaxOrderSeq {
			snap.MaxOrderSeq = seq
		}
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return snap, nil
}

func (r *SQLiteRepository) UpsertProduct(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, title, price, img, stock)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			img   = excluded.img,
			stock = excluded.stock`,
		p.ID, p.Title, domain.Money(p.Price), p.Img, p.Stock,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ReplaceProducts rewrites the products table in one transaction: clear,
// then insert the new rows. A failed insert rolls the whole swap back.
func (r *SQLiteRepository) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, title, price, img, stock)
			VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Title, domain.Money(p.Price), p.Img, p.Stock,
		)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// CreateOrder writes the order row and the stock updates of every touched
// product in one transaction, so a crash cannot persist an order whose
// decrements were lost or vice versa.
func (r *SQLiteRepository) CreateOrder(ctx context.Context, order domain.Order, touched []domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, product, name, contact, email, address,
			productPrice, deliveryCharges, totalAmount, payment, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.Product, order.Name, order.Contact, order.Email, order.Address,
		domain.Money(order.ProductPrice), domain.Money(order.DeliveryCharges),
		domain.Money(order.TotalAmount), order.Payment, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, p := range touched {
		result, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = ? WHERE id = ?`,
			p.Stock, p.ID,
		)
		if err != nil {
			return fmt.Errorf("update stock for %s: %w", p.ID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("update stock for %s: product row missing", p.ID)
		}
	}

	return tx.Commit()
}
