package forecast

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"app/models"
)

// PostgresProvider serves sales history and product data from the
// retail backend's Postgres schema (sales, sale_items,
// inventory_items, shop_stock, suppliers).
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a provider over an existing pool.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// HistoricalSales aggregates sold quantities per calendar day over the
// last N days, oldest first. Days without sales produce no row.
func (p *PostgresProvider) HistoricalSales(ctx context.Context, productID string, days int) ([]models.HistoricalSalesPoint, error) {
	query := `
        SELECT s.sale_date::date AS day, SUM(si.quantity_sold) AS quantity
        FROM sales s
        JOIN sale_items si ON s.id = si.sale_id
        WHERE si.inventory_item_id = $1
          AND s.sale_date >= NOW() - make_interval(days => $2)
        GROUP BY day
        ORDER BY day
    `
	rows, err := p.pool.Query(ctx, query, productID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales history: %w", err)
	}
	defer rows.Close()

	var points []models.HistoricalSalesPoint
	for rows.Next() {
		var point models.HistoricalSalesPoint
		if err := rows.Scan(&point.Date, &point.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sales history row: %w", err)
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

// CurrentStock sums the product's quantity across all shops.
func (p *PostgresProvider) CurrentStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := p.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM shop_stock WHERE inventory_item_id = $1`,
		productID,
	).Scan(&stock)
	if err != nil {
		return 0, fmt.Errorf("failed to query current stock: %w", err)
	}
	return stock, nil
}

// SupplierLeadTime returns the supplier's delivery turnaround in days,
// defaulting to a week for products without a supplier on record.
func (p *PostgresProvider) SupplierLeadTime(ctx context.Context, productID string) (int, error) {
	var leadTime int
	err := p.pool.QueryRow(ctx, `
        SELECT COALESCE(sp.lead_time_days, 7)
        FROM inventory_items i
        LEFT JOIN suppliers sp ON i.supplier_id = sp.id
        WHERE i.id = $1
    `, productID).Scan(&leadTime)
	if err != nil {
		return 0, fmt.Errorf("failed to query supplier lead time: %w", err)
	}
	return leadTime, nil
}

func (p *PostgresProvider) ProductCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	var cost float64
	err := p.pool.QueryRow(ctx,
		`SELECT COALESCE(original_price, selling_price) FROM inventory_items WHERE id = $1`,
		productID,
	).Scan(&cost)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query product cost: %w", err)
	}
	return decimal.NewFromFloat(cost), nil
}

func (p *PostgresProvider) ProductPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	var price float64
	err := p.pool.QueryRow(ctx,
		`SELECT selling_price FROM inventory_items WHERE id = $1`,
		productID,
	).Scan(&price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query product price: %w", err)
	}
	return decimal.NewFromFloat(price), nil
}

func (p *PostgresProvider) ProductName(ctx context.Context, productID string) (string, error) {
	var name string
	err := p.pool.QueryRow(ctx,
		`SELECT name FROM inventory_items WHERE id = $1`, productID,
	).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("failed to query product name: %w", err)
	}
	return name, nil
}

func (p *PostgresProvider) ProductSKU(ctx context.Context, productID string) (string, error) {
	var sku *string
	err := p.pool.QueryRow(ctx,
		`SELECT sku FROM inventory_items WHERE id = $1`, productID,
	).Scan(&sku)
	if err != nil {
		return "", fmt.Errorf("failed to query product sku: %w", err)
	}
	if sku == nil {
		return "", nil
	}
	return *sku, nil
}

func (p *PostgresProvider) ProductsInCategory(ctx context.Context, categoryID string) ([]string, error) {
	return p.queryIDs(ctx,
		`SELECT id FROM inventory_items WHERE category = $1 AND NOT is_archived`, categoryID)
}

func (p *PostgresProvider) ProductsBySupplier(ctx context.Context, supplierID string) ([]string, error) {
	return p.queryIDs(ctx,
		`SELECT id FROM inventory_items WHERE supplier_id = $1 AND NOT is_archived`, supplierID)
}

func (p *PostgresProvider) AllProducts(ctx context.Context) ([]string, error) {
	return p.queryIDs(ctx, `SELECT id FROM inventory_items WHERE NOT is_archived`)
}

func (p *PostgresProvider) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
