package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id::text, full_name, address, mobile, email, product, quantity, status,
	price, delivery_charge, discount, promo_code, courier_company, tracking_number,
	created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new order.
func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
		INSERT INTO orders (
			id, full_name, address, mobile, email, product, quantity, status,
			price, delivery_charge, discount, promo_code, courier_company, tracking_number,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.FullName, o.Address, o.Mobile, o.Email, o.Product, int(o.Quantity), string(o.Status),
		o.Price, o.DeliveryCharge, o.Discount, o.PromoCode, o.CourierCompany, o.TrackingNumber,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", o.ID).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().Str("order_id", o.ID).Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		r.logger.Debug().Str("order_id", id).Msg("order id is not a uuid")
		return nil, nil
	}

	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return r.scanOne(row, id)
}

// GetForUpdate reads an order inside tx and locks its row.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	return r.scanOne(row, id)
}

func (r *orderRepository) scanOne(row pgx.Row, id string) (*model.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return o, nil
}

// UpdateStatus writes a new status inside tx.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.Status, updatedAt time.Time) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to update order status: %d rows affected", tag.RowsAffected())
	}
	return nil
}

// Delete removes an order.
func (r *orderRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to delete order")
		return false, fmt.Errorf("failed to delete order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns one page of orders and the total matching count.
func (r *orderRepository) List(ctx context.Context, params model.ListParams) ([]model.Order, int, error) {
	where, args := orderFilter(params)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, where, n+1, n+2)
	args = append(args, params.Limit, params.Offset())

	orders, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Export returns every matching order, newest first.
func (r *orderRepository) Export(ctx context.Context, params model.ListParams) ([]model.Order, error) {
	where, args := orderFilter(params)
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders`+where+` ORDER BY created_at DESC, id`, args...)
}

func (r *orderRepository) query(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// revenueExpr is the amount an order actually billed. Missing pricing counts
// as zero here; display fallbacks belong to the invoice formatter only.
const revenueExpr = `quantity * COALESCE(price, 0) + COALESCE(delivery_charge, 0) - COALESCE(discount, 0)`

// Summary aggregates counts by status, total revenue and daily revenue.
func (r *orderRepository) Summary(ctx context.Context, since time.Time) (*model.Summary, error) {
	summary := &model.Summary{
		ByStatus: make(map[model.Status]int, len(model.Statuses)),
		Daily:    []model.DailyRevenue{},
	}
	for _, s := range model.Statuses {
		summary.ByStatus[s] = 0
	}

	rows, err := r.pool.Query(ctx,
		`SELECT status, count(*), COALESCE(sum(`+revenueExpr+`), 0)::bigint FROM orders GROUP BY status`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to aggregate orders by status")
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	for rows.Next() {
		var (
			status  string
			count   int
			revenue int64
		)
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan status aggregate: %w", err)
		}
		summary.ByStatus[model.Status(status)] = count
		summary.TotalOrders += count
		summary.TotalRevenue += revenue
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status aggregates: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		       count(*), COALESCE(sum(`+revenueExpr+`), 0)::bigint
		FROM orders
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day`, since)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to aggregate orders by day")
		return nil, fmt.Errorf("failed to aggregate orders by day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d model.DailyRevenue
		if err := rows.Scan(&d.Day, &d.Orders, &d.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan daily aggregate: %w", err)
		}
		summary.Daily = append(summary.Daily, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily aggregates: %w", err)
	}

	return summary, nil
}

// orderFilter builds the WHERE clause shared by List and Export.
func orderFilter(params model.ListParams) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Scope == model.ScopeCourier {
		statuses := make([]string, len(model.CourierStatuses))
		for i, s := range model.CourierStatuses {
			statuses[i] = string(s)
		}
		clauses = append(clauses, "status = ANY("+arg(statuses)+")")
	}

	if params.Status != "" {
		clauses = append(clauses, "status = "+arg(string(params.Status)))
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		p := arg("%" + escapeLike(search) + "%")
		cond := "full_name ILIKE " + p + ` ESCAPE '\' OR mobile LIKE ` + p + ` ESCAPE '\'`
		if params.Scope == model.ScopeCourier {
			cond += " OR address ILIKE " + p + ` ESCAPE '\'`
		}
		clauses = append(clauses, "("+cond+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o        model.Order
		quantity int
		status   string
	)
	err := row.Scan(
		&o.ID, &o.FullName, &o.Address, &o.Mobile, &o.Email, &o.Product, &quantity, &status,
		&o.Price, &o.DeliveryCharge, &o.Discount, &o.PromoCode, &o.CourierCompany, &o.TrackingNumber,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Quantity = model.Quantity(quantity)
	o.Status = model.Status(status)
	return &o, nil
}
