package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

const orderColumns = `id, number, token_number, outlet_id, client_id, client_name,
       total_amount_paise, status, estimated_wait_minutes, processed_by,
       created_at, updated_at, version`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (id, number, token_number, outlet_id, client_id, client_name,
		                    total_amount_paise, status, estimated_wait_minutes, processed_by,
		                    created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.Number, order.TokenNumber, order.OutletID, order.ClientID, order.ClientName,
		int64(order.TotalAmount), string(order.Status), order.EstimatedWaitMinutes, order.ProcessedBy,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i, item := range order.Items {
		itemQuery := `
			INSERT INTO order_items (order_id, position, menu_item_id, name, unit_price_paise, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.Exec(ctx, itemQuery,
			order.ID, i, item.MenuItemID, item.Name, int64(item.UnitPrice), item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	// Лог начального статуса
	if err := insertStatusLog(ctx, tx, &domain.StatusLog{
		OrderID:   order.ID,
		Status:    order.Status,
		ChangedBy: order.ClientID,
		ChangedAt: order.CreatedAt,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	order.Version = 1
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *orderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg string) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// Update writes only if the row still carries expectedVersion.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order, expectedVersion int, entry *domain.StatusLog) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET status = $1, estimated_wait_minutes = $2, processed_by = $3,
		    updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`
	tag, err := tx.Exec(ctx, query,
		string(order.Status), order.EstimatedWaitMinutes, order.ProcessedBy,
		order.UpdatedAt, order.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrentUpdate
	}

	if entry != nil {
		if err := insertStatusLog(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order update: %w", err)
	}
	order.Version = expectedVersion + 1
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.OutletID != "" {
		args = append(args, filter.OutletID)
		where = append(where, fmt.Sprintf("outlet_id = $%d", len(args)))
	}
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.ActiveOnly {
		args = append(args, terminalStatuses())
		where = append(where, fmt.Sprintf("status <> ALL($%d)", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, number DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountActive(ctx context.Context, outletID string) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE outlet_id = $1 AND status <> ALL($2)`

	var count int
	if err := r.db.QueryRow(ctx, query, outletID, terminalStatuses()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active orders: %w", err)
	}
	return count, nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error) {
	query := `
		SELECT order_id, status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var logs []*domain.StatusLog
	for rows.Next() {
		var (
			log    domain.StatusLog
			status string
		)
		if err := rows.Scan(&log.OrderID, &status, &log.ChangedBy, &log.ChangedAt, &log.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		log.Status = domain.Status(status)
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}

	if len(logs) == 0 {
		return nil, domain.ErrNotFound
	}
	return logs, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID
	}

	query := `
		SELECT order_id, menu_item_id, name, unit_price_paise, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    domain.OrderItem
			price   int64
		)
		if err := rows.Scan(&orderID, &item.MenuItemID, &item.Name, &price, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		item.UnitPrice = domain.Money(price)
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func scanOrder(row Row) (*domain.Order, error) {
	var (
		o      domain.Order
		total  int64
		status string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.TokenNumber, &o.OutletID, &o.ClientID, &o.ClientName,
		&total, &status, &o.EstimatedWaitMinutes, &o.ProcessedBy,
		&o.CreatedAt, &o.UpdatedAt, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = domain.Money(total)
	o.Status = domain.Status(status)
	return &o, nil
}

func insertStatusLog(ctx context.Context, tx Tx, entry *domain.StatusLog) error {
	query := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, query, entry.OrderID, string(entry.Status), entry.ChangedBy, entry.ChangedAt, entry.Notes); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}
	return nil
}

func terminalStatuses() []string {
	var out []string
	for _, s := range domain.Statuses() {
		if s.IsTerminal() {
			out = append(out, string(s))
		}
	}
	return out
}
