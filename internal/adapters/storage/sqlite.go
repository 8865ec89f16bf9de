package storage

// sqlite.go — almacén durable de pedidos, pujas y agentes.
//
// Estrategia:
//   - SQLite pure-Go (modernc), single-writer: las transiciones de award y
//     fulfillment se serializan en la fila del pedido.
//   - El award es un UPDATE condicionado a `assigned_partner_id IS NULL`
//     (o ya asignado al mismo agente) con verificación de filas afectadas:
//     dos awards concurrentes → exactamente uno gana.
//   - El payout de fulfillment es exactly-once, condicionado al estado
//     `agent_payout_status != 'paid'` leído dentro de la transacción.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/localbite-davis/localbite/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS delivery_agents (
    agent_id         TEXT PRIMARY KEY,
    full_name        TEXT NOT NULL DEFAULT '',
    email            TEXT NOT NULL DEFAULT '',
    phone_number     TEXT NOT NULL DEFAULT '',
    agent_type       TEXT NOT NULL,
    university_name  TEXT NOT NULL DEFAULT '',
    student_id       TEXT NOT NULL DEFAULT '',
    vehicle_type     TEXT NOT NULL,
    is_active        INTEGER NOT NULL DEFAULT 1,
    is_verified      INTEGER NOT NULL DEFAULT 0,
    rating           REAL    NOT NULL DEFAULT 5.0,
    total_deliveries INTEGER NOT NULL DEFAULT 0,
    total_earnings   REAL    NOT NULL DEFAULT 0,
    created_at       TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    order_id                INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id                 INTEGER NOT NULL,
    restaurant_id           INTEGER NOT NULL,
    assigned_partner_id     TEXT REFERENCES delivery_agents(agent_id),
    order_items             TEXT NOT NULL DEFAULT '[]',
    base_fare               REAL NOT NULL,
    delivery_fee            REAL NOT NULL DEFAULT 0,
    commission_amount       REAL NOT NULL DEFAULT 0,
    order_status            TEXT NOT NULL DEFAULT 'pending',
    created_at              TEXT NOT NULL,
    delivered_at            TEXT,
    delivery_proof_ref      TEXT NOT NULL DEFAULT '',
    delivery_proof_filename TEXT NOT NULL DEFAULT '',
    agent_payout_amount     REAL NOT NULL DEFAULT 0,
    agent_payout_status     TEXT NOT NULL DEFAULT 'pending'
);

CREATE TABLE IF NOT EXISTS delivery_bids (
    bid_id           INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id         INTEGER NOT NULL REFERENCES orders(order_id),
    agent_id         TEXT    NOT NULL REFERENCES delivery_agents(agent_id),
    bid_amount       REAL NOT NULL,
    min_allowed_fare REAL NOT NULL,
    max_allowed_fare REAL NOT NULL,
    pool_phase       TEXT NOT NULL DEFAULT 'student_pool',
    bid_status       TEXT NOT NULL DEFAULT 'placed',
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_partner ON orders(assigned_partner_id);
CREATE INDEX IF NOT EXISTS idx_orders_status  ON orders(order_status);
CREATE INDEX IF NOT EXISTS idx_bids_order     ON delivery_bids(order_id);
CREATE INDEX IF NOT EXISTS idx_bids_agent     ON delivery_bids(agent_id);
CREATE INDEX IF NOT EXISTS idx_bids_status    ON delivery_bids(order_id, bid_status);
`

// timeLayout mantiene los timestamps ordenables lexicográficamente en UTC.
const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implementa ports.OrderStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- orders ---

// CreateOrder inserta un pedido nuevo y rellena OrderID y CreatedAt.
func (s *SQLiteStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.OrderStatus == "" {
		order.OrderStatus = domain.OrderStatusPending
	}
	items, err := json.Marshal(order.OrderItems)
	if err != nil {
		return fmt.Errorf("storage.CreateOrder: marshal items: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO orders
			(user_id, restaurant_id, order_items, base_fare, delivery_fee,
			 commission_amount, order_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.RestaurantID, string(items),
		order.BaseFare, order.DeliveryFee, order.CommissionAmount,
		string(order.OrderStatus), formatTime(order.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage.CreateOrder: insert: %w", err)
	}
	order.OrderID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage.CreateOrder: last insert id: %w", err)
	}
	return nil
}

const orderColumns = `order_id, user_id, restaurant_id, assigned_partner_id, order_items,
	base_fare, delivery_fee, commission_amount, order_status, created_at, delivered_at,
	delivery_proof_ref, delivery_proof_filename, agent_payout_amount, agent_payout_status`

// GetOrder carga un pedido por id.
func (s *SQLiteStore) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return domain.Order{}, domain.NotFoundf("order %d not found", orderID)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("storage.GetOrder: %w", err)
	}
	return order, nil
}

// ListOpenOrders devuelve pedidos sin asignar y no terminales, más recientes primero.
func (s *SQLiteStore) ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE assigned_partner_id IS NULL
		  AND order_status NOT IN ('delivered', 'cancelled', 'assigned')
		ORDER BY created_at DESC, order_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListOpenOrders: query: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListActiveOrdersByAgent devuelve los pedidos en curso asignados al agente.
func (s *SQLiteStore) ListActiveOrdersByAgent(ctx context.Context, agentID string) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE assigned_partner_id = ?
		  AND order_status IN ('assigned', 'on_the_way')
		ORDER BY created_at DESC, order_id DESC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListActiveOrdersByAgent: query: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// --- agents ---

// CreateAgent registra un agente. El agent_type se normaliza al valor canónico.
func (s *SQLiteStore) CreateAgent(ctx context.Context, agent *domain.DeliveryAgent) error {
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now().UTC()
	}
	if agent.Rating == 0 {
		agent.Rating = 5.0
	}
	agent.AgentType = domain.NormalizeAgentType(string(agent.AgentType))
	if err := agent.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_agents
			(agent_id, full_name, email, phone_number, agent_type, university_name,
			 student_id, vehicle_type, is_active, is_verified, rating,
			 total_deliveries, total_earnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agent.AgentID, agent.FullName, agent.Email, agent.PhoneNumber,
		string(agent.AgentType), agent.UniversityName, agent.StudentID,
		string(agent.VehicleType), boolToInt(agent.IsActive), boolToInt(agent.IsVerified),
		agent.Rating, agent.TotalDeliveries, agent.TotalEarnings,
		formatTime(agent.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage.CreateAgent: insert %s: %w", agent.AgentID, err)
	}
	return nil
}

// GetAgent carga un agente por id.
func (s *SQLiteStore) GetAgent(ctx context.Context, agentID string) (domain.DeliveryAgent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT agent_id, full_name, email, phone_number, agent_type, university_name,
		       student_id, vehicle_type, is_active, is_verified, rating,
		       total_deliveries, total_earnings, created_at
		FROM delivery_agents WHERE agent_id = ?`, agentID)

	var a domain.DeliveryAgent
	var agentType, vehicleType, createdAt string
	var isActive, isVerified int
	err := row.Scan(&a.AgentID, &a.FullName, &a.Email, &a.PhoneNumber, &agentType,
		&a.UniversityName, &a.StudentID, &vehicleType, &isActive, &isVerified,
		&a.Rating, &a.TotalDeliveries, &a.TotalEarnings, &createdAt)
	if err == sql.ErrNoRows {
		return domain.DeliveryAgent{}, domain.NotFoundf("delivery agent %s not found", agentID)
	}
	if err != nil {
		return domain.DeliveryAgent{}, fmt.Errorf("storage.GetAgent: scan: %w", err)
	}
	a.AgentType = domain.AgentType(agentType)
	a.VehicleType = domain.VehicleType(vehicleType)
	a.IsActive = isActive == 1
	a.IsVerified = isVerified == 1
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

// --- bids ---

// CreateBid inserta una puja y rellena BidID y los timestamps.
func (s *SQLiteStore) CreateBid(ctx context.Context, bid *domain.DeliveryBid) error {
	now := time.Now().UTC()
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = now
	}
	bid.UpdatedAt = bid.CreatedAt
	if bid.BidStatus == "" {
		bid.BidStatus = domain.BidStatusPlaced
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_bids
			(order_id, agent_id, bid_amount, min_allowed_fare, max_allowed_fare,
			 pool_phase, bid_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bid.OrderID, bid.AgentID, bid.BidAmount, bid.MinAllowedFare, bid.MaxAllowedFare,
		string(bid.PoolPhase), string(bid.BidStatus),
		formatTime(bid.CreatedAt), formatTime(bid.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage.CreateBid: insert: %w", err)
	}
	bid.BidID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage.CreateBid: last insert id: %w", err)
	}
	return nil
}

const bidColumns = `bid_id, order_id, agent_id, bid_amount, min_allowed_fare,
	max_allowed_fare, pool_phase, bid_status, created_at, updated_at`

// GetBid carga una puja por id.
func (s *SQLiteStore) GetBid(ctx context.Context, bidID int64) (domain.DeliveryBid, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM delivery_bids WHERE bid_id = ?`, bidID)
	bid, err := scanBid(row)
	if err == sql.ErrNoRows {
		return domain.DeliveryBid{}, domain.NotFoundf("bid %d not found", bidID)
	}
	if err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.GetBid: %w", err)
	}
	return bid, nil
}

// ListBidsByOrder devuelve todas las pujas del pedido, más recientes primero.
func (s *SQLiteStore) ListBidsByOrder(ctx context.Context, orderID int64) ([]domain.DeliveryBid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bidColumns+` FROM delivery_bids
		WHERE order_id = ?
		ORDER BY created_at DESC, bid_id DESC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListBidsByOrder: query: %w", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

// ListBidsByAgent devuelve todas las pujas del agente, más recientes primero.
func (s *SQLiteStore) ListBidsByAgent(ctx context.Context, agentID string) ([]domain.DeliveryBid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bidColumns+` FROM delivery_bids
		WHERE agent_id = ?
		ORDER BY created_at DESC, bid_id DESC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListBidsByAgent: query: %w", err)
	}
	defer rows.Close()
	return collectBids(rows)
}

// PlacedBidMarker devuelve (nº de pujas placed, max bid_id) como resumen monotónico.
func (s *SQLiteStore) PlacedBidMarker(ctx context.Context, orderID int64) (domain.BidMarker, error) {
	var m domain.BidMarker
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(bid_id), 0)
		FROM delivery_bids
		WHERE order_id = ? AND bid_status = 'placed'`, orderID,
	).Scan(&m.Placed, &m.MaxBidID)
	if err != nil {
		return domain.BidMarker{}, fmt.Errorf("storage.PlacedBidMarker: %w", err)
	}
	return m, nil
}

// AwardBid ejecuta la transición atómica de adjudicación:
// puja → accepted, pedido → assigned (con delivery_fee = importe de la puja),
// resto de pujas placed del pedido → rejected. El UPDATE del pedido está
// condicionado a que siga sin asignar; cero filas afectadas → Conflict.
func (s *SQLiteStore) AwardBid(ctx context.Context, bidID int64) (domain.DeliveryBid, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.AwardBid: begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM delivery_bids WHERE bid_id = ?`, bidID)
	bid, err := scanBid(row)
	if err == sql.ErrNoRows {
		return domain.DeliveryBid{}, domain.NotFoundf("bid %d not found", bidID)
	}
	if err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.AwardBid: load bid: %w", err)
	}

	if bid.BidStatus == domain.BidStatusAccepted {
		return bid, nil // idempotente
	}
	if bid.BidStatus != domain.BidStatusPlaced {
		return domain.DeliveryBid{}, domain.Conflictf("cannot accept bid with status %q", bid.BidStatus)
	}

	now := formatTime(time.Now().UTC())

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET assigned_partner_id = ?, delivery_fee = ?, order_status = 'assigned'
		WHERE order_id = ?
		  AND (assigned_partner_id IS NULL OR assigned_partner_id = ?)`,
		bid.AgentID, domain.Round2(bid.BidAmount), bid.OrderID, bid.AgentID,
	)
	if err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.AwardBid: assign order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.AwardBid: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.DeliveryBid{}, domain.Conflictf("order %d is already assigned to another agent", bid.OrderID)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE delivery_bids SET bid_status = 'accepted', updated_at = ?
		WHERE bid_id = ?`, now, bidID); err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.AwardBid: accept bid: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE delivery_bids SET bid_status = 'rejected', updated_at = ?
		WHERE order_id = ? AND bid_id != ? AND bid_status = 'placed'`,
		now, bid.OrderID, bidID); err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.AwardBid: reject others: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.DeliveryBid{}, fmt.Errorf("storage.AwardBid: commit: %w", err)
	}

	bid.BidStatus = domain.BidStatusAccepted
	bid.UpdatedAt = parseTime(now)
	return bid, nil
}

// FulfillDelivery marca el pedido como entregado y acredita el payout del
// agente exactamente una vez (condicionado a agent_payout_status != 'paid'
// leído dentro de la transacción). Llamadas repetidas devuelven el ledger
// existente sin cambios.
func (s *SQLiteStore) FulfillDelivery(ctx context.Context, agentID string, orderID int64, proofRef, proofFilename string) (domain.FulfillmentLedger, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.FulfillmentLedger{}, fmt.Errorf("storage.FulfillDelivery: begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return domain.FulfillmentLedger{}, domain.NotFoundf("order %d not found", orderID)
	}
	if err != nil {
		return domain.FulfillmentLedger{}, fmt.Errorf("storage.FulfillDelivery: load order: %w", err)
	}
	if !order.AssignedTo(agentID) {
		return domain.FulfillmentLedger{}, domain.Forbiddenf("order %d is not assigned to agent %s", orderID, agentID)
	}

	var totalEarnings float64
	var totalDeliveries int
	if err := tx.QueryRowContext(ctx,
		`SELECT total_earnings, total_deliveries FROM delivery_agents WHERE agent_id = ?`,
		agentID).Scan(&totalEarnings, &totalDeliveries); err != nil {
		return domain.FulfillmentLedger{}, fmt.Errorf("storage.FulfillDelivery: load agent: %w", err)
	}

	alreadyPaid := order.AgentPayoutStatus == domain.PayoutStatusPaid
	if order.OrderStatus == domain.OrderStatusDelivered && alreadyPaid {
		deliveredAt := time.Now().UTC()
		if order.DeliveredAt != nil {
			deliveredAt = *order.DeliveredAt
		}
		return domain.FulfillmentLedger{
			AgentID:         agentID,
			OrderID:         orderID,
			OrderStatus:     order.OrderStatus,
			PayoutAmount:    domain.Round2(order.AgentPayoutAmount),
			PayoutStatus:    string(order.AgentPayoutStatus),
			TotalEarnings:   domain.Round2(totalEarnings),
			TotalDeliveries: totalDeliveries,
			DeliveredAt:     deliveredAt,
			ProofPhotoRef:   order.DeliveryProofRef,
		}, nil
	}

	payout := domain.Round2(order.DeliveryFee)
	now := time.Now().UTC()

	if !alreadyPaid {
		totalEarnings = domain.Round2(totalEarnings + payout)
		totalDeliveries++
		if _, err := tx.ExecContext(ctx, `
			UPDATE delivery_agents SET total_earnings = ?, total_deliveries = ?
			WHERE agent_id = ?`, totalEarnings, totalDeliveries, agentID); err != nil {
			return domain.FulfillmentLedger{}, fmt.Errorf("storage.FulfillDelivery: credit agent: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET order_status = 'delivered', delivered_at = ?,
		    delivery_proof_ref = ?, delivery_proof_filename = ?,
		    agent_payout_amount = ?, agent_payout_status = 'paid'
		WHERE order_id = ?`,
		formatTime(now), proofRef, proofFilename, payout, orderID); err != nil {
		return domain.FulfillmentLedger{}, fmt.Errorf("storage.FulfillDelivery: update order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.FulfillmentLedger{}, fmt.Errorf("storage.FulfillDelivery: commit: %w", err)
	}

	return domain.FulfillmentLedger{
		AgentID:         agentID,
		OrderID:         orderID,
		OrderStatus:     domain.OrderStatusDelivered,
		PayoutAmount:    payout,
		PayoutStatus:    string(domain.PayoutStatusPaid),
		TotalEarnings:   totalEarnings,
		TotalDeliveries: totalDeliveries,
		DeliveredAt:     now,
		ProofPhotoRef:   proofRef,
	}, nil
}

// --- helpers internos ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	var partner, deliveredAt sql.NullString
	var items, status, createdAt, payoutStatus string

	err := row.Scan(&o.OrderID, &o.UserID, &o.RestaurantID, &partner, &items,
		&o.BaseFare, &o.DeliveryFee, &o.CommissionAmount, &status, &createdAt,
		&deliveredAt, &o.DeliveryProofRef, &o.DeliveryProofFilename,
		&o.AgentPayoutAmount, &payoutStatus)
	if err != nil {
		return domain.Order{}, err
	}

	if partner.Valid && partner.String != "" {
		o.AssignedPartnerID = &partner.String
	}
	if deliveredAt.Valid && deliveredAt.String != "" {
		t := parseTime(deliveredAt.String)
		o.DeliveredAt = &t
	}
	if err := json.Unmarshal([]byte(items), &o.OrderItems); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order items: %w", err)
	}
	o.OrderStatus = domain.OrderStatus(status)
	o.AgentPayoutStatus = domain.PayoutStatus(payoutStatus)
	o.CreatedAt = parseTime(createdAt)
	return o, nil
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanBid(row rowScanner) (domain.DeliveryBid, error) {
	var b domain.DeliveryBid
	var phase, status, createdAt, updatedAt string
	err := row.Scan(&b.BidID, &b.OrderID, &b.AgentID, &b.BidAmount,
		&b.MinAllowedFare, &b.MaxAllowedFare, &phase, &status, &createdAt, &updatedAt)
	if err != nil {
		return domain.DeliveryBid{}, err
	}
	b.PoolPhase = domain.PoolPhase(phase)
	b.BidStatus = domain.BidStatus(status)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

func collectBids(rows *sql.Rows) ([]domain.DeliveryBid, error) {
	var bids []domain.DeliveryBid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid row: %w", err)
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
