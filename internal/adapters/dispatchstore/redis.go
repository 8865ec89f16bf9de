package dispatchstore

// redis.go — estado efímero de dispatch sobre Redis.
//
// Claves:
//   dispatch:order:{order_id}:state — hash con el progreso de la subasta
//   order:{order_id}:assigned       — flag "1" espejo de assigned_partner_id
//   dispatch:queue:{student|all}    — colas FIFO de broadcasts (RPUSH/BLPOP)
//
// El hash se actualiza por merge: los campos opcionales a cero no borran
// los valores previos. El store de pedidos sigue siendo la fuente de verdad;
// esto es una caché para el feed de agentes y el polling del engine.

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Redis implementa ports.DispatchStore sobre go-redis.
type Redis struct {
	rdb *redis.Client
}

// NewRedis abre un cliente a partir de una URL redis:// y verifica la conexión.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("dispatchstore.NewRedis: parse url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("dispatchstore.NewRedis: ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// Close cierra la conexión.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func stateKey(orderID int64) string {
	return fmt.Sprintf("dispatch:order:%d:state", orderID)
}

func assignedKey(orderID int64) string {
	return fmt.Sprintf("order:%d:assigned", orderID)
}

func queueKey(candidate string) string {
	return "dispatch:queue:" + candidate
}

// SetState hace merge del estado sobre el hash existente del pedido.
func (r *Redis) SetState(ctx context.Context, state domain.DispatchState) error {
	fields := map[string]any{
		"order_id":   strconv.FormatInt(state.OrderID, 10),
		"status":     string(state.Status),
		"phase":      string(state.Phase),
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if state.RestaurantID != 0 {
		fields["restaurant_id"] = strconv.FormatInt(state.RestaurantID, 10)
	}
	if state.DeliveryAddress != "" {
		fields["delivery_address"] = state.DeliveryAddress
	}
	if state.Phase1WaitSeconds != 0 {
		fields["phase1_wait_seconds"] = strconv.Itoa(state.Phase1WaitSeconds)
	}
	if state.Phase2WaitSeconds != 0 {
		fields["phase2_wait_seconds"] = strconv.Itoa(state.Phase2WaitSeconds)
	}
	if state.Note != "" {
		fields["note"] = state.Note
	}

	if err := r.rdb.HSet(ctx, stateKey(state.OrderID), fields).Err(); err != nil {
		return fmt.Errorf("dispatchstore.SetState: hset order %d: %w", state.OrderID, err)
	}
	return nil
}

// GetState carga y decodifica el hash de estado de un pedido.
func (r *Redis) GetState(ctx context.Context, orderID int64) (domain.DispatchState, bool, error) {
	data, err := r.rdb.HGetAll(ctx, stateKey(orderID)).Result()
	if err != nil {
		return domain.DispatchState{}, false, fmt.Errorf("dispatchstore.GetState: hgetall order %d: %w", orderID, err)
	}
	if len(data) == 0 {
		return domain.DispatchState{}, false, nil
	}

	state := domain.DispatchState{
		OrderID:           orderID,
		Status:            domain.DispatchStatus(data["status"]),
		Phase:             domain.DispatchPhase(data["phase"]),
		DeliveryAddress:   data["delivery_address"],
		Note:              data["note"],
		RestaurantID:      parseInt64(data["restaurant_id"]),
		Phase1WaitSeconds: parseInt(data["phase1_wait_seconds"]),
		Phase2WaitSeconds: parseInt(data["phase2_wait_seconds"]),
	}
	if raw := data["updated_at"]; raw != "" {
		state.UpdatedAt, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return state, true, nil
}

// MarkAssigned fija el flag de asignación y deja el estado en (assigned, completed).
func (r *Redis) MarkAssigned(ctx context.Context, orderID int64, agentID string) error {
	if err := r.rdb.Set(ctx, assignedKey(orderID), "1", 0).Err(); err != nil {
		return fmt.Errorf("dispatchstore.MarkAssigned: set flag order %d: %w", orderID, err)
	}
	note := "assigned"
	if agentID != "" {
		note = "accepted_by=" + agentID
	}
	return r.SetState(ctx, domain.DispatchState{
		OrderID: orderID,
		Status:  domain.DispatchAssigned,
		Phase:   domain.DispatchPhaseCompleted,
		Note:    note,
	})
}

// ClearAssigned borra el flag de asignación.
func (r *Redis) ClearAssigned(ctx context.Context, orderID int64) error {
	if err := r.rdb.Del(ctx, assignedKey(orderID)).Err(); err != nil {
		return fmt.Errorf("dispatchstore.ClearAssigned: del order %d: %w", orderID, err)
	}
	return nil
}

// IsAssigned lee el flag de asignación. Cualquier valor distinto de
// "0"/"false" cuenta como asignado.
func (r *Redis) IsAssigned(ctx context.Context, orderID int64) (bool, error) {
	val, err := r.rdb.Get(ctx, assignedKey(orderID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dispatchstore.IsAssigned: get order %d: %w", orderID, err)
	}
	switch strings.ToLower(val) {
	case "0", "false":
		return false, nil
	default:
		return true, nil
	}
}

// Publish serializa el mensaje y lo encola en la cola de su pool (RPUSH,
// los consumidores hacen BLPOP para mantener FIFO).
func (r *Redis) Publish(ctx context.Context, msg domain.DispatchMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("dispatchstore.Publish: marshal: %w", err)
	}
	key := queueKey(msg.CandidateAgentType)
	if err := r.rdb.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("dispatchstore.Publish: rpush %s: %w", key, err)
	}
	return nil
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
