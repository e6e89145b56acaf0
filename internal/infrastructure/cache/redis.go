package cache

import (
	"context"
	"fmt"

	"tutor-registry/internal/config"
	interfaces "tutor-registry/internal/interfaces/infrastructure"

	"github.com/go-redis/redis/v8"
)

// RedisSeatCache tracks remaining seats per slot in Redis. The reserve
// path runs as a Lua script so the check and the decrement are one atomic
// server-side operation.
type RedisSeatCache struct {
	client *redis.Client
}

func NewRedisSeatCache(addr, password string, db int) *RedisSeatCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSeatCache{client: rdb}
}

func NewRedisSeatCacheWithConfig(cfg *config.CacheConfig) *RedisSeatCache {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return NewRedisSeatCache(addr, cfg.Password, cfg.DB)
}

// GetClient exposes the underlying client for health checks
func (r *RedisSeatCache) GetClient() *redis.Client {
	return r.client
}

func seatKey(subjectID, availabilityID uint) string {
	return fmt.Sprintf("slot:seats:%d:%d", subjectID, availabilityID)
}

var reserveSeatScript = redis.NewScript(`
	local key = KEYS[1]
	local current = redis.call("GET", key)
	if current == false then
		return redis.error_reply("seat key not found")
	end
	local value = tonumber(current)
	if value <= 0 then
		return redis.error_reply("no seats available")
	end
	return redis.call("DECR", key)
`)

// ReserveSeat atomically takes one seat from the slot counter
func (r *RedisSeatCache) ReserveSeat(ctx context.Context, subjectID, availabilityID uint) (int64, error) {
	remaining, err := reserveSeatScript.Run(ctx, r.client, []string{seatKey(subjectID, availabilityID)}).Int64()
	if err != nil {
		switch err.Error() {
		case "seat key not found":
			return 0, interfaces.ErrSeatsNotTracked
		case "no seats available":
			return 0, interfaces.ErrNoSeats
		}
		return 0, fmt.Errorf("failed to reserve seat: %w", err)
	}
	return remaining, nil
}

// ReleaseSeat returns a previously reserved seat to the slot counter
func (r *RedisSeatCache) ReleaseSeat(ctx context.Context, subjectID, availabilityID uint) error {
	if err := r.client.Incr(ctx, seatKey(subjectID, availabilityID)).Err(); err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	return nil
}

// InitSeats sets the slot counter. SETNX keeps a concurrent initialization
// from clobbering reservations already taken against the counter.
func (r *RedisSeatCache) InitSeats(ctx context.Context, subjectID, availabilityID uint, seats int64) error {
	if err := r.client.SetNX(ctx, seatKey(subjectID, availabilityID), seats, 0).Err(); err != nil {
		return fmt.Errorf("failed to initialize seats: %w", err)
	}
	return nil
}

// DropSeats removes the slot counter
func (r *RedisSeatCache) DropSeats(ctx context.Context, subjectID, availabilityID uint) error {
	if err := r.client.Del(ctx, seatKey(subjectID, availabilityID)).Err(); err != nil {
		return fmt.Errorf("failed to drop seat counter: %w", err)
	}
	return nil
}
