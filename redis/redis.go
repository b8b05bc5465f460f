package redis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
	Ctx    = context.Background()
)

// SlotCacheTTL bounds staleness of cached slot listings; the booking
// transaction still guards against double-booking regardless.
const SlotCacheTTL = 30 * time.Second

func InitRedis() {
	Client = redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
		DB:   0,
	})

	// Test connection
	_, err := Client.Ping(Ctx).Result()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	fmt.Println("✅ Connected to Redis")
}

func slotKey(doctorID, date string, duration int) string {
	return fmt.Sprintf("slots:%s:%s:%d", doctorID, date, duration)
}

// GetSlots returns the cached slot listing JSON, or "" on miss. Cache
// errors degrade to a miss; the caller recomputes.
func GetSlots(ctx context.Context, doctorID, date string, duration int) string {
	if Client == nil {
		return ""
	}
	val, err := Client.Get(ctx, slotKey(doctorID, date, duration)).Result()
	if err != nil {
		return ""
	}
	return val
}

func SetSlots(ctx context.Context, doctorID, date string, duration int, payload string) {
	if Client == nil {
		return
	}
	Client.Set(ctx, slotKey(doctorID, date, duration), payload, SlotCacheTTL)
}

// InvalidateDoctorSlots drops every cached slot listing for the doctor.
// Called after bookings and window mutations.
func InvalidateDoctorSlots(ctx context.Context, doctorID string) {
	if Client == nil {
		return
	}
	keys, err := Client.Keys(ctx, fmt.Sprintf("slots:%s:*", doctorID)).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	Client.Del(ctx, keys...)
}
