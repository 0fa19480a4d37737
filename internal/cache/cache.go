// Package cache holds the advisory Redis caches in front of the tracking and
// doctor-directory reads. Entries are short-lived and best-effort: a redis
// failure degrades to a repository read, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medtrack/clinic-queue/internal/booking"
)

const doctorsKey = "cache:doctors"

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		rdb: rdb,
		ttl: ttl,
	}
}

func trackingKey(token string) string {
	return fmt.Sprintf("cache:tracking:%s", token)
}

func (c *Cache) GetTracking(ctx context.Context, token string) (*booking.TrackingView, bool) {
	data, err := c.rdb.Get(ctx, trackingKey(token)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get tracking %s: %v", token, err)
		}
		return nil, false
	}

	var view booking.TrackingView
	if err := json.Unmarshal(data, &view); err != nil {
		log.Printf("cache: decode tracking %s: %v", token, err)
		return nil, false
	}
	return &view, true
}

func (c *Cache) SetTracking(ctx context.Context, view *booking.TrackingView) {
	data, err := json.Marshal(view)
	if err != nil {
		log.Printf("cache: encode tracking %s: %v", view.AppointmentID, err)
		return
	}
	if err := c.rdb.Set(ctx, trackingKey(view.AppointmentID), data, c.ttl).Err(); err != nil {
		log.Printf("cache: set tracking %s: %v", view.AppointmentID, err)
	}
}

func (c *Cache) DropTracking(ctx context.Context, token string) {
	if err := c.rdb.Del(ctx, trackingKey(token)).Err(); err != nil {
		log.Printf("cache: drop tracking %s: %v", token, err)
	}
}

func (c *Cache) GetDoctors(ctx context.Context) ([]booking.Doctor, bool) {
	data, err := c.rdb.Get(ctx, doctorsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get doctors: %v", err)
		}
		return nil, false
	}

	var doctors []booking.Doctor
	if err := json.Unmarshal(data, &doctors); err != nil {
		log.Printf("cache: decode doctors: %v", err)
		return nil, false
	}
	return doctors, true
}

func (c *Cache) SetDoctors(ctx context.Context, doctors []booking.Doctor) {
	data, err := json.Marshal(doctors)
	if err != nil {
		log.Printf("cache: encode doctors: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, doctorsKey, data, c.ttl).Err(); err != nil {
		log.Printf("cache: set doctors: %v", err)
	}
}
