package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// workQueueKey is the nudge channel between the API and the mail worker.
// Only job IDs travel through redis; the jobs themselves live in postgres.
const workQueueKey = "jobhub:mail_jobs:ready"

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  -1, // blocking pops manage their own deadline
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// NotifyWork pushes a job id onto the ready list so a sleeping worker wakes
// immediately instead of waiting out its poll interval.
func (c *Client) NotifyWork(ctx context.Context, jobID string) error {
	return c.redisdb.LPush(ctx, workQueueKey, jobID).Err()
}

// WaitForWork blocks up to timeout for a nudge. (false, nil) means the wait
// timed out and the caller should fall back to polling.
func (c *Client) WaitForWork(ctx context.Context, timeout time.Duration) (bool, error) {
	_, err := c.redisdb.BLPop(ctx, timeout, workQueueKey).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
