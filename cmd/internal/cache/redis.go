package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared by every server instance. Entries live under <prefix>q:<key>,
// tag membership in the set <prefix>t:<tag>, tag generations in the counter <prefix>g:<tag>,
// and invalidations are broadcast on <prefix>invalidate.
type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedis(rdb *redis.Client, ttl time.Duration, prefix string) *Redis {
	if prefix == "" {
		prefix = "inventory:"
	}
	return &Redis{rdb: rdb, ttl: ttl, prefix: prefix}
}

// ConnectRedis opens a client and checks it with PING.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	log.Printf("Redis connected (%s)", addr)
	return rdb, nil
}

func (c *Redis) entryKey(key string) string { return c.prefix + "q:" + key }
func (c *Redis) tagKey(tag Tag) string      { return c.prefix + "t:" + string(tag) }
func (c *Redis) genKey(tag Tag) string      { return c.prefix + "g:" + string(tag) }
func (c *Redis) channel() string            { return c.prefix + "invalidate" }

func (c *Redis) genKeys(tags []Tag) []string {
	keys := make([]string, len(tags))
	for i, t := range tags {
		keys[i] = c.genKey(t)
	}
	return keys
}

type mgetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func (c *Redis) version(ctx context.Context, r mgetter, tags []Tag) (Version, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	vals, err := r.MGet(ctx, c.genKeys(tags)...).Result()
	if err != nil {
		return 0, err
	}
	var v Version
	for _, val := range vals {
		s, ok := val.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad tag generation %q: %w", s, err)
		}
		v += Version(n)
	}
	return v, nil
}

func (c *Redis) Version(ctx context.Context, tags ...Tag) (Version, error) {
	return c.version(ctx, c.rdb, tags)
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set writes the entry in a transaction that watches the tag generations, so an
// Invalidate landing between the check and the write aborts it.
func (c *Redis) Set(ctx context.Context, key string, value []byte, v Version, tags ...Tag) error {
	k := c.entryKey(key)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.version(ctx, tx, tags)
		if err != nil {
			return err
		}
		if cur != v {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, value, c.ttl)
			for _, t := range tags {
				p.SAdd(ctx, c.tagKey(t), k)
			}
			return nil
		})
		return err
	}, c.genKeys(tags)...)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *Redis) Invalidate(ctx context.Context, tags ...Tag) error {
	if len(tags) == 0 {
		return nil
	}
	if _, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range c.genKeys(tags) {
			p.Incr(ctx, k)
		}
		return nil
	}); err != nil {
		return err
	}
	for _, t := range tags {
		tk := c.tagKey(t)
		keys, err := c.rdb.SMembers(ctx, tk).Result()
		if err != nil {
			return err
		}
		if err := c.rdb.Del(ctx, append(keys, tk)...).Err(); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(Event{Tags: tags})
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, c.channel(), payload).Err()
}

func (c *Redis) Subscribe(ctx context.Context, tags ...Tag) (<-chan Event, error) {
	ps := c.rdb.Subscribe(ctx, c.channel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	out := make(chan Event, 1)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("cache: bad invalidation payload: %v", err)
					continue
				}
				if intersects(tags, ev.Tags) {
					notify(out, ev)
				}
			}
		}
	}()
	return out, nil
}
