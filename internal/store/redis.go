package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"spyfall/internal/domain"
)

const writeTimeout = 3 * time.Second

// Open connects to Redis and checks the connection
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

type op struct {
	code   string
	data   []byte
	delete bool
}

// RedisMirror copies room snapshots to Redis and publishes each update.
// Writes happen on a single background goroutine; when the queue is full
// the update is dropped, since a newer snapshot always follows.
type RedisMirror struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger

	queue chan op
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewRedisMirror starts a mirror writing under prefix with the given key TTL
func NewRedisMirror(rdb *redis.Client, prefix string, ttl time.Duration, queueSize int, logger *slog.Logger) *RedisMirror {
	if queueSize <= 0 {
		queueSize = 256
	}
	m := &RedisMirror{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
		queue:  make(chan op, queueSize),
		done:   make(chan struct{}),
	}

	m.wg.Add(1)
	go m.run()

	return m
}

// RoomKey is where a room's snapshot is stored
func (m *RedisMirror) RoomKey(code string) string {
	return m.prefix + ":room:" + code
}

// UpdatesChannel is where a room's snapshots are published
func (m *RedisMirror) UpdatesChannel(code string) string {
	return m.RoomKey(code) + ":updates"
}

// Save queues a snapshot for writing
func (m *RedisMirror) Save(snap domain.RoomSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		m.logger.Error("failed to encode snapshot", "roomCode", snap.Code, "error", err)
		return
	}
	m.enqueue(op{code: snap.Code, data: data})
}

// Delete queues removal of a room's snapshot
func (m *RedisMirror) Delete(code string) {
	m.enqueue(op{code: code, delete: true})
}

func (m *RedisMirror) enqueue(o op) {
	select {
	case <-m.done:
		return
	default:
	}

	select {
	case m.queue <- o:
	default:
		m.logger.Warn("mirror queue full, dropping update", "roomCode", o.code)
	}
}

// Ping checks the connection
func (m *RedisMirror) Ping(ctx context.Context) error {
	return m.rdb.Ping(ctx).Err()
}

// Close drains pending writes and stops the worker. It does not close the client.
func (m *RedisMirror) Close() {
	m.once.Do(func() { close(m.done) })
	m.wg.Wait()
}

func (m *RedisMirror) run() {
	defer m.wg.Done()

	for {
		select {
		case o := <-m.queue:
			m.apply(o)
		case <-m.done:
			for {
				select {
				case o := <-m.queue:
					m.apply(o)
				default:
					return
				}
			}
		}
	}
}

func (m *RedisMirror) apply(o op) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	key := m.RoomKey(o.code)
	if o.delete {
		if err := m.rdb.Del(ctx, key).Err(); err != nil {
			m.logger.Warn("failed to delete room snapshot", "roomCode", o.code, "error", err)
		}
		return
	}

	_, err := m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, o.data, m.ttl)
		pipe.Publish(ctx, m.UpdatesChannel(o.code), o.data)
		return nil
	})
	if err != nil {
		m.logger.Warn("failed to mirror room snapshot", "roomCode", o.code, "error", err)
	}
}
