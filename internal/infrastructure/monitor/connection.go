package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pinger is satisfied by repository.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	store  Pinger
	driver string
	redis  *redislib.Client

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// New builds a monitor for store and the optional cache client.
func New(store Pinger, driver string, redis *redislib.Client, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		store:    store,
		driver:   driver,
		redis:    redis,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
	m.status = Status{StoreDriver: driver, CacheEnabled: redis != nil}

	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		logger.Error("schedule connection checks", zap.String("schedule", schedule), zap.Error(err))
	}
	return m
}

// Start runs one check synchronously and then schedules the rest.
func (m *Monitor) Start() {
	m.Refresh(context.Background())
	m.cron.Start()
	m.logger.Info("connection monitor started", zap.Duration("interval", m.interval))
}

// Stop waits for a running check to finish.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// IsReady reports whether the store answered the last check. The cache is
// optional and never affects readiness.
func (m *Monitor) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Store
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh pings every dependency concurrently and publishes the result.
func (m *Monitor) Refresh(ctx context.Context) {
	status := Status{StoreDriver: m.driver, CacheEnabled: m.redis != nil}

	var g errgroup.Group
	g.Go(func() error {
		status.Store = m.checkStore(ctx)
		return nil
	})
	if m.redis != nil {
		g.Go(func() error {
			status.Cache = m.checkRedis(ctx)
			return nil
		})
	}
	_ = g.Wait()
	status.LastCheck = time.Now().UTC()

	m.mu.Lock()
	changed := m.status.Store != status.Store
	m.status = status
	m.mu.Unlock()

	if changed {
		if status.Store {
			m.logger.Info("store reachable", zap.String("driver", m.driver))
		} else {
			m.logger.Warn("store unreachable", zap.String("driver", m.driver))
		}
	}
}

func (m *Monitor) checkStore(ctx context.Context) bool {
	if m.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := m.store.Ping(ctx); err != nil {
		m.logger.Debug("store ping failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkRedis(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}
