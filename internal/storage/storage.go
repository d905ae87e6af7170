package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/LJTian/OilNewsHub/internal/render"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyHTML      = "oilnews:report:html"
	keyJSON      = "oilnews:report:json"
	keyGenerated = "oilnews:report:generated_at"

	// 报告保留两天；定时任务失败时页面仍有旧数据可看
	reportTTL = 48 * time.Hour
)

// ErrNoReport 表示还没有任何一次运行完成
var ErrNoReport = errors.New("storage: no report yet")

// Snapshot 是一份已渲染的报告
type Snapshot struct {
	GeneratedAt time.Time
	HTML        []byte
	JSON        []byte
}

// Store 保存最近一次报告：进程内一份，配置了 Redis 时同时写入 Redis，
// 重启或多实例时从 Redis 读取
type Store struct {
	Redis *redis.Client

	mu     sync.RWMutex
	latest *Snapshot
	log    *zap.Logger
}

// NewStore redisAddr 为空时只使用内存
func NewStore(redisAddr string, log *zap.Logger) *Store {
	log = logger.OrNop(log)
	if redisAddr == "" {
		return &Store{log: log}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed", zap.String("addr", redisAddr), zap.Error(err))
	}

	return &Store{Redis: rdb, log: log}
}

// Save 渲染并保存报告。内存副本总会更新，Redis 写入失败时返回错误
func (s *Store) Save(ctx context.Context, r render.Report) error {
	htmlBytes, err := render.HTML(r)
	if err != nil {
		return err
	}
	jsonBytes, err := render.JSON(r)
	if err != nil {
		return err
	}
	snap := &Snapshot{GeneratedAt: r.GeneratedAt, HTML: htmlBytes, JSON: jsonBytes}

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	if s.Redis == nil {
		return nil
	}
	_, err = s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, keyHTML, snap.HTML, reportTTL)
		p.Set(ctx, keyJSON, snap.JSON, reportTTL)
		p.Set(ctx, keyGenerated, snap.GeneratedAt.Format(time.RFC3339), reportTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

// Latest 优先读 Redis，不可用时回退到内存副本
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	if s.Redis != nil {
		snap, err := s.fromRedis(ctx)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, redis.Nil) && s.log != nil {
			s.log.Warn("read cached report failed", zap.Error(err))
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReport
	}
	return s.latest, nil
}

func (s *Store) fromRedis(ctx context.Context) (*Snapshot, error) {
	vals, err := s.Redis.MGet(ctx, keyHTML, keyJSON, keyGenerated).Result()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			return nil, redis.Nil
		}
		switch i {
		case 0:
			snap.HTML = []byte(str)
		case 1:
			snap.JSON = []byte(str)
		case 2:
			t, err := time.Parse(time.RFC3339, str)
			if err != nil {
				return nil, fmt.Errorf("cached report time: %w", err)
			}
			snap.GeneratedAt = t
		}
	}
	return snap, nil
}

// Close 释放 Redis 连接
func (s *Store) Close() error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Close()
}
