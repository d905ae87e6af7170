package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/LJTian/OilNewsHub/internal/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrBusy 表示上一轮还没结束
var ErrBusy = errors.New("scheduler: a run is already in progress")

// Job 是一次完整的采集与生成
type Job func(ctx context.Context) error

// Scheduler 按 cron 表达式定时执行 Job，同一时刻最多只有一轮在跑；
// 定时触发和手动触发共用同一把锁
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	timeout time.Duration
	log     *zap.Logger

	running sync.Mutex
	wg      sync.WaitGroup
}

// New timeout 为单轮运行的上限，0 表示不限制
func New(spec string, job Job, timeout time.Duration, log *zap.Logger) (*Scheduler, error) {
	log = logger.OrNop(log)
	c := cron.New()
	s := &Scheduler{
		cron:    c,
		job:     job,
		timeout: timeout,
		log:     log,
	}

	_, err := c.AddFunc(spec, func() {
		if !s.Trigger() {
			s.log.Info("skip scheduled run, previous run still in progress")
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start 启动定时器，并立即在后台执行首轮
func (s *Scheduler) Start() {
	s.cron.Start()
	s.Trigger()
}

// Stop 停止定时器并等待正在执行的一轮结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// Trigger 在后台启动一轮；已有一轮在跑时返回 false
func (s *Scheduler) Trigger() bool {
	if !s.running.TryLock() {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()
		s.run(context.Background())
	}()
	return true
}

// RunOnce 同步执行一轮，方便命令行手动触发
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrBusy
	}
	defer s.running.Unlock()
	return s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.log.Info("start collect job")
	err := s.job(ctx)
	if err != nil {
		s.log.Error("collect job failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return err
	}
	s.log.Info("collect job done", zap.Duration("elapsed", time.Since(start)))
	return nil
}
