package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/BaSui01/rfpflow/generate"
	"github.com/BaSui01/rfpflow/internal/metrics"
	"github.com/BaSui01/rfpflow/types"
)

// Config 调度器配置。
type Config struct {
	// 同时运行的作业数上限，零值取 1
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs" json:"max_concurrent_jobs" env:"MAX_CONCURRENT_JOBS"`

	// 条目处理速率上限（条/秒），零值不限速
	ItemsPerSecond float64 `yaml:"items_per_second" json:"items_per_second" env:"ITEMS_PER_SECOND"`

	// 速率突发容量，零值取 1
	Burst int `yaml:"burst" json:"burst" env:"BURST"`
}

// DefaultConfig 返回默认调度配置。
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 2,
		ItemsPerSecond:    0,
		Burst:             1,
	}
}

// Scheduler 批量作业调度器。
// 作业内条目严格串行；作业间并发由信号量约束，超出的排队等待。
type Scheduler struct {
	svc     *generate.Service
	sem     *semaphore.Weighted
	limiter *rate.Limiter

	mu   sync.RWMutex
	jobs map[string]*Job

	wg      sync.WaitGroup
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewScheduler 创建调度器。
func NewScheduler(svc *generate.Service, cfg Config, collector *metrics.Collector, logger *zap.Logger) *Scheduler {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.ItemsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.ItemsPerSecond), burst)
	}

	return &Scheduler{
		svc:     svc,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrentJobs)),
		limiter: limiter,
		jobs:    make(map[string]*Job),
		metrics: collector,
		logger:  logger.With(zap.String("component", "batch")),
	}
}

// Submit 提交一个批量作业，立即返回作业 ID，处理在后台进行。
// 空批次返回 EMPTY_BATCH；非法 ID 或未知 selection 返回 INVALID_INPUT。
func (s *Scheduler) Submit(requirementIDs []int64, selection types.ProviderSelection) (string, error) {
	if len(requirementIDs) == 0 {
		return "", types.NewError(types.ErrEmptyBatch, "batch must contain at least one requirement")
	}
	if !selection.Valid() {
		return "", types.NewError(types.ErrInvalidInput, "unknown provider selection: "+string(selection))
	}
	for _, id := range requirementIDs {
		if id <= 0 {
			return "", types.NewError(types.ErrInvalidInput, "requirement ids must be positive")
		}
	}

	ids := append([]int64(nil), requirementIDs...)
	job := newJob(uuid.NewString(), ids, selection)

	s.mu.Lock()
	s.jobs[job.id] = job
	s.mu.Unlock()

	s.logger.Info("batch job submitted",
		zap.String("job_id", job.id),
		zap.Int("items", len(ids)),
		zap.String("selection", string(selection)),
	)

	s.wg.Add(1)
	go s.run(job)

	return job.id, nil
}

// Progress 返回作业进度快照。未知 ID 返回 JOB_NOT_FOUND。
func (s *Scheduler) Progress(jobID string) (types.JobProgress, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return types.JobProgress{}, types.NewError(types.ErrJobNotFound, "unknown job id: "+jobID)
	}
	return job.Progress(), nil
}

// Cancel 请求取消作业。幂等：重复取消与取消终态作业都是无操作。
// 未知 ID 返回 JOB_NOT_FOUND。
func (s *Scheduler) Cancel(jobID string) error {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return types.NewError(types.ErrJobNotFound, "unknown job id: "+jobID)
	}

	if job.State().Terminal() {
		return nil
	}
	job.cancel()
	s.logger.Info("batch job cancellation requested", zap.String("job_id", jobID))
	return nil
}

// Shutdown 取消所有未完成作业并等待后台 goroutine 退出。
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	for _, job := range s.jobs {
		if !job.State().Terminal() {
			job.cancel()
		}
	}
	s.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run 执行单个作业：获取并发许可后串行处理每条需求。
func (s *Scheduler) run(job *Job) {
	defer s.wg.Done()

	if err := s.sem.Acquire(job.ctx, 1); err != nil {
		// 排队期间被取消
		s.finish(job, s.drainRemaining(job, 0))
		return
	}
	defer s.sem.Release(1)

	job.setState(types.JobRunning)
	if s.metrics != nil {
		s.metrics.JobStarted()
		defer s.metrics.JobFinished()
	}

	for i, reqID := range job.requirementIDs {
		if job.isCancelled() {
			s.finish(job, s.drainRemaining(job, i))
			return
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(job.ctx); err != nil {
				s.finish(job, s.drainRemaining(job, i))
				return
			}
		}

		s.processItem(job, reqID)
	}

	s.finish(job, false)
}

// processItem 处理一条需求，失败与取消互相隔离。
func (s *Scheduler) processItem(job *Job, reqID int64) {
	start := time.Now()
	_, _, err := s.svc.Generate(job.ctx, reqID, job.selection, job.setStage)
	duration := time.Since(start)

	var status types.ItemStatus
	var errKind types.ErrorCode
	switch {
	case err == nil:
		status = types.ItemSucceeded
	case job.isCancelled():
		// 取消打断了进行中的调用，不算失败
		status = types.ItemSkippedCancelled
	default:
		status = types.ItemFailed
		errKind = types.GetErrorCode(err)
		s.logger.Warn("batch item failed",
			zap.String("job_id", job.id),
			zap.Int64("requirement_id", reqID),
			zap.String("error_kind", string(errKind)),
		)
	}

	job.recordItem(status, errKind)
	if s.metrics != nil {
		s.metrics.RecordItemProcessed(string(status), string(job.selection), duration)
	}
}

// drainRemaining 将从 next 起的剩余条目标记为跳过，返回 true 表示作业被取消。
func (s *Scheduler) drainRemaining(job *Job, next int) bool {
	for range job.requirementIDs[next:] {
		job.recordItem(types.ItemSkippedCancelled, "")
		if s.metrics != nil {
			s.metrics.RecordItemProcessed(string(types.ItemSkippedCancelled), string(job.selection), 0)
		}
	}
	return true
}

// finish 结算作业终态。
// 条目级失败（Provider 故障、需求不存在等）不升级为作业失败：
// JobFailed 只在没有任何成功条目且所有失败都是持久化故障时成立，
// 即存储对整个批次不可用。
func (s *Scheduler) finish(job *Job, cancelled bool) {
	progress := job.Progress()

	var state types.JobState
	switch {
	case cancelled || job.isCancelled():
		state = types.JobCancelled
	case progress.Breakdown.Succeeded == 0 && job.allFailuresPersistence():
		state = types.JobFailed
	default:
		state = types.JobCompleted
	}
	job.setState(state)

	if s.metrics != nil {
		s.metrics.RecordJobCompleted(string(state))
	}
	s.logger.Info("batch job finished",
		zap.String("job_id", job.id),
		zap.String("state", string(state)),
		zap.Int("succeeded", progress.Breakdown.Succeeded),
		zap.Int("failed", progress.Breakdown.Failed),
		zap.Int("skipped", progress.Breakdown.SkippedCancelled),
	)
}
