package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BaSui01/rfpflow/types"
)

// Job 一次批量生成作业。字段由调度器 goroutine 写入，
// Progress 可被任意 goroutine 以任意频率调用。
type Job struct {
	id             string
	selection      types.ProviderSelection
	requirementIDs []int64
	createdAt      time.Time

	ctx       context.Context
	cancelFn  context.CancelFunc
	cancelled atomic.Bool

	mu           sync.RWMutex
	state        types.JobState
	processed    int
	currentStage string
	breakdown    types.ItemBreakdown

	// 失败条目中错误类别为 PERSISTENCE_FAILED 的数量。
	// 作业级失败只在所有失败都是持久化故障时成立。
	persistenceFailures int
}

func newJob(id string, requirementIDs []int64, selection types.ProviderSelection) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	return &Job{
		id:             id,
		selection:      selection,
		requirementIDs: requirementIDs,
		createdAt:      time.Now(),
		ctx:            ctx,
		cancelFn:       cancel,
		state:          types.JobPending,
	}
}

// ID 返回作业标识。
func (j *Job) ID() string { return j.id }

// cancel 标记取消并中断当前 Provider 调用。重复调用幂等。
func (j *Job) cancel() {
	if j.cancelled.CompareAndSwap(false, true) {
		j.cancelFn()
	}
}

// isCancelled 报告作业是否已被请求取消。
func (j *Job) isCancelled() bool {
	return j.cancelled.Load()
}

func (j *Job) setState(state types.JobState) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = state
	if state.Terminal() {
		j.currentStage = ""
	}
}

// State 返回当前状态。
func (j *Job) State() types.JobState {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

// setStage 更新当前条目所处的流水线阶段。
func (j *Job) setStage(stage string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.currentStage = stage
}

// recordItem 记录一条处理完的条目。errKind 仅在条目失败时有意义。
func (j *Job) recordItem(status types.ItemStatus, errKind types.ErrorCode) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.processed++
	switch status {
	case types.ItemSucceeded:
		j.breakdown.Succeeded++
	case types.ItemFailed:
		j.breakdown.Failed++
		if errKind == types.ErrPersistenceFailed {
			j.persistenceFailures++
		}
	case types.ItemSkippedCancelled:
		j.breakdown.SkippedCancelled++
	}
}

// allFailuresPersistence 报告是否每条失败都是持久化故障。
// 无失败条目时返回 false。
func (j *Job) allFailuresPersistence() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.breakdown.Failed > 0 && j.persistenceFailures == j.breakdown.Failed
}

// Progress 返回一致的进度快照。
func (j *Job) Progress() types.JobProgress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return types.JobProgress{
		JobID:          j.id,
		State:          j.state,
		ItemsTotal:     len(j.requirementIDs),
		ItemsProcessed: j.processed,
		CurrentStage:   j.currentStage,
		Breakdown:      j.breakdown,
	}
}
