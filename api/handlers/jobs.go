package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/api"
	"github.com/BaSui01/rfpflow/batch"
	"github.com/BaSui01/rfpflow/types"
)

// =============================================================================
// 📋 批量任务处理器
// =============================================================================

// JobsHandler 处理批量任务的提交、进度查询与取消
type JobsHandler struct {
	scheduler *batch.Scheduler
	logger    *zap.Logger
}

// NewJobsHandler 创建批量任务处理器
func NewJobsHandler(scheduler *batch.Scheduler, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{
		scheduler: scheduler,
		logger:    logger.With(zap.String("handler", "jobs")),
	}
}

// Submit 处理 POST /api/batch
func (h *JobsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req api.BatchRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	jobID, err := h.scheduler.Submit(req.RequirementIDs, types.ProviderSelection(req.Model))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("batch job submitted",
		zap.String("job_id", jobID),
		zap.Int("items_total", len(req.RequirementIDs)),
		zap.String("model", req.Model),
	)

	WriteJSON(w, http.StatusAccepted, Response{
		Success:   true,
		Data:      api.BatchSubmitResponse{JobID: jobID},
		Timestamp: time.Now(),
	})
}

// Progress 处理 GET /api/batch/{job_id}
func (h *JobsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if jobID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidInput,
			"job_id is required", h.logger)
		return
	}

	progress, err := h.scheduler.Progress(jobID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteSuccess(w, progress)
}

// Cancel 处理 POST /api/batch/{job_id}/cancel，幂等
func (h *JobsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if jobID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidInput,
			"job_id is required", h.logger)
		return
	}

	if err := h.scheduler.Cancel(jobID); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("batch job cancel requested", zap.String("job_id", jobID))

	WriteSuccess(w, api.CancelResponse{
		JobID:     jobID,
		Cancelled: true,
	})
}
