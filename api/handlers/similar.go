package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/api"
	"github.com/BaSui01/rfpflow/retrieval"
	"github.com/BaSui01/rfpflow/store"
	"github.com/BaSui01/rfpflow/types"
)

// =============================================================================
// 🔍 相似检索处理器
// =============================================================================

// SimilarHandler 处理相似历史问答的只读查询
type SimilarHandler struct {
	store     store.ResultStore
	retriever retrieval.Retriever
	topK      int
	minScore  float64
	logger    *zap.Logger
}

// NewSimilarHandler 创建相似检索处理器。
// topK、minScore 为零值时取包默认。
func NewSimilarHandler(st store.ResultStore, ret retrieval.Retriever, topK int, minScore float64, logger *zap.Logger) *SimilarHandler {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	if minScore <= 0 {
		minScore = retrieval.DefaultMinScore
	}
	return &SimilarHandler{
		store:     st,
		retriever: ret,
		topK:      topK,
		minScore:  minScore,
		logger:    logger.With(zap.String("handler", "similar")),
	}
}

// Similar 处理 GET /api/similar/{requirement_id}。
// 与生成流水线不同，这里检索失败直接上报，不做降级。
func (h *SimilarHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("requirement_id"), 10, 64)
	if err != nil || id <= 0 {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidInput,
			"requirement_id must be a positive integer", h.logger)
		return
	}

	item, err := h.store.LoadRequirement(r.Context(), id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	matches, err := h.retriever.Find(r.Context(), *item, h.topK, h.minScore)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteSuccess(w, api.SimilarResponse{
		RequirementID: id,
		Matches:       matches,
	})
}
