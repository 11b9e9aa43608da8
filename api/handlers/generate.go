package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/api"
	"github.com/BaSui01/rfpflow/generate"
	"github.com/BaSui01/rfpflow/types"
)

// =============================================================================
// 🎯 单条生成处理器
// =============================================================================

// GenerateHandler 处理单条需求的同步生成请求
type GenerateHandler struct {
	svc    *generate.Service
	logger *zap.Logger
}

// NewGenerateHandler 创建生成处理器
func NewGenerateHandler(svc *generate.Service, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		svc:    svc,
		logger: logger.With(zap.String("handler", "generate")),
	}
}

// Generate 处理 POST /api/generate-response
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if req.RequirementID <= 0 {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidInput,
			"requirement_id must be positive", h.logger)
		return
	}

	selection := types.ProviderSelection(req.Model)
	if !selection.Valid() {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidInput,
			"model must be openai, deepseek, anthropic or moa", h.logger)
		return
	}

	outcome, matches, err := h.svc.Generate(r.Context(), req.RequirementID, selection, nil)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteSuccess(w, api.GenerateResponse{
		RequirementID:    outcome.RequirementID,
		FinalAnswer:      outcome.FinalAnswerText,
		SynthesisUsed:    outcome.SynthesisUsed,
		Status:           outcome.Status,
		ErrorKind:        outcome.ErrorKind,
		Providers:        outcome.ContributingProviderResults,
		SimilarQuestions: matches,
	})
}
