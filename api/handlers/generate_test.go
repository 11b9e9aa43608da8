package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/rfpflow/api"
	"github.com/BaSui01/rfpflow/generate"
	"github.com/BaSui01/rfpflow/llm"
	"github.com/BaSui01/rfpflow/prompt"
	"github.com/BaSui01/rfpflow/synthesis"
	"github.com/BaSui01/rfpflow/testutil/mocks"
	"github.com/BaSui01/rfpflow/types"
)

func newGenerateService(t *testing.T, st *mocks.MockStore) *generate.Service {
	t.Helper()
	logger := zaptest.NewLogger(t)

	registry := llm.NewRegistry(logger)
	registry.Register(types.ProviderOpenAI, mocks.NewMockProvider("openai").WithResponse("生成的回答"))

	return generate.NewService(generate.Options{
		Store:     st,
		Retriever: mocks.NewMockRetriever(),
		Registry:  registry,
		Engine:    synthesis.NewFirstAnswerEngine(),
		Builder:   prompt.NewBuilder(0, logger),
		Logger:    logger,
	})
}

func newGenerateMux(t *testing.T, st *mocks.MockStore) *http.ServeMux {
	t.Helper()
	h := NewGenerateHandler(newGenerateService(t, st), zaptest.NewLogger(t))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate-response", h.Generate)
	return mux
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGenerateHandler_Success(t *testing.T) {
	st := mocks.NewMockStore().WithRequirements(types.RequirementItem{
		ID:              1,
		RequirementText: "系统需支持 SSO 登录",
	})
	mux := newGenerateMux(t, st)

	rec := postJSON(mux, "/api/generate-response", `{"requirement_id":1,"model":"openai"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var gen api.GenerateResponse
	require.NoError(t, json.Unmarshal(data, &gen))

	assert.Equal(t, int64(1), gen.RequirementID)
	assert.Equal(t, "生成的回答", gen.FinalAnswer)
	assert.Equal(t, types.ItemSucceeded, gen.Status)
	assert.False(t, gen.SynthesisUsed)
	require.Len(t, gen.Providers, 1)
	assert.Equal(t, types.ProviderOpenAI, gen.Providers[0].ProviderID)
}

func TestGenerateHandler_InvalidModel(t *testing.T) {
	mux := newGenerateMux(t, mocks.NewMockStore())

	rec := postJSON(mux, "/api/generate-response", `{"requirement_id":1,"model":"gemini"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestGenerateHandler_NonPositiveID(t *testing.T) {
	mux := newGenerateMux(t, mocks.NewMockStore())

	rec := postJSON(mux, "/api/generate-response", `{"requirement_id":0,"model":"openai"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateHandler_RequirementNotFound(t *testing.T) {
	mux := newGenerateMux(t, mocks.NewMockStore())

	rec := postJSON(mux, "/api/generate-response", `{"requirement_id":42,"model":"openai"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "REQUIREMENT_NOT_FOUND", resp.Error.Code)
}

func TestGenerateHandler_MalformedBody(t *testing.T) {
	mux := newGenerateMux(t, mocks.NewMockStore())

	rec := postJSON(mux, "/api/generate-response", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
