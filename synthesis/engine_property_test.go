package synthesis

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/BaSui01/rfpflow/prompt"
	"github.com/BaSui01/rfpflow/types"
)

var providerIDs = []types.ProviderID{
	types.ProviderOpenAI,
	types.ProviderAnthropic,
	types.ProviderDeepSeek,
}

func genResults(t *rapid.T) []types.ProviderResult {
	n := rapid.IntRange(0, 6).Draw(t, "n")
	results := make([]types.ProviderResult, n)
	for i := range results {
		id := providerIDs[rapid.IntRange(0, len(providerIDs)-1).Draw(t, "provider")]
		if rapid.Bool().Draw(t, "ok") {
			results[i] = types.ProviderResult{
				ProviderID: id,
				AnswerText: rapid.StringMatching(`[a-zA-Z ]{1,40}`).Draw(t, "answer"),
				Status:     types.ResultOK,
			}
		} else {
			results[i] = types.ProviderResult{
				ProviderID: id,
				Status:     types.ResultFailed,
				ErrorKind:  types.ErrProviderUnavailable,
			}
		}
	}
	return results
}

// 恒等律：恰好一个成功候选时，任何引擎的输出都是该候选本身，
// 且不触发合成调用。
func TestEngines_SingleSuccessIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		results := genResults(t)

		var ok []types.ProviderResult
		for _, r := range results {
			if r.Status == types.ResultOK && r.AnswerText != "" {
				ok = append(ok, r)
			}
		}
		if len(ok) != 1 {
			t.Skip("needs exactly one success")
		}

		p := &fakeProvider{content: "synthesized"}
		engines := []Engine{
			NewLLMEngine(p, prompt.NewBuilder(0, zap.NewNop()), 0, zap.NewNop()),
			NewFirstAnswerEngine(),
		}
		for _, e := range engines {
			out, err := e.Synthesize(context.Background(), "req", results)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != ok[0].AnswerText {
				t.Fatalf("got %q, want identity %q", out, ok[0].AnswerText)
			}
		}
		if len(p.requests) != 0 {
			t.Fatalf("identity case must not call the synthesis provider")
		}
	})
}

// 全失败时两种引擎都返回 ALL_PROVIDERS_FAILED。
func TestEngines_AllFailed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		results := genResults(t)
		for _, r := range results {
			if r.Status == types.ResultOK {
				t.Skip("needs zero successes")
			}
		}

		engines := []Engine{
			NewLLMEngine(&fakeProvider{}, prompt.NewBuilder(0, zap.NewNop()), 0, zap.NewNop()),
			NewFirstAnswerEngine(),
		}
		for _, e := range engines {
			_, err := e.Synthesize(context.Background(), "req", results)
			if types.GetErrorCode(err) != types.ErrAllProvidersFailed {
				t.Fatalf("got %v, want ALL_PROVIDERS_FAILED", err)
			}
		}
	})
}
