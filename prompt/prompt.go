package prompt

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/llm"
	"github.com/BaSui01/rfpflow/types"
)

// DefaultTokenBudget 单次请求允许的最大输入 Token 数。
const DefaultTokenBudget = 100000

// Builder 负责组装生成与合成两类 Prompt。
type Builder struct {
	tokenBudget int
	counter     *TokenCounter
	logger      *zap.Logger
}

// NewBuilder 创建 Prompt 构建器。tokenBudget <= 0 时使用默认预算。
func NewBuilder(tokenBudget int, logger *zap.Logger) *Builder {
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		tokenBudget: tokenBudget,
		counter:     NewTokenCounter(),
		logger:      logger,
	}
}

const generationSystem = `You are a senior RFP specialist with over 15 years of experience in wealth management software.
Your expertise lies in crafting precise, impactful, and business-aligned responses to RFP requirements.

**TASK**:
Develop a high-quality response to the current RFP requirement. Use ONLY the provided previous responses as source material, prioritizing content from responses with higher similarity scores.

**GUIDELINES**:
1. Professional, clear, and concise; accessible to business professionals.
2. Incorporate ONLY content from the provided previous responses.
3. Maintain a word count of approximately 200 words.
4. For every claim, reference the specific source with its similarity percentage.
5. Do NOT include any meta-text or commentary. The output must be submission-ready.
6. If no sources support a claim, do NOT include it.`

// BuildGeneration 组装单条需求的回答生成 Prompt。
// matches 必须保持检索返回的排序，编号即引用编号。
func (b *Builder) BuildGeneration(item types.RequirementItem, matches []types.SimilarityMatch) ([]llm.Message, error) {
	system := generationSystem
	if item.Category != "" {
		system += fmt.Sprintf("\n\nRequirement Category: %s.", item.Category)
	}

	var user strings.Builder
	if len(matches) > 0 {
		user.WriteString("You have the following previous responses with similarity scores to evaluate:\n\n")
		for i, m := range matches {
			fmt.Fprintf(&user, "**Source %d (Similarity: %.2f)**:\n", i+1, m.Score)
			fmt.Fprintf(&user, "Original Requirement: %s\n", m.MatchedRequirementText)
			fmt.Fprintf(&user, "Previous Response: %s\n", m.MatchedResponseText)
			if m.ReferenceCitation != "" {
				fmt.Fprintf(&user, "Reference: %s\n", m.ReferenceCitation)
			}
			user.WriteString("\n")
		}
	} else {
		user.WriteString("No previous responses were found for this requirement. State clearly which capabilities would typically address it, without inventing specific claims.\n\n")
	}
	fmt.Fprintf(&user, "**Current Requirement**: %s", item.RequirementText)

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user.String()},
	}

	if err := b.checkBudget(msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

const synthesisSystem = `You are an expert AI Synthesizer specialized in creating optimal RFP (Request for Proposal) responses.
Your task is to analyze AI-generated responses to the same RFP requirement, critically evaluate their strengths and weaknesses,
and synthesize them into a single, cohesive, high-quality response.

Focus on:
1. Extracting the most accurate, relevant, and specific content from each response
2. Ensuring technical accuracy and domain-appropriate terminology
3. Maintaining a professional, confident tone
4. Providing specific details rather than generic statements

The final response should stand alone as a complete, professional RFP response.`

// BuildSynthesis 组装多候选合成 Prompt。
// 只纳入成功的候选，保持各 Provider 的调用顺序。
func (b *Builder) BuildSynthesis(requirementText string, results []types.ProviderResult) ([]llm.Message, error) {
	var user strings.Builder
	fmt.Fprintf(&user, "I need you to synthesize the best possible RFP response by analyzing and combining elements from these AI-generated responses to the following requirement:\n\nREQUIREMENT: %s\n", requirementText)

	candidates := 0
	for _, r := range results {
		if r.Status != types.ResultOK || r.AnswerText == "" {
			continue
		}
		candidates++
		fmt.Fprintf(&user, "\nRESPONSE FROM %s:\n%s\n", strings.ToUpper(string(r.ProviderID)), r.AnswerText)
	}
	if candidates == 0 {
		return nil, types.NewError(types.ErrInvalidInput, "no successful candidates to synthesize")
	}

	user.WriteString("\nCreate a single synthesized response that incorporates the best elements from all responses, addresses any gaps or inaccuracies, and forms a comprehensive answer to the requirement.")

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: synthesisSystem},
		{Role: llm.RoleUser, Content: user.String()},
	}

	if err := b.checkBudget(msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// checkBudget 估算消息总 Token 数并与预算比较。
func (b *Builder) checkBudget(msgs []llm.Message) error {
	total := 0
	for _, m := range msgs {
		total += b.counter.Count(m.Content)
	}
	if total > b.tokenBudget {
		b.logger.Warn("prompt exceeds token budget",
			zap.Int("tokens", total),
			zap.Int("budget", b.tokenBudget),
		)
		return types.NewError(types.ErrContextTooLarge,
			fmt.Sprintf("prompt requires ~%d tokens, budget is %d", total, b.tokenBudget))
	}
	return nil
}
