package store

import "time"

// RequirementResponse excel_requirement_responses 表的 GORM 模型。
// 每个 Provider 的候选回答落在独立列，similar_questions 保存
// 检索引用的 JSON 数组。
type RequirementResponse struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	Category          string    `gorm:"column:category"`
	Requirement       string    `gorm:"column:requirement"`
	RFPName           string    `gorm:"column:rfp_name"`
	UploadedBy        string    `gorm:"column:uploaded_by"`
	OpenAIResponse    string    `gorm:"column:openai_response"`
	DeepSeekResponse  string    `gorm:"column:deepseek_response"`
	AnthropicResponse string    `gorm:"column:anthropic_response"`
	FinalResponse     string    `gorm:"column:final_response"`
	SimilarQuestions  string    `gorm:"column:similar_questions"`
	ModelProvider     string    `gorm:"column:model_provider"`
	Timestamp         time.Time `gorm:"column:timestamp"`
}

// TableName 指定表名。
func (RequirementResponse) TableName() string {
	return "excel_requirement_responses"
}
