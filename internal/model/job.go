package model

import (
	"time"

	"gorm.io/datatypes"
)

// 内容类型集合，决定生成器变体的选择。
const (
	CategoryReview   = "review"
	CategoryComment  = "comment"
	CategoryFeedback = "feedback"
	CategoryPost     = "post"
	CategoryWriting  = "writing"
)

// 任务复杂度（1 简单 / 2 中等 / 3 复杂）。
const (
	ComplexityEasy   = 1
	ComplexityMedium = 2
	ComplexityHard   = 3
)

// 预算类型。
const (
	BudgetTypeFixed  = "fixed"
	BudgetTypeHourly = "hourly"
)

// Job 表示从平台信息流发现的一个自由职业任务
// - JobID: 由任务 URL 派生的稳定摘要，重复抓取同一条目不会产生重复记录
// - Budget: 从描述文本提取的数字预算，缺失表示按小时计费
// - Status: 生成流水线状态机，见 status.go
// - SkillsRequired: 信息流标签，序列化存储
// - CreatedAt/UpdatedAt: 由 GORM 自动维护
type Job struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	JobID          string                      `gorm:"uniqueIndex;size:32" json:"job_id"`
	Platform       string                      `gorm:"default:upwork" json:"platform"`
	Title          string                      `json:"title"`
	Description    string                      `json:"description"`
	Category       string                      `json:"category"`
	Budget         *float64                    `json:"budget"`
	BudgetType     string                      `json:"budget_type"`
	Complexity     int                         `gorm:"default:1" json:"complexity"`
	Status         Status                      `gorm:"default:pending" json:"status"`
	PostedDate     *time.Time                  `json:"posted_date"`
	SkillsRequired datatypes.JSONSlice[string] `json:"skills_required"`
	URL            string                      `json:"url"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`

	Contents  []GeneratedContent `gorm:"foreignKey:JobID;references:JobID;constraint:OnDelete:CASCADE" json:"-"`
	Proposals []Proposal         `gorm:"foreignKey:JobID;references:JobID;constraint:OnDelete:CASCADE" json:"-"`
}

// GeneratedContent 是挂在任务下的 AI 产出文本，创建后不可变。
// 同一任务可以多次重新生成，每次新增一条记录。
type GeneratedContent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	JobID         string    `gorm:"index;size:32" json:"job_id"`
	ContentType   string    `json:"content_type"`
	GeneratedText string    `json:"generated_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// 提案类型。
const (
	ProposalTypeStandard = "standard"
	ProposalTypeShort    = "short"
)

// Proposal 是任务的求职信文本。ProposalText 创建后允许编辑，
// IsSent/SentAt 为一次性写入字段，仅由人工操作设置。
type Proposal struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	JobID        string     `gorm:"index;size:32" json:"job_id"`
	ProposalText string     `json:"proposal_text"`
	ProposalType string     `gorm:"default:standard" json:"proposal_type"`
	IsSent       bool       `gorm:"default:false" json:"is_sent"`
	SentAt       *time.Time `json:"sent_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Setting 为键值配置项，后写覆盖，无版本管理。
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex" json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
