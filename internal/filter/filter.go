package filter

import (
	"strings"

	"freelance-assistant/internal/model"
)

// Filter 是纯函数式过滤能力：输入输出都是有序任务列表，
// 保持顺序、不修改元素；各过滤器可独立测试、任意组合。
type Filter interface {
	Apply(jobs []model.Job) []model.Job
}

// Chain 按固定顺序依次应用过滤器，前一级输出作为后一级输入。
type Chain []Filter

// Apply 顺序执行链上每个过滤器。
func (c Chain) Apply(jobs []model.Job) []model.Job {
	for _, f := range c {
		jobs = f.Apply(jobs)
	}
	return jobs
}

// Complexity 保留复杂度不超过 Max 的任务。
type Complexity struct {
	Max int
}

// NewComplexity 创建复杂度过滤器，max 非法时取默认值 2。
func NewComplexity(max int) Complexity {
	if max <= 0 {
		max = model.ComplexityMedium
	}
	return Complexity{Max: max}
}

func (f Complexity) Apply(jobs []model.Job) []model.Job {
	kept := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Complexity <= f.Max {
			kept = append(kept, job)
		}
	}
	return kept
}

// Category 保留分类（忽略大小写）在允许集合内的任务。
type Category struct {
	allowed map[string]struct{}
}

// NewCategory 创建分类过滤器。
func NewCategory(allowed []string) Category {
	set := make(map[string]struct{}, len(allowed))
	for _, category := range allowed {
		if trimmed := strings.ToLower(strings.TrimSpace(category)); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return Category{allowed: set}
}

func (f Category) Apply(jobs []model.Job) []model.Job {
	kept := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if _, ok := f.allowed[strings.ToLower(job.Category)]; ok {
			kept = append(kept, job)
		}
	}
	return kept
}

// Price 按预算区间过滤。没有预算的任务视作"未知，不排除"，始终保留；
// Min/Max 为 nil 时对应边界不生效。
type Price struct {
	Min *float64
	Max *float64
}

func (f Price) Apply(jobs []model.Job) []model.Job {
	kept := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Budget == nil {
			kept = append(kept, job)
			continue
		}
		if f.Min != nil && *job.Budget < *f.Min {
			continue
		}
		if f.Max != nil && *job.Budget > *f.Max {
			continue
		}
		kept = append(kept, job)
	}
	return kept
}
