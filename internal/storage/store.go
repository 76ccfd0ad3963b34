package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"freelance-assistant/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 封装 SQLite 数据库访问，负责任务、生成内容、提案与配置项的增删查。
// 并发调用下的唯一性由 job_id 唯一索引保证，而非显式加锁。
type Store struct {
	db *gorm.DB
}

// JobQueryOptions 提供任务列表查询条件。
type JobQueryOptions struct {
	Status model.Status
	Limit  int
	Offset int
}

// NewStore 创建 Store 并自动迁移数据表。
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&model.Job{}, &model.GeneratedContent{}, &model.Proposal{}, &model.Setting{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭底层数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// CreateJobIfAbsent 仅在 job_id 未出现过时插入，返回是否新建。
// 已有记录时是无操作，由唯一索引的冲突处理保证，不依赖调用方加锁。
func (s *Store) CreateJobIfAbsent(ctx context.Context, job *model.Job) (bool, error) {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoNothing: true,
	}).Create(job)
	if tx.Error != nil {
		return false, fmt.Errorf("create job: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// GetJob 按 job_id 获取任务。
func (s *Store) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	if err := s.db.WithContext(ctx).First(&job, "job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// ListJobs 返回按创建时间倒序的任务列表，支持状态过滤与分页。
func (s *Store) ListJobs(ctx context.Context, opts JobQueryOptions) ([]model.Job, error) {
	var jobs []model.Job
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	query := s.db.WithContext(ctx).Model(&model.Job{}).Order("created_at DESC")
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// CountJobs 返回满足状态条件的任务数量。
func (s *Store) CountJobs(ctx context.Context, status model.Status) (int64, error) {
	var total int64
	query := s.db.WithContext(ctx).Model(&model.Job{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return total, nil
}

// CountByStatus 按状态聚合任务数量。
func (s *Store) CountByStatus(ctx context.Context) (map[model.Status]int64, error) {
	type row struct {
		Status model.Status
		Total  int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).Model(&model.Job{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	counts := make(map[model.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// UpdateJobStatus 读取、校验状态机、写回，作为一个逻辑单元执行。
// 不合法的变更返回 ErrInvalidTransition，不落库。
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, to model.Status) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job model.Job
		if err := tx.First(&job, "job_id = ?", jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrJobNotFound
			}
			return fmt.Errorf("get job for status update: %w", err)
		}
		if !model.IsTransitionAllowed(job.Status, to) {
			return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, job.Status, to)
		}
		if err := tx.Model(&model.Job{}).Where("job_id = ?", jobID).
			Update("status", to).Error; err != nil {
			return fmt.Errorf("update job status: %w", err)
		}
		return nil
	})
}

// DeleteJob 删除任务及其全部生成内容与提案（级联）。
func (s *Store) DeleteJob(ctx context.Context, jobID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&model.GeneratedContent{}).Error; err != nil {
			return fmt.Errorf("delete job contents: %w", err)
		}
		if err := tx.Where("job_id = ?", jobID).Delete(&model.Proposal{}).Error; err != nil {
			return fmt.Errorf("delete job proposals: %w", err)
		}
		res := tx.Where("job_id = ?", jobID).Delete(&model.Job{})
		if res.Error != nil {
			return fmt.Errorf("delete job: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return model.ErrJobNotFound
		}
		return nil
	})
}

// CreateContent 追加一条生成内容记录。
func (s *Store) CreateContent(ctx context.Context, content *model.GeneratedContent) error {
	if err := s.db.WithContext(ctx).Create(content).Error; err != nil {
		return fmt.Errorf("create generated content: %w", err)
	}
	return nil
}

// ListContentByJob 返回任务的全部生成内容，按创建时间升序。
func (s *Store) ListContentByJob(ctx context.Context, jobID string) ([]model.GeneratedContent, error) {
	var contents []model.GeneratedContent
	if err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&contents).Error; err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return contents, nil
}

// CreateProposal 追加一条提案记录。
func (s *Store) CreateProposal(ctx context.Context, proposal *model.Proposal) error {
	if err := s.db.WithContext(ctx).Create(proposal).Error; err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

// ListProposalsByJob 返回任务的全部提案。
func (s *Store) ListProposalsByJob(ctx context.Context, jobID string) ([]model.Proposal, error) {
	var proposals []model.Proposal
	if err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return proposals, nil
}

// UpdateProposalText 编辑提案文本，提案是唯一允许创建后修改的生成产物。
func (s *Store) UpdateProposalText(ctx context.Context, proposalID uint, text string) error {
	tx := s.db.WithContext(ctx).Model(&model.Proposal{}).
		Where("id = ?", proposalID).
		Update("proposal_text", text)
	if tx.Error != nil {
		return fmt.Errorf("update proposal: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("update proposal: id %d not found", proposalID)
	}
	return nil
}

// MarkProposalSent 标记提案已发送，一次性写入，已发送的提案不再改写。
func (s *Store) MarkProposalSent(ctx context.Context, proposalID uint, sentAt time.Time) error {
	tx := s.db.WithContext(ctx).Model(&model.Proposal{}).
		Where("id = ? AND is_sent = ?", proposalID, false).
		Updates(map[string]any{"is_sent": true, "sent_at": sentAt})
	if tx.Error != nil {
		return fmt.Errorf("mark proposal sent: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("mark proposal sent: id %d not found or already sent", proposalID)
	}
	return nil
}

// GetSetting 读取配置项，不存在时返回空串与 false。
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var setting model.Setting
	if err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting: %w", err)
	}
	return setting.Value, true, nil
}

// SetSetting 写入配置项，存在即替换（后写覆盖）。
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.Setting{Key: key, Value: value})
	if tx.Error != nil {
		return fmt.Errorf("set setting: %w", tx.Error)
	}
	return nil
}
