package repository

import (
	"errors"
	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/util"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxMutateRetries 行锁冲突/死锁时的有限次重试
const maxMutateRetries = 3

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(userID uint, lessonID string) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.DB.Preload("Exercises").
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) FindByLessons(userID uint, lessonIDs []string) ([]model.LessonProgress, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var records []model.LessonProgress
	err := r.DB.Preload("Exercises").
		Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
		Find(&records).Error
	return records, err
}

// GetOrCreate 懒创建进度记录；已存在时原样返回，不重置任何状态
func (r *ProgressRepository) GetOrCreate(userID uint, lessonID string, maxScore int) (*model.LessonProgress, error) {
	p, err := r.Find(userID, lessonID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := model.LessonProgress{
		UserID:   userID,
		LessonID: lessonID,
		Status:   model.StatusNotStarted,
		MaxScore: maxScore,
	}
	if err := r.DB.Create(&created).Error; err != nil {
		// 并发首次 start：另一请求先建了记录，读回即可
		if strings.Contains(err.Error(), "Duplicate entry") {
			return r.Find(userID, lessonID)
		}
		return nil, err
	}
	return &created, nil
}

// Mutate 在事务内对 (user, lesson) 的进度执行读-改-写。
// 父记录持有 SELECT ... FOR UPDATE 行锁，同一记录上的并发提交被串行化，
// 锁冲突重试 maxMutateRetries 次后返回 util.ErrConflict。
func (r *ProgressRepository) Mutate(userID uint, lessonID string, maxScore int, apply func(*model.LessonProgress) error) (*model.LessonProgress, error) {
	var result *model.LessonProgress

	for attempt := 0; attempt < maxMutateRetries; attempt++ {
		err := r.DB.Transaction(func(tx *gorm.DB) error {
			var p model.LessonProgress
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ? AND lesson_id = ?", userID, lessonID).
				First(&p).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// 未 start 直接 submit 也要懒创建
				p = model.LessonProgress{
					UserID:   userID,
					LessonID: lessonID,
					Status:   model.StatusNotStarted,
					MaxScore: maxScore,
				}
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Where("lesson_progress_id = ?", p.ID).
					Order("created_at ASC").
					Find(&p.Exercises).Error; err != nil {
					return err
				}
			}

			if err := apply(&p); err != nil {
				return err
			}

			if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&p).Error; err != nil {
				return err
			}
			result = &p
			return nil
		})

		if err == nil {
			return result, nil
		}
		if !retryableMutateError(err) {
			return nil, err
		}
	}

	return nil, util.ErrConflict
}

// CountPassed 用户已通过的课时总数，徽章判定用
func (r *ProgressRepository) CountPassed(userID uint) (int, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusPassed).
		Count(&count).Error
	return int(count), err
}

// retryableMutateError 死锁、锁等待超时，以及懒创建竞态下的唯一键冲突
func retryableMutateError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Deadlock") ||
		strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "Duplicate entry")
}
