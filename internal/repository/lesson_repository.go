package repository

import (
	"lingo_flow_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

// FindByID 读取课时及其按顺序排列的练习
func (r *LessonRepository) FindByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("Exercises", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&lesson, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// FindByCourse 课程内全部课时，按顺序号排列
func (r *LessonRepository) FindByCourse(courseID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Preload("Exercises", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("course_id = ?", courseID).Order("position ASC").Find(&lessons).Error
	return lessons, err
}

// IDsByCourse 仅取课时 ID 列表，进度查询用
func (r *LessonRepository) IDsByCourse(courseID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Pluck("id", &ids).
		Error
	return ids, err
}

// NextPosition 课程内下一个可用顺序号（1 起始）
func (r *LessonRepository) NextPosition(courseID string) (int, error) {
	var max int
	err := r.DB.Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).
		Error
	return max + 1, err
}

// Create 创建课时并同步课程的课时计数
func (r *LessonRepository) Create(lesson *model.Lesson, courses *CourseRepository) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lesson).Error; err != nil {
			return err
		}
		return courses.RecountLessons(tx, lesson.CourseID)
	})
}

// Update 整体保存课时。调用方负责保留已有练习的 ID，
// 练习集合以传入内容为准：旧集合中缺席的练习被删除
func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		keep := make([]string, 0, len(lesson.Exercises))
		for _, ex := range lesson.Exercises {
			keep = append(keep, ex.ID)
		}

		q := tx.Where("lesson_id = ?", lesson.ID)
		if len(keep) > 0 {
			q = q.Where("id NOT IN ?", keep)
		}
		if err := q.Delete(&model.Exercise{}).Error; err != nil {
			return err
		}

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(lesson).Error
	})
}

// Delete 删除课时与其练习并同步课程计数
func (r *LessonRepository) Delete(id string, courses *CourseRepository) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var lesson model.Lesson
		if err := tx.First(&lesson, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("lesson_id = ?", id).Delete(&model.Exercise{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Lesson{}, "id = ?", id).Error; err != nil {
			return err
		}
		return courses.RecountLessons(tx, lesson.CourseID)
	})
}
