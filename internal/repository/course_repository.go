package repository

import (
	"lingo_flow_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// CourseFilter 课程目录的筛选条件
type CourseFilter struct {
	Query    string
	Language string
	Level    string
	Tags     []string
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// Delete 删除课程并级联删除其全部课时与练习
func (r *CourseRepository) Delete(id string) (int64, error) {
	var deletedLessons int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var lessonIDs []string
		if err := tx.Model(&model.Lesson{}).Where("course_id = ?", id).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}
		if len(lessonIDs) > 0 {
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&model.Exercise{}).Error; err != nil {
				return err
			}
			res := tx.Where("course_id = ?", id).Delete(&model.Lesson{})
			if res.Error != nil {
				return res.Error
			}
			deletedLessons = res.RowsAffected
		}
		return tx.Delete(&model.Course{}, "id = ?", id).Error
	})
	return deletedLessons, err
}

// List 分页查询，支持关键字/语言/等级/标签筛选
func (r *CourseRepository) List(filter CourseFilter, page, limit int, sort string) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})

	if filter.Query != "" {
		searchTerm := "%" + filter.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", searchTerm, searchTerm)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	for _, tag := range filter.Tags {
		// tags 以 JSON 数组存储，按元素值匹配
		query = query.Where("JSON_CONTAINS(tags, JSON_QUOTE(?))", tag)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch sort {
	case "createdAt", "created_at":
		order = "created_at ASC"
	case "-createdAt", "-created_at", "":
	case "title":
		order = "title ASC"
	case "-title":
		order = "title DESC"
	case "level":
		order = "level ASC"
	}

	offset := (page - 1) * limit
	err := query.Order(order).Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

// RecountLessons 将冗余的课时计数与实际记录数对齐
func (r *CourseRepository) RecountLessons(tx *gorm.DB, courseID string) error {
	if tx == nil {
		tx = r.DB
	}
	var count int64
	if err := tx.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&model.Course{}).Where("id = ?", courseID).Update("lesson_count", count).Error
}
