package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime/multipart"
	"time"

	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/repository"
	"lingo_flow_backend/internal/util"
	"lingo_flow_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	courseCacheKeyPrefix = "course:detail:"
	courseCacheTTL       = 10 * time.Minute
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
	LessonRepo *repository.LessonRepository
	Storage    *StorageService
	Redis      *redis.Client
}

func NewCourseService(courseRepo *repository.CourseRepository, lessonRepo *repository.LessonRepository, storage *StorageService, rdb *redis.Client) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		LessonRepo: lessonRepo,
		Storage:    storage,
		Redis:      rdb,
	}
}

// CourseListParams 课程目录查询参数
type CourseListParams struct {
	Page     int
	Limit    int
	Sort     string
	Query    string
	Language string
	Level    string
	Tags     []string
}

// CourseList 分页结果
type CourseList struct {
	Items      []model.Course `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

func (s *CourseService) List(params CourseListParams) (*CourseList, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}

	filter := repository.CourseFilter{
		Query:    params.Query,
		Language: params.Language,
		Level:    params.Level,
		Tags:     params.Tags,
	}
	courses, total, err := s.CourseRepo.List(filter, params.Page, params.Limit, params.Sort)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}

	return &CourseList{
		Items:      courses,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
	}, nil
}

// GetByID 读取课程详情，热点数据走 Redis 缓存
func (s *CourseService) GetByID(ctx context.Context, id string) (*model.Course, error) {
	cacheKey := courseCacheKeyPrefix + id

	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached model.Course
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("课程缓存读取失败", zap.String("course_id", id), zap.Error(err))
		}
	}

	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if data, jsonErr := json.Marshal(course); jsonErr == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, courseCacheTTL).Err(); err != nil {
				logger.Log.Warn("课程缓存写入失败", zap.String("course_id", id), zap.Error(err))
			}
		}
	}
	return course, nil
}

// CourseInput 管理端创建/更新课程的字段
type CourseInput struct {
	Language    string   `json:"language" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Level       string   `json:"level" binding:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// ErrInvalidCourseLevel 等级必须是 CEFR 六级之一
var ErrInvalidCourseLevel = errors.New("invalid course level, must be one of A1/A2/B1/B2/C1/C2")

func (s *CourseService) Create(input CourseInput) (*model.Course, error) {
	if !model.ValidCourseLevel(model.CourseLevel(input.Level)) {
		return nil, ErrInvalidCourseLevel
	}

	course := &model.Course{
		Language:    input.Language,
		Title:       input.Title,
		Level:       model.CourseLevel(input.Level),
		Description: input.Description,
		Tags:        input.Tags,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id string, input CourseInput) (*model.Course, error) {
	if !model.ValidCourseLevel(model.CourseLevel(input.Level)) {
		return nil, ErrInvalidCourseLevel
	}

	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	course.Language = input.Language
	course.Title = input.Title
	course.Level = model.CourseLevel(input.Level)
	course.Description = input.Description
	course.Tags = input.Tags

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return course, nil
}

// Delete 删除课程及其下全部课时与练习，返回删除的课时数
func (s *CourseService) Delete(ctx context.Context, id string) (int64, error) {
	exists, err := s.CourseRepo.Exists(id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, util.ErrCourseNotFound
	}

	deletedLessons, err := s.CourseRepo.Delete(id)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, id)
	return deletedLessons, nil
}

// UploadCover 上传课程封面图并更新课程记录
func (s *CourseService) UploadCover(ctx context.Context, id string, file *multipart.FileHeader) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	contentType, err := checkUploadType(file, []string{util.MimeImage})
	if err != nil {
		return nil, err
	}

	url, err := s.Storage.SaveUpload(ctx, "covers", file, contentType)
	if err != nil {
		return nil, err
	}

	course.CoverImage = url
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return course, nil
}

func (s *CourseService) invalidate(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, courseCacheKeyPrefix+id).Err(); err != nil {
		logger.Log.Warn("课程缓存失效失败", zap.String("course_id", id), zap.Error(err))
	}
}
