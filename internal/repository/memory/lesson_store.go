package memory

import (
	"sync"

	"lingo_flow_backend/internal/model"

	"gorm.io/gorm"
)

// LessonStore 内存版课程内容存储，测试与本地开发用。
// 与 gorm 实现保持同一套未找到语义（gorm.ErrRecordNotFound）。
type LessonStore struct {
	mu      sync.RWMutex
	lessons map[string]*model.Lesson
	courses map[string]*model.Course
}

func NewLessonStore() *LessonStore {
	return &LessonStore{
		lessons: make(map[string]*model.Lesson),
		courses: make(map[string]*model.Course),
	}
}

func (s *LessonStore) PutCourse(course *model.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = course
}

func (s *LessonStore) PutLesson(lesson *model.Lesson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[lesson.ID] = lesson
}

func (s *LessonStore) FindByID(id string) (*model.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lesson, ok := s.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *lesson
	copied.Exercises = append([]model.Exercise(nil), lesson.Exercises...)
	return &copied, nil
}

func (s *LessonStore) IDsByCourse(courseID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]*model.Lesson, 0)
	for _, lesson := range s.lessons {
		if lesson.CourseID == courseID {
			ordered = append(ordered, lesson)
		}
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Position < ordered[i].Position {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	ids := make([]string, 0, len(ordered))
	for _, lesson := range ordered {
		ids = append(ids, lesson.ID)
	}
	return ids, nil
}

func (s *LessonStore) Exists(courseID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.courses[courseID]
	return ok, nil
}
