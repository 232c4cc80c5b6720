package memory

import (
	"sync"

	"lingo_flow_backend/internal/model"

	"gorm.io/gorm"
)

type progressKey struct {
	userID   uint
	lessonID string
}

// ProgressStore 内存版进度存储。
// Mutate 持有 (user, lesson) 级互斥锁，与 gorm 实现的行锁语义一致。
type ProgressStore struct {
	mu      sync.Mutex
	records map[progressKey]*model.LessonProgress
	locks   map[progressKey]*sync.Mutex
	nextID  uint
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		records: make(map[progressKey]*model.LessonProgress),
		locks:   make(map[progressKey]*sync.Mutex),
	}
}

func (s *ProgressStore) keyLock(key progressKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func copyProgress(p *model.LessonProgress) *model.LessonProgress {
	copied := *p
	copied.Exercises = append([]model.ExerciseProgress(nil), p.Exercises...)
	return &copied
}

func (s *ProgressStore) Find(userID uint, lessonID string) (*model.LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[progressKey{userID, lessonID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyProgress(p), nil
}

func (s *ProgressStore) FindByLessons(userID uint, lessonIDs []string) ([]model.LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LessonProgress
	for _, lessonID := range lessonIDs {
		if p, ok := s.records[progressKey{userID, lessonID}]; ok {
			out = append(out, *copyProgress(p))
		}
	}
	return out, nil
}

func (s *ProgressStore) GetOrCreate(userID uint, lessonID string, maxScore int) (*model.LessonProgress, error) {
	key := progressKey{userID, lessonID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.records[key]; ok {
		return copyProgress(p), nil
	}
	s.nextID++
	p := &model.LessonProgress{
		UserID:   userID,
		LessonID: lessonID,
		Status:   model.StatusNotStarted,
		MaxScore: maxScore,
	}
	p.ID = s.nextID
	s.records[key] = p
	return copyProgress(p), nil
}

func (s *ProgressStore) Mutate(userID uint, lessonID string, maxScore int, apply func(*model.LessonProgress) error) (*model.LessonProgress, error) {
	key := progressKey{userID, lessonID}
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	current, ok := s.records[key]
	if !ok {
		s.nextID++
		current = &model.LessonProgress{
			UserID:   userID,
			LessonID: lessonID,
			Status:   model.StatusNotStarted,
			MaxScore: maxScore,
		}
		current.ID = s.nextID
	}
	working := copyProgress(current)
	s.mu.Unlock()

	if err := apply(working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.records[key] = working
	s.mu.Unlock()
	return copyProgress(working), nil
}

func (s *ProgressStore) CountPassed(userID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key, p := range s.records {
		if key.userID == userID && p.Status == model.StatusPassed {
			count++
		}
	}
	return count, nil
}
