package memory

import (
	"sync"
	"time"

	"lingo_flow_backend/internal/model"

	"gorm.io/gorm"
)

// UserStore 内存版用户/游戏化状态存储
type UserStore struct {
	mu    sync.Mutex
	users map[uint]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uint]*model.User)}
}

func (s *UserStore) Put(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func copyUser(u *model.User) *model.User {
	copied := *u
	copied.Badges = append([]model.Badge(nil), u.Badges...)
	return &copied
}

func (s *UserStore) FindByID(id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyUser(u), nil
}

func (s *UserStore) AddXP(userID uint, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	u.XP += delta
	return u.XP, nil
}

func (s *UserStore) UpdateStreak(userID uint, days int, lastActive time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.StreakDays = days
	u.LastActiveAt = lastActive
	return nil
}

func (s *UserStore) AddBadge(userID uint, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, b := range u.Badges {
		if b.Name == name {
			return nil
		}
	}
	u.Badges = append(u.Badges, model.Badge{UserID: userID, Name: name})
	return nil
}
