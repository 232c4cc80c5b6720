package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/repository"
	"lingo_flow_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Progress ProgressStore
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, progress ProgressStore, storage *StorageService) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Progress: progress,
		Storage:  storage,
	}
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ProfileInput 可由用户本人更新的资料字段
type ProfileInput struct {
	Name              string   `json:"name"`
	NativeLanguage    string   `json:"nativeLanguage"`
	LearningLanguages []string `json:"learningLanguages"`
}

func (s *UserService) UpdateProfile(id uint, input ProfileInput) (*model.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.NativeLanguage != "" {
		user.NativeLanguage = input.NativeLanguage
	}
	if input.LearningLanguages != nil {
		user.LearningLanguages = input.LearningLanguages
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword 校验旧密码后更新
func (s *UserService) ChangePassword(id uint, oldPassword, newPassword string) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.UserRepo.Update(user)
}

// UploadAvatar 上传头像并更新用户记录
func (s *UserService) UploadAvatar(ctx context.Context, id uint, file *multipart.FileHeader) (*model.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	contentType, err := checkUploadType(file, []string{util.MimeImage})
	if err != nil {
		return nil, err
	}
	url, err := s.Storage.SaveUpload(ctx, "avatars", file, contentType)
	if err != nil {
		return nil, err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// BadgeView 已获徽章及其说明
type BadgeView struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// GamificationSummary 用户中心的游戏化总览
type GamificationSummary struct {
	XP            int         `json:"xp"`
	Level         int         `json:"level"`
	NextLevelXP   int         `json:"nextLevelXp"`
	StreakDays    int         `json:"streakDays"`
	LastActiveAt  time.Time   `json:"lastActiveAt"`
	PassedLessons int         `json:"passedLessons"`
	Badges        []BadgeView `json:"badges"`
}

func (s *UserService) GamificationSummary(id uint) (*GamificationSummary, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	passed, err := s.Progress.CountPassed(id)
	if err != nil {
		return nil, err
	}

	level, nextLevelXP := CalculateLevel(user.XP)

	badges := make([]BadgeView, 0, len(user.Badges))
	for _, b := range user.Badges {
		badges = append(badges, BadgeView{
			Name:        b.Name,
			Description: badgeDescription(b.Name),
			EarnedAt:    b.CreatedAt,
		})
	}

	return &GamificationSummary{
		XP:            user.XP,
		Level:         level,
		NextLevelXP:   nextLevelXP,
		StreakDays:    user.StreakDays,
		LastActiveAt:  user.LastActiveAt,
		PassedLessons: passed,
		Badges:        badges,
	}, nil
}

// LeaderboardEntry 经验值排行榜条目
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	XP         int    `json:"xp"`
	StreakDays int    `json:"streakDays"`
}

func (s *UserService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	users, err := s.UserRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			Name:       u.Name,
			Avatar:     u.Avatar,
			XP:         u.XP,
			StreakDays: u.StreakDays,
		})
	}
	return entries, nil
}

func badgeDescription(name string) string {
	for _, rule := range badgeRules {
		if rule.Name == name {
			return rule.Description
		}
	}
	return ""
}
