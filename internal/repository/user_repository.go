package repository

import (
	"lingo_flow_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Badges").First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// AddXP 原子自增经验值并返回新的总值
func (r *UserRepository) AddXP(userID uint, delta int) (int, error) {
	err := r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("xp", gorm.Expr("xp + ?", delta)).
		Error
	if err != nil {
		return 0, err
	}

	var total int
	err = r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Select("xp").
		Scan(&total).
		Error
	return total, err
}

// UpdateStreak 写入连续学习天数和最后活跃时间
func (r *UserRepository) UpdateStreak(userID uint, days int, lastActive time.Time) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"streak_days":    days,
			"last_active_at": lastActive,
		}).
		Error
}

// AddBadge 集合语义：同名徽章重复插入被忽略
func (r *UserRepository) AddBadge(userID uint, name string) error {
	badge := model.Badge{UserID: userID, Name: name}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge).Error
}

func (r *UserRepository) BadgeNames(userID uint) ([]string, error) {
	var names []string
	err := r.DB.Model(&model.Badge{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("name", &names).
		Error
	return names, err
}

func (r *UserRepository) FindTopByXP(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("xp DESC").Limit(limit).Find(&users).Error
	return users, err
}

// IsDuplicateEmail 判断写入错误是否为邮箱唯一键冲突
func IsDuplicateEmail(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
