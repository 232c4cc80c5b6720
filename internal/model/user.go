package model

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name              string   `gorm:"size:100;not null" json:"name"`
	Email             string   `gorm:"size:100;unique;not null" json:"email"`
	Password          string   `gorm:"size:100;not null" json:"-"`
	Role              UserRole `gorm:"type:enum('user','admin');default:'user'" json:"role"`
	Avatar            string   `gorm:"size:255" json:"avatar"`
	NativeLanguage    string   `gorm:"size:10;default:'en'" json:"nativeLanguage"`
	LearningLanguages []string `gorm:"serializer:json" json:"learningLanguages"`

	// 游戏化状态，仅由进度引擎写入
	XP           int       `gorm:"default:0" json:"xp"` // 总经验值，只增不减
	StreakDays   int       `gorm:"default:0" json:"streakDays"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	Badges       []Badge   `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Badge 成就徽章，同一里程碑对同一用户至多发放一次
type Badge struct {
	BaseModel
	UserID uint   `gorm:"index:idx_user_badge,unique;type:bigint unsigned;not null" json:"-"`
	Name   string `gorm:"size:50;index:idx_user_badge,unique;not null" json:"name"`
}

func (Badge) TableName() string {
	return "badges"
}
