package model

import (
	"math"
	"time"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusPassed     ProgressStatus = "passed"
)

// LessonProgress 每个 (用户, 课时) 一条记录，懒创建，永不删除
// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	UserID   uint   `gorm:"index:idx_user_lesson,unique;type:bigint unsigned;not null" json:"-"`
	LessonID string `gorm:"type:varchar(36);index:idx_user_lesson,unique;not null" json:"lesson"`

	Status      ProgressStatus `gorm:"type:enum('not_started','in_progress','passed');default:'not_started'" json:"status"`
	Score       int            `gorm:"default:0" json:"score"`
	MaxScore    int            `gorm:"default:0" json:"maxScore"`
	Percent     int            `gorm:"default:0" json:"percent"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`

	Exercises []ExerciseProgress `gorm:"foreignKey:LessonProgressID" json:"exercises"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// Exercise 返回某练习的子记录，不存在时返回 nil
func (p *LessonProgress) Exercise(exerciseID string) *ExerciseProgress {
	for i := range p.Exercises {
		if p.Exercises[i].ExerciseID == exerciseID {
			return &p.Exercises[i]
		}
	}
	return nil
}

// RecomputePercent percent 永远从 score/maxScore 推导，不单独存储
func (p *LessonProgress) RecomputePercent() {
	if p.MaxScore <= 0 {
		p.Percent = 0
		return
	}
	p.Percent = int(math.Round(float64(p.Score) / float64(p.MaxScore) * 100))
}

// ExerciseProgress 单个练习的作答状态
// swagger:model ExerciseProgress
type ExerciseProgress struct {
	BaseModel
	LessonProgressID uint   `gorm:"index:idx_progress_exercise,unique;type:bigint unsigned;not null" json:"-"`
	ExerciseID       string `gorm:"type:varchar(36);index:idx_progress_exercise,unique;not null" json:"exercise"`

	Attempts     int    `gorm:"default:0" json:"attempts"`
	EverCorrect  bool   `gorm:"default:false" json:"everCorrect"`
	LastAnswer   string `gorm:"type:text" json:"lastAnswer"`
	PointsEarned int    `gorm:"default:0" json:"pointsEarned"`
}

func (ExerciseProgress) TableName() string {
	return "exercise_progress"
}
