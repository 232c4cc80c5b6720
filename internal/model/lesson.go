package model

type ExerciseType string

const (
	ExMultipleChoice ExerciseType = "multiple_choice"
	ExTranslate      ExerciseType = "translate"
	ExFillGap        ExerciseType = "fill_gap"
	ExAudioDictation ExerciseType = "audio_dictation"
)

// ValidExerciseType 检查练习类型取值是否合法
func ValidExerciseType(t ExerciseType) bool {
	switch t {
	case ExMultipleChoice, ExTranslate, ExFillGap, ExAudioDictation:
		return true
	}
	return false
}

// Phrase 课时中的例句对
type Phrase struct {
	Native string `json:"native"`
	Target string `json:"target"`
	Note   string `json:"note,omitempty"`
}

// swagger:model Lesson
type Lesson struct {
	UUIDBase
	CourseID string `gorm:"type:varchar(36);not null;index:idx_course_position,unique" json:"courseId"`
	// 课程内 1 起始的顺序号
	Position   int      `gorm:"not null;index:idx_course_position,unique" json:"order"`
	Title      string   `gorm:"size:255;not null" json:"title"`
	Objectives []string `gorm:"serializer:json" json:"objectives"`

	// 内容载荷，进度引擎不解释
	IntroText    string   `gorm:"type:text" json:"introText"`
	Phrases      []Phrase `gorm:"serializer:json" json:"phrases"`
	GrammarNotes string   `gorm:"type:text" json:"grammarNotes"`

	Exercises []Exercise `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"exercises"`

	PassThresholdPercent int `gorm:"default:70" json:"passThresholdPercent"`
	EstDurationMin       int `gorm:"default:10" json:"estDurationMin"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// MaxScore 课时满分 = 所有练习分值之和
func (l *Lesson) MaxScore() int {
	total := 0
	for _, ex := range l.Exercises {
		total += ex.Points
	}
	return total
}

// FindExercise 按 ID 查找课时内的练习
func (l *Lesson) FindExercise(exerciseID string) *Exercise {
	for i := range l.Exercises {
		if l.Exercises[i].ID == exerciseID {
			return &l.Exercises[i]
		}
	}
	return nil
}

// Exercise 课时内嵌练习，随课时一同管理，无独立生命周期
// swagger:model Exercise
type Exercise struct {
	UUIDBase
	LessonID string       `gorm:"type:varchar(36);not null;index" json:"-"`
	Position int          `gorm:"default:0" json:"-"`
	Type     ExerciseType `gorm:"type:enum('multiple_choice','translate','fill_gap','audio_dictation');not null" json:"type"`
	Prompt   string       `gorm:"type:text;not null" json:"prompt"`
	// 仅 multiple_choice 使用
	Options       []string `gorm:"serializer:json" json:"options,omitempty"`
	CorrectAnswer string   `gorm:"type:text" json:"correctAnswer,omitempty"`
	AudioURL      string   `gorm:"size:255" json:"audioUrl,omitempty"`
	ImageURL      string   `gorm:"size:255" json:"imageUrl,omitempty"`
	Points        int      `gorm:"default:10" json:"points"`
}

func (Exercise) TableName() string {
	return "exercises"
}
