package model

type CourseLevel string

const (
	LevelA1 CourseLevel = "A1"
	LevelA2 CourseLevel = "A2"
	LevelB1 CourseLevel = "B1"
	LevelB2 CourseLevel = "B2"
	LevelC1 CourseLevel = "C1"
	LevelC2 CourseLevel = "C2"
)

// CourseLevels CEFR 等级，按难度升序
var CourseLevels = []CourseLevel{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// ValidCourseLevel 检查等级取值是否合法
func ValidCourseLevel(l CourseLevel) bool {
	for _, v := range CourseLevels {
		if v == l {
			return true
		}
	}
	return false
}

// swagger:model Course
type Course struct {
	UUIDBase
	Language    string      `gorm:"size:10;not null;index" json:"language"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Level       CourseLevel `gorm:"type:enum('A1','A2','B1','B2','C1','C2');not null;index" json:"level"`
	Description string      `gorm:"type:text" json:"description"`
	CoverImage  string      `gorm:"size:255" json:"coverImage"`
	Tags        []string    `gorm:"serializer:json" json:"tags"`
	// 冗余字段，由课程管理服务在课时增删时维护
	LessonCount int `gorm:"default:0" json:"lessonCount"`
}

func (Course) TableName() string {
	return "courses"
}
