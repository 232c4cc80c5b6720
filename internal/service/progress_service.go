package service

import (
	"errors"
	"time"

	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/util"
	"lingo_flow_backend/pkg/logger"
	"lingo_flow_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LessonStore 进度引擎需要的课时读取能力
type LessonStore interface {
	FindByID(id string) (*model.Lesson, error)
	IDsByCourse(courseID string) ([]string, error)
}

type CourseStore interface {
	Exists(id string) (bool, error)
}

// ProgressStore 进度记录存储。Mutate 负责把同一 (user, lesson)
// 上的并发读-改-写串行化。
type ProgressStore interface {
	Find(userID uint, lessonID string) (*model.LessonProgress, error)
	FindByLessons(userID uint, lessonIDs []string) ([]model.LessonProgress, error)
	GetOrCreate(userID uint, lessonID string, maxScore int) (*model.LessonProgress, error)
	Mutate(userID uint, lessonID string, maxScore int, apply func(*model.LessonProgress) error) (*model.LessonProgress, error)
	CountPassed(userID uint) (int, error)
}

// GamificationStore 用户游戏化状态的读写能力
type GamificationStore interface {
	FindByID(id uint) (*model.User, error)
	AddXP(userID uint, delta int) (int, error)
	UpdateStreak(userID uint, days int, lastActive time.Time) error
	AddBadge(userID uint, name string) error
}

// ProgressService 进度与判分引擎，整个系统的核心。
// 练习提交、课时通关、经验值、连续天数、徽章都从这里驱动。
type ProgressService struct {
	lessons  LessonStore
	courses  CourseStore
	progress ProgressStore
	users    GamificationStore
	loc      *time.Location

	now func() time.Time
}

func NewProgressService(lessons LessonStore, courses CourseStore, progress ProgressStore, users GamificationStore, loc *time.Location) *ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressService{
		lessons:  lessons,
		courses:  courses,
		progress: progress,
		users:    users,
		loc:      loc,
		now:      time.Now,
	}
}

// ExerciseResult 单次作答的判定结果
type ExerciseResult struct {
	Passed bool `json:"passed"`
	Points int  `json:"points"`
}

// SubmitResult 提交接口的完整返回。首次答对才带经验值字段。
type SubmitResult struct {
	Result         ExerciseResult        `json:"result"`
	LessonProgress *model.LessonProgress `json:"lessonProgress"`
	GainedXP       int                   `json:"gainedXp,omitempty"`
	TotalXP        int                   `json:"totalXp,omitempty"`
}

// GamificationSnapshot 随课程进度一起返回的用户游戏化状态
type GamificationSnapshot struct {
	XP           int       `json:"xp"`
	StreakDays   int       `json:"streakDays"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	Badges       []string  `json:"badges"`
}

type CourseProgress struct {
	Lessons      []model.LessonProgress `json:"lessons"`
	Gamification GamificationSnapshot   `json:"gamification"`
}

// StartLesson 懒创建该用户在该课时上的进度记录。
// 幂等：重复 start 原样返回已有记录，不重置任何状态。
func (s *ProgressService) StartLesson(userID uint, lessonID string) (*model.LessonProgress, error) {
	lesson, err := s.lessons.FindByID(lessonID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLessonNotFound)
	}
	return s.progress.GetOrCreate(userID, lessonID, lesson.MaxScore())
}

// SubmitAnswer 判分并更新进度，是唯一会发放经验值的入口。
// 同一练习首次答对得满分值，之后重复答对不再计分；
// 课时状态在每次提交后按当前内容重新推导。
func (s *ProgressService) SubmitAnswer(userID uint, lessonID, exerciseID, answer string) (*SubmitResult, error) {
	lesson, err := s.lessons.FindByID(lessonID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLessonNotFound)
	}
	exercise := lesson.FindExercise(exerciseID)
	if exercise == nil {
		return nil, util.ErrExerciseNotFound
	}

	passed := matchAnswer(exercise, answer)

	var gained int
	var newlyPassed bool
	progress, err := s.progress.Mutate(userID, lessonID, lesson.MaxScore(), func(p *model.LessonProgress) error {
		// Mutate 可能重试，闭包必须从零重算
		gained = 0
		newlyPassed = false
		p.MaxScore = lesson.MaxScore()

		ep := p.Exercise(exerciseID)
		if ep == nil {
			p.Exercises = append(p.Exercises, model.ExerciseProgress{
				LessonProgressID: p.ID,
				ExerciseID:       exerciseID,
			})
			ep = &p.Exercises[len(p.Exercises)-1]
		}

		ep.Attempts++
		ep.LastAnswer = answer
		if passed && !ep.EverCorrect {
			ep.EverCorrect = true
			ep.PointsEarned = exercise.Points
			p.Score += exercise.Points
			gained = exercise.Points
		}

		p.RecomputePercent()
		prev := p.Status
		p.Status = lessonStatus(lesson, p)
		if p.Status == model.StatusPassed && prev != model.StatusPassed {
			completedAt := s.now()
			p.CompletedAt = &completedAt
			newlyPassed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AnswerSubmissions.WithLabelValues(string(exercise.Type), resultLabel(passed)).Inc()

	result := &SubmitResult{
		LessonProgress: progress,
		Result:         ExerciseResult{Passed: passed},
	}
	if passed {
		result.Result.Points = exercise.Points
	}

	if gained > 0 {
		total, err := s.users.AddXP(userID, gained)
		if err != nil {
			return nil, err
		}
		monitoring.XPAwarded.Add(float64(gained))
		result.GainedXP = gained
		result.TotalXP = total

		if err := s.touchStreak(userID); err != nil {
			return nil, err
		}
	}

	if newlyPassed {
		monitoring.LessonsPassed.Inc()
		s.awardBadges(userID)
	}

	return result, nil
}

// GetCourseProgress 一个课程下的全部进度记录加游戏化快照。
// 未开始的课时没有记录，客户端按缺失处理。
func (s *ProgressService) GetCourseProgress(userID uint, courseID string) (*CourseProgress, error) {
	exists, err := s.courses.Exists(courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrCourseNotFound
	}

	lessonIDs, err := s.lessons.IDsByCourse(courseID)
	if err != nil {
		return nil, err
	}
	records, err := s.progress.FindByLessons(userID, lessonIDs)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.LessonProgress{}
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrUserNotFound)
	}
	badges := make([]string, 0, len(user.Badges))
	for _, b := range user.Badges {
		badges = append(badges, b.Name)
	}

	return &CourseProgress{
		Lessons: records,
		Gamification: GamificationSnapshot{
			XP:           user.XP,
			StreakDays:   user.StreakDays,
			LastActiveAt: user.LastActiveAt,
			Badges:       badges,
		},
	}, nil
}

// touchStreak 在发放经验值后推进连续学习天数
func (s *ProgressService) touchStreak(userID uint) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	now := s.now()
	days := NextStreak(user.StreakDays, user.LastActiveAt, now, s.loc)
	return s.users.UpdateStreak(userID, days, now)
}

// awardBadges 课时通关后评估一轮徽章规则。
// 徽章发放失败不影响本次提交的结果，只记日志。
func (s *ProgressService) awardBadges(userID uint) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		logger.Log.Warn("徽章评估读取用户失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	passedCount, err := s.progress.CountPassed(userID)
	if err != nil {
		logger.Log.Warn("徽章评估统计课时失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	stats := BadgeStats{
		PassedLessons: passedCount,
		StreakDays:    user.StreakDays,
		XP:            user.XP,
	}
	for _, name := range QualifiedBadges(stats) {
		if err := s.users.AddBadge(userID, name); err != nil {
			logger.Log.Warn("徽章发放失败",
				zap.Uint("user_id", userID),
				zap.String("badge", name),
				zap.Error(err))
		}
	}
}

// lessonStatus 从作答记录推导课时状态：
// passed 当且仅当百分比达到阈值且每个练习都答对过
func lessonStatus(lesson *model.Lesson, p *model.LessonProgress) model.ProgressStatus {
	attempted := false
	for i := range p.Exercises {
		if p.Exercises[i].Attempts > 0 {
			attempted = true
			break
		}
	}
	if !attempted {
		return model.StatusNotStarted
	}

	if len(lesson.Exercises) > 0 &&
		p.Percent >= lesson.PassThresholdPercent &&
		allEverCorrect(lesson, p) {
		return model.StatusPassed
	}
	return model.StatusInProgress
}

func allEverCorrect(lesson *model.Lesson, p *model.LessonProgress) bool {
	for i := range lesson.Exercises {
		ep := p.Exercise(lesson.Exercises[i].ID)
		if ep == nil || !ep.EverCorrect {
			return false
		}
	}
	return true
}

// matchAnswer 选择题精确匹配，文本题归一化后忽略大小写
func matchAnswer(ex *model.Exercise, answer string) bool {
	if ex.Type == model.ExMultipleChoice {
		return util.MatchChoiceAnswer(answer, ex.CorrectAnswer)
	}
	return util.MatchTextAnswer(answer, ex.CorrectAnswer)
}

func resultLabel(passed bool) string {
	if passed {
		return "correct"
	}
	return "incorrect"
}

func notFoundAs(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
