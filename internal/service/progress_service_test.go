package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/repository/memory"
	"lingo_flow_backend/internal/service"
	"lingo_flow_backend/internal/util"
)

type testEnv struct {
	svc      *service.ProgressService
	lessons  *memory.LessonStore
	progress *memory.ProgressStore
	users    *memory.UserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	lessons := memory.NewLessonStore()
	progress := memory.NewProgressStore()
	users := memory.NewUserStore()

	user := &model.User{Name: "Alice", Email: "alice@example.com"}
	user.ID = 1
	users.Put(user)

	return &testEnv{
		svc:      service.NewProgressService(lessons, lessons, progress, users, time.UTC),
		lessons:  lessons,
		progress: progress,
		users:    users,
	}
}

func (e *testEnv) seedCourse(courseID string, lessons ...*model.Lesson) {
	course := &model.Course{Language: "es", Title: "Spanish", Level: model.LevelA1}
	course.ID = courseID
	e.lessons.PutCourse(course)
	for _, lesson := range lessons {
		lesson.CourseID = courseID
		e.lessons.PutLesson(lesson)
	}
}

func textExercise(id, answer string, points int) model.Exercise {
	ex := model.Exercise{
		Type:          model.ExTranslate,
		Prompt:        "Translate",
		CorrectAnswer: answer,
		Points:        points,
	}
	ex.ID = id
	return ex
}

func threeExerciseLesson() *model.Lesson {
	lesson := &model.Lesson{
		Title:                "Basics",
		Position:             1,
		PassThresholdPercent: 70,
		Exercises: []model.Exercise{
			textExercise("ex-1", "uno", 10),
			textExercise("ex-2", "dos", 10),
			textExercise("ex-3", "tres", 10),
		},
	}
	lesson.ID = "lesson-1"
	return lesson
}

func TestStartLessonIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse("course-1", threeExerciseLesson())

	first, err := env.svc.StartLesson(1, "lesson-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if first.Status != model.StatusNotStarted || first.MaxScore != 30 {
		t.Fatalf("unexpected fresh progress: %+v", first)
	}

	if _, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "uno"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	again, err := env.svc.StartLesson(1, "lesson-1")
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if again.Score != 10 || again.Status != model.StatusInProgress {
		t.Fatalf("restart must not reset progress, got %+v", again)
	}
}

func TestStartLessonUnknown(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.StartLesson(1, "missing"); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("expected lesson not found, got %v", err)
	}
}

func TestSubmitPassThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse("course-1", threeExerciseLesson())

	res, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "uno")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !res.Result.Passed || res.GainedXP != 10 || res.TotalXP != 10 {
		t.Fatalf("unexpected first result: %+v", res)
	}
	if res.LessonProgress.Percent != 33 || res.LessonProgress.Status != model.StatusInProgress {
		t.Fatalf("unexpected progress after one correct: %+v", res.LessonProgress)
	}

	res, err = env.svc.SubmitAnswer(1, "lesson-1", "ex-2", "dos")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// 20/30 为 67%，未达 70% 阈值
	if res.LessonProgress.Percent != 67 || res.LessonProgress.Status != model.StatusInProgress {
		t.Fatalf("expected 67%% in_progress, got %+v", res.LessonProgress)
	}
	if res.LessonProgress.CompletedAt != nil {
		t.Fatalf("completedAt must be unset before passing")
	}

	res, err = env.svc.SubmitAnswer(1, "lesson-1", "ex-3", "tres")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.LessonProgress.Percent != 100 || res.LessonProgress.Status != model.StatusPassed {
		t.Fatalf("expected passed at 100%%, got %+v", res.LessonProgress)
	}
	if res.LessonProgress.CompletedAt == nil {
		t.Fatalf("completedAt must be set on pass")
	}
	if res.TotalXP != 30 {
		t.Fatalf("expected 30 total xp, got %d", res.TotalXP)
	}

	user, _ := env.users.FindByID(1)
	if len(user.Badges) == 0 || user.Badges[0].Name != service.BadgeFirstLesson {
		t.Fatalf("expected first_lesson badge, got %+v", user.Badges)
	}
}

func TestRepeatCorrectAwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse("course-1", threeExerciseLesson())

	if _, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "uno"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	res, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "uno")
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	if !res.Result.Passed {
		t.Fatalf("repeat correct answer must still report passed")
	}
	if res.GainedXP != 0 || res.TotalXP != 0 {
		t.Fatalf("repeat correct answer must not award xp, got %+v", res)
	}
	if res.LessonProgress.Score != 10 {
		t.Fatalf("score must not double, got %d", res.LessonProgress.Score)
	}
	ep := res.LessonProgress.Exercise("ex-1")
	if ep == nil || ep.Attempts != 2 || !ep.EverCorrect {
		t.Fatalf("unexpected exercise record: %+v", ep)
	}

	user, _ := env.users.FindByID(1)
	if user.XP != 10 {
		t.Fatalf("expected 10 xp after duplicate submits, got %d", user.XP)
	}
}

func TestWrongAnswerAfterCorrectKeepsScore(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse("course-1", threeExerciseLesson())

	if _, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "uno"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	res, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "wrong")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if res.Result.Passed {
		t.Fatalf("wrong answer must not pass")
	}
	ep := res.LessonProgress.Exercise("ex-1")
	if !ep.EverCorrect || ep.PointsEarned != 10 || ep.LastAnswer != "wrong" {
		t.Fatalf("everCorrect and earned points must survive later misses: %+v", ep)
	}
	if res.LessonProgress.Score != 10 {
		t.Fatalf("score must not drop, got %d", res.LessonProgress.Score)
	}
}

func TestTextMatchingIgnoresCaseAndSpacing(t *testing.T) {
	lesson := &model.Lesson{
		Title:                "Greetings",
		Position:             1,
		PassThresholdPercent: 70,
		Exercises: []model.Exercise{
			textExercise("ex-1", "Hello", 10),
			textExercise("ex-2", "How are you?", 15),
		},
	}
	lesson.ID = "lesson-1"

	env := newTestEnv(t)
	env.seedCourse("course-1", lesson)

	res, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "hello")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !res.Result.Passed || res.GainedXP != 10 {
		t.Fatalf("case-insensitive match expected, got %+v", res)
	}
	if res.LessonProgress.Percent != 40 || res.LessonProgress.Status != model.StatusInProgress {
		t.Fatalf("expected 40%% in_progress, got %+v", res.LessonProgress)
	}

	res, err = env.svc.SubmitAnswer(1, "lesson-1", "ex-2", "  how   are you? ")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !res.Result.Passed || res.GainedXP != 15 || res.TotalXP != 25 {
		t.Fatalf("whitespace-normalized match expected, got %+v", res)
	}
	if res.LessonProgress.Status != model.StatusPassed || res.LessonProgress.CompletedAt == nil {
		t.Fatalf("lesson must pass at 100%%, got %+v", res.LessonProgress)
	}
}

func TestChoiceMatchingIsCaseSensitive(t *testing.T) {
	choice := model.Exercise{
		Type:          model.ExMultipleChoice,
		Prompt:        "Pick one",
		Options:       []string{"Hola", "Adios"},
		CorrectAnswer: "Hola",
		Points:        10,
	}
	choice.ID = "ex-1"
	lesson := &model.Lesson{Title: "Choice", Position: 1, PassThresholdPercent: 70, Exercises: []model.Exercise{choice}}
	lesson.ID = "lesson-1"

	env := newTestEnv(t)
	env.seedCourse("course-1", lesson)

	res, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "hola")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Result.Passed {
		t.Fatalf("choice answers compare exactly, lowercase must fail")
	}

	res, err = env.svc.SubmitAnswer(1, "lesson-1", "ex-1", " Hola ")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !res.Result.Passed {
		t.Fatalf("surrounding whitespace must be tolerated")
	}
}

func TestSubmitUnknownExerciseLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse("course-1", threeExerciseLesson())

	_, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-nope", "uno")
	if !errors.Is(err, util.ErrExerciseNotFound) {
		t.Fatalf("expected exercise not found, got %v", err)
	}

	if _, err := env.progress.Find(1, "lesson-1"); err == nil {
		t.Fatalf("failed submit must not create a progress record")
	}
	user, _ := env.users.FindByID(1)
	if user.XP != 0 {
		t.Fatalf("failed submit must not award xp")
	}
}

func TestConcurrentSubmitsAwardOnce(t *testing.T) {
	lesson := &model.Lesson{
		Title:                "Solo",
		Position:             1,
		PassThresholdPercent: 70,
		Exercises:            []model.Exercise{textExercise("ex-1", "uno", 10)},
	}
	lesson.ID = "lesson-1"

	env := newTestEnv(t)
	env.seedCourse("course-1", lesson)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "uno"); err != nil {
				t.Errorf("submit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	user, _ := env.users.FindByID(1)
	if user.XP != 10 {
		t.Fatalf("expected exactly one award of 10 xp, got %d", user.XP)
	}

	progress, err := env.progress.Find(1, "lesson-1")
	if err != nil {
		t.Fatalf("progress missing: %v", err)
	}
	if progress.Score != 10 || progress.Status != model.StatusPassed {
		t.Fatalf("unexpected progress: %+v", progress)
	}
	if ep := progress.Exercise("ex-1"); ep.Attempts != workers {
		t.Fatalf("all attempts must be counted, got %d", ep.Attempts)
	}
}

func TestGetCourseProgress(t *testing.T) {
	first := threeExerciseLesson()
	second := &model.Lesson{
		Title:                "Next",
		Position:             2,
		PassThresholdPercent: 70,
		Exercises:            []model.Exercise{textExercise("ex-9", "cuatro", 10)},
	}
	second.ID = "lesson-2"

	env := newTestEnv(t)
	env.seedCourse("course-1", first, second)

	if _, err := env.svc.SubmitAnswer(1, "lesson-1", "ex-1", "uno"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	cp, err := env.svc.GetCourseProgress(1, "course-1")
	if err != nil {
		t.Fatalf("course progress failed: %v", err)
	}
	// 未开始的 lesson-2 没有记录
	if len(cp.Lessons) != 1 || cp.Lessons[0].LessonID != "lesson-1" {
		t.Fatalf("expected only started lessons, got %+v", cp.Lessons)
	}
	if cp.Gamification.XP != 10 || cp.Gamification.StreakDays != 1 {
		t.Fatalf("unexpected gamification snapshot: %+v", cp.Gamification)
	}

	if _, err := env.svc.GetCourseProgress(1, "course-404"); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected course not found, got %v", err)
	}
}

func TestBadgeDedicatedLearner(t *testing.T) {
	env := newTestEnv(t)

	lessons := make([]*model.Lesson, 0, 5)
	for _, id := range []string{"l1", "l2", "l3", "l4", "l5"} {
		lesson := &model.Lesson{
			Title:                id,
			Position:             len(lessons) + 1,
			PassThresholdPercent: 70,
			Exercises:            []model.Exercise{textExercise("ex-"+id, "ok", 10)},
		}
		lesson.ID = id
		lessons = append(lessons, lesson)
	}
	env.seedCourse("course-1", lessons...)

	for _, lesson := range lessons {
		if _, err := env.svc.SubmitAnswer(1, lesson.ID, "ex-"+lesson.ID, "ok"); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	user, _ := env.users.FindByID(1)
	names := make(map[string]bool, len(user.Badges))
	for _, b := range user.Badges {
		names[b.Name] = true
	}
	if !names[service.BadgeFirstLesson] || !names[service.BadgeDedicatedLearner] {
		t.Fatalf("expected first_lesson and dedicated_learner, got %v", names)
	}
}
