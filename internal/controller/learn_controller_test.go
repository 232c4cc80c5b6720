package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lingo_flow_backend/internal/controller"
	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/repository/memory"
	"lingo_flow_backend/internal/service"
	"lingo_flow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func newLearnRouter(t *testing.T, userID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lessons := memory.NewLessonStore()
	progress := memory.NewProgressStore()
	users := memory.NewUserStore()

	user := &model.User{Name: "Alice", Email: "alice@example.com"}
	user.ID = 1
	users.Put(user)

	course := &model.Course{Language: "es", Title: "Spanish", Level: model.LevelA1}
	course.ID = "course-1"
	lessons.PutCourse(course)

	exercise := model.Exercise{
		Type:          model.ExTranslate,
		Prompt:        "Translate",
		CorrectAnswer: "uno",
		Points:        10,
	}
	exercise.ID = "ex-1"
	lesson := &model.Lesson{
		CourseID:             "course-1",
		Position:             1,
		Title:                "Basics",
		PassThresholdPercent: 70,
		Exercises:            []model.Exercise{exercise},
	}
	lesson.ID = "lesson-1"
	lessons.PutLesson(lesson)

	progressService := service.NewProgressService(lessons, lessons, progress, users, time.UTC)
	learn := controller.NewLearnController(nil, progressService)

	router := gin.New()
	group := router.Group("/api/learn")
	if userID != 0 {
		group.Use(func(c *gin.Context) {
			c.Set("user", &util.Claims{UserID: userID, Role: model.RoleUser})
		})
	}
	group.POST("/lessons/:id/start", learn.StartLesson)
	group.POST("/lessons/:id/exercises/:exId/submit", learn.SubmitAnswer)
	group.GET("/progress/courses/:courseId", learn.CourseProgress)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStartLessonEndpoint(t *testing.T) {
	router := newLearnRouter(t, 1)

	w := doJSON(router, http.MethodPost, "/api/learn/lessons/lesson-1/start", "")
	if w.Code != http.StatusOK {
		t.Fatalf("start returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int                  `json:"code"`
		Data model.LessonProgress `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Data.Status != model.StatusNotStarted || resp.Data.MaxScore != 10 {
		t.Fatalf("unexpected progress: %+v", resp.Data)
	}

	w = doJSON(router, http.MethodPost, "/api/learn/lessons/lesson-404/start", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown lesson must 404, got %d", w.Code)
	}
}

func TestStartLessonRequiresSession(t *testing.T) {
	router := newLearnRouter(t, 0)

	w := doJSON(router, http.MethodPost, "/api/learn/lessons/lesson-1/start", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	router := newLearnRouter(t, 1)

	w := doJSON(router, http.MethodPost, "/api/learn/lessons/lesson-1/exercises/ex-1/submit", `{"answer":"uno"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("submit returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int                  `json:"code"`
		Data service.SubmitResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !resp.Data.Result.Passed || resp.Data.GainedXP != 10 {
		t.Fatalf("unexpected result: %+v", resp.Data)
	}
	if resp.Data.LessonProgress == nil || resp.Data.LessonProgress.Status != model.StatusPassed {
		t.Fatalf("lesson must pass: %+v", resp.Data.LessonProgress)
	}

	// 缺失答案字段
	w = doJSON(router, http.MethodPost, "/api/learn/lessons/lesson-1/exercises/ex-1/submit", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing answer must 400, got %d", w.Code)
	}

	// 未知练习
	w = doJSON(router, http.MethodPost, "/api/learn/lessons/lesson-1/exercises/ex-404/submit", `{"answer":"uno"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown exercise must 404, got %d", w.Code)
	}
}

func TestCourseProgressEndpoint(t *testing.T) {
	router := newLearnRouter(t, 1)

	doJSON(router, http.MethodPost, "/api/learn/lessons/lesson-1/exercises/ex-1/submit", `{"answer":"uno"}`)

	w := doJSON(router, http.MethodGet, "/api/learn/progress/courses/course-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("progress returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int                    `json:"code"`
		Data service.CourseProgress `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Data.Lessons) != 1 || resp.Data.Gamification.XP != 10 {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}

	w = doJSON(router, http.MethodGet, "/api/learn/progress/courses/course-404", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown course must 404, got %d", w.Code)
	}
}
