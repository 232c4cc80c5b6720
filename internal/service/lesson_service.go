package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"lingo_flow_backend/internal/model"
	"lingo_flow_backend/internal/repository"
	"lingo_flow_backend/internal/util"

	"gorm.io/gorm"
)

type LessonService struct {
	LessonRepo *repository.LessonRepository
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
}

func NewLessonService(lessonRepo *repository.LessonRepository, courseRepo *repository.CourseRepository, storage *StorageService) *LessonService {
	return &LessonService{
		LessonRepo: lessonRepo,
		CourseRepo: courseRepo,
		Storage:    storage,
	}
}

// ExerciseInput 课时内单个练习。更新时带上已有 ID 可保留
// 学习者在该练习上的作答记录。
type ExerciseInput struct {
	ID            string   `json:"id"`
	Type          string   `json:"type" binding:"required"`
	Prompt        string   `json:"prompt" binding:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
	AudioURL      string   `json:"audioUrl"`
	ImageURL      string   `json:"imageUrl"`
	Points        int      `json:"points"`
}

// LessonInput 管理端创建/更新课时的字段
type LessonInput struct {
	Title                string          `json:"title" binding:"required"`
	Objectives           []string        `json:"objectives"`
	IntroText            string          `json:"introText"`
	Phrases              []model.Phrase  `json:"phrases"`
	GrammarNotes         string          `json:"grammarNotes"`
	Exercises            []ExerciseInput `json:"exercises"`
	PassThresholdPercent *int            `json:"passThresholdPercent"`
	EstDurationMin       int             `json:"estDurationMin"`
}

var (
	ErrInvalidExerciseType  = errors.New("invalid exercise type")
	ErrInvalidPassThreshold = errors.New("passThresholdPercent must be between 0 and 100")
	ErrChoiceAnswerMismatch = errors.New("correct answer of a multiple_choice exercise must be one of its options")
)

func validateLessonInput(input *LessonInput) error {
	if input.PassThresholdPercent != nil {
		t := *input.PassThresholdPercent
		if t < 0 || t > 100 {
			return ErrInvalidPassThreshold
		}
	}
	for i := range input.Exercises {
		ex := &input.Exercises[i]
		if !model.ValidExerciseType(model.ExerciseType(ex.Type)) {
			return fmt.Errorf("%w: %s", ErrInvalidExerciseType, ex.Type)
		}
		if model.ExerciseType(ex.Type) == model.ExMultipleChoice {
			found := false
			for _, opt := range ex.Options {
				if opt == ex.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				return ErrChoiceAnswerMismatch
			}
		}
	}
	return nil
}

func buildExercises(lessonID string, inputs []ExerciseInput) []model.Exercise {
	exercises := make([]model.Exercise, 0, len(inputs))
	for i, in := range inputs {
		points := in.Points
		if points <= 0 {
			points = 10
		}
		ex := model.Exercise{
			LessonID:      lessonID,
			Position:      i + 1,
			Type:          model.ExerciseType(in.Type),
			Prompt:        in.Prompt,
			Options:       in.Options,
			CorrectAnswer: in.CorrectAnswer,
			AudioURL:      in.AudioURL,
			ImageURL:      in.ImageURL,
			Points:        points,
		}
		ex.ID = in.ID
		exercises = append(exercises, ex)
	}
	return exercises
}

// Create 在课程末尾追加课时
func (s *LessonService) Create(courseID string, input LessonInput) (*model.Lesson, error) {
	if err := validateLessonInput(&input); err != nil {
		return nil, err
	}

	exists, err := s.CourseRepo.Exists(courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrCourseNotFound
	}

	position, err := s.LessonRepo.NextPosition(courseID)
	if err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID:       courseID,
		Position:       position,
		Title:          input.Title,
		Objectives:     input.Objectives,
		IntroText:      input.IntroText,
		Phrases:        input.Phrases,
		GrammarNotes:   input.GrammarNotes,
		EstDurationMin: input.EstDurationMin,
	}
	if input.PassThresholdPercent != nil {
		lesson.PassThresholdPercent = *input.PassThresholdPercent
	} else {
		lesson.PassThresholdPercent = 70
	}
	lesson.ID = model.GenerateUUID()
	lesson.Exercises = buildExercises(lesson.ID, input.Exercises)

	if err := s.LessonRepo.Create(lesson, s.CourseRepo); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Update 整体替换课时内容。带 ID 的练习保留原记录，
// 学习者在其上的进度不受影响；不在新集合中的练习被删除。
func (s *LessonService) Update(id string, input LessonInput) (*model.Lesson, error) {
	if err := validateLessonInput(&input); err != nil {
		return nil, err
	}

	lesson, err := s.LessonRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	lesson.Title = input.Title
	lesson.Objectives = input.Objectives
	lesson.IntroText = input.IntroText
	lesson.Phrases = input.Phrases
	lesson.GrammarNotes = input.GrammarNotes
	if input.PassThresholdPercent != nil {
		lesson.PassThresholdPercent = *input.PassThresholdPercent
	}
	if input.EstDurationMin > 0 {
		lesson.EstDurationMin = input.EstDurationMin
	}
	lesson.Exercises = buildExercises(lesson.ID, input.Exercises)

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return s.LessonRepo.FindByID(id)
}

func (s *LessonService) Delete(id string) error {
	err := s.LessonRepo.Delete(id, s.CourseRepo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrLessonNotFound
	}
	return err
}

// GetByID 管理端读取，练习含正确答案
func (s *LessonService) GetByID(id string) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

// GetForLearner 学习者读取课时内容，正确答案被剥离
func (s *LessonService) GetForLearner(id string) (*model.Lesson, error) {
	lesson, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	stripAnswers(lesson)
	return lesson, nil
}

// ListByCourse 课程目录页的课时列表，同样不下发答案
func (s *LessonService) ListByCourse(courseID string) ([]model.Lesson, error) {
	exists, err := s.CourseRepo.Exists(courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrCourseNotFound
	}

	lessons, err := s.LessonRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		stripAnswers(&lessons[i])
	}
	return lessons, nil
}

// stripAnswers 判分在服务端完成，答案永不下发给学习者
func stripAnswers(lesson *model.Lesson) {
	for i := range lesson.Exercises {
		lesson.Exercises[i].CorrectAnswer = ""
	}
}

// UploadExerciseAudio 上传听写练习的音频。先落临时文件探测音频流，
// 确认有效后再转存到对象存储。
func (s *LessonService) UploadExerciseAudio(ctx context.Context, lessonID, exerciseID string, file *multipart.FileHeader) (string, *util.AudioInfo, error) {
	lesson, err := s.GetByID(lessonID)
	if err != nil {
		return "", nil, err
	}
	exercise := lesson.FindExercise(exerciseID)
	if exercise == nil {
		return "", nil, util.ErrExerciseNotFound
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedAudioExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", nil, fmt.Errorf("unsupported audio extension: %s", ext)
	}
	contentType, err := checkUploadType(file, []string{util.MimeAudio, util.MimeOctetStream})
	if err != nil {
		return "", nil, err
	}

	tmpPath, err := saveTemp(file)
	if err != nil {
		return "", nil, err
	}
	defer os.Remove(tmpPath)

	info, err := util.GetAudioInfo(tmpPath)
	if err != nil {
		return "", nil, err
	}

	url, err := s.Storage.SaveUpload(ctx, "audio", file, contentType)
	if err != nil {
		return "", nil, err
	}

	exercise.AudioURL = url
	if err := s.LessonRepo.Update(lesson); err != nil {
		return "", nil, err
	}
	return url, info, nil
}

func saveTemp(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "lingo_audio_*"+filepath.Ext(file.Filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
