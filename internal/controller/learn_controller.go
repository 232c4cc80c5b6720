package controller

import (
	"errors"

	"lingo_flow_backend/internal/service"
	"lingo_flow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LearnController 学习者侧接口：课时内容、开始学习、提交作答、课程进度
type LearnController struct {
	LessonService   *service.LessonService
	ProgressService *service.ProgressService
}

func NewLearnController(lessonService *service.LessonService, progressService *service.ProgressService) *LearnController {
	return &LearnController{
		LessonService:   lessonService,
		ProgressService: progressService,
	}
}

// GetLesson godoc
// @Summary 课时学习内容
// @Description 课时全文与练习，练习不含正确答案
// @Tags 学习
// @Produce  json
// @Param   id path string true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson} "课时内容"
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/learn/lessons/{id} [get]
func (c *LearnController) GetLesson(ctx *gin.Context) {
	lesson, err := c.LessonService.GetForLearner(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// StartLesson godoc
// @Summary 开始学习课时
// @Description 懒创建进度记录，重复调用幂等，不重置已有进度
// @Tags 学习
// @Produce  json
// @Param   id path string true "课时ID"
// @Success 200 {object} util.Response{data=model.LessonProgress} "进度记录"
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/learn/lessons/{id}/start [post]
func (c *LearnController) StartLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.StartLesson(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}

// SubmitRequest 作答请求体
// swagger:model SubmitRequest
type SubmitRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// SubmitAnswer godoc
// @Summary 提交练习答案
// @Description 服务端判分并更新进度。首次答对计分，
// @Description 课时达标时返回获得的经验值
// @Tags 学习
// @Accept  json
// @Produce  json
// @Param   id path string true "课时ID"
// @Param   exId path string true "练习ID"
// @Param   body body SubmitRequest true "作答内容"
// @Success 200 {object} util.Response{data=service.SubmitResult} "判分结果"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "课时或练习不存在"
// @Failure 409 {object} util.Response "并发提交冲突"
// @Router /api/learn/lessons/{id}/exercises/{exId}/submit [post]
func (c *LearnController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.SubmitAnswer(claims.UserID, ctx.Param("id"), ctx.Param("exId"), req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrExerciseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrConflict):
			util.Conflict(ctx, "请稍后重试")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// CourseProgress godoc
// @Summary 课程学习进度
// @Description 该用户在课程内全部课时的进度加游戏化快照
// @Tags 学习
// @Produce  json
// @Param   courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseProgress} "进度汇总"
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/learn/progress/courses/{courseId} [get]
func (c *LearnController) CourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetCourseProgress(claims.UserID, ctx.Param("courseId"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}
