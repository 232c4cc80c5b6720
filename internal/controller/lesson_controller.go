package controller

import (
	"errors"

	"lingo_flow_backend/internal/service"
	"lingo_flow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// lessonWriteError 创建/更新共用的错误映射
func lessonWriteError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx)
	case errors.Is(err, service.ErrInvalidExerciseType),
		errors.Is(err, service.ErrInvalidPassThreshold),
		errors.Is(err, service.ErrChoiceAnswerMismatch):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// Create godoc
// @Summary 创建课时
// @Description 在课程末尾追加课时，练习随课时一同创建
// @Tags 课时管理
// @Accept  json
// @Produce  json
// @Param   id path string true "课程ID"
// @Param   body body service.LessonInput true "课时内容"
// @Success 201 {object} util.Response{data=model.Lesson} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/courses/{id}/lessons [post]
func (c *LessonController) Create(ctx *gin.Context) {
	var input service.LessonInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Create(ctx.Param("id"), input)
	if err != nil {
		lessonWriteError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// Get godoc
// @Summary 课时详情（管理端）
// @Description 含练习正确答案，仅管理员可见
// @Tags 课时管理
// @Produce  json
// @Param   id path string true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson} "课时详情"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/admin/lessons/{id} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	lesson, err := c.LessonService.GetByID(ctx.Param("id"))
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

// Update godoc
// @Summary 更新课时
// @Description 整体替换课时内容。练习带原 ID 时保留学习者作答记录
// @Tags 课时管理
// @Accept  json
// @Produce  json
// @Param   id path string true "课时ID"
// @Param   body body service.LessonInput true "课时内容"
// @Success 200 {object} util.Response{data=model.Lesson} "更新成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/admin/lessons/{id} [put]
func (c *LessonController) Update(ctx *gin.Context) {
	var input service.LessonInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Update(ctx.Param("id"), input)
	if err != nil {
		lessonWriteError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// Delete godoc
// @Summary 删除课时
// @Tags 课时管理
// @Produce  json
// @Param   id path string true "课时ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/admin/lessons/{id} [delete]
func (c *LessonController) Delete(ctx *gin.Context) {
	if err := c.LessonService.Delete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"message": "deleted"})
}

// UploadAudio godoc
// @Summary 上传听写练习音频
// @Description 校验音频流有效后转存对象存储，返回播放地址与音频元数据
// @Tags 课时管理
// @Accept  multipart/form-data
// @Produce  json
// @Param   id path string true "课时ID"
// @Param   exId path string true "练习ID"
// @Param   audio formData file true "音频文件"
// @Success 200 {object} util.Response{data=object} "上传成功"
// @Failure 400 {object} util.Response "文件不合法"
// @Failure 404 {object} util.Response "课时或练习不存在"
// @Router /api/admin/lessons/{id}/exercises/{exId}/audio [post]
func (c *LessonController) UploadAudio(ctx *gin.Context) {
	file, err := ctx.FormFile("audio")
	if err != nil {
		util.BadRequest(ctx, "missing audio file")
		return
	}

	url, info, err := c.LessonService.UploadExerciseAudio(ctx.Request.Context(), ctx.Param("id"), ctx.Param("exId"), file)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrExerciseNotFound):
			util.NotFound(ctx)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, gin.H{"audioUrl": url, "audioInfo": info})
}
