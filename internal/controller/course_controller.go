package controller

import (
	"errors"
	"strings"

	"lingo_flow_backend/internal/service"
	"lingo_flow_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
	LessonService *service.LessonService
}

func NewCourseController(courseService *service.CourseService, lessonService *service.LessonService) *CourseController {
	return &CourseController{
		CourseService: courseService,
		LessonService: lessonService,
	}
}

// List godoc
// @Summary 课程目录
// @Description 分页查询课程，支持关键字、语言、等级、标签筛选
// @Tags 课程
// @Produce  json
// @Param   page query int false "页码，默认1"
// @Param   limit query int false "每页条数，默认20"
// @Param   sort query string false "排序字段，如 -createdAt、title"
// @Param   q query string false "标题/描述关键字"
// @Param   language query string false "目标语言代码"
// @Param   level query string false "CEFR 等级 A1-C2"
// @Param   tags query string false "标签，逗号分隔"
// @Success 200 {object} util.Response{data=service.CourseList} "课程列表"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	params := service.CourseListParams{
		Page:     util.ParsePositiveInt(ctx.Query("page"), 1),
		Limit:    util.ParsePositiveInt(ctx.Query("limit"), 20),
		Sort:     ctx.Query("sort"),
		Query:    ctx.Query("q"),
		Language: ctx.Query("language"),
		Level:    ctx.Query("level"),
	}
	if tags := ctx.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				params.Tags = append(params.Tags, tag)
			}
		}
	}

	result, err := c.CourseService.List(params)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Get godoc
// @Summary 课程详情
// @Tags 课程
// @Produce  json
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "课程详情"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	course, err := c.CourseService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// Lessons godoc
// @Summary 课程的课时列表
// @Description 按顺序号返回课时，练习不含正确答案
// @Tags 课程
// @Produce  json
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Lesson} "课时列表"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/lessons [get]
func (c *CourseController) Lessons(ctx *gin.Context) {
	lessons, err := c.LessonService.ListByCourse(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lessons)
}

// Create godoc
// @Summary 创建课程
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Param   body body service.CourseInput true "课程信息"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var input service.CourseInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCourseLevel) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, course)
}

// Update godoc
// @Summary 更新课程
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Param   id path string true "课程ID"
// @Param   body body service.CourseInput true "课程信息"
// @Success 200 {object} util.Response{data=model.Course} "更新成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	var input service.CourseInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(ctx.Request.Context(), ctx.Param("id"), input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, service.ErrInvalidCourseLevel):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// Delete godoc
// @Summary 删除课程
// @Description 课程下的课时与练习一并删除
// @Tags 课程管理
// @Produce  json
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=object} "删除成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	deletedLessons, err := c.CourseService.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deletedLessons": deletedLessons})
}

// UploadCover godoc
// @Summary 上传课程封面
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Param   id path string true "课程ID"
// @Param   cover formData file true "封面图片"
// @Success 200 {object} util.Response{data=model.Course} "上传成功"
// @Failure 400 {object} util.Response "文件类型不合法"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/courses/{id}/cover [post]
func (c *CourseController) UploadCover(ctx *gin.Context) {
	file, err := ctx.FormFile("cover")
	if err != nil {
		util.BadRequest(ctx, "missing cover file")
		return
	}

	course, err := c.CourseService.UploadCover(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, course)
}
