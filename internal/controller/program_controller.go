package controller

import (
	"caregiver_support_backend/internal/service"
	"caregiver_support_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProgramController struct {
	ProgramService    *service.ProgramService
	ProgressService   *service.ProgressService
	AssessmentService *service.AssessmentService
	ReminderService   *service.ReminderService
	UserService       *service.UserService
}

func NewProgramController(
	programService *service.ProgramService,
	progressService *service.ProgressService,
	assessmentService *service.AssessmentService,
	reminderService *service.ReminderService,
	userService *service.UserService,
) *ProgramController {
	return &ProgramController{
		ProgramService:    programService,
		ProgressService:   progressService,
		AssessmentService: assessmentService,
		ReminderService:   reminderService,
		UserService:       userService,
	}
}

// resolveLanguage 优先取 lang 查询参数，否则回落到用户资料里的语言
func (c *ProgramController) resolveLanguage(ctx *gin.Context, userID uint) string {
	if lang := ctx.Query("lang"); lang != "" {
		return lang
	}
	user, err := c.UserService.GetProfile(userID)
	if err != nil {
		return ""
	}
	return user.Language
}

func dayParam(ctx *gin.Context) (int, bool) {
	day, err := strconv.Atoi(ctx.Param("day"))
	if err != nil || day < 0 {
		util.BadRequest(ctx, "invalid day")
		return 0, false
	}
	return day, true
}

// respondProgramError 把领域错误映射为 HTTP 状态码
func respondProgramError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrDayNotConfigured),
		errors.Is(err, util.ErrTestNotConfigured),
		errors.Is(err, util.ErrTaskNotFound),
		errors.Is(err, util.ErrProgramNotFound):
		util.Error(ctx, 404, err.Error())
	case errors.Is(err, util.ErrDayDisabled),
		errors.Is(err, util.ErrDayLocked):
		util.Error(ctx, 403, err.Error())
	case errors.Is(err, util.ErrValidationFailure):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// GetDay godoc
// @Summary 获取某一天的内容
// @Description 按照护者当前等级与语言合成当天内容，到期的解锁会先生效
// @Tags 程序
// @Produce  json
// @Param   day path int true "天数(0-7)"
// @Param   lang query string false "语言"
// @Success 200 {object} util.Response{data=service.DayContentView} "成功"
// @Failure 403 {object} util.Response "未解锁或已停用"
// @Failure 404 {object} util.Response "未配置"
// @Security BearerAuth
// @Router /api/program/days/{day} [get]
func (c *ProgramController) GetDay(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	day, ok := dayParam(ctx)
	if !ok {
		return
	}

	view, err := c.ProgramService.GetDayContent(claims.UserID, day, c.resolveLanguage(ctx, claims.UserID))
	if err != nil {
		respondProgramError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetOverview godoc
// @Summary 程序总览
// @Description 返回全部 8 天的状态、进度与解锁时间
// @Tags 程序
// @Produce  json
// @Success 200 {object} util.Response{data=service.ProgramOverview} "成功"
// @Security BearerAuth
// @Router /api/program/overview [get]
func (c *ProgramController) GetOverview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	overview, err := c.ProgramService.GetOverview(claims.UserID, c.resolveLanguage(ctx, claims.UserID))
	if err != nil {
		respondProgramError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// SubmitTaskResponse godoc
// @Summary 提交任务完成记录
// @Description 同一任务重复提交以最新一次为准，进度随之重算
// @Tags 程序
// @Accept  json
// @Produce  json
// @Param   day path int true "天数(0-7)"
// @Param   taskId path string true "任务ID"
// @Param   body body service.TaskResponseRequest true "任务响应"
// @Success 200 {object} util.Response{data=service.ProgressSnapshot} "成功"
// @Failure 403 {object} util.Response "未解锁"
// @Failure 404 {object} util.Response "任务不存在"
// @Security BearerAuth
// @Router /api/program/days/{day}/tasks/{taskId}/response [post]
func (c *ProgramController) SubmitTaskResponse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	day, ok := dayParam(ctx)
	if !ok {
		return
	}
	taskID := ctx.Param("taskId")

	var req service.TaskResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snapshot, err := c.ProgressService.RecordResponse(claims.UserID, day, c.resolveLanguage(ctx, claims.UserID), taskID, req)
	if err != nil {
		respondProgramError(ctx, err)
		return
	}
	util.Success(ctx, snapshot)
}

// SubmitAssessment godoc
// @Summary 提交动态测试
// @Description 评分并分配内容等级；一次性测试重复提交返回已有结果与 409
// @Tags 程序
// @Accept  json
// @Produce  json
// @Param   day path int true "天数(0-7)"
// @Param   body body service.AssessmentSubmissionRequest true "作答"
// @Success 200 {object} util.Response{data=service.AssessmentResult} "成功"
// @Failure 400 {object} util.Response "作答不合法"
// @Failure 409 {object} util.Response "重复提交"
// @Security BearerAuth
// @Router /api/program/days/{day}/assessment [post]
func (c *ProgramController) SubmitAssessment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	day, ok := dayParam(ctx)
	if !ok {
		return
	}

	var req service.AssessmentSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AssessmentService.SubmitAssessment(claims.UserID, day, c.resolveLanguage(ctx, claims.UserID), req)
	if err != nil {
		if errors.Is(err, util.ErrDuplicateSubmission) {
			ctx.JSON(409, util.Response{Code: 409, Message: err.Error(), Data: result})
			return
		}
		respondProgramError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetReminders godoc
// @Summary 查询到期提醒
// @Description 返回当天此刻到期的提醒并记录触发时间，窗口内不重复
// @Tags 程序
// @Produce  json
// @Param   day path int true "天数(0-7)"
// @Success 200 {object} util.Response{data=[]service.DueReminder} "成功"
// @Security BearerAuth
// @Router /api/program/days/{day}/reminders [get]
func (c *ProgramController) GetReminders(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	day, ok := dayParam(ctx)
	if !ok {
		return
	}

	due, err := c.ReminderService.CheckReminders(claims.UserID, day, c.resolveLanguage(ctx, claims.UserID))
	if err != nil {
		respondProgramError(ctx, err)
		return
	}
	if due == nil {
		due = []service.DueReminder{}
	}
	util.Success(ctx, due)
}
