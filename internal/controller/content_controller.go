package controller

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/service"
	"caregiver_support_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContentController 管理端：结构、翻译与解锁配置的写入口
type ContentController struct {
	ContentService *service.ContentService
	ProgramService *service.ProgramService
}

func NewContentController(contentService *service.ContentService, programService *service.ProgramService) *ContentController {
	return &ContentController{
		ContentService: contentService,
		ProgramService: programService,
	}
}

// UpsertStructure godoc
// @Summary 写入某天的结构定义
// @Description 校验后整篇覆盖写入，并清除该天的合成缓存
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Param   body body model.DayStructure true "结构文档"
// @Success 200 {object} util.Response{data=model.DayStructure} "成功"
// @Failure 400 {object} util.Response "文档不合法"
// @Security BearerAuth
// @Router /api/admin/structures [put]
func (c *ContentController) UpsertStructure(ctx *gin.Context) {
	var structure model.DayStructure
	if err := ctx.ShouldBindJSON(&structure); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	saved, err := c.ContentService.UpsertStructure(&structure)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, saved)
}

// GetStructure godoc
// @Summary 读取某天的结构定义
// @Tags 内容管理
// @Produce  json
// @Param   day path int true "天数"
// @Success 200 {object} util.Response{data=model.DayStructure} "成功"
// @Failure 404 {object} util.Response "未配置"
// @Security BearerAuth
// @Router /api/admin/structures/{day} [get]
func (c *ContentController) GetStructure(ctx *gin.Context) {
	day, ok := dayParam(ctx)
	if !ok {
		return
	}

	structure, err := c.ContentService.GetStructure(day)
	if err == gorm.ErrRecordNotFound {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, structure)
}

// ListStructures godoc
// @Summary 全部结构定义
// @Tags 内容管理
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.DayStructure} "成功"
// @Security BearerAuth
// @Router /api/admin/structures [get]
func (c *ContentController) ListStructures(ctx *gin.Context) {
	structures, err := c.ContentService.ListStructures()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, structures)
}

// DeleteStructure godoc
// @Summary 删除某天的结构定义
// @Tags 内容管理
// @Produce  json
// @Param   day path int true "天数"
// @Success 200 {object} util.Response "成功"
// @Security BearerAuth
// @Router /api/admin/structures/{day} [delete]
func (c *ContentController) DeleteStructure(ctx *gin.Context) {
	day, ok := dayParam(ctx)
	if !ok {
		return
	}
	if err := c.ContentService.DeleteStructure(day); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UpsertTranslation godoc
// @Summary 写入某天某语言的翻译覆盖层
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Param   body body model.DayTranslation true "翻译文档"
// @Success 200 {object} util.Response{data=model.DayTranslation} "成功"
// @Failure 400 {object} util.Response "文档不合法"
// @Security BearerAuth
// @Router /api/admin/translations [put]
func (c *ContentController) UpsertTranslation(ctx *gin.Context) {
	var translation model.DayTranslation
	if err := ctx.ShouldBindJSON(&translation); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	saved, err := c.ContentService.UpsertTranslation(&translation)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, saved)
}

// ListTranslations godoc
// @Summary 某天已有的全部翻译
// @Tags 内容管理
// @Produce  json
// @Param   day path int true "天数"
// @Success 200 {object} util.Response{data=[]model.DayTranslation} "成功"
// @Security BearerAuth
// @Router /api/admin/translations/{day} [get]
func (c *ContentController) ListTranslations(ctx *gin.Context) {
	day, ok := dayParam(ctx)
	if !ok {
		return
	}
	translations, err := c.ContentService.ListTranslations(day)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, translations)
}

// DeleteTranslation godoc
// @Summary 删除某天某语言的翻译
// @Tags 内容管理
// @Produce  json
// @Param   day path int true "天数"
// @Param   language path string true "语言"
// @Success 200 {object} util.Response "成功"
// @Security BearerAuth
// @Router /api/admin/translations/{day}/{language} [delete]
func (c *ContentController) DeleteTranslation(ctx *gin.Context) {
	day, ok := dayParam(ctx)
	if !ok {
		return
	}
	if err := c.ContentService.DeleteTranslation(day, ctx.Param("language")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetWaitConfig godoc
// @Summary 读取全局解锁等待配置
// @Tags 内容管理
// @Produce  json
// @Success 200 {object} util.Response{data=model.UnlockWaitConfig} "成功"
// @Security BearerAuth
// @Router /api/admin/unlock-config [get]
func (c *ContentController) GetWaitConfig(ctx *gin.Context) {
	cfg, err := c.ContentService.GetWaitConfig()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, cfg)
}

type UpdateWaitConfigRequest struct {
	Day0ToDay1Hours  int `json:"day0ToDay1Hours" binding:"min=0"`
	DefaultWaitHours int `json:"defaultWaitHours" binding:"min=0"`
}

// UpdateWaitConfig godoc
// @Summary 更新全局解锁等待配置
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Param   body body UpdateWaitConfigRequest true "等待小时数"
// @Success 200 {object} util.Response{data=model.UnlockWaitConfig} "成功"
// @Security BearerAuth
// @Router /api/admin/unlock-config [put]
func (c *ContentController) UpdateWaitConfig(ctx *gin.Context) {
	var req UpdateWaitConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cfg, err := c.ContentService.UpdateWaitConfig(req.Day0ToDay1Hours, req.DefaultWaitHours)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, cfg)
}

// UnlockDay godoc
// @Summary 为照护者手动解锁某天
// @Tags 内容管理
// @Produce  json
// @Param   userId path int true "用户ID"
// @Param   day path int true "天数"
// @Success 200 {object} util.Response{data=model.DayModule} "成功"
// @Security BearerAuth
// @Router /api/admin/programs/{userId}/days/{day}/unlock [post]
func (c *ContentController) UnlockDay(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid userId")
		return
	}
	day, ok := dayParam(ctx)
	if !ok {
		return
	}

	module, err := c.ProgramService.AdminUnlockDay(uint(userID), day)
	if err != nil {
		respondProgramError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

type WaitOverrideRequest struct {
	Day0WaitHours    *int `json:"day0WaitHours,omitempty"`
	DefaultWaitHours *int `json:"defaultWaitHours,omitempty"`
}

// SetWaitOverrides godoc
// @Summary 设置照护者专属的解锁等待时间
// @Description 传 null 即恢复为全局配置
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Param   userId path int true "用户ID"
// @Param   body body WaitOverrideRequest true "覆盖值"
// @Success 200 {object} util.Response{data=model.CaregiverProgram} "成功"
// @Security BearerAuth
// @Router /api/admin/programs/{userId}/wait-overrides [put]
func (c *ContentController) SetWaitOverrides(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid userId")
		return
	}

	var req WaitOverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	program, err := c.ProgramService.SetWaitOverrides(uint(userID), req.Day0WaitHours, req.DefaultWaitHours)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, program)
}

// ListPrograms godoc
// @Summary 照护者程序列表
// @Tags 内容管理
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Security BearerAuth
// @Router /api/admin/programs [get]
func (c *ContentController) ListPrograms(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	programs, total, err := c.ProgramService.ListPrograms(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: programs, Total: total, Page: page, Limit: limit})
}
