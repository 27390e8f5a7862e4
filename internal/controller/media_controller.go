package controller

import (
	"caregiver_support_backend/internal/service"
	"caregiver_support_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MediaController struct {
	MediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// Upload godoc
// @Summary 上传视频/音频素材
// @Description 探测时长后入库，供日内容任务引用
// @Tags 素材
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "媒体文件"
// @Success 201 {object} util.Response{data=model.MediaAsset} "创建成功"
// @Failure 400 {object} util.Response "文件类型不支持或探测失败"
// @Security BearerAuth
// @Router /api/admin/media [post]
func (c *MediaController) Upload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	asset, err := c.MediaService.UploadMedia(ctx.Request.Context(), claims.UserID, header)
	if err != nil {
		if errors.Is(err, util.ErrValidationFailure) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, asset)
}

// List godoc
// @Summary 素材列表
// @Tags 素材
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Security BearerAuth
// @Router /api/admin/media [get]
func (c *MediaController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	assets, total, err := c.MediaService.ListMedia(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: assets, Total: total, Page: page, Limit: limit})
}

// Delete godoc
// @Summary 删除素材
// @Tags 素材
// @Produce  json
// @Param   id path string true "素材ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "不存在"
// @Security BearerAuth
// @Router /api/admin/media/{id} [delete]
func (c *MediaController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := c.MediaService.DeleteMedia(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
