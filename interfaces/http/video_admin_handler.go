package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidmarket/domain/dto"
	"vidmarket/domain/model"
	"vidmarket/infrastructure/logger"
	"vidmarket/usecase"
)

type IVideoAdminHandler interface {
	Upload(c *gin.Context)
	CompleteProcessing(c *gin.Context)
	Delete(c *gin.Context)
}

type VideoAdminHandler struct {
	adminUsecase usecase.IVideoAdminUsecase
}

func NewVideoAdminHandler(adminUsecase usecase.IVideoAdminUsecase) IVideoAdminHandler {
	return &VideoAdminHandler{adminUsecase: adminUsecase}
}

func (h *VideoAdminHandler) Upload(c *gin.Context) {
	var req model.ReqUpload
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, fmt.Sprintf("%s %v", ErrorUnmarshal, err.Error()))
		return
	}

	ownerID := c.GetString("user_id")
	ticket, err := h.adminUsecase.RegisterUpload(c.Request.Context(), ownerID, req.Title, req.Description, req.DisplayName, req.Price)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while registering upload")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		return
	}

	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "Success",
		Data:            ticket,
	})
}

// CompleteProcessing is called by the transcoding worker when both variants
// are in the object store.
func (h *VideoAdminHandler) CompleteProcessing(c *gin.Context) {
	var req model.ReqCompleteProcessing
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, fmt.Sprintf("%s %v", ErrorUnmarshal, err.Error()))
		return
	}

	err := h.adminUsecase.CompleteProcessing(c.Request.Context(), c.Param("videoId"), req.PreviewKey, req.FullKey)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Video not found"})
			return
		}
		logger.GetLogger().WithField("error", err).Error("Error while completing processing")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Success"})
}

func (h *VideoAdminHandler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	err := h.adminUsecase.DeleteVideo(c.Request.Context(), c.Param("videoId"), userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Video not found"})
		case errors.Is(err, model.ErrAccessDenied):
			c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "Only the owner may delete a video"})
		case errors.Is(err, model.ErrVideoReferenced):
			c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: "Video has completed purchases and cannot be deleted"})
		default:
			logger.GetLogger().WithField("error", err).Error("Error while deleting video")
			c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Success"})
}
