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

const deniedMessage = "not purchased or access denied"

type IVideoAccessHandler interface {
	Preview(c *gin.Context)
	StreamToken(c *gin.Context)
	ValidateStream(c *gin.Context)
	Stream(c *gin.Context)
	DownloadToken(c *gin.Context)
	Download(c *gin.Context)
}

type VideoAccessHandler struct {
	accessUsecase usecase.IVideoAccessUsecase
	streamUsecase usecase.IStreamUsecase
}

func NewVideoAccessHandler(accessUsecase usecase.IVideoAccessUsecase, streamUsecase usecase.IStreamUsecase) IVideoAccessHandler {
	return &VideoAccessHandler{accessUsecase: accessUsecase, streamUsecase: streamUsecase}
}

// Preview is public: anyone may fetch a short-lived preview URL.
func (h *VideoAccessHandler) Preview(c *gin.Context) {
	url, err := h.accessUsecase.GetPreviewURL(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Video not found"})
			return
		}
		if errors.Is(err, model.ErrVideoNotReady) {
			c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: "Video is still processing"})
			return
		}
		logger.GetLogger().WithField("error", err).Error("Error while getting preview URL")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "Success",
		Data:            gin.H{"url": url},
	})
}

func (h *VideoAccessHandler) StreamToken(c *gin.Context) {
	userID := c.GetString("user_id")
	token, err := h.accessUsecase.GetStreamingToken(c.Request.Context(), c.Param("videoId"), userID)
	if err != nil {
		h.writeAccessError(c, err)
		return
	}
	if token == "" {
		c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: deniedMessage})
		return
	}
	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "Success",
		Data:            gin.H{"token": token},
	})
}

// ValidateStream resolves a streaming token into a fresh short-lived
// signed URL without proxying any bytes. Clients that follow URLs
// themselves use this instead of /videos/:videoId/stream.
func (h *VideoAccessHandler) ValidateStream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: deniedMessage})
		return
	}

	signedURL, err := h.accessUsecase.ValidateStreamingToken(c.Request.Context(), token)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while validating streaming token")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		return
	}
	if signedURL == "" {
		c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: deniedMessage})
		return
	}
	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "Success",
		Data:            gin.H{"url": signedURL},
	})
}

// Stream authorizes by streaming token alone, so players can fetch without
// an Authorization header. Without a Range header the client is redirected
// at a short-lived signed URL; with one, a single 206 frame is proxied.
func (h *VideoAccessHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"})
		return
	}

	signedURL, err := h.accessUsecase.ValidateStreamingToken(c.Request.Context(), token)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while validating streaming token")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		return
	}
	if signedURL == "" {
		c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: deniedMessage})
		return
	}

	br, err := h.streamUsecase.ServeRange(c.Request.Context(), signedURL, c.GetHeader("Range"))
	if err != nil {
		if errors.Is(err, model.ErrInvalidRange) {
			c.Header("Accept-Ranges", "bytes")
			c.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		logger.GetLogger().WithField("error", err).Error("Error while serving range")
		c.JSON(http.StatusBadGateway, dto.Res{ResponseCode: "502", ResponseMessage: "Upstream error"})
		return
	}
	if br == nil {
		c.Redirect(http.StatusFound, signedURL)
		return
	}

	// DataFromReader copies to EOF but never closes the reader; without
	// this the upstream connection leaks on every 206 and on client aborts.
	defer br.Body.Close()

	length := br.End - br.Start + 1
	extraHeaders := map[string]string{
		"Content-Range": fmt.Sprintf("bytes %d-%d/%d", br.Start, br.End, br.Size),
		"Accept-Ranges": "bytes",
	}
	c.DataFromReader(http.StatusPartialContent, length, "video/mp4", br.Body, extraHeaders)
}

func (h *VideoAccessHandler) DownloadToken(c *gin.Context) {
	userID := c.GetString("user_id")
	downloadID, err := h.accessUsecase.GetDownloadToken(c.Request.Context(), c.Param("videoId"), userID)
	if err != nil {
		h.writeAccessError(c, err)
		return
	}
	if downloadID == "" {
		c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: deniedMessage})
		return
	}
	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "Success",
		Data:            gin.H{"downloadId": downloadID},
	})
}

// Download redeems a one-time token; a second redemption sees 404.
func (h *VideoAccessHandler) Download(c *gin.Context) {
	link, err := h.accessUsecase.ProcessDownload(c.Request.Context(), c.Param("downloadId"))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while processing download")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		return
	}
	if link == nil {
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Download not found or already used"})
		return
	}
	c.Redirect(http.StatusFound, link.URL)
}

func (h *VideoAccessHandler) writeAccessError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrRateLimitExceeded) {
		c.JSON(http.StatusTooManyRequests, dto.Res{ResponseCode: "429", ResponseMessage: "Rate limit exceeded"})
		return
	}
	logger.GetLogger().WithField("error", err).Error("Error while issuing access token")
	c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
}
