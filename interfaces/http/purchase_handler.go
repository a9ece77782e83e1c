package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidmarket/domain/dto"
	"vidmarket/domain/model"
	"vidmarket/infrastructure/logger"
	"vidmarket/usecase"
)

type IPurchaseHandler interface {
	Purchase(c *gin.Context)
}

type PurchaseHandler struct {
	checkoutUsecase usecase.ICheckoutUsecase
}

func NewPurchaseHandler(checkoutUsecase usecase.ICheckoutUsecase) IPurchaseHandler {
	return &PurchaseHandler{checkoutUsecase: checkoutUsecase}
}

func (h *PurchaseHandler) Purchase(c *gin.Context) {
	userID := c.GetString("user_id")

	res, err := h.checkoutUsecase.CreatePurchase(c.Request.Context(), userID, c.Param("videoId"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Video not found"})
		case errors.Is(err, model.ErrAccessDenied):
			c.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "You cannot purchase your own video"})
		case errors.Is(err, model.ErrPurchaseExists):
			c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: "A purchase for this video already exists"})
		default:
			logger.GetLogger().WithField("error", err).Error("Error while creating purchase")
			c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "General error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "Success",
		Data:            res,
	})
}
