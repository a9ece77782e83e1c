package model

import "github.com/shopspring/decimal"

type ReqUpload struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	DisplayName string          `json:"displayName" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

type ReqCompleteProcessing struct {
	PreviewKey string `json:"previewKey" binding:"required"`
	FullKey    string `json:"fullKey" binding:"required"`
}
