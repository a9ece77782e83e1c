package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Video holds the metadata the access layer needs: object-store keys for
// the quality variants and the owner reference. CRUD beyond this lives in
// the catalog collaborator.
type Video struct {
	ID          string          `json:"id"          gorm:"primaryKey;size:36"`
	OwnerID     string          `json:"ownerId"     gorm:"size:36;index"`
	Title       string          `json:"title"       gorm:"size:255"`
	Description string          `json:"description" gorm:"type:text"`
	DisplayName string          `json:"displayName" gorm:"size:255"`
	Price       decimal.Decimal `json:"price"       gorm:"type:decimal(10,2)"`
	SourceKey   string          `json:"-"           gorm:"size:512"`
	PreviewKey  string          `json:"-"           gorm:"size:512"`
	FullKey     string          `json:"-"           gorm:"size:512"`
	CreatedAt   time.Time       `json:"createdAt"   gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time       `json:"updatedAt"   gorm:"autoUpdateTime"`
}

// UploadTicket is handed back when an upload is registered: the created
// record plus a presigned PUT URL the client uploads the source file to.
type UploadTicket struct {
	Video     *Video `json:"video"`
	UploadURL string `json:"uploadUrl"`
}

// TranscodeJob is the message enqueued for the transcoding worker.
type TranscodeJob struct {
	VideoID   string `json:"videoId"`
	SourceKey string `json:"sourceKey"`
}
