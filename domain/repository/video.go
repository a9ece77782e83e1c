package repository

import (
	"context"

	"vidmarket/domain/model"
)

type IVideo interface {
	// FindByID returns nil, nil when the video does not exist.
	FindByID(ctx context.Context, id string) (*model.Video, error)
	Create(ctx context.Context, video *model.Video) error
	UpdateObjectKeys(ctx context.Context, id, previewKey, fullKey string) error
	Delete(ctx context.Context, id string) error
}
