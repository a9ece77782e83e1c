package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
)

// VideoRepository stores video metadata on the MySQL side (gorm).
type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) repository.IVideo {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*model.Video, error) {
	video := &model.Video{}
	err := r.db.WithContext(ctx).First(video, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return video, nil
}

func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *VideoRepository) UpdateObjectKeys(ctx context.Context, id, previewKey, fullKey string) error {
	res := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"preview_key": previewKey, "full_key": fullKey})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Video{}, "id = ?", id).Error
}
