package services

import (
	"context"
	"fmt"

	"github.com/David-999-david/man-app-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db      *gorm.DB
	storage ObjectStorage
}

func NewUserService(db *gorm.DB, storage ObjectStorage) *UserService {
	return &UserService{db: db, storage: storage}
}

// UploadAvatar stores the image in S3 and records its key on the user row,
// replacing any previous avatar key. Returns a presigned URL for the new
// avatar.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, image ImageUpload) (string, error) {
	key := fmt.Sprintf("avatars/%s%s", uuid.NewString(), image.Ext)
	if err := s.storage.Upload(ctx, key, image.Body, image.ContentType); err != nil {
		return "", internalError(err)
	}

	res := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("profile_image_key", key)
	if res.Error != nil {
		return "", internalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", newError(KindNotFound, "user not found")
	}

	url, err := s.storage.PresignURL(key)
	if err != nil {
		return "", internalError(err)
	}
	return url, nil
}

// AvatarURL presigns the stored avatar key, if any.
func (s *UserService) AvatarURL(userID uint) (string, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", internalError(err)
	}
	if user.ProfileImageKey == "" {
		return "", nil
	}

	url, err := s.storage.PresignURL(user.ProfileImageKey)
	if err != nil {
		return "", internalError(err)
	}
	return url, nil
}
