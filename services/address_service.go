package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/David-999-david/man-app-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObjectStorage is the slice of the S3 client the address and profile flows
// need.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignURL(key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type AddressService struct {
	db      *gorm.DB
	storage ObjectStorage
}

func NewAddressService(db *gorm.DB, storage ObjectStorage) *AddressService {
	return &AddressService{db: db, storage: storage}
}

// AddressInput is the client-provided part of an address.
type AddressInput struct {
	Label      string
	Street     string
	City       string
	State      string
	Country    string
	PostalCode string
}

// ImageUpload is an optional attachment for an address.
type ImageUpload struct {
	Body        io.Reader
	ContentType string
	Ext         string
	Description string
}

// AddressView is an address with presigned URLs in place of raw object keys.
type AddressView struct {
	Address models.Address
	Images  []AddressImageView
}

type AddressImageView struct {
	URL         string
	Description string
}

// Create stores the address row first, then uploads the image and records it,
// mirroring the original flow: a failed upload leaves a valid address without
// an image rather than no address at all.
func (s *AddressService) Create(ctx context.Context, userID uint, in AddressInput, image *ImageUpload) (AddressView, error) {
	if in.Label == "" {
		return AddressView{}, newError(KindValidation, "label is required")
	}

	address := models.Address{
		UserID:     userID,
		Label:      in.Label,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		Country:    in.Country,
		PostalCode: in.PostalCode,
	}
	if err := s.db.Create(&address).Error; err != nil {
		return AddressView{}, internalError(err)
	}

	if image != nil {
		key := fmt.Sprintf("addresses/%s%s", uuid.NewString(), image.Ext)
		if err := s.storage.Upload(ctx, key, image.Body, image.ContentType); err != nil {
			return AddressView{}, internalError(err)
		}

		record := models.AddressImage{
			AddressID:   address.ID,
			ImageKey:    key,
			Description: image.Description,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return AddressView{}, internalError(err)
		}
		address.Images = append(address.Images, record)
	}

	return s.view(address)
}

func (s *AddressService) List(userID uint) ([]AddressView, error) {
	var addresses []models.Address
	err := s.db.Preload("Images").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, internalError(err)
	}

	views := make([]AddressView, 0, len(addresses))
	for _, address := range addresses {
		view, err := s.view(address)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *AddressService) GetByID(userID, addressID uint) (AddressView, error) {
	address, err := s.load(userID, addressID)
	if err != nil {
		return AddressView{}, err
	}
	return s.view(address)
}

func (s *AddressService) Update(userID, addressID uint, in AddressInput) (AddressView, error) {
	if in.Label == "" {
		return AddressView{}, newError(KindValidation, "label is required")
	}

	address, err := s.load(userID, addressID)
	if err != nil {
		return AddressView{}, err
	}

	updates := map[string]any{
		"label":       in.Label,
		"street":      in.Street,
		"city":        in.City,
		"state":       in.State,
		"country":     in.Country,
		"postal_code": in.PostalCode,
	}
	if err := s.db.Model(&address).Updates(updates).Error; err != nil {
		return AddressView{}, internalError(err)
	}

	return s.view(address)
}

// Delete removes the address, its image rows and the stored objects. Object
// deletions run last; an S3 failure after the rows are gone only leaks an
// orphan object.
func (s *AddressService) Delete(ctx context.Context, userID, addressID uint) error {
	address, err := s.load(userID, addressID)
	if err != nil {
		return err
	}

	if err := s.db.Where("address_id = ?", address.ID).Delete(&models.AddressImage{}).Error; err != nil {
		return internalError(err)
	}
	if err := s.db.Delete(&address).Error; err != nil {
		return internalError(err)
	}

	for _, image := range address.Images {
		if err := s.storage.Delete(ctx, image.ImageKey); err != nil {
			return internalError(err)
		}
	}
	return nil
}

func (s *AddressService) load(userID, addressID uint) (models.Address, error) {
	var address models.Address
	err := s.db.Preload("Images").
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Address{}, newError(KindNotFound, "address not found")
		}
		return models.Address{}, internalError(err)
	}
	return address, nil
}

func (s *AddressService) view(address models.Address) (AddressView, error) {
	images := make([]AddressImageView, 0, len(address.Images))
	for _, image := range address.Images {
		url, err := s.storage.PresignURL(image.ImageKey)
		if err != nil {
			return AddressView{}, internalError(err)
		}
		images = append(images, AddressImageView{URL: url, Description: image.Description})
	}
	return AddressView{Address: address, Images: images}, nil
}
