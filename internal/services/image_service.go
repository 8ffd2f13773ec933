// internal/services/image_service.go
package services

import (
	"mime/multipart"

	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/models"
)

type ImageService struct {
	db             *gorm.DB
	storageService *StorageService
}

type ImageFilter struct {
	Params   PaginationParams
	ViewerID *uuid.UUID // nil for anonymous browsing
	OwnerID  *uuid.UUID
	Tag      string
	Search   string
}

type CreateImageInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Tags        []string
	Price       float64
}

func NewImageService(db *gorm.DB, storageService *StorageService) *ImageService {
	return &ImageService{db: db, storageService: storageService}
}

// GetImages lists active artwork. When a viewer is known, listings are
// filtered through the block relation in both directions: the viewer never
// sees work from users they blocked, nor from users who blocked them.
func (s *ImageService) GetImages(filter ImageFilter) ([]models.Image, int64, error) {
	query := s.db.Model(&models.Image{}).
		Preload("Owner").
		Where("images.status = ?", models.ImageStatusActive).
		Joins("JOIN users ON users.id = images.owner_id").
		Where("users.moderation_status != ?", models.ModerationStatusBanned)

	if filter.ViewerID != nil {
		viewerID := *filter.ViewerID
		query = query.
			Where("images.owner_id NOT IN (?)",
				s.db.Model(&models.Block{}).Select("blocked_id").Where("blocker_id = ?", viewerID)).
			Where("images.owner_id NOT IN (?)",
				s.db.Model(&models.Block{}).Select("blocker_id").Where("blocked_id = ?", viewerID))
	}

	if filter.OwnerID != nil {
		query = query.Where("images.owner_id = ?", *filter.OwnerID)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(images.tags)", filter.Tag)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("images.title ILIKE ? OR images.description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count images: %w", err)
	}

	query = applySort(query, filter.Params, []string{"images.created_at", "images.price", "images.view_count", "images.title"})
	query = applyPagination(query, filter.Params)

	var images []models.Image
	if err := query.Find(&images).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch images: %w", err)
	}

	return images, total, nil
}

// GetImage fetches one visible image. Block edges hide the image the same way
// a missing row would; the viewer learns nothing about the block.
func (s *ImageService) GetImage(imageID uuid.UUID, viewerID *uuid.UUID) (*models.Image, error) {
	var image models.Image
	if err := s.db.Preload("Owner").First(&image, "id = ?", imageID).Error; err != nil {
		return nil, translateNotFound(err, "image")
	}

	if image.Status == models.ImageStatusRemoved {
		return nil, NewNotFoundError("image")
	}

	if viewerID != nil && *viewerID != image.OwnerID {
		var blocked int64
		err := s.db.Model(&models.Block{}).
			Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
				*viewerID, image.OwnerID, image.OwnerID, *viewerID).
			Count(&blocked).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check block: %w", err)
		}
		if blocked > 0 {
			return nil, NewNotFoundError("image")
		}
	}

	s.db.Model(&image).UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	return &image, nil
}

// Upload stores the artwork file and creates the listing row.
func (s *ImageService) Upload(input CreateImageInput, file multipart.File, header *multipart.FileHeader) (*models.Image, error) {
	if input.Title == "" {
		return nil, NewValidationError("title is required")
	}

	var owner models.User
	if err := s.db.First(&owner, "id = ?", input.OwnerID).Error; err != nil {
		return nil, translateNotFound(err, "user")
	}
	if owner.ModerationStatus == models.ModerationStatusBanned {
		return nil, NewForbiddenError("banned accounts cannot upload artwork")
	}

	if err := s.storageService.ValidateImage(file); err != nil {
		return nil, err
	}

	result, err := s.storageService.UploadFile(file, header, s.storageService.GetDefaultUploadOptions("artwork"))
	if err != nil {
		return nil, err
	}

	image := &models.Image{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		FileURL:     result.URL,
		StorageKey:  result.Key,
		Tags:        pq.StringArray(input.Tags),
		Price:       input.Price,
		Status:      models.ImageStatusActive,
	}

	if err := s.db.Create(image).Error; err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}

	return image, nil
}

// Delete removes the caller's own listing and its stored file.
func (s *ImageService) Delete(imageID, ownerID uuid.UUID) error {
	var image models.Image
	if err := s.db.First(&image, "id = ?", imageID).Error; err != nil {
		return translateNotFound(err, "image")
	}
	if image.OwnerID != ownerID {
		return NewForbiddenError("you can only delete your own artwork")
	}

	if err := s.db.Delete(&image).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if image.StorageKey != "" {
		if err := s.storageService.DeleteFile(image.StorageKey); err != nil {
			return fmt.Errorf("failed to delete stored file: %w", err)
		}
	}

	return nil
}
