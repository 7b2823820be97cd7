package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/repository"
	"github.com/stwalsh4118/homefinder/api/internal/storage"
)

// ImageUpload is one uploaded image file for a property.
type ImageUpload struct {
	Content     io.Reader
	Filename    string
	ContentType string
	Size        int64
	PropertyID  int64
	IsPrimary   bool
}

// ImageService manages property images and their stored objects.
type ImageService interface {
	// Upload stores the file and records it against the property.
	// Only the property's owner may add images.
	Upload(ctx context.Context, callerID int64, in ImageUpload) (*models.PropertyImage, error)

	// Delete removes the image row and its stored object.
	// Only the property's owner may remove images.
	Delete(ctx context.Context, callerID, id int64) error
}

type imageService struct {
	images     repository.ImageRepository
	properties repository.PropertyRepository
	store      storage.ImageStore
	log        *logger.Logger
	maxBytes   int64
}

// NewImageService creates a new instance of ImageService. Files larger than
// maxBytes are rejected; zero disables the limit.
func NewImageService(
	images repository.ImageRepository,
	properties repository.PropertyRepository,
	store storage.ImageStore,
	log *logger.Logger,
	maxBytes int64,
) ImageService {
	return &imageService{
		images:     images,
		properties: properties,
		store:      store,
		log:        log,
		maxBytes:   maxBytes,
	}
}

func (s *imageService) Upload(ctx context.Context, callerID int64, in ImageUpload) (*models.PropertyImage, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	if in.Content == nil || in.Size <= 0 {
		return nil, invalid("image", "No file was submitted.")
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, invalid("image", "Upload a valid image.")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, invalid("image", fmt.Sprintf("File exceeds the %d byte limit.", s.maxBytes))
	}

	if err := s.checkOwner(ctx, callerID, in.PropertyID); err != nil {
		return nil, err
	}

	url, key, err := s.store.Upload(ctx, in.PropertyID, in.Filename, in.Content, in.Size, in.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrStorageUnavailable
		}
		s.log.Error("Failed to upload image", err, map[string]interface{}{"property_id": in.PropertyID})
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	img := &models.PropertyImage{
		PropertyID: in.PropertyID,
		Image:      url,
		ObjectKey:  key,
		IsPrimary:  in.IsPrimary,
	}
	if err := s.images.Create(ctx, img); err != nil {
		s.removeObject(ctx, key)
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrPropertyNotFound
		}
		s.log.Error("Failed to record image", err, map[string]interface{}{"property_id": in.PropertyID})
		return nil, fmt.Errorf("failed to record image: %w", err)
	}

	s.log.Info("Property image uploaded", map[string]interface{}{
		"image_id":    img.ID,
		"property_id": img.PropertyID,
		"size":        in.Size,
	})
	return img, nil
}

func (s *imageService) Delete(ctx context.Context, callerID, id int64) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	img, err := s.images.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query image", err, map[string]interface{}{"image_id": id})
		return fmt.Errorf("failed to query image: %w", err)
	}
	if img == nil {
		return ErrImageNotFound
	}

	if err := s.checkOwner(ctx, callerID, img.PropertyID); err != nil {
		return err
	}

	if err := s.images.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrImageNotFound
		}
		s.log.Error("Failed to delete image", err, map[string]interface{}{"image_id": id})
		return fmt.Errorf("failed to delete image: %w", err)
	}
	s.removeObject(ctx, img.ObjectKey)

	s.log.Info("Property image deleted", map[string]interface{}{
		"image_id":    id,
		"property_id": img.PropertyID,
	})
	return nil
}

func (s *imageService) checkOwner(ctx context.Context, callerID, propertyID int64) error {
	p, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		s.log.Error("Failed to query property", err, map[string]interface{}{"property_id": propertyID})
		return fmt.Errorf("failed to query property: %w", err)
	}
	if p == nil {
		return ErrPropertyNotFound
	}
	return requireOwner(callerID, p.OwnerID)
}

// removeObject deletes a stored object, logging rather than failing.
func (s *imageService) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrDisabled) {
		s.log.Warn("Failed to delete image object", map[string]interface{}{
			"object_key": key,
			"error":      err.Error(),
		})
	}
}
