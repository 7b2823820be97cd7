package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/homefinder/api/internal/events"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/metrics"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/repository"
)

// FavoriteService manages the caller's saved properties.
type FavoriteService interface {
	// List returns the caller's favorites, newest first, each with its property.
	List(ctx context.Context, callerID int64) ([]models.Favorite, error)

	// Get returns one of the caller's favorites. Another user's favorite is
	// reported as ErrFavoriteNotFound.
	Get(ctx context.Context, callerID, id int64) (*models.Favorite, error)

	// Create saves a property for the caller. There is no pre-check: a second
	// favorite for the same property fails on the unique constraint with
	// ErrDuplicateFavorite.
	Create(ctx context.Context, callerID, propertyID int64) (*models.Favorite, error)

	// Delete removes a favorite. Returns ErrNotOwner unless callerID created it.
	Delete(ctx context.Context, callerID, id int64) error
}

type favoriteService struct {
	favorites  repository.FavoriteRepository
	properties repository.PropertyRepository
	events     events.Publisher
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewFavoriteService creates a new instance of FavoriteService.
func NewFavoriteService(
	favorites repository.FavoriteRepository,
	properties repository.PropertyRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *logger.Logger,
) FavoriteService {
	return &favoriteService{
		favorites:  favorites,
		properties: properties,
		events:     publisher,
		metrics:    m,
		log:        log,
	}
}

func (s *favoriteService) List(ctx context.Context, callerID int64) ([]models.Favorite, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	favs, err := s.favorites.ListByUser(ctx, callerID)
	if err != nil {
		s.log.Error("Failed to list favorites", err, map[string]interface{}{"user_id": callerID})
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if len(favs) == 0 {
		return favs, nil
	}

	ids := make([]int64, len(favs))
	for i, f := range favs {
		ids[i] = f.PropertyID
	}
	props, err := s.properties.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Error("Failed to load favorite properties", err, map[string]interface{}{"user_id": callerID})
		return nil, fmt.Errorf("failed to load favorite properties: %w", err)
	}
	for i := range favs {
		if p, ok := props[favs[i].PropertyID]; ok {
			favs[i].Property = &p
		}
	}

	return favs, nil
}

func (s *favoriteService) Get(ctx context.Context, callerID, id int64) (*models.Favorite, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	fav, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if fav.UserID != callerID {
		return nil, ErrFavoriteNotFound
	}

	if err := s.attachProperty(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *favoriteService) Create(ctx context.Context, callerID, propertyID int64) (*models.Favorite, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	fav := &models.Favorite{UserID: callerID, PropertyID: propertyID}
	if err := s.favorites.Create(ctx, fav); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.log.Info("Duplicate favorite rejected", map[string]interface{}{
				"user_id":     callerID,
				"property_id": propertyID,
			})
			return nil, ErrDuplicateFavorite
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrPropertyNotFound
		}
		s.log.Error("Failed to create favorite", err, map[string]interface{}{
			"user_id":     callerID,
			"property_id": propertyID,
		})
		return nil, fmt.Errorf("failed to create favorite: %w", err)
	}

	s.metrics.FavoritesCreated.Inc()
	s.log.Info("Favorite created", map[string]interface{}{
		"favorite_id": fav.ID,
		"user_id":     callerID,
		"property_id": propertyID,
	})
	if err := s.events.Publish(ctx, events.FavoriteCreated, map[string]int64{
		"favorite_id": fav.ID,
		"user_id":     callerID,
		"property_id": propertyID,
	}); err != nil {
		s.log.Warn("Failed to publish event", map[string]interface{}{
			"subject": events.FavoriteCreated,
			"error":   err.Error(),
		})
	}

	if err := s.attachProperty(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *favoriteService) Delete(ctx context.Context, callerID, id int64) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	fav, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(callerID, fav.UserID); err != nil {
		s.log.Warn("Ownership check failed", map[string]interface{}{
			"favorite_id": id,
			"owner_id":    fav.UserID,
			"caller_id":   callerID,
		})
		return err
	}

	if err := s.favorites.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFavoriteNotFound
		}
		s.log.Error("Failed to delete favorite", err, map[string]interface{}{"favorite_id": id})
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	s.log.Info("Favorite deleted", map[string]interface{}{"favorite_id": id, "user_id": callerID})
	return nil
}

func (s *favoriteService) find(ctx context.Context, id int64) (*models.Favorite, error) {
	fav, err := s.favorites.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query favorite", err, map[string]interface{}{"favorite_id": id})
		return nil, fmt.Errorf("failed to query favorite: %w", err)
	}
	if fav == nil {
		return nil, ErrFavoriteNotFound
	}
	return fav, nil
}

func (s *favoriteService) attachProperty(ctx context.Context, fav *models.Favorite) error {
	p, err := s.properties.FindByID(ctx, fav.PropertyID)
	if err != nil {
		s.log.Error("Failed to query property", err, map[string]interface{}{"property_id": fav.PropertyID})
		return fmt.Errorf("failed to query property: %w", err)
	}
	fav.Property = p
	return nil
}
