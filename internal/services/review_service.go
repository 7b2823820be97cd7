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

// ReviewService manages property ratings. Reviews have no update path.
type ReviewService interface {
	// List returns reviews, optionally restricted to one property.
	List(ctx context.Context, propertyID *int64) ([]models.Review, error)

	// Get returns ErrReviewNotFound if the review does not exist.
	Get(ctx context.Context, id int64) (*models.Review, error)

	// Create rates a property as the caller. The insert is a single
	// conditional statement; a second review by the same user for the same
	// property returns ErrDuplicateReview.
	Create(ctx context.Context, callerID, propertyID int64, rating int) (*models.Review, error)
}

type reviewService struct {
	repo    repository.ReviewRepository
	events  events.Publisher
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewReviewService creates a new instance of ReviewService.
func NewReviewService(repo repository.ReviewRepository, publisher events.Publisher, m *metrics.Metrics, log *logger.Logger) ReviewService {
	return &reviewService{repo: repo, events: publisher, metrics: m, log: log}
}

func (s *reviewService) List(ctx context.Context, propertyID *int64) ([]models.Review, error) {
	reviews, err := s.repo.List(ctx, propertyID)
	if err != nil {
		s.log.Error("Failed to list reviews", err, nil)
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) Get(ctx context.Context, id int64) (*models.Review, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query review", err, map[string]interface{}{"review_id": id})
		return nil, fmt.Errorf("failed to query review: %w", err)
	}
	if r == nil {
		return nil, ErrReviewNotFound
	}
	return r, nil
}

func (s *reviewService) Create(ctx context.Context, callerID, propertyID int64, rating int) (*models.Review, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	if rating <= 0 {
		return nil, invalid("rating", "Ensure this value is greater than or equal to 1.")
	}

	r := &models.Review{PropertyID: propertyID, UserID: callerID, Rating: rating}
	if err := s.repo.Create(ctx, r); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.log.Info("Duplicate review rejected", map[string]interface{}{
				"user_id":     callerID,
				"property_id": propertyID,
			})
			return nil, ErrDuplicateReview
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrPropertyNotFound
		}
		s.log.Error("Failed to create review", err, map[string]interface{}{
			"user_id":     callerID,
			"property_id": propertyID,
		})
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.metrics.ReviewsCreated.Inc()
	s.log.Info("Review created", map[string]interface{}{
		"review_id":   r.ID,
		"property_id": propertyID,
		"rating":      rating,
	})
	if err := s.events.Publish(ctx, events.ReviewCreated, r); err != nil {
		s.log.Warn("Failed to publish event", map[string]interface{}{
			"subject": events.ReviewCreated,
			"error":   err.Error(),
		})
	}

	return r, nil
}
