package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/stwalsh4118/homefinder/api/internal/config"
	"github.com/stwalsh4118/homefinder/api/internal/events"
	"github.com/stwalsh4118/homefinder/api/internal/filters"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/metrics"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/repository"
	"github.com/stwalsh4118/homefinder/api/internal/storage"
)

// Coordinate validation constants
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// MaxPrice is the largest price the NUMERIC(12, 2) column holds.
const MaxPrice = 9999999999.99

// PropertyInput carries the writable fields of a property. A nil field is
// left unchanged on update; Create requires the fields marked required by the
// HTTP layer.
type PropertyInput struct {
	Title          *string
	Description    *string
	Price          *float64
	ListingType    *models.ListingType
	PropertyTypeID *int64
	Bedrooms       *int
	Bathrooms      *int
	SquareFeet     *int
	Address        *string
	City           *string
	State          *string
	ZipCode        *string
	Latitude       *float64
	Longitude      *float64
	Status         *models.PropertyStatus
}

// PropertyService defines the business operations on listings.
type PropertyService interface {
	// List returns the properties matching the query's filters.
	// Malformed numeric filters are skipped unless strict filtering is on,
	// in which case a *FilterError is returned.
	List(ctx context.Context, query url.Values) ([]models.Property, error)

	// Get returns ErrPropertyNotFound if the property does not exist.
	Get(ctx context.Context, id int64) (*models.Property, error)

	// Create binds the owner to callerID. Returns ErrAuthenticationRequired
	// for an anonymous caller and ErrPropertyTypeNotFound for an unknown type.
	Create(ctx context.Context, callerID int64, in PropertyInput) (*models.Property, error)

	// Update applies the non-nil fields of in. Returns ErrNotOwner unless
	// callerID owns the property.
	Update(ctx context.Context, callerID, id int64, in PropertyInput) (*models.Property, error)

	// Delete removes the property and its images. Returns ErrNotOwner unless
	// callerID owns the property.
	Delete(ctx context.Context, callerID, id int64) error
}

type propertyService struct {
	repo    repository.PropertyRepository
	images  storage.ImageStore
	events  events.Publisher
	metrics *metrics.Metrics
	log     *logger.Logger
	strict  bool
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(
	repo repository.PropertyRepository,
	images storage.ImageStore,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg config.FilterConfig,
) PropertyService {
	return &propertyService{
		repo:    repo,
		images:  images,
		events:  publisher,
		metrics: m,
		log:     log,
		strict:  cfg.StrictNumeric,
	}
}

func (s *propertyService) List(ctx context.Context, query url.Values) ([]models.Property, error) {
	f, fieldErrs := filters.Parse(query)
	for _, fe := range fieldErrs {
		s.metrics.FilterParseErrors.WithLabelValues(fe.Field).Inc()
	}
	if len(fieldErrs) > 0 {
		if s.strict {
			return nil, &FilterError{Fields: fieldErrs}
		}
		for _, fe := range fieldErrs {
			s.log.Warn("Ignoring malformed listing filter", map[string]interface{}{
				"filter": fe.Field,
				"value":  fe.Value,
				"reason": fe.Reason,
			})
		}
	}

	props, err := s.repo.List(ctx, f)
	if err != nil {
		s.log.Error("Failed to list properties", err, f.LogFields())
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	fields := f.LogFields()
	fields["count"] = len(props)
	s.log.Debug("Listed properties", fields)

	return props, nil
}

func (s *propertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query property", err, map[string]interface{}{"property_id": id})
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

func (s *propertyService) Create(ctx context.Context, callerID int64, in PropertyInput) (*models.Property, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	p := &models.Property{OwnerID: callerID, Status: models.StatusAvailable}
	in.applyTo(p)
	if err := validateProperty(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrPropertyTypeNotFound
		}
		s.log.Error("Failed to create property", err, map[string]interface{}{"owner_id": callerID})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.metrics.PropertiesCreated.Inc()
	s.log.Info("Property created", map[string]interface{}{
		"property_id": p.ID,
		"owner_id":    callerID,
	})
	s.publish(ctx, events.PropertyCreated, p.ID, callerID)

	return s.Get(ctx, p.ID)
}

func (s *propertyService) Update(ctx context.Context, callerID, id int64, in PropertyInput) (*models.Property, error) {
	p, err := s.ownedProperty(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	in.applyTo(p)
	if err := validateProperty(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPropertyNotFound
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrPropertyTypeNotFound
		}
		s.log.Error("Failed to update property", err, map[string]interface{}{"property_id": id})
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	s.log.Info("Property updated", map[string]interface{}{"property_id": id, "owner_id": callerID})
	s.publish(ctx, events.PropertyUpdated, id, callerID)

	return s.Get(ctx, id)
}

func (s *propertyService) Delete(ctx context.Context, callerID, id int64) error {
	p, err := s.ownedProperty(ctx, callerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		s.log.Error("Failed to delete property", err, map[string]interface{}{"property_id": id})
		return fmt.Errorf("failed to delete property: %w", err)
	}

	// Image rows cascade with the property; their objects do not.
	for _, img := range p.Images {
		if err := s.images.Delete(ctx, img.ObjectKey); err != nil && !errors.Is(err, storage.ErrDisabled) {
			s.log.Warn("Failed to delete image object", map[string]interface{}{
				"property_id": id,
				"object_key":  img.ObjectKey,
				"error":       err.Error(),
			})
		}
	}

	s.log.Info("Property deleted", map[string]interface{}{"property_id": id, "owner_id": callerID})
	s.publish(ctx, events.PropertyDeleted, id, callerID)

	return nil
}

// ownedProperty loads a property and applies the ownership guard.
func (s *propertyService) ownedProperty(ctx context.Context, callerID, id int64) (*models.Property, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, p.OwnerID); err != nil {
		s.log.Warn("Ownership check failed", map[string]interface{}{
			"property_id": id,
			"owner_id":    p.OwnerID,
			"caller_id":   callerID,
		})
		return nil, err
	}
	return p, nil
}

func (s *propertyService) publish(ctx context.Context, subject string, propertyID, userID int64) {
	payload := map[string]int64{"property_id": propertyID, "user_id": userID}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.log.Warn("Failed to publish event", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
	}
}

func (in PropertyInput) applyTo(p *models.Property) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ListingType != nil {
		p.ListingType = *in.ListingType
	}
	if in.PropertyTypeID != nil {
		id := *in.PropertyTypeID
		p.PropertyTypeID = &id
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.SquareFeet != nil {
		p.SquareFeet = *in.SquareFeet
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.State != nil {
		p.State = *in.State
	}
	if in.ZipCode != nil {
		p.ZipCode = *in.ZipCode
	}
	if in.Latitude != nil {
		lat := *in.Latitude
		p.Latitude = &lat
	}
	if in.Longitude != nil {
		lng := *in.Longitude
		p.Longitude = &lng
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
}

func validateProperty(p *models.Property) error {
	switch {
	case !p.ListingType.Valid():
		return invalid("listing_type", fmt.Sprintf("%q is not a valid choice", p.ListingType))
	case !p.Status.Valid():
		return invalid("status", fmt.Sprintf("%q is not a valid choice", p.Status))
	case p.Price < 0:
		return invalid("price", "must be zero or greater")
	case p.Price > MaxPrice:
		return invalid("price", "Ensure that there are no more than 12 digits in total.")
	case p.Bedrooms < 0:
		return invalid("bedrooms", "must be zero or greater")
	case p.Bathrooms < 0:
		return invalid("bathrooms", "must be zero or greater")
	case p.SquareFeet < 0:
		return invalid("square_feet", "must be zero or greater")
	case p.Latitude != nil && (*p.Latitude < MinLatitude || *p.Latitude > MaxLatitude):
		return invalid("latitude", fmt.Sprintf("must be between %g and %g", MinLatitude, MaxLatitude))
	case p.Longitude != nil && (*p.Longitude < MinLongitude || *p.Longitude > MaxLongitude):
		return invalid("longitude", fmt.Sprintf("must be between %g and %g", MinLongitude, MaxLongitude))
	}
	return nil
}
