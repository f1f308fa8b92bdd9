package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

type serviceRepository struct {
	gw     gateway.Gateway
	blobs  gateway.BlobStore
	logger *zap.Logger
}

// NewServiceRepository returns the listings repository.
func NewServiceRepository(gw gateway.Gateway, blobs gateway.BlobStore, logger *zap.Logger) ServiceRepository {
	return &serviceRepository{gw: gw, blobs: blobs, logger: logger}
}

func (r *serviceRepository) GetByID(ctx context.Context, serviceID string) (*models.Service, error) {
	doc, err := r.gw.GetByID(ctx, servicesCollection, serviceID)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			r.logger.Error("get service failed", zap.String("serviceId", serviceID), zap.Error(err))
		}
		return nil, err
	}
	return decodeService(doc), nil
}

func (r *serviceRepository) List(ctx context.Context, filters ServiceFilters, pageSize int, startAfter string) (*ServicePage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	q := gateway.Query{Limit: pageSize, StartAfter: startAfter}
	switch len(filters.Statuses) {
	case 0:
	case 1:
		q.Filters = append(q.Filters, gateway.Filter{Field: "status", Op: gateway.OpEqual, Value: string(filters.Statuses[0])})
	default:
		values := make([]any, len(filters.Statuses))
		for i, s := range filters.Statuses {
			values[i] = string(s)
		}
		q.Filters = append(q.Filters, gateway.Filter{Field: "status", Op: gateway.OpIn, Value: values})
	}
	if filters.Type != "" {
		q.Filters = append(q.Filters, gateway.Filter{Field: "type", Op: gateway.OpArrayContains, Value: string(filters.Type)})
	}
	if filters.City != "" {
		q.Filters = append(q.Filters, gateway.Filter{Field: "location.city", Op: gateway.OpEqual, Value: filters.City})
	}
	if filters.ProfessionalID != "" {
		q.Filters = append(q.Filters, gateway.Filter{Field: "professionalId", Op: gateway.OpEqual, Value: filters.ProfessionalID})
	}
	if filters.OnlyUrgent {
		q.Filters = append(q.Filters, gateway.Filter{Field: "isUrgent", Op: gateway.OpEqual, Value: true})
	}

	page, err := r.gw.Query(ctx, servicesCollection, q)
	if err != nil {
		r.logger.Error("list services failed", zap.Error(err))
		return nil, err
	}
	out := &ServicePage{LastID: page.LastID, HasMore: page.HasMore}
	for i := range page.Items {
		out.Services = append(out.Services, decodeService(&page.Items[i]))
	}
	return out, nil
}

func (r *serviceRepository) Create(ctx context.Context, service *models.Service) (string, error) {
	if service.Status == "" {
		service.Status = models.ServiceDraft
	}
	// A listing without an explicit expiry lapses at its start date.
	if service.ExpiresAt == nil && !service.Date.StartDate.IsZero() {
		exp := service.Date.StartDate
		service.ExpiresAt = &exp
	}
	id, err := r.gw.Add(ctx, servicesCollection, encodeService(service))
	if err != nil {
		r.logger.Error("create service failed", zap.Error(err))
		return "", err
	}
	return id, nil
}

func (r *serviceRepository) Update(ctx context.Context, serviceID string, data map[string]any) error {
	if err := r.gw.Update(ctx, servicesCollection, serviceID, data); err != nil {
		r.logger.Error("update service failed", zap.String("serviceId", serviceID), zap.Error(err))
		return err
	}
	return nil
}

func (r *serviceRepository) UpdateStatus(ctx context.Context, serviceID string, status models.ServiceStatus) error {
	current, err := r.GetByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("service %s: %s -> %s: %w", serviceID, current.Status, status, ErrIllegalTransition)
	}
	return r.Update(ctx, serviceID, map[string]any{"status": string(status)})
}

func (r *serviceRepository) Delete(ctx context.Context, serviceID string) error {
	service, err := r.GetByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if err := r.gw.Delete(ctx, servicesCollection, serviceID); err != nil {
		r.logger.Error("delete service failed", zap.String("serviceId", serviceID), zap.Error(err))
		return err
	}
	for _, url := range service.Images {
		if path, ok := r.blobs.PathFromURL(url); ok {
			if err := r.blobs.Delete(ctx, path); err != nil {
				r.logger.Warn("orphaned service image blob", zap.String("path", path), zap.Error(err))
			}
		}
	}
	return nil
}

func (r *serviceRepository) UploadImages(ctx context.Context, serviceID string, files []Upload) ([]string, error) {
	now := time.Now().UnixMilli()
	urls := make([]string, 0, len(files))
	for i, f := range files {
		path := fmt.Sprintf("%s/%s/image-%d-%d.jpg", serviceImagesPath, serviceID, i, now)
		url, err := r.blobs.Upload(ctx, path, f.ContentType, f.Reader)
		if err != nil {
			r.logger.Error("service image upload failed", zap.String("serviceId", serviceID), zap.Error(err))
			return nil, err
		}
		urls = append(urls, url)
	}

	union := make([]any, len(urls))
	for i, u := range urls {
		union[i] = u
	}
	if err := r.Update(ctx, serviceID, map[string]any{"images": gateway.ArrayUnion(union...)}); err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *serviceRepository) RemoveImages(ctx context.Context, serviceID string, imageURLs []string) error {
	removal := make([]any, len(imageURLs))
	for i, u := range imageURLs {
		removal[i] = u
	}
	if err := r.Update(ctx, serviceID, map[string]any{"images": gateway.ArrayRemove(removal...)}); err != nil {
		return err
	}
	for _, url := range imageURLs {
		if path, ok := r.blobs.PathFromURL(url); ok {
			if err := r.blobs.Delete(ctx, path); err != nil {
				r.logger.Warn("orphaned service image blob", zap.String("path", path), zap.Error(err))
			}
		}
	}
	return nil
}

func (r *serviceRepository) IncrementApplicationCount(ctx context.Context, serviceID string, delta int64) error {
	return r.Update(ctx, serviceID, map[string]any{"applicationCount": gateway.Increment(delta)})
}

func (r *serviceRepository) Subscribe(ctx context.Context, serviceID string, fn func(*models.Service)) (gateway.Unsubscribe, error) {
	return r.gw.SubscribeDocument(ctx, servicesCollection, serviceID, func(doc *gateway.Document) {
		if doc == nil {
			fn(nil)
			return
		}
		fn(decodeService(doc))
	})
}

func encodeService(s *models.Service) map[string]any {
	types := make([]string, len(s.Types))
	for i, t := range s.Types {
		types[i] = string(t)
	}
	data := map[string]any{
		"professionalId": s.ProfessionalID,
		"title":          s.Title,
		"description":    s.Description,
		"type":           types,
		"status":         string(s.Status),
		"isUrgent":       s.IsUrgent,
		"images":         s.Images,
		"date":           encodeServiceDate(s.Date),
		"location":       encodeServiceLocation(s.Location),
		"criteria":       encodeServiceCriteria(s.Criteria),
		"payment": map[string]any{
			"type":    string(s.Payment.Type),
			"amount":  s.Payment.Amount,
			"details": s.Payment.Details,
		},
		"applicationCount": s.ApplicationCount,
	}
	if s.ExpiresAt != nil {
		data["expiresAt"] = *s.ExpiresAt
	}
	return data
}

func encodeServiceDate(d models.ServiceDate) map[string]any {
	m := map[string]any{
		"startDate":  d.StartDate,
		"duration":   d.DurationMinutes,
		"isFlexible": d.IsFlexible,
	}
	if d.EndDate != nil {
		m["endDate"] = *d.EndDate
	}
	return m
}

func encodeServiceLocation(l models.ServiceLocation) map[string]any {
	m := map[string]any{
		"address":    l.Address,
		"city":       l.City,
		"postalCode": l.PostalCode,
		"isRemote":   l.IsRemote,
	}
	if l.Coordinates != nil {
		m["coordinates"] = map[string]any{
			"latitude":  l.Coordinates.Latitude,
			"longitude": l.Coordinates.Longitude,
		}
	}
	return m
}

func encodeServiceCriteria(c models.ServiceCriteria) map[string]any {
	hair := make([]string, len(c.HairColors))
	for i, h := range c.HairColors {
		hair[i] = string(h)
	}
	eyes := make([]string, len(c.EyeColors))
	for i, e := range c.EyeColors {
		eyes[i] = string(e)
	}
	return map[string]any{
		"gender":               string(c.Gender),
		"ageMin":               c.AgeMin,
		"ageMax":               c.AgeMax,
		"heightMin":            c.HeightMinCM,
		"heightMax":            c.HeightMaxCM,
		"hairColor":            hair,
		"eyeColor":             eyes,
		"experience":           c.RequiresExperience,
		"specificRequirements": c.SpecificRequirements,
	}
}

func decodeService(doc *gateway.Document) *models.Service {
	d := doc.Data
	s := &models.Service{
		ID:               doc.ID,
		ProfessionalID:   docString(d, "professionalId"),
		Title:            docString(d, "title"),
		Description:      docString(d, "description"),
		Status:           models.ServiceStatus(docString(d, "status")),
		Images:           docStrings(d, "images"),
		IsUrgent:         docBool(d, "isUrgent"),
		ApplicationCount: docInt(d, "applicationCount"),
		CreatedAt:        docTime(d, "createdAt"),
		UpdatedAt:        docTime(d, "updatedAt"),
		ExpiresAt:        docTimePtr(d, "expiresAt"),
	}
	for _, t := range docStrings(d, "type") {
		s.Types = append(s.Types, models.ServiceType(t))
	}
	if dd := docMap(d, "date"); dd != nil {
		s.Date = models.ServiceDate{
			StartDate:       docTime(dd, "startDate"),
			EndDate:         docTimePtr(dd, "endDate"),
			DurationMinutes: docInt(dd, "duration"),
			IsFlexible:      docBool(dd, "isFlexible"),
		}
	}
	if ld := docMap(d, "location"); ld != nil {
		s.Location = models.ServiceLocation{
			Address:    docString(ld, "address"),
			City:       docString(ld, "city"),
			PostalCode: docString(ld, "postalCode"),
			IsRemote:   docBool(ld, "isRemote"),
		}
		if c := docMap(ld, "coordinates"); c != nil {
			s.Location.Coordinates = &models.Coordinates{
				Latitude:  docFloat(c, "latitude"),
				Longitude: docFloat(c, "longitude"),
			}
		}
	}
	if cd := docMap(d, "criteria"); cd != nil {
		s.Criteria = models.ServiceCriteria{
			Gender:               models.Gender(docString(cd, "gender")),
			AgeMin:               docInt(cd, "ageMin"),
			AgeMax:               docInt(cd, "ageMax"),
			HeightMinCM:          docInt(cd, "heightMin"),
			HeightMaxCM:          docInt(cd, "heightMax"),
			RequiresExperience:   docBool(cd, "experience"),
			SpecificRequirements: docString(cd, "specificRequirements"),
		}
		for _, h := range docStrings(cd, "hairColor") {
			s.Criteria.HairColors = append(s.Criteria.HairColors, models.HairColor(h))
		}
		for _, e := range docStrings(cd, "eyeColor") {
			s.Criteria.EyeColors = append(s.Criteria.EyeColors, models.EyeColor(e))
		}
	}
	if pd := docMap(d, "payment"); pd != nil {
		s.Payment = models.ServicePayment{
			Type:    models.PaymentType(docString(pd, "type")),
			Amount:  docFloat(pd, "amount"),
			Details: docString(pd, "details"),
		}
	}
	return s
}
