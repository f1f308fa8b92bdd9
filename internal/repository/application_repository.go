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

type applicationRepository struct {
	gw     gateway.Gateway
	blobs  gateway.BlobStore
	logger *zap.Logger
}

// NewApplicationRepository returns the candidacies repository.
func NewApplicationRepository(gw gateway.Gateway, blobs gateway.BlobStore, logger *zap.Logger) ApplicationRepository {
	return &applicationRepository{gw: gw, blobs: blobs, logger: logger}
}

func (r *applicationRepository) GetByID(ctx context.Context, applicationID string) (*models.Application, error) {
	doc, err := r.gw.GetByID(ctx, applicationsCollection, applicationID)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			r.logger.Error("get application failed", zap.String("applicationId", applicationID), zap.Error(err))
		}
		return nil, err
	}
	return decodeApplication(doc), nil
}

func (r *applicationRepository) ForService(ctx context.Context, serviceID string, pageSize int, startAfter string) (*ApplicationPage, error) {
	q := gateway.Query{
		Filters:    []gateway.Filter{{Field: "serviceId", Op: gateway.OpEqual, Value: serviceID}},
		Limit:      pageSize,
		StartAfter: startAfter,
	}
	return r.queryPage(ctx, q)
}

func (r *applicationRepository) ForModel(ctx context.Context, modelID string, statuses []models.ApplicationStatus, pageSize int, startAfter string) (*ApplicationPage, error) {
	q := gateway.Query{
		Filters:    []gateway.Filter{{Field: "modelId", Op: gateway.OpEqual, Value: modelID}},
		Limit:      pageSize,
		StartAfter: startAfter,
	}
	appendStatusFilter(&q, statuses)
	return r.queryPage(ctx, q)
}

func (r *applicationRepository) ForProfessional(ctx context.Context, professionalID string, statuses []models.ApplicationStatus, pageSize int, startAfter string) (*ApplicationPage, error) {
	q := gateway.Query{
		Filters:    []gateway.Filter{{Field: "professionalId", Op: gateway.OpEqual, Value: professionalID}},
		Limit:      pageSize,
		StartAfter: startAfter,
	}
	appendStatusFilter(&q, statuses)
	return r.queryPage(ctx, q)
}

func appendStatusFilter(q *gateway.Query, statuses []models.ApplicationStatus) {
	switch len(statuses) {
	case 0:
	case 1:
		q.Filters = append(q.Filters, gateway.Filter{Field: "status", Op: gateway.OpEqual, Value: string(statuses[0])})
	default:
		values := make([]any, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		q.Filters = append(q.Filters, gateway.Filter{Field: "status", Op: gateway.OpIn, Value: values})
	}
}

func (r *applicationRepository) queryPage(ctx context.Context, q gateway.Query) (*ApplicationPage, error) {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	page, err := r.gw.Query(ctx, applicationsCollection, q)
	if err != nil {
		r.logger.Error("list applications failed", zap.Error(err))
		return nil, err
	}
	out := &ApplicationPage{LastID: page.LastID, HasMore: page.HasMore}
	for i := range page.Items {
		out.Applications = append(out.Applications, decodeApplication(&page.Items[i]))
	}
	return out, nil
}

// Create stores a new candidacy after verifying the model has no live one
// for the same service, then bumps the listing's cached application count.
// Only cancelled candidacies free the slot for re-application.
func (r *applicationRepository) Create(ctx context.Context, application *models.Application) (string, error) {
	existing, err := r.gw.Query(ctx, applicationsCollection, gateway.Query{
		Filters: []gateway.Filter{
			{Field: "serviceId", Op: gateway.OpEqual, Value: application.ServiceID},
			{Field: "modelId", Op: gateway.OpEqual, Value: application.ModelID},
		},
	})
	if err != nil {
		r.logger.Error("duplicate-application check failed", zap.Error(err))
		return "", err
	}
	for i := range existing.Items {
		if models.ApplicationStatus(docString(existing.Items[i].Data, "status")) != models.ApplicationCancelled {
			return "", fmt.Errorf("service %s, model %s: %w", application.ServiceID, application.ModelID, ErrAlreadyApplied)
		}
	}

	application.Status = models.ApplicationPending
	if application.ExpiredAt == nil {
		exp := time.Now().Add(7 * 24 * time.Hour)
		application.ExpiredAt = &exp
	}
	id, err := r.gw.Add(ctx, applicationsCollection, encodeApplication(application))
	if err != nil {
		r.logger.Error("create application failed", zap.Error(err))
		return "", err
	}

	err = r.gw.Update(ctx, servicesCollection, application.ServiceID, map[string]any{
		"applicationCount": gateway.Increment(1),
	})
	if err != nil {
		r.logger.Error("application count increment failed",
			zap.String("serviceId", application.ServiceID), zap.Error(err))
	}
	return id, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, rejectionReason string) error {
	current, err := r.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("application %s: %s -> %s: %w", applicationID, current.Status, status, ErrIllegalTransition)
	}

	data := map[string]any{"status": string(status)}
	if status == models.ApplicationRejected && rejectionReason != "" {
		data["rejectionReason"] = rejectionReason
	}
	if err := r.gw.Update(ctx, applicationsCollection, applicationID, data); err != nil {
		r.logger.Error("update application status failed", zap.String("applicationId", applicationID), zap.Error(err))
		return err
	}

	// A cancelled candidacy no longer counts toward the listing.
	if status == models.ApplicationCancelled {
		err := r.gw.Update(ctx, servicesCollection, current.ServiceID, map[string]any{
			"applicationCount": gateway.Increment(-1),
		})
		if err != nil {
			r.logger.Error("application count decrement failed",
				zap.String("serviceId", current.ServiceID), zap.Error(err))
		}
	}
	return nil
}

func (r *applicationRepository) UploadPhotos(ctx context.Context, applicationID string, files []Upload) ([]string, error) {
	now := time.Now().UnixMilli()
	urls := make([]string, 0, len(files))
	for i, f := range files {
		path := fmt.Sprintf("%s/%s/photo-%d-%d.jpg", applicationPhotosPath, applicationID, i, now)
		url, err := r.blobs.Upload(ctx, path, f.ContentType, f.Reader)
		if err != nil {
			r.logger.Error("application photo upload failed", zap.String("applicationId", applicationID), zap.Error(err))
			return nil, err
		}
		urls = append(urls, url)
	}

	union := make([]any, len(urls))
	for i, u := range urls {
		union[i] = u
	}
	err := r.gw.Update(ctx, applicationsCollection, applicationID, map[string]any{
		"photos": gateway.ArrayUnion(union...),
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *applicationRepository) SetUnreadMessages(ctx context.Context, applicationID string, unread bool) error {
	return r.gw.Update(ctx, applicationsCollection, applicationID, map[string]any{
		"hasUnreadMessages": unread,
	})
}

func (r *applicationRepository) Delete(ctx context.Context, applicationID string) error {
	application, err := r.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if err := r.gw.Delete(ctx, applicationsCollection, applicationID); err != nil {
		r.logger.Error("delete application failed", zap.String("applicationId", applicationID), zap.Error(err))
		return err
	}
	for _, url := range application.Photos {
		if path, ok := r.blobs.PathFromURL(url); ok {
			if err := r.blobs.Delete(ctx, path); err != nil {
				r.logger.Warn("orphaned application photo blob", zap.String("path", path), zap.Error(err))
			}
		}
	}
	return nil
}

func (r *applicationRepository) Subscribe(ctx context.Context, applicationID string, fn func(*models.Application)) (gateway.Unsubscribe, error) {
	return r.gw.SubscribeDocument(ctx, applicationsCollection, applicationID, func(doc *gateway.Document) {
		if doc == nil {
			fn(nil)
			return
		}
		fn(decodeApplication(doc))
	})
}

func (r *applicationRepository) SubscribeForModel(ctx context.Context, modelID string, fn func([]*models.Application)) (gateway.Unsubscribe, error) {
	q := gateway.Query{
		Filters: []gateway.Filter{{Field: "modelId", Op: gateway.OpEqual, Value: modelID}},
	}
	return r.subscribeQuery(ctx, q, fn)
}

func (r *applicationRepository) SubscribeForProfessional(ctx context.Context, professionalID string, fn func([]*models.Application)) (gateway.Unsubscribe, error) {
	q := gateway.Query{
		Filters: []gateway.Filter{{Field: "professionalId", Op: gateway.OpEqual, Value: professionalID}},
	}
	return r.subscribeQuery(ctx, q, fn)
}

func (r *applicationRepository) subscribeQuery(ctx context.Context, q gateway.Query, fn func([]*models.Application)) (gateway.Unsubscribe, error) {
	return r.gw.Subscribe(ctx, applicationsCollection, q, func(docs []gateway.Document) {
		apps := make([]*models.Application, 0, len(docs))
		for i := range docs {
			apps = append(apps, decodeApplication(&docs[i]))
		}
		fn(apps)
	})
}

func encodeApplication(a *models.Application) map[string]any {
	data := map[string]any{
		"serviceId":         a.ServiceID,
		"modelId":           a.ModelID,
		"professionalId":    a.ProfessionalID,
		"message":           a.Message,
		"photos":            a.Photos,
		"status":            string(a.Status),
		"hasUnreadMessages": a.HasUnreadMessages,
	}
	if a.Video != "" {
		data["video"] = a.Video
	}
	if a.ExpiredAt != nil {
		data["expiredAt"] = *a.ExpiredAt
	}
	return data
}

func decodeApplication(doc *gateway.Document) *models.Application {
	d := doc.Data
	return &models.Application{
		ID:                doc.ID,
		ServiceID:         docString(d, "serviceId"),
		ModelID:           docString(d, "modelId"),
		ProfessionalID:    docString(d, "professionalId"),
		Message:           docString(d, "message"),
		Photos:            docStrings(d, "photos"),
		Video:             docString(d, "video"),
		Status:            models.ApplicationStatus(docString(d, "status")),
		RejectionReason:   docString(d, "rejectionReason"),
		HasUnreadMessages: docBool(d, "hasUnreadMessages"),
		CreatedAt:         docTime(d, "createdAt"),
		UpdatedAt:         docTime(d, "updatedAt"),
		ExpiredAt:         docTimePtr(d, "expiredAt"),
	}
}
