package viewmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// ServiceInput is the create/edit listing form.
type ServiceInput struct {
	Title       string               `validate:"required,min=3,max=120"`
	Description string               `validate:"required,min=10"`
	Types       []models.ServiceType `validate:"required,min=1"`
	StartDate   time.Time            `validate:"required"`
	EndDate     *time.Time           `validate:"omitempty"`
	Duration    int                  `validate:"omitempty,gt=0"`
	IsFlexible  bool
	City        string  `validate:"required"`
	Address     string  `validate:"omitempty"`
	PostalCode  string  `validate:"omitempty,len=5"`
	IsRemote    bool
	PaymentType models.PaymentType `validate:"required,oneof=free paid"`
	Amount      float64            `validate:"omitempty,gte=0"`
	Details     string
	IsUrgent    bool
	Criteria    models.ServiceCriteria
	Coordinates *models.Coordinates
}

// ServiceCreateViewModel drives the create-listing flow: validate, write
// the document, upload images, then link them.
type ServiceCreateViewModel struct {
	services repository.ServiceRepository

	authStore *store.AuthStore
	ui        *store.UIStore
	nav       Navigator
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewServiceCreateViewModel(
	services repository.ServiceRepository,
	authStore *store.AuthStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *ServiceCreateViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &ServiceCreateViewModel{
		services:  services,
		authStore: authStore,
		ui:        ui,
		nav:       nav,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Create validates the form and writes the listing. publish false keeps it
// a draft; true puts it straight on the feed. Returns the new listing ID.
func (vm *ServiceCreateViewModel) Create(ctx context.Context, in ServiceInput, images []repository.Upload, publish bool) (string, error) {
	user := vm.authStore.User()
	if user == nil {
		return "", ErrNotSignedIn
	}
	if user.Role != models.RoleProfessional {
		return "", ErrPermissionDenied
	}
	if err := vm.validate.Struct(in); err != nil {
		return "", fmt.Errorf("create service: %w", err)
	}
	if in.PaymentType == models.PaymentPaid && in.Amount <= 0 {
		return "", fmt.Errorf("create service: paid listing needs an amount")
	}

	status := models.ServiceDraft
	if publish {
		status = models.ServiceActive
	}
	service := &models.Service{
		ProfessionalID: user.ID,
		Title:          in.Title,
		Description:    in.Description,
		Types:          in.Types,
		Status:         status,
		IsUrgent:       in.IsUrgent,
		Criteria:       in.Criteria,
		Date: models.ServiceDate{
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
			DurationMinutes: in.Duration,
			IsFlexible:      in.IsFlexible,
		},
		Location: models.ServiceLocation{
			Address:     in.Address,
			City:        in.City,
			PostalCode:  in.PostalCode,
			Coordinates: in.Coordinates,
			IsRemote:    in.IsRemote,
		},
		Payment: models.ServicePayment{
			Type:    in.PaymentType,
			Amount:  in.Amount,
			Details: in.Details,
		},
	}

	id, err := vm.services.Create(ctx, service)
	if err != nil {
		vm.logger.Error("create service failed", zap.Error(err))
		vm.ui.Push(store.ToastError, "Creation impossible")
		return "", err
	}

	if len(images) > 0 {
		if _, err := vm.services.UploadImages(ctx, id, images); err != nil {
			vm.logger.Warn("service image upload failed", zap.String("serviceId", id), zap.Error(err))
			vm.ui.Push(store.ToastError, "Images non televersees")
		}
	}

	vm.ui.Push(store.ToastSuccess, "Prestation creee")
	vm.nav.Push(RouteServiceDetail, map[string]string{"id": id})
	return id, nil
}

// Publish moves a draft onto the feed.
func (vm *ServiceCreateViewModel) Publish(ctx context.Context, serviceID string) error {
	if err := vm.services.UpdateStatus(ctx, serviceID, models.ServiceActive); err != nil {
		vm.ui.Push(store.ToastError, "Publication impossible")
		return err
	}
	vm.ui.Push(store.ToastSuccess, "Prestation publiee")
	return nil
}
