package viewmodel

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// ProfileViewModel drives the profile screen, both the user's own and
// other people's.
type ProfileViewModel struct {
	users   repository.UserRepository
	ratings repository.RatingRepository

	authStore *store.AuthStore
	ui        *store.UIStore
	nav       Navigator
	logger    *zap.Logger

	mu          sync.Mutex
	viewed      *models.User
	userRatings []*models.Rating
}

func NewProfileViewModel(
	users repository.UserRepository,
	ratings repository.RatingRepository,
	authStore *store.AuthStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *ProfileViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &ProfileViewModel{
		users:     users,
		ratings:   ratings,
		authStore: authStore,
		ui:        ui,
		nav:       nav,
		logger:    logger,
	}
}

// Load fetches a profile and its visible ratings. Viewing yourself shows
// private ratings too.
func (vm *ProfileViewModel) Load(ctx context.Context, userID string) error {
	user, err := vm.users.GetByID(ctx, userID)
	if err != nil {
		vm.logger.Error("profile load failed", zap.String("userId", userID), zap.Error(err))
		vm.ui.Push(store.ToastError, "Profil introuvable")
		return err
	}
	publicOnly := userID != vm.authStore.UID()
	rs, err := vm.ratings.ForUser(ctx, userID, publicOnly)
	if err != nil {
		vm.logger.Warn("profile ratings fetch failed", zap.String("userId", userID), zap.Error(err))
	}

	vm.mu.Lock()
	vm.viewed = user
	vm.userRatings = rs
	vm.mu.Unlock()
	return nil
}

// Viewed returns the loaded profile.
func (vm *ProfileViewModel) Viewed() *models.User {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.viewed
}

// Ratings returns the loaded evaluations.
func (vm *ProfileViewModel) Ratings() []*models.Rating {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]*models.Rating(nil), vm.userRatings...)
}

// IsSelf reports whether the loaded profile is the signed-in user's own.
func (vm *ProfileViewModel) IsSelf() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.viewed != nil && vm.viewed.ID == vm.authStore.UID()
}

// UpdateProfile writes field changes to the user's own profile and
// refreshes the auth store's copy.
func (vm *ProfileViewModel) UpdateProfile(ctx context.Context, data map[string]any) error {
	uid := vm.authStore.UID()
	if uid == "" {
		return ErrNotSignedIn
	}
	if err := vm.users.Update(ctx, uid, data); err != nil {
		vm.ui.Push(store.ToastError, "Mise a jour impossible")
		return err
	}
	user, err := vm.users.GetByID(ctx, uid)
	if err != nil {
		vm.logger.Warn("profile refetch failed", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	vm.authStore.SetUser(user)
	vm.mu.Lock()
	if vm.viewed != nil && vm.viewed.ID == uid {
		vm.viewed = user
	}
	vm.mu.Unlock()
	vm.ui.Push(store.ToastSuccess, "Profil mis a jour")
	return nil
}

// UploadProfilePicture replaces the avatar.
func (vm *ProfileViewModel) UploadProfilePicture(ctx context.Context, file repository.Upload) (string, error) {
	uid := vm.authStore.UID()
	if uid == "" {
		return "", ErrNotSignedIn
	}
	url, err := vm.users.UploadProfilePicture(ctx, uid, file)
	if err != nil {
		vm.ui.Push(store.ToastError, "Photo non televersee")
		return "", err
	}
	if u := vm.authStore.User(); u != nil {
		u.ProfilePicture = url
		vm.authStore.SetUser(u)
	}
	return url, nil
}

// UploadPhotos appends book photos to a model profile.
func (vm *ProfileViewModel) UploadPhotos(ctx context.Context, files []repository.Upload) ([]string, error) {
	user := vm.authStore.User()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	if user.Role != models.RoleModel {
		return nil, ErrPermissionDenied
	}
	urls, err := vm.users.UploadModelPhotos(ctx, user.ID, files)
	if err != nil {
		vm.ui.Push(store.ToastError, "Photos non televersees")
		return nil, err
	}
	user.Model.Photos = append(user.Model.Photos, urls...)
	vm.authStore.SetUser(user)
	return urls, nil
}

// RemovePhoto drops one book photo.
func (vm *ProfileViewModel) RemovePhoto(ctx context.Context, photoURL string) error {
	user := vm.authStore.User()
	if user == nil {
		return ErrNotSignedIn
	}
	if user.Role != models.RoleModel {
		return ErrPermissionDenied
	}
	if err := vm.users.RemoveModelPhoto(ctx, user.ID, photoURL); err != nil {
		vm.ui.Push(store.ToastError, "Suppression impossible")
		return err
	}
	kept := user.Model.Photos[:0]
	for _, p := range user.Model.Photos {
		if p != photoURL {
			kept = append(kept, p)
		}
	}
	user.Model.Photos = kept
	vm.authStore.SetUser(user)
	return nil
}

// Block hides another user both ways.
func (vm *ProfileViewModel) Block(ctx context.Context, blockedID string) error {
	uid := vm.authStore.UID()
	if uid == "" {
		return ErrNotSignedIn
	}
	if uid == blockedID {
		return ErrPermissionDenied
	}
	if err := vm.users.BlockUser(ctx, uid, blockedID); err != nil {
		vm.ui.Push(store.ToastError, "Blocage impossible")
		return err
	}
	if u := vm.authStore.User(); u != nil {
		u.BlockedUsers = append(u.BlockedUsers, blockedID)
		vm.authStore.SetUser(u)
	}
	vm.ui.Push(store.ToastInfo, "Utilisateur bloque")
	return nil
}

// Unblock lifts a block.
func (vm *ProfileViewModel) Unblock(ctx context.Context, blockedID string) error {
	uid := vm.authStore.UID()
	if uid == "" {
		return ErrNotSignedIn
	}
	if err := vm.users.UnblockUser(ctx, uid, blockedID); err != nil {
		vm.ui.Push(store.ToastError, "Deblocage impossible")
		return err
	}
	if u := vm.authStore.User(); u != nil {
		kept := u.BlockedUsers[:0]
		for _, b := range u.BlockedUsers {
			if b != blockedID {
				kept = append(kept, b)
			}
		}
		u.BlockedUsers = kept
		vm.authStore.SetUser(u)
	}
	return nil
}
