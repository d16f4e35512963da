package rentalweb

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ProfileUpdater pushes a profile edit to the backend. The client package
// provides the implementation.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, patch IdentityPatch) error
}

// ProfileUpdaterFunc adapts a function to the ProfileUpdater interface.
type ProfileUpdaterFunc func(ctx context.Context, patch IdentityPatch) error

func (f ProfileUpdaterFunc) UpdateProfile(ctx context.Context, patch IdentityPatch) error {
	return f(ctx, patch)
}

type UpdateProfileMessage struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (e UpdateProfileMessage) Type() string { return "user.profile.update" }

// UpdateProfileHandler writes the edit to the backend first and only then
// folds it into the session, so the session never shows state the backend
// rejected.
type UpdateProfileHandler struct {
	store   *Store
	updater ProfileUpdater
}

func NewUpdateProfileHandler(store *Store, updater ProfileUpdater) *UpdateProfileHandler {
	return &UpdateProfileHandler{store: store, updater: updater}
}

func (h *UpdateProfileHandler) Execute(ctx context.Context, event UpdateProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateProfileHandler) execute(ctx context.Context, event UpdateProfileMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	patch := IdentityPatch{
		DisplayName: event.Name,
		Email:       event.Email,
		Phone:       event.Phone,
		Address:     event.Address,
	}

	if err := h.updater.UpdateProfile(ctx, patch); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile update failed")
	}

	h.store.UpdateIdentity(patch)
	return nil
}
