package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterUserMessage follows the go-command message contract so a
// dispatcher can route registrations without importing this package's
// workflow types directly.
type RegisterUserMessage struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	auth Authenticator
}

func NewRegisterUserHandler(auth Authenticator) *RegisterUserHandler {
	return &RegisterUserHandler{auth: auth}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	_, err := h.auth.Register(ctx, RegisterInput{
		Name:      event.Name,
		Email:     event.Email,
		Password:  event.Password,
		UseHashid: event.UseHashid,
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration failed")
	}

	return nil
}
