package users

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

type HTTPControllerRoutes struct {
	Register string
	Login    string
	Logout   string
	Me       string
	Users    string
}

// HTTPController exposes the auth and user-management workflows as a JSON
// API. Token resolution happens in TokenMiddleware, not in handlers; the
// admin surface is gated on the admin role.
type HTTPController struct {
	Debug        bool
	Logger       Logger
	Auth         Authenticator
	Manager      *UserManager
	Resolver     TokenResolver
	Routes       *HTTPControllerRoutes
	AdminRole    string
	ErrorHandler func(router.Context, error) error
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func NewHTTPController(opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger:    defLogger{},
		AdminRole: RoleNameAdmin,
		Routes: &HTTPControllerRoutes{
			Register: "/auth/register",
			Login:    "/auth/login",
			Logout:   "/auth/logout",
			Me:       "/auth/me",
			Users:    "/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auth == nil {
		panic("Missing Authenticator in users controller...")
	}

	if c.Manager == nil {
		panic("Missing UserManager in users controller...")
	}

	if c.Resolver == nil {
		panic("Missing TokenResolver in users controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.renderError
	}

	return c
}

func WithAuthenticator(auth Authenticator) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Auth = auth
		return c
	}
}

func WithUserManager(manager *UserManager) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Manager = manager
		return c
	}
}

func WithTokenResolver(resolver TokenResolver) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Resolver = resolver
		return c
	}
}

func WithControllerLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Logger = logger
		return c
	}
}

// RegisterRoutes wires the public auth endpoints plus the admin-gated
// user management surface.
func (a *HTTPController) RegisterRoutes(app RouteRegistrar) {
	protected := TokenMiddleware(a.Resolver, a.ErrorHandler)
	adminOnly := RequireRole(a.AdminRole, a.ErrorHandler)

	app.Post(a.Routes.Register, a.RegisterPost)
	app.Post(a.Routes.Login, a.LoginPost)
	app.Post(a.Routes.Logout, a.LogoutPost, protected)
	app.Get(a.Routes.Me, a.MeShow, protected)

	app.Get(a.Routes.Users, a.UserIndex, protected, adminOnly)
	app.Post(a.Routes.Users, a.UserCreate, protected, adminOnly)
	app.Get(a.Routes.Users+"/:id", a.UserShow, protected, adminOnly)
	app.Put(a.Routes.Users+"/:id", a.UserUpdate, protected, adminOnly)
	app.Delete(a.Routes.Users+"/:id", a.UserDelete, protected, adminOnly)
	app.Post(a.Routes.Users+"/:id/roles", a.UserAssignRole, protected, adminOnly)
	app.Delete(a.Routes.Users+"/:id/roles", a.UserRemoveRole, protected, adminOnly)
}

// RegisterRequest payload
type RegisterRequest struct {
	Name                 string `form:"name" json:"name"`
	Email                string `form:"email" json:"email"`
	Password             string `form:"password" json:"password"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required,
			validation.Length(1, 255),
		),
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 0),
		),
		validation.Field(
			&r.PasswordConfirmation,
			validation.Required,
			validation.In(r.Password).Error("password confirmation does not match"),
		),
	)
}

func (a *HTTPController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": "The given data was invalid.",
			"errors":  err.Error(),
		})
	}

	if a.Debug {
		a.Logger.Debug("register payload", "payload", print.MaybePrettyJSON(map[string]any{
			"name":  payload.Name,
			"email": payload.Email,
		}))
	}

	result, err := a.Auth.Register(ctx.Context(), RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"status":  "success",
		"message": "User registered successfully",
		"data":    result,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *HTTPController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": "The given data was invalid.",
			"errors":  err.Error(),
		})
	}

	result, err := a.Auth.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status":  "success",
		"message": "Login successful",
		"data":    result,
	})
}

func (a *HTTPController) LogoutPost(ctx router.Context) error {
	user, ok := FromRouterContext(ctx)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	if err := a.Auth.Logout(ctx.Context(), user); err != nil {
		return ctx.JSON(fiber.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Logout failed",
		})
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status":  "success",
		"message": "Successfully logged out",
	})
}

func (a *HTTPController) MeShow(ctx router.Context) error {
	user, ok := FromRouterContext(ctx)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	user, err := a.Auth.AuthenticatedUser(ctx.Context(), user)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
		"data":   user,
	})
}

func (a *HTTPController) UserIndex(ctx router.Context) error {
	records, err := a.Manager.ListUsers(ctx.Context())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
		"data":   records,
	})
}

func (a *HTTPController) UserShow(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	record, err := a.Manager.GetUser(ctx.Context(), id)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status": "success",
		"data":   record,
	})
}

// StoreUserRequest payload
type StoreUserRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r StoreUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 0)),
	)
}

func (a *HTTPController) UserCreate(ctx router.Context) error {
	payload := new(StoreUserRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": "The given data was invalid.",
			"errors":  err.Error(),
		})
	}

	record, err := a.Manager.CreateUser(ctx.Context(), CreateUserInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"status":  "success",
		"message": "User created successfully",
		"data":    record,
	})
}

// UpdateUserRequest payload. Pointer fields distinguish "not provided"
// from "set to empty"; a present roles set replaces membership wholesale.
type UpdateUserRequest struct {
	Name     *string     `form:"name" json:"name"`
	Email    *string     `form:"email" json:"email"`
	Password *string     `form:"password" json:"password"`
	Roles    []uuid.UUID `form:"roles" json:"roles"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 255)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(8, 0)),
	)
}

func (a *HTTPController) UserUpdate(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(UpdateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": "The given data was invalid.",
			"errors":  err.Error(),
		})
	}

	record, err := a.Manager.UpdateUser(ctx.Context(), id, UpdateUserInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Roles:    payload.Roles,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status":  "success",
		"message": "User updated successfully",
		"data":    record,
	})
}

func (a *HTTPController) UserDelete(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Manager.DeleteUser(ctx.Context(), id); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status":  "success",
		"message": "User deleted successfully",
	})
}

// RoleRequest payload
type RoleRequest struct {
	RoleID uuid.UUID `form:"role_id" json:"role_id"`
}

// Validate will run validation rules
func (r RoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RoleID, validation.By(requiredUUID)),
	)
}

// requiredUUID exists because validation.Required treats a uuid.UUID as a
// 16 byte array and never considers it empty.
func requiredUUID(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("cannot be blank", errors.CategoryValidation)
	}
	return nil
}

func (a *HTTPController) UserAssignRole(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(RoleRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": "The given data was invalid.",
			"errors":  err.Error(),
		})
	}

	record, err := a.Manager.AssignRole(ctx.Context(), id, payload.RoleID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status":  "success",
		"message": "Role assigned successfully",
		"data":    record,
	})
}

func (a *HTTPController) UserRemoveRole(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(RoleRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request body"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": "The given data was invalid.",
			"errors":  err.Error(),
		})
	}

	record, err := a.Manager.RemoveRole(ctx.Context(), id, payload.RoleID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"status":  "success",
		"message": "Role removed successfully",
		"data":    record,
	})
}

func (a *HTTPController) renderError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"controller error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"text_code", richErr.TextCode,
	)

	return ctx.JSON(statusForError(richErr), map[string]any{
		"status":  "error",
		"message": richErr.Message,
	})
}

func statusForError(err *errors.Error) int {
	if err.Code != 0 {
		return err.Code
	}

	switch err.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryValidation:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func pathID(ctx router.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryValidation, "invalid user id")
	}
	return id, nil
}
