package librarian

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-librarian/middleware/authware"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// UserController exposes the credential lifecycle over HTTP
type UserController struct {
	Debug      bool
	Logger     Logger
	Users      UserOperations
	ContextKey string
}

type UserControllerOption func(*UserController) *UserController

func WithUserControllerLogger(logger Logger) UserControllerOption {
	return func(c *UserController) *UserController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithUserControllerDebug(debug bool) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Debug = debug
		return c
	}
}

func NewUserController(users UserOperations, opts ...UserControllerOption) *UserController {
	c := &UserController{
		Logger: defLogger{},
		Users:  users,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Users == nil {
		panic("Missing UserOperations in user controller...")
	}

	return c
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *UserController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %s", err)
		return renderBindError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	if a.Debug {
		a.Logger.Debug("register payload: %s", print.MaybePrettyJSON(payload))
	}

	result, err := a.Users.Register(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	return respondData(c, fiber.StatusCreated, result.Message, result)
}

// VerifyOTPRequest payload
type VerifyOTPRequest struct {
	Email string `json:"email" form:"email"`
	OTP   int    `json:"otp" form:"otp"`
	Type  string `json:"type" form:"type"`
}

// Validate will run validation rules
func (r VerifyOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required, validation.Min(otpMin), validation.Max(otpMax)),
		validation.Field(&r.Type, validation.In(string(OtpTypeRegister), string(OtpTypeForgotPassword))),
	)
}

// OtpType defaults to the register flow when the payload omits it
func (r VerifyOTPRequest) OtpType() OtpType {
	if r.Type == "" {
		return OtpTypeRegister
	}
	return OtpType(r.Type)
}

func (a *UserController) VerifyOTP(c *fiber.Ctx) error {
	payload := new(VerifyOTPRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("verify otp parse payload: %s", err)
		return renderBindError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	if err := a.Users.VerifyOTP(c.UserContext(), payload.Email, payload.OTP, payload.OtpType()); err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	message := "Email verified successfully"
	if payload.OtpType() == OtpTypeForgotPassword {
		message = "Password reset successfully"
	}

	return respondData(c, fiber.StatusOK, message, nil)
}

// ResendOTPRequest payload
type ResendOTPRequest struct {
	Email string `json:"email" form:"email"`
	Type  string `json:"type" form:"type"`
}

// Validate will run validation rules
func (r ResendOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Type, validation.In(string(OtpTypeRegister), string(OtpTypeForgotPassword))),
	)
}

func (r ResendOTPRequest) OtpType() OtpType {
	if r.Type == "" {
		return OtpTypeRegister
	}
	return OtpType(r.Type)
}

func (a *UserController) ResendOTP(c *fiber.Ctx) error {
	payload := new(ResendOTPRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("resend otp parse payload: %s", err)
		return renderBindError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	if err := a.Users.ResendOTP(c.UserContext(), payload.Email, payload.OtpType()); err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	return respondData(c, fiber.StatusOK, "OTP sent successfully", nil)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *UserController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return renderBindError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	result, err := a.Users.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	return respondData(c, fiber.StatusOK, "Login successful", result)
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email       string `json:"email" form:"email"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

// Validate will run validation rules
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 100)),
	)
}

func (a *UserController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("forgot password parse payload: %s", err)
		return renderBindError(c)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err)
	}

	if err := a.Users.ForgotPassword(c.UserContext(), payload.Email, payload.NewPassword); err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	return respondData(c, fiber.StatusOK, "OTP sent successfully", nil)
}

// Me returns the authenticated user's profile
func (a *UserController) Me(c *fiber.Ctx) error {
	principal, id, err := a.requirePrincipal(c)
	if err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	user, err := a.Users.User(c.UserContext(), id)
	if err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	return respondData(c, fiber.StatusOK, "success", fiber.Map{
		"id":         user.ID,
		"email":      principal.Email,
		"isVerified": user.Verified,
		"createdAt":  user.CreatedAt,
	})
}

// Deactivate soft deletes the authenticated user
func (a *UserController) Deactivate(c *fiber.Ctx) error {
	_, id, err := a.requirePrincipal(c)
	if err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	if err := a.Users.Delete(c.UserContext(), id); err != nil {
		return renderError(c, a.Logger, a.Debug, err)
	}

	return respondData(c, fiber.StatusOK, "Account deleted successfully", nil)
}

func (a *UserController) requirePrincipal(c *fiber.Ctx) (authware.Principal, uuid.UUID, error) {
	principal, ok := authware.PrincipalFromCtx(c, a.ContextKey)
	if !ok {
		return authware.Principal{}, uuid.Nil, ErrUserNotFound
	}

	id, err := uuid.Parse(principal.UID)
	if err != nil {
		return authware.Principal{}, uuid.Nil, ErrUserNotFound
	}

	return principal, id, nil
}
