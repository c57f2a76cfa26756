package authhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/otp"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (auth.Account, error)
	Signin(ctx context.Context, login, password string) (auth.Session, error)
	Logout(ctx context.Context, user auth.UserContext) error
	Profile(ctx context.Context, accountID int64) (auth.Account, error)
	UpdateProfile(ctx context.Context, accountID int64, p auth.Profile) (auth.Account, error)
	LookupForReset(ctx context.Context, emailOrPhone string) (auth.Account, error)
	IssueResetToken(ctx context.Context, accountID int64) (string, time.Time, error)
	ResetPassword(ctx context.Context, token, password, confirm string) error
}

type OTPService interface {
	Issue(ctx context.Context, identifier string) (time.Time, error)
	Verify(ctx context.Context, identifier, code string) error
}

type Handler struct {
	Service AuthService
	OTP     OTPService
}

func NewHandler(service AuthService, codes OTPService) *Handler {
	return &Handler{Service: service, OTP: codes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.HandleSignup)
		r.Post("/signin", h.HandleSignin)
		r.Post("/request-otp", h.HandleRequestOTP)
		r.Post("/verify-otp", h.HandleVerifyOTP)
		r.Post("/reset-password", h.HandleResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/logout", h.HandleLogout)
			r.Get("/profile", h.HandleGetProfile)
			r.Put("/profile", h.HandleUpdateProfile)
		})
	})
}

type signupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
	auth.Profile
}

type signinRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type requestOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload signupRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}

	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.MaxLength("username", payload.Username, 80)
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	v.MaxLength("email", payload.Email, 120)
	if err := validatePassword(payload.Password); err != nil {
		v.Add("password", err.Error())
	}
	if payload.Password != payload.ConfirmPassword {
		v.Add("confirmPassword", "must match password")
	}
	v.Enum("role", payload.Role, []string{auth.RoleEditor, auth.RoleViewer}, "must be editor or viewer")
	if v.Reject(w, reqID) {
		return
	}

	account, err := h.Service.Signup(r.Context(), auth.SignupInput{
		Username:        payload.Username,
		Email:           payload.Email,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
		Role:            payload.Role,
		Profile:         trimProfile(payload.Profile),
	})
	switch {
	case errors.Is(err, auth.ErrAccountExists):
		api.Fail(w, http.StatusConflict, "account_exists", "username or email already exists", reqID)
		return
	case errors.Is(err, auth.ErrPasswordMismatch):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "confirmPassword", Reason: "must match password"}})
		return
	case err != nil:
		log.WithError(err).WithField("requestId", reqID).Error("signup failed")
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create account", reqID)
		return
	}
	api.Created(w, account, reqID)
}

func (h *Handler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload signinRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("login", payload.Login, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	session, err := h.Service.Signin(r.Context(), strings.TrimSpace(payload.Login), payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		log.WithError(err).WithField("requestId", reqID).Error("signin failed")
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", reqID)
		return
	}
	api.Success(w, map[string]any{
		"token":     session.Token,
		"expiresAt": session.Expires,
		"account":   session.Account,
	}, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.Logout(r.Context(), user); err != nil {
		log.WithError(err).WithField("accountId", user.AccountID).Warn("logout session revoke failed")
	}
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	account, err := h.Service.Profile(r.Context(), user.AccountID)
	if errors.Is(err, auth.ErrAccountNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "account not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", reqID)
		return
	}
	api.Success(w, account, reqID)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload auth.Profile
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	payload = trimProfile(payload)

	v := shared.NewValidator()
	for field, value := range map[string]string{
		"firstName": payload.FirstName, "lastName": payload.LastName, "jobTitle": payload.JobTitle,
		"companyName": payload.CompanyName, "country": payload.Country, "city": payload.City, "state": payload.State,
	} {
		v.MaxLength(field, value, 100)
	}
	v.MaxLength("workPhone", payload.WorkPhone, 20)
	v.MaxLength("zipCode", payload.ZipCode, 20)
	v.MaxLength("address", payload.Address, 255)
	if v.Reject(w, reqID) {
		return
	}

	account, err := h.Service.UpdateProfile(r.Context(), user.AccountID, payload)
	if errors.Is(err, auth.ErrAccountNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "account not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to update profile", reqID)
		return
	}
	api.Success(w, account, reqID)
}

// HandleRequestOTP answers identically whether or not the account exists.
func (h *Handler) HandleRequestOTP(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload requestOTPRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "email or work phone is required")
	if v.Reject(w, reqID) {
		return
	}

	generic := map[string]string{"status": "otp_requested"}
	account, err := h.Service.LookupForReset(r.Context(), strings.TrimSpace(payload.Email))
	if errors.Is(err, auth.ErrAccountNotFound) {
		api.Success(w, generic, reqID)
		return
	}
	if err != nil {
		log.WithError(err).WithField("requestId", reqID).Error("otp account lookup failed")
		api.Fail(w, http.StatusInternalServerError, "otp_request_failed", "failed to process request", reqID)
		return
	}

	if _, err := h.OTP.Issue(r.Context(), account.Email); err != nil {
		if errors.Is(err, otp.ErrTooSoon) {
			api.Fail(w, http.StatusTooManyRequests, "otp_too_soon", "a code was sent recently, try again shortly", reqID)
			return
		}
		log.WithError(err).WithFields(log.Fields{"accountId": account.ID, "requestId": reqID}).Warn("otp delivery failed")
		api.Fail(w, http.StatusInternalServerError, "otp_delivery_failed", "failed to deliver verification code", reqID)
		return
	}
	api.Success(w, generic, reqID)
}

func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload verifyOTPRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "email or work phone is required")
	v.Required("code", payload.Code, "is required")
	if v.Reject(w, reqID) {
		return
	}

	account, err := h.Service.LookupForReset(r.Context(), strings.TrimSpace(payload.Email))
	if errors.Is(err, auth.ErrAccountNotFound) {
		api.Fail(w, http.StatusBadRequest, "otp_not_found", "code not found or expired", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "otp_verify_failed", "failed to verify code", reqID)
		return
	}

	if err := h.OTP.Verify(r.Context(), account.Email, strings.TrimSpace(payload.Code)); err != nil {
		switch {
		case errors.Is(err, otp.ErrNotFound):
			api.Fail(w, http.StatusBadRequest, "otp_not_found", "code not found or expired", reqID)
		case errors.Is(err, otp.ErrExpired):
			api.Fail(w, http.StatusBadRequest, "otp_expired", "code has expired", reqID)
		case errors.Is(err, otp.ErrInvalid):
			api.Fail(w, http.StatusBadRequest, "otp_invalid", "invalid code", reqID)
		default:
			log.WithError(err).WithField("requestId", reqID).Error("otp verify failed")
			api.Fail(w, http.StatusInternalServerError, "otp_verify_failed", "failed to verify code", reqID)
		}
		return
	}

	token, expires, err := h.Service.IssueResetToken(r.Context(), account.ID)
	if err != nil {
		log.WithError(err).WithField("accountId", account.ID).Error("issue reset token failed")
		api.Fail(w, http.StatusInternalServerError, "reset_token_failed", "failed to issue reset token", reqID)
		return
	}
	api.Success(w, map[string]any{"resetToken": token, "expiresAt": expires}, reqID)
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload resetPasswordRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("token", payload.Token, "is required")
	if err := validatePassword(payload.Password); err != nil {
		v.Add("password", err.Error())
	}
	if payload.Password != payload.ConfirmPassword {
		v.Add("confirmPassword", "must match password")
	}
	if v.Reject(w, reqID) {
		return
	}

	err := h.Service.ResetPassword(r.Context(), strings.TrimSpace(payload.Token), payload.Password, payload.ConfirmPassword)
	switch {
	case errors.Is(err, auth.ErrInvalidResetToken):
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired reset token", reqID)
		return
	case err != nil:
		log.WithError(err).WithField("requestId", reqID).Error("reset password failed")
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to reset password", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "password_reset"}, reqID)
}

var errWeakPassword = errors.New("must be at least 8 characters with upper, lower case letters and a number")

func validatePassword(password string) error {
	if len(password) < 8 {
		return errWeakPassword
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errWeakPassword
	}
	return nil
}

func trimProfile(p auth.Profile) auth.Profile {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.JobTitle = strings.TrimSpace(p.JobTitle)
	p.WorkPhone = strings.TrimSpace(p.WorkPhone)
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.Country = strings.TrimSpace(p.Country)
	p.Address = strings.TrimSpace(p.Address)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
	p.ZipCode = strings.TrimSpace(p.ZipCode)
	return p
}
