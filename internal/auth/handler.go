package auth

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/PiyushJZ/streamly-auth-service/proto/gen/auth"
)

var validate = validator.New()

type Handler struct {
	pb.UnimplementedAuthServiceServer
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	if err := validateLoginRequest(req); err != nil {
		h.log.Warn("invalid login request", zap.Error(err))
		return nil, err
	}

	result, err := h.service.Login(ctx, req.Email, req.Username, req.Password, ClientMeta{
		IPAddress: req.Ipaddress,
		UserAgent: req.UserAgent,
		Location:  req.Location,
	})
	if err != nil {
		return nil, statusFromError(err)
	}

	return &pb.LoginResponse{
		UserId:       result.UserID,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		SessionId:    result.SessionToken,
	}, nil
}

func (h *Handler) Signup(ctx context.Context, req *pb.SignupRequest) (*pb.SignupResponse, error) {
	if err := validateSignupRequest(req); err != nil {
		h.log.Warn("invalid signup request", zap.Error(err))
		return nil, err
	}

	if err := h.service.Signup(ctx, req.Email, req.Password); err != nil {
		return nil, statusFromError(err)
	}

	return &pb.SignupResponse{
		Message: "SIGNUP_SUCCESS",
		Success: true,
		Error:   false,
	}, nil
}

// Logout acknowledges success even when the teardown itself failed
// with a classified error: session teardown is fail-open for the
// caller. Only unclassified internal errors surface.
func (h *Handler) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	if req.AccessToken == "" || req.SessionId == "" {
		return nil, status.Error(codes.InvalidArgument, "access token and session id are required")
	}

	if err := h.service.Logout(ctx, req.AccessToken, req.SessionId); err != nil {
		h.log.Warn("logout failed", zap.Error(err))
		if !IsClassified(err) {
			return nil, statusFromError(err)
		}
	}

	return &pb.LogoutResponse{
		Message: "LOGOUT_SUCCESS",
		Success: true,
		Error:   false,
	}, nil
}

func (h *Handler) ForgotPassword(ctx context.Context, req *pb.ForgotPasswordRequest) (*pb.ForgotPasswordResponse, error) {
	if err := validate.Var(req.Email, "required,email"); err != nil {
		return nil, status.Error(codes.InvalidArgument, "a valid email is required")
	}

	// The response shape never depends on whether the email exists.
	h.service.ForgotPassword(ctx, req.Email)

	return &pb.ForgotPasswordResponse{
		Message: "FORGOT_PASSWORD_SUCCESS",
		Success: true,
		Error:   false,
	}, nil
}

func validateLoginRequest(req *pb.LoginRequest) error {
	if req.Email == "" && req.Username == "" {
		return status.Error(codes.InvalidArgument, "email or username is required")
	}
	if err := validate.Var(req.Email, "omitempty,email"); err != nil {
		return status.Error(codes.InvalidArgument, "invalid email format")
	}
	if req.Password == "" {
		return status.Error(codes.InvalidArgument, "password is required")
	}
	return nil
}

func validateSignupRequest(req *pb.SignupRequest) error {
	if err := validate.Var(req.Email, "required,email"); err != nil {
		return status.Error(codes.InvalidArgument, "a valid email is required")
	}
	if err := validate.Var(req.Password, "required,min=8,max=72"); err != nil {
		return status.Error(codes.InvalidArgument, "password must be between 8 and 72 characters")
	}
	return nil
}

// statusFromError translates the service error taxonomy into grpc
// status codes; the message keeps the classified wire string.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidEmailUsername),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrLogin):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, ErrLoginAttemptsLimitReached),
		errors.Is(err, ErrLogoutNotAllowed),
		errors.Is(err, ErrLogoutSessionInvalid):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrUserExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrSignup):
		return status.Error(codes.Unknown, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
