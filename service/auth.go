package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/repository"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// AuthService 注册、登录与令牌校验
type AuthService struct {
	users  UserStore
	tokens *utils.TokenManager
}

// NewAuthService 创建认证服务
func NewAuthService(users UserStore, tokens *utils.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register 注册用户并签发令牌
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if fieldErrs := validateRegistration(req); len(fieldErrs) > 0 {
		return nil, utils.CreateValidationError(fieldErrs...)
	}

	userExists := utils.CreateValidationError(utils.FieldError{Msg: "User already exists"})
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, userExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.CreateInternalError(err)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, utils.CreateInternalError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, userExists
		}
		return nil, utils.CreateInternalError(err)
	}

	utils.Logger.Info().
		Str("userId", user.ID.Hex()).
		Str("role", string(user.Role)).
		Msg("用户注册成功")
	return s.issue(*user)
}

// Login 校验邮箱密码并签发令牌
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	invalid := utils.CreateValidationError(utils.FieldError{Msg: "Invalid credentials"})

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, utils.CreateInternalError(err)
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.Logger.Warn().Str("userId", user.ID.Hex()).Msg("登录密码错误")
		return nil, invalid
	}

	utils.Logger.Info().Str("userId", user.ID.Hex()).Msg("用户登录成功")
	return s.issue(*user)
}

// Authenticate 校验令牌并加载用户，得到本次请求的身份
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Identity{}, utils.CreateUnauthorizedError("No token, authorization denied")
	}

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return models.Identity{}, utils.CreateUnauthorizedError("Token is not valid")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Identity{}, utils.CreateUnauthorizedError("User not found")
		}
		return models.Identity{}, utils.CreateInternalError(err)
	}

	return models.Identity{
		ID:    user.ID.Hex(),
		Role:  user.Role,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context, identity models.Identity) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.CreateUnauthorizedError("User not found")
		}
		return nil, utils.CreateInternalError(err)
	}
	public := user.Public()
	return &public, nil
}

// issue 签发令牌
func (s *AuthService) issue(user models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, utils.CreateInternalError(err)
	}
	return &models.AuthResponse{Token: token, User: user.Public()}, nil
}

// validateRegistration 校验注册信息
func validateRegistration(req models.RegisterRequest) []utils.FieldError {
	var errs []utils.FieldError
	if req.Name == "" {
		errs = append(errs, utils.FieldError{Msg: "Name is required", Param: "name", Location: "body"})
	}
	if validate.Var(req.Email, "required,email") != nil {
		errs = append(errs, utils.FieldError{Msg: "Valid email is required", Param: "email", Value: req.Email, Location: "body"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, utils.FieldError{Msg: "Password must be at least 6 characters long", Param: "password", Location: "body"})
	}
	if !req.Role.Valid() {
		errs = append(errs, utils.FieldError{Msg: "Invalid role", Param: "role", Value: req.Role, Location: "body"})
	}
	return errs
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
