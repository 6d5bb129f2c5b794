package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thkox/home-ai-server/internal/model/auth"
	"github.com/thkox/home-ai-server/internal/pkg/id"
	"github.com/thkox/home-ai-server/internal/pkg/jwt"
	"github.com/thkox/home-ai-server/internal/pkg/password"
	authRepo "github.com/thkox/home-ai-server/internal/repository/auth"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("email already registered")
	ErrInvalidPassword   = errors.New("incorrect password")
	ErrUserDisabled      = errors.New("user account is disabled")
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token expired")
	ErrNotAdmin          = errors.New("admin privileges required")
)

// AuthService 认证服务
type AuthService struct {
	userRepo         *authRepo.UserRepo
	refreshTokenRepo *authRepo.RefreshTokenRepo
	jwt              *jwt.JWT
	refreshExpiry    time.Duration // Refresh Token过期时间
}

// NewAuthService 创建认证服务
func NewAuthService(
	userRepo *authRepo.UserRepo,
	refreshTokenRepo *authRepo.RefreshTokenRepo,
	jwtSecret string,
	accessTokenExpiry time.Duration,
	refreshTokenExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwt:              jwt.NewJWT(jwtSecret, accessTokenExpiry),
		refreshExpiry:    refreshTokenExpiry,
	}
}

// EnsureAssistantUser 启动时保证助手哨兵用户存在
// AI消息的 sender_id 指向这条记录，它不可登录
func (s *AuthService) EnsureAssistantUser(ctx context.Context) error {
	_, err := s.userRepo.FindByID(ctx, auth.AssistantUserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	assistant := &auth.User{
		ID:             auth.AssistantUserID,
		FirstName:      "Home AI",
		LastName:       "Assistant",
		Email:          "assistant@home-ai.local",
		HashedPassword: "",
		Role:           auth.RoleMember,
		Enabled:        false, // 禁止登录
	}
	if err := s.userRepo.Create(ctx, assistant); err != nil {
		return err
	}

	log.Info().Msg("assistant sentinel user created")
	return nil
}

// Register 用户注册
// 使用基本类型参数，不依赖Handler层的Request类型
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, pwd string) (*auth.User, error) {
	// 检查邮箱是否已存在
	existing, _ := s.userRepo.FindByEmail(ctx, email)
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	// 密码强度校验
	if err := password.CheckStrength(pwd); err != nil {
		return nil, err
	}

	hashedPassword, err := password.Hash(pwd)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return nil, errors.New("failed to hash password")
	}

	user := &auth.User{
		ID:             id.New(),
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           auth.RoleMember,
		Enabled:        true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return nil, errors.New("failed to create user")
	}

	return user, nil
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	TokenType    string
	User         *auth.User
}

// Login 用户登录
func (s *AuthService) Login(ctx context.Context, email, pwd string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if !password.Verify(pwd, user.HashedPassword) {
		return nil, ErrInvalidPassword
	}

	// 禁用用户（包括助手哨兵）不能登录
	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return nil, errors.New("failed to generate token")
	}

	refreshTokenValue := jwt.GenerateRefreshToken()
	refreshToken := &auth.RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		Token:     refreshTokenValue,
		ExpiresAt: time.Now().Add(s.refreshExpiry),
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		log.Error().Err(err).Msg("failed to create refresh token")
		return nil, errors.New("failed to create refresh token")
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenValue,
		ExpiresIn:    int64(s.jwt.GetExpiration().Seconds()),
		TokenType:    "Bearer",
		User:         user,
	}, nil
}

// RefreshTokenResult 刷新Token结果
type RefreshTokenResult struct {
	AccessToken string
	ExpiresIn   int64
	TokenType   string
}

// RefreshToken 刷新Access Token
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenValue string) (*RefreshTokenResult, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenValue)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if refreshToken.IsExpired() {
		// 删除过期的Token
		_ = s.refreshTokenRepo.DeleteByToken(ctx, refreshTokenValue)
		return nil, ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return nil, errors.New("failed to generate token")
	}

	return &RefreshTokenResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwt.GetExpiration().Seconds()),
		TokenType:   "Bearer",
	}, nil
}

// Logout 退出登录
func (s *AuthService) Logout(ctx context.Context, refreshTokenValue string) error {
	return s.refreshTokenRepo.DeleteByToken(ctx, refreshTokenValue)
}

// GetUserByID 根据ID获取用户信息
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateProfile 更新个人信息
func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName, email string) (*auth.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	set := bson.M{}
	if firstName != "" {
		set["first_name"] = firstName
	}
	if lastName != "" {
		set["last_name"] = lastName
	}
	if email != "" && email != user.Email {
		// 新邮箱不能被其他用户占用
		existing, _ := s.userRepo.FindByEmail(ctx, email)
		if existing != nil && existing.ID != userID {
			return nil, ErrUserAlreadyExists
		}
		set["email"] = email
	}

	if len(set) > 0 {
		if err := s.userRepo.Update(ctx, userID, bson.M{"$set": set}); err != nil {
			log.Error().Err(err).Msg("failed to update user profile")
			return nil, errors.New("failed to update profile")
		}
	}

	return s.userRepo.FindByID(ctx, userID)
}

// ChangePassword 修改密码
// 成功后吊销该用户的所有Refresh Token，旧令牌立即失效
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPwd, newPwd string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !password.Verify(oldPwd, user.HashedPassword) {
		return ErrInvalidPassword
	}

	if err := password.CheckStrength(newPwd); err != nil {
		return err
	}

	hashedPassword, err := password.Hash(newPwd)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return errors.New("failed to hash password")
	}

	if err := s.userRepo.Update(ctx, userID, bson.M{
		"$set": bson.M{"hashed_password": hashedPassword},
	}); err != nil {
		log.Error().Err(err).Msg("failed to update password")
		return errors.New("failed to update password")
	}

	if err := s.refreshTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to revoke refresh tokens")
	}
	return nil
}

// EnsureAdmin 校验操作者是否为启用状态的管理员
// 基于数据库里的当前角色判断，令牌里的旧角色不作数
func (s *AuthService) EnsureAdmin(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.Enabled || user.Role != auth.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

// ListUsers 管理员分页查看用户列表
func (s *AuthService) ListUsers(ctx context.Context, page, pageSize int64) ([]*auth.User, int64, error) {
	return s.userRepo.List(ctx, bson.M{}, page, pageSize)
}

// AdminUpdateUser 管理员更新指定用户的资料、角色和启用状态
// 助手哨兵用户不可修改
func (s *AuthService) AdminUpdateUser(ctx context.Context, targetUserID, firstName, lastName, email string, role *auth.UserRole, enabled *bool) (*auth.User, error) {
	if targetUserID == auth.AssistantUserID {
		return nil, ErrUserNotFound
	}

	user, err := s.UpdateProfile(ctx, targetUserID, firstName, lastName, email)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if role != nil && role.IsValid() && *role != user.Role {
		set["role"] = *role
	}
	if enabled != nil && *enabled != user.Enabled {
		set["enabled"] = *enabled
	}
	if len(set) > 0 {
		if err := s.userRepo.Update(ctx, targetUserID, bson.M{"$set": set}); err != nil {
			log.Error().Err(err).Msg("failed to update user")
			return nil, errors.New("failed to update user")
		}
		// 禁用用户时顺带吊销其全部Refresh Token
		if v, ok := set["enabled"]; ok && v == false {
			if err := s.refreshTokenRepo.DeleteByUserID(ctx, targetUserID); err != nil {
				log.Warn().Err(err).Str("user_id", targetUserID).Msg("failed to revoke refresh tokens")
			}
		}
	}

	return s.userRepo.FindByID(ctx, targetUserID)
}

// AdminSetPassword 管理员重置指定用户的密码
// 不需要旧密码，成功后吊销该用户的所有Refresh Token
func (s *AuthService) AdminSetPassword(ctx context.Context, targetUserID, newPwd string) error {
	if targetUserID == auth.AssistantUserID {
		return ErrUserNotFound
	}
	if _, err := s.userRepo.FindByID(ctx, targetUserID); err != nil {
		return ErrUserNotFound
	}

	if err := password.CheckStrength(newPwd); err != nil {
		return err
	}

	hashedPassword, err := password.Hash(newPwd)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return errors.New("failed to hash password")
	}

	if err := s.userRepo.Update(ctx, targetUserID, bson.M{
		"$set": bson.M{"hashed_password": hashedPassword},
	}); err != nil {
		log.Error().Err(err).Msg("failed to update password")
		return errors.New("failed to update password")
	}

	if err := s.refreshTokenRepo.DeleteByUserID(ctx, targetUserID); err != nil {
		log.Warn().Err(err).Str("user_id", targetUserID).Msg("failed to revoke refresh tokens")
	}
	return nil
}

// ValidateToken 验证Access Token并返回用户信息
func (s *AuthService) ValidateToken(tokenString string) (*auth.User, error) {
	claims, err := s.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(context.Background(), claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	return user, nil
}
