package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"PostServer/apps/social/internal/converter"
	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/repository"
	"PostServer/consts"
	rediskey "PostServer/consts/redisKey"
	"PostServer/model"
	"PostServer/pkg/logger"
	"PostServer/pkg/util"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
)

const (
	minPasswordLength = 8
	// maxPasswordBytes bcrypt 只接受 72 字节以内的输入，按字节计，不是字符
	maxPasswordBytes = 72
)

// emailValidator 与 DTO 上的 binding:"email" 使用同一套规则
var emailValidator = validator.New()

func validEmail(email string) bool {
	return emailValidator.Var(email, "required,email") == nil
}

// checkPassword 注册与重置密码共用的长度校验
func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return bizError(codes.InvalidArgument, consts.CodePasswordTooShort)
	}
	if len(password) > maxPasswordBytes {
		return bizError(codes.InvalidArgument, consts.CodePasswordTooLong)
	}
	return nil
}

// Mailer 发信能力
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// authServiceImpl 认证服务实现
type authServiceImpl struct {
	accountRepo repository.IAccountRepository
	profileRepo repository.IProfileRepository
	tokenRepo   repository.ITokenRepository
	allocator   IIdentityAllocator
	tokens      *util.TokenManager
	mailer      Mailer
	resetURL    string
	now         func() time.Time
}

// NewAuthService 创建认证服务实例
func NewAuthService(
	accountRepo repository.IAccountRepository,
	profileRepo repository.IProfileRepository,
	tokenRepo repository.ITokenRepository,
	allocator IIdentityAllocator,
	tokens *util.TokenManager,
	mailer Mailer,
	resetURL string,
) IAuthService {
	return &authServiceImpl{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		tokenRepo:   tokenRepo,
		allocator:   allocator,
		tokens:      tokens,
		mailer:      mailer,
		resetURL:    resetURL,
		now:         time.Now,
	}
}

// Register 邮箱注册
// 业务流程：
//  1. 校验邮箱与密码
//  2. 创建账号（邮箱唯一）
//  3. 补建资料（分配随机 handle）
//  4. 签发访问令牌
//
// 错误码映射：
//   - codes.InvalidArgument: 邮箱格式错误 / 密码过短
//   - codes.AlreadyExists: 邮箱已注册
//   - codes.Internal: 系统内部错误
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req == nil {
		return nil, bizError(codes.InvalidArgument, consts.CodeParamError)
	}
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, bizError(codes.InvalidArgument, consts.CodeEmailFormatError)
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}

	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, internalError(ctx, "生成密码哈希失败", err)
	}

	account := &model.Account{Id: util.NewUUID(), Email: email, Password: hashed}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, bizError(codes.AlreadyExists, consts.CodeUserAlreadyExist)
		}
		return nil, storageError(ctx, "创建账号失败", err)
	}
	ctx = context.WithValue(ctx, "user_uuid", account.Id)
	logger.Info(ctx, "用户注册成功")

	profile, err := s.EnsureProfile(ctx, account.Id, account.Email)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, account.Id, profile)
}

// Login 邮箱密码登录
//
// 错误码映射：
//   - codes.NotFound: 用户不存在
//   - codes.Unauthenticated: 密码错误
//   - codes.Internal: 系统内部错误
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if req == nil {
		return nil, bizError(codes.InvalidArgument, consts.CodeParamError)
	}
	account, err := s.accountRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, bizError(codes.NotFound, consts.CodeUserNotFound)
		}
		return nil, storageError(ctx, "查询账号失败", err)
	}
	ctx = context.WithValue(ctx, "user_uuid", account.Id)

	// 超过 72 字节的密码不可能注册成功，直接按密码错误处理
	if len(req.Password) > maxPasswordBytes {
		return nil, bizError(codes.Unauthenticated, consts.CodePasswordError)
	}
	ok, err := util.CheckPassword(account.Password, req.Password)
	if err != nil {
		return nil, internalError(ctx, "校验密码失败", err)
	}
	if !ok {
		return nil, bizError(codes.Unauthenticated, consts.CodePasswordError)
	}

	profile, err := s.EnsureProfile(ctx, account.Id, account.Email)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "用户登录成功")
	return s.issue(ctx, account.Id, profile)
}

func (s *authServiceImpl) issue(ctx context.Context, identity string, profile *dto.ProfileInfo) (*dto.AuthResponse, error) {
	token, claims, err := s.tokens.GenerateToken(identity)
	if err != nil {
		return nil, internalError(ctx, "生成访问令牌失败", err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Unix(),
		Profile:     profile,
	}, nil
}

// Logout 将令牌 jti 加入注销名单直到其过期
func (s *authServiceImpl) Logout(ctx context.Context, identity, tokenID string, expiresAt time.Time) error {
	if identity == "" || tokenID == "" {
		return errUnauthenticated
	}
	if err := s.tokenRepo.RevokeToken(ctx, tokenID, expiresAt.Sub(s.now())); err != nil {
		return storageError(ctx, "注销令牌失败", err)
	}
	logger.Info(ctx, "用户已登出")
	return nil
}

// RequestPasswordReset 发送重置密码邮件
// 邮箱未注册时同样返回成功，避免暴露注册情况
func (s *authServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return bizError(codes.InvalidArgument, consts.CodeEmailFormatError)
	}
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			logger.Info(ctx, "重置密码邮箱未注册，静默返回")
			return nil
		}
		return storageError(ctx, "查询账号失败", err)
	}

	token := util.NewUUID()
	if err := s.tokenRepo.StoreResetToken(ctx, token, account.Id, rediskey.PasswordResetTTL); err != nil {
		return storageError(ctx, "保存重置令牌失败", err)
	}

	link := s.resetURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(`<p>点击下面的链接重置密码，%d 分钟内有效：</p><p><a href="%s">%s</a></p><p>如果不是你本人操作，请忽略这封邮件。</p>`,
		int(rediskey.PasswordResetTTL.Minutes()), link, link)
	// 发信失败同样返回成功，否则响应差异会暴露邮箱是否注册
	if err := s.mailer.Send(ctx, account.Email, "重置密码", body); err != nil {
		logger.Error(ctx, "重置密码邮件发送失败", logger.ErrorField("error", err))
	}
	return nil
}

// ResetPassword 使用一次性令牌设置新密码
func (s *authServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return bizError(codes.InvalidArgument, consts.CodeResetTokenInvalid)
	}

	identity, err := s.tokenRepo.ConsumeResetToken(ctx, token)
	if err != nil {
		return storageError(ctx, "读取重置令牌失败", err)
	}
	if identity == "" {
		return bizError(codes.InvalidArgument, consts.CodeResetTokenInvalid)
	}
	ctx = context.WithValue(ctx, "user_uuid", identity)

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return internalError(ctx, "生成密码哈希失败", err)
	}
	if err := s.accountRepo.UpdatePassword(ctx, identity, hashed); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return bizError(codes.InvalidArgument, consts.CodeResetTokenInvalid)
		}
		return storageError(ctx, "更新密码失败", err)
	}
	logger.Info(ctx, "密码已重置")
	return nil
}

// EnsureProfile 资料不存在时分配 handle 并创建
// 并发补建时插入会撞唯一索引：identity 冲突说明别的请求已建好，直接读取；handle 冲突返回 Conflict
func (s *authServiceImpl) EnsureProfile(ctx context.Context, identity, email string) (*dto.ProfileInfo, error) {
	if identity == "" {
		return nil, errUnauthenticated
	}
	existing, err := s.profileRepo.GetByID(ctx, identity)
	if err != nil {
		return nil, storageError(ctx, "查询资料失败", err)
	}
	if existing != nil {
		return converter.ModelToProfileInfo(existing), nil
	}

	handle, err := s.allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}
	profile := &model.Profile{Id: identity, Username: handle, Email: email}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, storageError(ctx, "创建资料失败", err)
		}
		existing, getErr := s.profileRepo.GetByID(ctx, identity)
		if getErr == nil && existing != nil {
			return converter.ModelToProfileInfo(existing), nil
		}
		logger.Warn(ctx, "分配的 handle 已被占用", logger.String("handle", handle))
		return nil, bizError(codes.AlreadyExists, consts.CodeHandleTaken)
	}
	logger.Info(ctx, "资料已创建", logger.String("handle", handle))
	return converter.ModelToProfileInfo(profile), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
