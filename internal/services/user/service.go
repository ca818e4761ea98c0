package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/utils"
)

const (
	USER_CACHE_PREFIX = "user:"
	MinPasswordLength = 8
)

type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	tokens *utils.TokenManager
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, c *cache.Cache, tokens *utils.TokenManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: c, tokens: tokens, logger: logger, now: time.Now}
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type CreateInput struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	Phone    string          `json:"phone"`
	Role     models.UserRole `json:"role"`
}

type UpdateInput struct {
	Name     *string          `json:"name"`
	Phone    *string          `json:"phone"`
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
	Password *string          `json:"password"`
}

func (s *Service) InvalidateUserCaches(ctx context.Context, userIDs ...int64) {
	for _, id := range userIDs {
		s.cache.Invalidate(ctx, fmt.Sprintf("%s%d", USER_CACHE_PREFIX, id))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- Authentication ---
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.Unauthenticated, "Invalid email or password")
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve user: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "Invalid email or password")
	}

	token, exp, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to generate token: %v", err)
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	s.InvalidateUserCaches(ctx, user.ID)

	return &LoginResult{Token: token, ExpiresAt: exp, User: &user}, nil
}

// --- User Management ---
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	key := fmt.Sprintf("%s%d", USER_CACHE_PREFIX, id)
	if s.cache.GetJSON(ctx, key, &user) {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "User with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve user: %v", err)
	}

	s.cache.SetJSON(ctx, key, user, cache.TTLShort)
	return &user, nil
}

func (s *Service) List(ctx context.Context, role models.UserRole, page *database.Pagination) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count users: %v", err)
		}
	}

	var users []models.User
	if err := query.Order("name asc").Scopes(database.Paginate(page)).Find(&users).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve users: %v", err)
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "A valid email is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Name is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, status.Errorf(codes.InvalidArgument, "Password must be at least %d characters", MinPasswordLength)
	}
	if in.Role == "" {
		in.Role = models.RoleStaff
	}
	if !in.Role.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "Unknown role %q", in.Role)
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Error hashing password: %v", err)
	}

	user := models.User{
		Email:    email,
		Password: string(pwHash),
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		Role:     in.Role,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, status.Errorf(codes.AlreadyExists, "Email %s is already registered", email)
		}
		return nil, status.Errorf(codes.Internal, "Error creating user: %v", err)
	}

	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}

// Update changes profile fields. actorID may not demote or deactivate
// itself so an installation always keeps an admin able to sign in.
func (s *Service) Update(ctx context.Context, actorID, id int64, in UpdateInput) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "User with ID %d not found", id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve user: %v", err)
	}

	if actorID == id {
		if in.IsActive != nil && !*in.IsActive {
			return nil, status.Errorf(codes.FailedPrecondition, "You cannot deactivate your own account")
		}
		if in.Role != nil && *in.Role != user.Role {
			return nil, status.Errorf(codes.FailedPrecondition, "You cannot change your own role")
		}
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, status.Errorf(codes.InvalidArgument, "Name cannot be empty")
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, status.Errorf(codes.InvalidArgument, "Unknown role %q", *in.Role)
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, status.Errorf(codes.InvalidArgument, "Password must be at least %d characters", MinPasswordLength)
		}
		pwHash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "Error hashing password: %v", err)
		}
		user.Password = string(pwHash)
	}

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Error updating user: %v", err)
	}

	s.InvalidateUserCaches(ctx, user.ID)
	return &user, nil
}

// EnsureAdmin creates the bootstrap administrator when no user with the
// email exists. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", normalizeEmail(email)).Count(&count).Error; err != nil {
		return false, status.Errorf(codes.Internal, "Failed to check admin user: %v", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, CreateInput{Email: email, Password: password, Name: name, Role: models.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}
