package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/envutil"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

const (
	demoTeacherUsername = "demo_teacher"
	demoStudentUsername = "demo_student"
	demoPassword        = "Demo@12345"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, id *requestdata.Identity) error
	// Session reports whether the caller is authenticated and, when so,
	// who they are. Anonymous callers get a negative answer, not an
	// error.
	Session(ctx context.Context, id *requestdata.Identity) (*SessionDTO, error)
	IdentityFromToken(ctx context.Context, tokenString string) (*requestdata.Identity, error)
}

type authService struct {
	db          *gorm.DB
	userRepo    repos.UserRepo
	profileRepo repos.RoleProfileRepo
	tokenRepo   repos.UserTokenRepo
	jwtSecret   []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	log         *logger.Logger
}

func NewAuthService(
	db *gorm.DB,
	userRepo repos.UserRepo,
	profileRepo repos.RoleProfileRepo,
	tokenRepo repos.UserTokenRepo,
	baseLog *logger.Logger,
) AuthService {
	return &authService{
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tokenRepo:   tokenRepo,
		jwtSecret:   []byte(envutil.String("JWT_SECRET", "dev-only-secret")),
		accessTTL:   envutil.Duration("JWT_ACCESS_TTL", time.Hour),
		refreshTTL:  envutil.Duration("JWT_REFRESH_TTL", 7*24*time.Hour),
		log:         baseLog.With("service", "AuthService"),
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return nil, apierr.Validation("missing_username", "username is required")
	}
	if req.Password == "" {
		return nil, apierr.Validation("missing_password", "password is required")
	}

	role := types.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = types.RoleStudent
	}
	if !role.Valid() {
		return nil, apierr.Validation("invalid_role", "role must be admin, teacher or student")
	}

	var adminCode *string
	if role == types.RoleAdmin {
		normalized, err := NormalizeAdminCode(req.AdminSecretCode)
		if err != nil {
			return nil, err
		}
		adminCode = &normalized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var resp *AuthResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.userRepo.GetByUsername(ctx, tx, req.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return apierr.Conflict("username_taken", "username %q is already registered", req.Username)
		}
		if adminCode != nil {
			taken, err := s.profileRepo.AdminCodeTaken(ctx, tx, *adminCode, uuid.Nil)
			if err != nil {
				return err
			}
			if taken {
				return apierr.Conflict("admin_code_taken", "admin secret code is already in use")
			}
		}

		user := &types.User{
			ID:           uuid.New(),
			Username:     req.Username,
			Email:        strings.TrimSpace(req.Email),
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			PasswordHash: string(hash),
			IsStaff:      role == types.RoleAdmin,
			IsActive:     true,
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		profile := &types.RoleProfile{
			ID:              uuid.New(),
			UserID:          user.ID,
			Role:            role,
			AdminSecretCode: adminCode,
		}
		if err := s.profileRepo.Create(ctx, tx, profile); err != nil {
			return err
		}

		resp, err = s.issueTokens(ctx, tx, user, profile)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Registered user", "username", req.Username, "role", string(role))
	return resp, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, apierr.Validation("missing_credentials", "username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, nil, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil && isDemoLogin(req) {
		user, err = s.provisionDemoAccount(ctx, req.Username)
		if err != nil {
			return nil, err
		}
	}
	if user == nil || !user.IsActive {
		return nil, apierr.Permission("invalid_credentials", "invalid username or password")
	}
	if user.PasswordHash == "" {
		return nil, apierr.Permission("invalid_credentials", "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierr.Permission("invalid_credentials", "invalid username or password")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}
	resp, err := s.issueTokens(ctx, nil, user, profile)
	if err != nil {
		return nil, err
	}
	s.log.Info("User logged in", "username", user.Username)
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, apierr.Validation("missing_refresh", "refresh token is required")
	}
	row, err := s.tokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return nil, err
	}
	if row == nil || time.Now().After(row.ExpiresAt) {
		return nil, apierr.Permission("invalid_refresh", "refresh token is invalid or expired")
	}
	user, err := s.userRepo.GetByID(ctx, nil, row.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apierr.Permission("invalid_refresh", "refresh token is invalid or expired")
	}
	profile, err := s.profileRepo.GetByUserID(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}

	var resp *AuthResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{row.ID}); err != nil {
			return err
		}
		resp, err = s.issueTokens(ctx, tx, user, profile)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, id *requestdata.Identity) error {
	if id == nil {
		return apierr.Permission("not_authenticated", "authentication required")
	}
	return s.tokenRepo.DeleteByUserID(ctx, nil, id.UserID)
}

func (s *authService) Session(ctx context.Context, id *requestdata.Identity) (*SessionDTO, error) {
	if id == nil {
		return &SessionDTO{}, nil
	}
	user, err := s.userRepo.GetByID(ctx, nil, id.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &SessionDTO{}, nil
	}
	profile, err := s.profileRepo.GetByUserID(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}
	dto := userDTO(user, profile)
	return &SessionDTO{Authenticated: true, User: &dto}, nil
}

// IdentityFromToken verifies the JWT signature and then requires a live
// token row, so logout revokes access tokens before they expire.
func (s *authService) IdentityFromToken(ctx context.Context, tokenString string) (*requestdata.Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.Permission("invalid_token", "token is invalid or expired")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, apierr.Permission("invalid_token", "token is invalid or expired")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apierr.Permission("invalid_token", "token is invalid or expired")
	}

	row, err := s.tokenRepo.GetByAccessToken(ctx, nil, tokenString)
	if err != nil {
		return nil, err
	}
	if row == nil || time.Now().After(row.ExpiresAt) {
		return nil, apierr.Permission("invalid_token", "token is invalid or expired")
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apierr.Permission("invalid_token", "token is invalid or expired")
	}
	profile, err := s.profileRepo.GetByUserID(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}

	return &requestdata.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        resolveRole(user, profile),
		IsStaff:     user.IsStaff,
		TokenString: tokenString,
	}, nil
}

// resolveRole tolerates a missing profile row: staff accounts fall back
// to admin, everyone else to student.
func resolveRole(user *types.User, profile *types.RoleProfile) types.Role {
	if profile != nil && profile.Role.Valid() {
		return profile.Role
	}
	if user.IsStaff {
		return types.RoleAdmin
	}
	return types.RoleStudent
}

func (s *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User, profile *types.RoleProfile) (*AuthResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refresh := hex.EncodeToString(buf)

	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.refreshTTL),
	}
	if err := s.tokenRepo.Create(ctx, tx, row); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:    userDTO(user, profile),
		Access:  access,
		Refresh: refresh,
	}, nil
}

func isDemoLogin(req LoginRequest) bool {
	if req.Password != demoPassword {
		return false
	}
	return req.Username == demoTeacherUsername || req.Username == demoStudentUsername
}

// provisionDemoAccount creates the shared demo teacher/student on first
// login so a fresh database is usable without seeding.
func (s *authService) provisionDemoAccount(ctx context.Context, username string) (*types.User, error) {
	role := types.RoleStudent
	firstName := "Demo"
	lastName := "Student"
	if username == demoTeacherUsername {
		role = types.RoleTeacher
		lastName = "Teacher"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		return s.profileRepo.Create(ctx, tx, &types.RoleProfile{
			ID:     uuid.New(),
			UserID: user.ID,
			Role:   role,
		})
	})
	if err != nil {
		// A concurrent login may have provisioned the same account.
		existing, getErr := s.userRepo.GetByUsername(ctx, nil, username)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	s.log.Info("Provisioned demo account", "username", username)
	return user, nil
}
