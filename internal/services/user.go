package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/apierr"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/repos"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

// NormalizeAdminCode uppercases the supplied code and enforces the
// activation format: exactly four characters, "987" followed by a
// letter A-Z.
func NormalizeAdminCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 4 {
		return "", apierr.Validation("invalid_admin_code", "admin secret code must be exactly 4 characters")
	}
	if !strings.HasPrefix(code, "987") {
		return "", apierr.Validation("invalid_admin_code", "admin secret code must start with 987")
	}
	last := code[3]
	if last < 'A' || last > 'Z' {
		return "", apierr.Validation("invalid_admin_code", "admin secret code must end with a letter A-Z")
	}
	return code, nil
}

// UserService is the staff-only account administration surface.
type UserService interface {
	List(ctx context.Context, id *requestdata.Identity) ([]UserDTO, error)
	Create(ctx context.Context, id *requestdata.Identity, req CreateUserRequest) (*UserDTO, error)
	Get(ctx context.Context, id *requestdata.Identity, userID uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, id *requestdata.Identity, userID uuid.UUID, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, id *requestdata.Identity, userID uuid.UUID) error
	BulkDelete(ctx context.Context, id *requestdata.Identity, userIDs []uuid.UUID) (int64, error)
}

type userService struct {
	db          *gorm.DB
	userRepo    repos.UserRepo
	profileRepo repos.RoleProfileRepo
	tokenRepo   repos.UserTokenRepo
	log         *logger.Logger
}

func NewUserService(
	db *gorm.DB,
	userRepo repos.UserRepo,
	profileRepo repos.RoleProfileRepo,
	tokenRepo repos.UserTokenRepo,
	baseLog *logger.Logger,
) UserService {
	return &userService{
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tokenRepo:   tokenRepo,
		log:         baseLog.With("service", "UserService"),
	}
}

func requireStaff(id *requestdata.Identity) error {
	if id == nil {
		return apierr.Permission("not_authenticated", "authentication required")
	}
	if !id.IsStaff && !id.IsAdmin() {
		return apierr.Permission("forbidden", "staff access required")
	}
	return nil
}

func (s *userService) List(ctx context.Context, id *requestdata.Identity) ([]UserDTO, error) {
	if err := requireStaff(id); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uuid.UUID, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}
	profiles, err := s.profileRepo.GetByUserIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]*types.RoleProfile, len(profiles))
	for _, profile := range profiles {
		byUser[profile.UserID] = profile
	}
	out := make([]UserDTO, 0, len(users))
	for _, user := range users {
		out = append(out, userDTO(user, byUser[user.ID]))
	}
	return out, nil
}

// Create provisions an account without logging it in. With
// PasswordAuthEnabled false the password hash is left empty, which
// Login treats as invalid credentials unconditionally.
func (s *userService) Create(ctx context.Context, id *requestdata.Identity, req CreateUserRequest) (*UserDTO, error) {
	if err := requireStaff(id); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return nil, apierr.Validation("missing_username", "username is required")
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

	passwordAuth := req.PasswordAuthEnabled == nil || *req.PasswordAuthEnabled
	passwordHash := ""
	if passwordAuth {
		if req.Password == "" {
			return nil, apierr.Validation("missing_password", "password is required")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = string(hash)
	}

	var dto UserDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
			PasswordHash: passwordHash,
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
		dto = userDTO(user, profile)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Created user", "username", req.Username, "role", string(role))
	return &dto, nil
}

func (s *userService) Get(ctx context.Context, id *requestdata.Identity, userID uuid.UUID) (*UserDTO, error) {
	if err := requireStaff(id); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierr.NotFound("user_not_found", "user %s not found", userID)
	}
	profile, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	dto := userDTO(user, profile)
	return &dto, nil
}

func (s *userService) Update(ctx context.Context, id *requestdata.Identity, userID uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	if err := requireStaff(id); err != nil {
		return nil, err
	}

	var dto UserDTO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apierr.NotFound("user_not_found", "user %s not found", userID)
		}
		profile, err := s.profileRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			profile = &types.RoleProfile{
				ID:     uuid.New(),
				UserID: userID,
				Role:   resolveRole(user, nil),
			}
			if err := s.profileRepo.Create(ctx, tx, profile); err != nil {
				return err
			}
		}

		if req.Email != nil {
			user.Email = strings.TrimSpace(*req.Email)
		}
		if req.FirstName != nil {
			user.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			user.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if req.Password != nil {
			if *req.Password == "" {
				return apierr.Validation("missing_password", "password cannot be empty")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user.PasswordHash = string(hash)
		}

		if req.Role != nil {
			newRole := types.Role(strings.ToLower(strings.TrimSpace(*req.Role)))
			if !newRole.Valid() {
				return apierr.Validation("invalid_role", "role must be admin, teacher or student")
			}
			if newRole == types.RoleAdmin {
				code := ""
				if req.AdminSecretCode != nil {
					code = *req.AdminSecretCode
				} else if profile.AdminSecretCode != nil {
					code = *profile.AdminSecretCode
				}
				normalized, err := NormalizeAdminCode(code)
				if err != nil {
					return err
				}
				taken, err := s.profileRepo.AdminCodeTaken(ctx, tx, normalized, profile.ID)
				if err != nil {
					return err
				}
				if taken {
					return apierr.Conflict("admin_code_taken", "admin secret code is already in use")
				}
				profile.AdminSecretCode = &normalized
			} else {
				// Demotion frees the code for reuse.
				profile.AdminSecretCode = nil
			}
			profile.Role = newRole
			user.IsStaff = newRole == types.RoleAdmin
		} else if req.AdminSecretCode != nil {
			if profile.Role != types.RoleAdmin {
				return apierr.Validation("invalid_admin_code", "only admin accounts carry a secret code")
			}
			normalized, err := NormalizeAdminCode(*req.AdminSecretCode)
			if err != nil {
				return err
			}
			taken, err := s.profileRepo.AdminCodeTaken(ctx, tx, normalized, profile.ID)
			if err != nil {
				return err
			}
			if taken {
				return apierr.Conflict("admin_code_taken", "admin secret code is already in use")
			}
			profile.AdminSecretCode = &normalized
		}

		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		if err := s.profileRepo.Save(ctx, tx, profile); err != nil {
			return err
		}
		dto = userDTO(user, profile)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Updated user", "userId", userID.String())
	return &dto, nil
}

func (s *userService) Delete(ctx context.Context, id *requestdata.Identity, userID uuid.UUID) error {
	if err := requireStaff(id); err != nil {
		return err
	}
	if userID == id.UserID {
		return apierr.Validation("self_delete", "cannot delete your own account")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apierr.NotFound("user_not_found", "user %s not found", userID)
		}
		if err := s.tokenRepo.DeleteByUserID(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.profileRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); err != nil {
			return err
		}
		_, err = s.userRepo.DeleteByIDs(ctx, tx, []uuid.UUID{userID})
		return err
	})
}

// BulkDelete removes all named accounts or none of them. Deleting your
// own account is rejected up front so an admin cannot lock everyone out
// mid-batch.
func (s *userService) BulkDelete(ctx context.Context, id *requestdata.Identity, userIDs []uuid.UUID) (int64, error) {
	if err := requireStaff(id); err != nil {
		return 0, err
	}
	if len(userIDs) == 0 {
		return 0, apierr.Validation("missing_ids", "ids is required")
	}
	for _, userID := range userIDs {
		if userID == id.UserID {
			return 0, apierr.Validation("self_delete", "cannot delete your own account")
		}
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := s.userRepo.GetByIDs(ctx, tx, userIDs)
		if err != nil {
			return err
		}
		if len(users) != len(userIDs) {
			return apierr.NotFound("user_not_found", "one or more users do not exist")
		}
		for _, user := range users {
			if err := s.tokenRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
				return err
			}
		}
		if err := s.profileRepo.DeleteByUserIDs(ctx, tx, userIDs); err != nil {
			return err
		}
		deleted, err = s.userRepo.DeleteByIDs(ctx, tx, userIDs)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted users", "count", deleted)
	return deleted, nil
}
