package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/models"
)

const (
	msgUserNotFound       = "User not found"
	msgUserNotInTenant    = "User not found in this tenant"
	msgEmailAlreadyExists = "A user with this email already exists in this tenant"
)

// UserService manages tenant users
type UserService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewUserService creates a user service
func NewUserService(db *gorm.DB, logger zerolog.Logger) *UserService {
	return &UserService{
		db:     db,
		logger: logger.With().Str("component", "user_service").Logger(),
	}
}

// CreateUserInput is the payload for a new user
type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput is a partial update; nil fields are left unchanged
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	IsActive *bool
}

// UserFilter narrows List by case-insensitive substring
type UserFilter struct {
	Name  string
	Email string
}

// UserWithRoles is a user folded together with the names of its roles
type UserWithRoles struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	IsActive bool     `json:"is_active"`
	TenantID int64    `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// userRoleRow is one row of the users x role mappings x roles outer join
type userRoleRow struct {
	UserID   int64
	Username string
	Email    string
	IsActive bool
	TenantID int64
	RoleName *string
}

// List returns the tenant's users, each with its role names in mapping order.
// Users without mappings carry an empty list.
func (s *UserService) List(ctx context.Context, tenantID int64, filter UserFilter) ([]UserWithRoles, error) {
	query := s.db.WithContext(ctx).
		Table("users").
		Select("users.user_id, users.username, users.email, users.is_active, users.tenant_id, roles.role_name").
		Joins("LEFT JOIN role_user_mappings ON role_user_mappings.user_id = users.user_id AND role_user_mappings.tenant_id = users.tenant_id").
		Joins("LEFT JOIN roles ON roles.role_id = role_user_mappings.role_id AND roles.tenant_id = users.tenant_id").
		Where("users.tenant_id = ?", tenantID)

	if filter.Name != "" {
		query = query.Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Email != "" {
		query = query.Where("LOWER(users.email) LIKE ?", "%"+strings.ToLower(filter.Email)+"%")
	}

	var rows []userRoleRow
	if err := query.Order("users.user_id, role_user_mappings.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return foldUserRoles(rows), nil
}

// foldUserRoles collapses join rows into one record per user, keeping first-seen order
func foldUserRoles(rows []userRoleRow) []UserWithRoles {
	users := make([]UserWithRoles, 0, len(rows))
	index := make(map[int64]int, len(rows))

	for _, row := range rows {
		i, ok := index[row.UserID]
		if !ok {
			i = len(users)
			index[row.UserID] = i
			users = append(users, UserWithRoles{
				UserID:   row.UserID,
				Username: row.Username,
				Email:    row.Email,
				IsActive: row.IsActive,
				TenantID: row.TenantID,
				Roles:    []string{},
			})
		}
		if row.RoleName != nil {
			users[i].Roles = append(users[i].Roles, *row.RoleName)
		}
	}
	return users
}

// Get loads a user of the tenant
func (s *UserService) Get(ctx context.Context, tenantID, userID int64) (*models.User, error) {
	var user models.User
	if err := models.FindInTenant(s.db.WithContext(ctx), "user_id", userID, tenantID, &user); err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}
	return &user, nil
}

// Create adds an active user to the tenant
func (s *UserService) Create(ctx context.Context, tenantID int64, in CreateUserInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		TenantID:       tenantID,
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		IsActive:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureEmailFree(tx, tenantID, in.Email, 0); err != nil {
			return err
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(msgEmailAlreadyExists)
		}
		return nil, err
	}

	s.logger.Info().
		Int64("tenant_id", tenantID).
		Int64("user_id", user.UserID).
		Msg("User created")
	return user, nil
}

// Update applies a partial update; tenant ownership is re-checked and never changes
func (s *UserService) Update(ctx context.Context, tenantID, userID int64, in UpdateUserInput) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindInTenant(tx, "user_id", userID, tenantID, &user); err != nil {
			return notFoundOr(err, msgUserNotFound)
		}

		if in.Username != nil {
			user.Username = *in.Username
		}
		if in.Email != nil && *in.Email != user.Email {
			if err := s.ensureEmailFree(tx, tenantID, *in.Email, userID); err != nil {
				return err
			}
			user.Email = *in.Email
		}
		if in.Password != nil {
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return err
			}
			user.HashedPassword = hash
		}
		if in.IsActive != nil {
			user.IsActive = *in.IsActive
		}

		user.TenantID = tenantID
		return tx.Save(&user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(msgEmailAlreadyExists)
		}
		return nil, err
	}

	return &user, nil
}

// Delete removes a user and its role mappings
func (s *UserService) Delete(ctx context.Context, tenantID, userID int64) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindInTenant(tx, "user_id", userID, tenantID, &user); err != nil {
			return notFoundOr(err, msgUserNotFound)
		}
		if err := tx.Where("user_id = ? AND tenant_id = ?", userID, tenantID).
			Delete(&models.RoleUserMapping{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("tenant_id", tenantID).
		Int64("user_id", userID).
		Msg("User deleted")
	return &user, nil
}

func (s *UserService) ensureEmailFree(tx *gorm.DB, tenantID int64, email string, excludeUserID int64) error {
	var existing models.User
	err := tx.Where("tenant_id = ? AND email = ? AND user_id <> ?", tenantID, email, excludeUserID).
		First(&existing).Error
	if err == nil {
		return conflict(msgEmailAlreadyExists)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
