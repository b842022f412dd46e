package rbac

import (
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/user-management/internal"
	rbacModel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userModel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

// Seeder inserts configured roles and permissions that are not already
// present, grants every permission to the administrator role and creates the
// admin account. Safe to run on every startup.
type Seeder struct {
	repo       Repository
	logger     *slog.Logger
	bcryptCost int
}

func NewSeeder(repo Repository, logger *slog.Logger, bcryptCost int) *Seeder {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Seeder) Seed(cfg internal.SeedConfig) error {
	if err := s.seedPermissions(cfg.PermissionNames()); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}

	if err := s.seedRoles(cfg.RoleNames()); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	if err := s.grantAllToAdministrator(); err != nil {
		return fmt.Errorf("grant administrator permissions: %w", err)
	}

	if err := s.seedAdminUser(cfg); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	return nil
}

func (s *Seeder) seedPermissions(names []string) error {
	for _, name := range names {
		if _, err := s.repo.GetPermissionID(name); err == nil {
			continue
		}
		perm := &rbacModel.Permission{Name: name}
		if err := s.repo.CreatePermission(perm); err != nil {
			return err
		}
		s.logger.Info("seeded permission", "name", name)
	}
	return nil
}

func (s *Seeder) seedRoles(names []string) error {
	// administrator and default always exist, whatever the config says
	wanted := append([]string{AdministratorRole, DefaultRole}, names...)

	seen := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		if seen[name] {
			continue
		}
		seen[name] = true

		if _, err := s.repo.GetRoleID(name); err == nil {
			continue
		}
		role := &rbacModel.Role{Name: name}
		if err := s.repo.CreateRole(role); err != nil {
			return err
		}
		s.logger.Info("seeded role", "name", name)
	}
	return nil
}

func (s *Seeder) grantAllToAdministrator() error {
	adminRoleID, err := s.repo.GetRoleID(AdministratorRole)
	if err != nil {
		return err
	}

	permissionIDs, err := s.repo.ListPermissionIDs()
	if err != nil {
		return err
	}

	for _, permID := range permissionIDs {
		granted, err := s.repo.RoleHasPermission(adminRoleID, permID)
		if err != nil {
			return err
		}
		if granted {
			continue
		}
		if err := s.repo.GrantPermissionToRole(adminRoleID, permID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedAdminUser(cfg internal.SeedConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		s.logger.Info("admin seed skipped: no credentials configured")
		return nil
	}

	exists, err := s.repo.UserExistsByEmail(cfg.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	adminRoleID, err := s.repo.GetRoleID(AdministratorRole)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), s.bcryptCost)
	if err != nil {
		return err
	}

	admin := &userModel.User{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Status:       userModel.StatusActive,
		RoleID:       adminRoleID,
	}
	if err := s.repo.CreateUser(admin); err != nil {
		return err
	}

	s.logger.Info("seeded admin user", "email", cfg.AdminEmail)
	return nil
}
