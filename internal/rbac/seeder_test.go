package rbac_test

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/user-management/internal"
	rbacModel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userModel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/rbac"
	rbacPostgres "github.com/frahmantamala/user-management/internal/rbac/postgres"
)

func TestRBAC(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RBAC Module Suite")
}

var _ = Describe("Seeder", func() {
	var (
		db     *gorm.DB
		seeder *rbac.Seeder
		cfg    internal.SeedConfig
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&rbacModel.Role{},
			&rbacModel.Permission{},
			&rbacModel.RolePermission{},
			&userModel.User{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo := rbacPostgres.NewRepository(db)
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		seeder = rbac.NewSeeder(repo, log, bcrypt.MinCost)

		cfg = internal.SeedConfig{
			AdminName:     "Administrator",
			AdminEmail:    "admin@example.com",
			AdminPassword: "admin_password",
			Roles:         "administrator,default,auditor",
			Permissions:   "create,read,update,delete",
		}
	})

	countRows := func(model interface{}) int64 {
		var count int64
		Expect(db.Model(model).Count(&count).Error).NotTo(HaveOccurred())
		return count
	}

	Describe("Seed", func() {
		It("should create all configured roles and permissions", func() {
			Expect(seeder.Seed(cfg)).To(Succeed())

			Expect(countRows(&rbacModel.Role{})).To(Equal(int64(3)))
			Expect(countRows(&rbacModel.Permission{})).To(Equal(int64(4)))
		})

		It("should always create administrator and default roles", func() {
			cfg.Roles = "auditor"

			Expect(seeder.Seed(cfg)).To(Succeed())

			var names []string
			Expect(db.Model(&rbacModel.Role{}).Order("name ASC").Pluck("name", &names).Error).NotTo(HaveOccurred())
			Expect(names).To(ContainElements("administrator", "default", "auditor"))
		})

		It("should grant every permission to the administrator role", func() {
			Expect(seeder.Seed(cfg)).To(Succeed())

			var adminRole rbacModel.Role
			Expect(db.Where("name = ?", "administrator").First(&adminRole).Error).NotTo(HaveOccurred())

			var grants int64
			Expect(db.Model(&rbacModel.RolePermission{}).
				Where("role_id = ?", adminRole.ID).
				Count(&grants).Error).NotTo(HaveOccurred())
			Expect(grants).To(Equal(int64(4)))
		})

		It("should not grant permissions to the default role", func() {
			Expect(seeder.Seed(cfg)).To(Succeed())

			var defaultRole rbacModel.Role
			Expect(db.Where("name = ?", "default").First(&defaultRole).Error).NotTo(HaveOccurred())

			var grants int64
			Expect(db.Model(&rbacModel.RolePermission{}).
				Where("role_id = ?", defaultRole.ID).
				Count(&grants).Error).NotTo(HaveOccurred())
			Expect(grants).To(BeZero())
		})

		It("should create an active admin user with the administrator role", func() {
			Expect(seeder.Seed(cfg)).To(Succeed())

			var admin userModel.User
			Expect(db.Where("email = ?", "admin@example.com").First(&admin).Error).NotTo(HaveOccurred())
			Expect(admin.Status).To(Equal(userModel.StatusActive))

			var adminRole rbacModel.Role
			Expect(db.Where("name = ?", "administrator").First(&adminRole).Error).NotTo(HaveOccurred())
			Expect(admin.RoleID).To(Equal(adminRole.ID))

			err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin_password"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should skip the admin user when no credentials are configured", func() {
			cfg.AdminEmail = ""
			cfg.AdminPassword = ""

			Expect(seeder.Seed(cfg)).To(Succeed())
			Expect(countRows(&userModel.User{})).To(BeZero())
		})

		Context("when run twice", func() {
			It("should not duplicate anything", func() {
				Expect(seeder.Seed(cfg)).To(Succeed())
				Expect(seeder.Seed(cfg)).To(Succeed())

				Expect(countRows(&rbacModel.Role{})).To(Equal(int64(3)))
				Expect(countRows(&rbacModel.Permission{})).To(Equal(int64(4)))
				Expect(countRows(&rbacModel.RolePermission{})).To(Equal(int64(4)))
				Expect(countRows(&userModel.User{})).To(Equal(int64(1)))
			})

			It("should not overwrite an existing admin password", func() {
				Expect(seeder.Seed(cfg)).To(Succeed())

				var before userModel.User
				Expect(db.Where("email = ?", "admin@example.com").First(&before).Error).NotTo(HaveOccurred())

				cfg.AdminPassword = "changed_password"
				Expect(seeder.Seed(cfg)).To(Succeed())

				var after userModel.User
				Expect(db.Where("email = ?", "admin@example.com").First(&after).Error).NotTo(HaveOccurred())
				Expect(after.PasswordHash).To(Equal(before.PasswordHash))
			})
		})

		Context("when new permissions are added to the config", func() {
			It("should grant only the new ones on the next run", func() {
				Expect(seeder.Seed(cfg)).To(Succeed())

				cfg.Permissions = "create,read,update,delete,export"
				Expect(seeder.Seed(cfg)).To(Succeed())

				Expect(countRows(&rbacModel.Permission{})).To(Equal(int64(5)))
				Expect(countRows(&rbacModel.RolePermission{})).To(Equal(int64(5)))
			})
		})
	})
})
