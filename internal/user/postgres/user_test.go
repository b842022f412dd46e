package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	rbacModel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userModel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/user"
	userPostgres "github.com/frahmantamala/user-management/internal/user/postgres"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo user.Repository

		defaultRoleID int64
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&rbacModel.Role{}, &userModel.User{})
		Expect(err).NotTo(HaveOccurred())

		role := rbacModel.Role{Name: "default", Description: "Default role"}
		Expect(db.Create(&role).Error).NotTo(HaveOccurred())
		defaultRoleID = role.ID

		repo = userPostgres.NewUserRepository(db)
	})

	newUser := func(email string) *user.User {
		return &user.User{
			Name:         "Test User",
			Email:        email,
			PasswordHash: "hashed",
			Status:       userModel.StatusActive,
			RoleID:       defaultRoleID,
		}
	}

	Describe("Create", func() {
		It("should create a user and fill generated fields", func() {
			u := newUser("create@example.com")

			err := repo.Create(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.CreatedAt).NotTo(BeZero())
		})

		It("should enforce the unique email constraint", func() {
			Expect(repo.Create(newUser("dup@example.com"))).To(Succeed())

			err := repo.Create(newUser("dup@example.com"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByID", func() {
		It("should retrieve a stored user", func() {
			u := newUser("byid@example.com")
			Expect(repo.Create(u)).To(Succeed())

			result, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Email).To(Equal("byid@example.com"))
			Expect(result.Status).To(Equal(userModel.StatusActive))
		})

		It("should return error for unknown id", func() {
			result, err := repo.GetByID(999)
			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
		})
	})

	Describe("GetByEmail", func() {
		It("should retrieve a stored user", func() {
			u := newUser("byemail@example.com")
			Expect(repo.Create(u)).To(Succeed())

			result, err := repo.GetByEmail("byemail@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ID).To(Equal(u.ID))
		})

		It("should return error for unknown email", func() {
			result, err := repo.GetByEmail("missing@example.com")
			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
				Expect(repo.Create(newUser(email))).To(Succeed())
			}
		})

		It("should page results in id order with a total count", func() {
			users, total, err := repo.List(2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(users).To(HaveLen(2))
			Expect(users[0].Email).To(Equal("a@example.com"))
			Expect(users[1].Email).To(Equal("b@example.com"))
		})

		It("should apply the offset", func() {
			users, total, err := repo.List(10, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(users).To(HaveLen(1))
			Expect(users[0].Email).To(Equal("c@example.com"))
		})

		It("should report the total even when the page is empty", func() {
			users, total, err := repo.List(10, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(users).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("should persist field changes", func() {
			u := newUser("update@example.com")
			Expect(repo.Create(u)).To(Succeed())

			u.Name = "Renamed"
			u.Status = userModel.StatusSuspended
			Expect(repo.Update(u)).To(Succeed())

			result, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Name).To(Equal("Renamed"))
			Expect(result.Status).To(Equal(userModel.StatusSuspended))
		})
	})

	Describe("Delete", func() {
		It("should remove the row", func() {
			u := newUser("delete@example.com")
			Expect(repo.Create(u)).To(Succeed())

			Expect(repo.Delete(u.ID)).To(Succeed())

			result, err := repo.GetByID(u.ID)
			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
		})

		It("should free the email for a new user", func() {
			u := newUser("reuse@example.com")
			Expect(repo.Create(u)).To(Succeed())
			Expect(repo.Delete(u.ID)).To(Succeed())

			Expect(repo.Create(newUser("reuse@example.com"))).To(Succeed())
		})
	})

	Describe("GetRoleIDByName", func() {
		It("should resolve an existing role", func() {
			id, err := repo.GetRoleIDByName("default")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(defaultRoleID))
		})

		It("should return error for an unknown role", func() {
			_, err := repo.GetRoleIDByName("superuser")
			Expect(err).To(HaveOccurred())
		})
	})
})
