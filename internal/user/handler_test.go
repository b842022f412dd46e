package user_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	rbacModel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userModel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/core/events"
	"github.com/frahmantamala/user-management/internal/user"
	userPostgres "github.com/frahmantamala/user-management/internal/user/postgres"
)

type envelope struct {
	StatusCode string          `json:"status_code"`
	StatusName string          `json:"status_name"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Limit  int   `json:"limit"`
		Offset int   `json:"offset"`
		Total  int64 `json:"total"`
	} `json:"pagination"`
}

var _ = Describe("User Handler Integration", func() {
	var (
		db      *gorm.DB
		router  chi.Router
		handler *user.Handler
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&rbacModel.Role{}, &userModel.User{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&rbacModel.Role{Name: "default"}).Error).NotTo(HaveOccurred())
		Expect(db.Create(&rbacModel.Role{Name: "administrator"}).Error).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo := userPostgres.NewUserRepository(db)
		service := user.NewService(repo, events.NewEventBus(slogger), slogger, bcrypt.MinCost)
		handler = user.NewHandler(service)

		router = chi.NewRouter()
		router.Get("/users", handler.ListUsers)
		router.Post("/users", handler.CreateUser)
		router.Get("/users/{id}", handler.GetUser)
		router.Patch("/users/{id}", handler.UpdateUser)
		router.Delete("/users/{id}", handler.DeleteUser)
	})

	doJSON := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeEnvelope := func(w *httptest.ResponseRecorder) envelope {
		var resp envelope
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp
	}

	Describe("POST /users", func() {
		It("should create a user and return 201 with the envelope", func() {
			w := doJSON(http.MethodPost, "/users", map[string]string{
				"name":     "New User",
				"email":    "new@example.com",
				"password": "secure_password",
			})

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			resp := decodeEnvelope(w)
			Expect(resp.StatusCode).To(Equal("201"))
			Expect(resp.StatusName).To(Equal("Created"))

			var created user.User
			Expect(json.Unmarshal(resp.Data, &created)).To(Succeed())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.Email).To(Equal("new@example.com"))
			Expect(created.Status).To(Equal("active"))
		})

		It("should never include the password hash in the response", func() {
			w := doJSON(http.MethodPost, "/users", map[string]string{
				"name":     "Secret",
				"email":    "secret@example.com",
				"password": "secure_password",
			})

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).NotTo(ContainSubstring("password"))
			Expect(w.Body.String()).NotTo(ContainSubstring("hash"))
		})

		It("should return 409 for a duplicate email", func() {
			payload := map[string]string{
				"name":     "Dup",
				"email":    "dup@example.com",
				"password": "secure_password",
			}
			Expect(doJSON(http.MethodPost, "/users", payload).Code).To(Equal(http.StatusCreated))

			w := doJSON(http.MethodPost, "/users", payload)
			Expect(w.Code).To(Equal(http.StatusConflict))

			resp := decodeEnvelope(w)
			Expect(resp.StatusCode).To(Equal("409"))
			Expect(resp.Message).To(Equal("email already exists"))
		})

		It("should return 400 for an invalid payload", func() {
			w := doJSON(http.MethodPost, "/users", map[string]string{
				"name":     "Short",
				"email":    "short@example.com",
				"password": "short",
			})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{not json"))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /users", func() {
		BeforeEach(func() {
			for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
				w := doJSON(http.MethodPost, "/users", map[string]string{
					"name":     "User",
					"email":    email,
					"password": "secure_password",
				})
				Expect(w.Code).To(Equal(http.StatusCreated))
			}
		})

		It("should return a paginated list", func() {
			w := doJSON(http.MethodGet, "/users?limit=2&offset=0", nil)

			Expect(w.Code).To(Equal(http.StatusOK))

			resp := decodeEnvelope(w)
			Expect(resp.Pagination).NotTo(BeNil())
			Expect(resp.Pagination.Limit).To(Equal(2))
			Expect(resp.Pagination.Total).To(Equal(int64(3)))

			var users []user.User
			Expect(json.Unmarshal(resp.Data, &users)).To(Succeed())
			Expect(users).To(HaveLen(2))
		})

		It("should cap the limit", func() {
			w := doJSON(http.MethodGet, "/users?limit=100000", nil)

			Expect(w.Code).To(Equal(http.StatusOK))

			resp := decodeEnvelope(w)
			Expect(resp.Pagination.Limit).To(Equal(100))
		})
	})

	Describe("GET /users/{id}", func() {
		It("should return the user", func() {
			created := decodeEnvelope(doJSON(http.MethodPost, "/users", map[string]string{
				"name":     "Fetch Me",
				"email":    "fetch@example.com",
				"password": "secure_password",
			}))
			var u user.User
			Expect(json.Unmarshal(created.Data, &u)).To(Succeed())

			w := doJSON(http.MethodGet, "/users/1", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			resp := decodeEnvelope(w)
			var fetched user.User
			Expect(json.Unmarshal(resp.Data, &fetched)).To(Succeed())
			Expect(fetched.Email).To(Equal("fetch@example.com"))
		})

		It("should return 404 for an unknown id", func() {
			w := doJSON(http.MethodGet, "/users/999", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))

			resp := decodeEnvelope(w)
			Expect(resp.Message).To(Equal("user not found"))
		})

		It("should return 400 for a non-numeric id", func() {
			w := doJSON(http.MethodGet, "/users/abc", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("PATCH /users/{id}", func() {
		BeforeEach(func() {
			w := doJSON(http.MethodPost, "/users", map[string]string{
				"name":     "Original",
				"email":    "patch@example.com",
				"password": "secure_password",
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
		})

		It("should apply a partial update", func() {
			w := doJSON(http.MethodPatch, "/users/1", map[string]string{
				"name": "Renamed",
			})

			Expect(w.Code).To(Equal(http.StatusOK))

			resp := decodeEnvelope(w)
			var updated user.User
			Expect(json.Unmarshal(resp.Data, &updated)).To(Succeed())
			Expect(updated.Name).To(Equal("Renamed"))
			Expect(updated.Email).To(Equal("patch@example.com"))
		})

		It("should reject an invalid status", func() {
			w := doJSON(http.MethodPatch, "/users/1", map[string]string{
				"status": "deleted",
			})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 404 for an unknown id", func() {
			w := doJSON(http.MethodPatch, "/users/999", map[string]string{
				"name": "Nobody",
			})

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /users/{id}", func() {
		It("should delete and confirm", func() {
			w := doJSON(http.MethodPost, "/users", map[string]string{
				"name":     "Doomed",
				"email":    "doomed@example.com",
				"password": "secure_password",
			})
			Expect(w.Code).To(Equal(http.StatusCreated))

			w = doJSON(http.MethodDelete, "/users/1", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			resp := decodeEnvelope(w)
			Expect(resp.Message).To(Equal("User deleted successfully"))

			w = doJSON(http.MethodGet, "/users/1", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should return 404 for an unknown id", func() {
			w := doJSON(http.MethodDelete, "/users/999", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
