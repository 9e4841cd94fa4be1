package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler  *Handler
		mockRepo *mockRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockRepository()
		codec := NewJWTTokenCodec("test-signing-secret-at-least-32-chars", 30*time.Minute)
		handler = NewHandler(NewService(mockRepo, codec, bcrypt.MinCost))
	})

	post := func(handlerFunc http.HandlerFunc, body any) *httptest.ResponseRecorder {
		payload, err := json.Marshal(body)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
		rec := httptest.NewRecorder()
		handlerFunc(rec, req)
		return rec
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("should answer 200 with a bearer token for valid credentials", func() {
			rec := post(handler.Login, LoginDTO{Username: "alice", Password: "correct_password"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("access_token"))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"token_type":"bearer"`))
		})

		ginkgo.It("should answer 401 for a wrong password", func() {
			rec := post(handler.Login, LoginDTO{Username: "alice", Password: "wrong"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("incorrect username or password"))
		})

		ginkgo.It("should answer 401 with the same message for an unknown username", func() {
			rec := post(handler.Login, LoginDTO{Username: "ghost", Password: "whatever"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("incorrect username or password"))
		})

		ginkgo.It("should answer 401 with a deactivation message for an inactive account", func() {
			rec := post(handler.Login, LoginDTO{Username: "carol", Password: "correct_password"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("user account is deactivated"))
		})

		ginkgo.It("should answer 400 for a missing field", func() {
			rec := post(handler.Login, LoginDTO{Username: "alice"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("should answer 201 for a new account", func() {
			rec := post(handler.Register, RegisterDTO{Username: "dave", Password: "long_enough_password"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"username":"dave"`))
			gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("password"))
		})

		ginkgo.It("should answer 409 for a taken username", func() {
			rec := post(handler.Register, RegisterDTO{Username: "alice", Password: "long_enough_password"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		})

		ginkgo.It("should answer 409 for a taken email", func() {
			email := "inactive@example.com"
			rec := post(handler.Register, RegisterDTO{Username: "dave", Email: &email, Password: "long_enough_password"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		})

		ginkgo.It("should answer 400 for a short password", func() {
			rec := post(handler.Register, RegisterDTO{Username: "dave", Password: "short"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})
})
