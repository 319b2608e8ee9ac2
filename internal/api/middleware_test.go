package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/mocks"
	"gymsync/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const middlewareSecret = "middleware-secret"

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role, ttl time.Duration) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Issuer:    "gymsync",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(middlewareSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter(userRepo repository.UserRepository, roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", AuthMiddleware(middlewareSecret, userRepo))
	if len(roles) > 0 {
		group.Use(RoleMiddleware(roles...))
	}
	group.GET("/secret", func(c *gin.Context) {
		id, err := currentUserID(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error(), CodeInternalError)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"id": id.Hex()})
	})
	return router
}

func getWithToken(router *gin.Engine, token string, viaCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	if token != "" {
		if viaCookie {
			req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	verifiedUser := func(id primitive.ObjectID, role domain.Role) *mocks.MockUserRepository {
		userRepo := mocks.NewMockUserRepository()
		userRepo.GetByIDFunc = func(ctx context.Context, uid primitive.ObjectID) (*domain.User, error) {
			return &domain.User{ID: id, Role: role, IsVerified: true}, nil
		}
		return userRepo
	}

	t.Run("accepts the cookie and the bearer header", func(t *testing.T) {
		userID := primitive.NewObjectID()
		router := protectedRouter(verifiedUser(userID, domain.RoleMember))
		token := signToken(t, userID, domain.RoleMember, time.Hour)

		assert.Equal(t, http.StatusOK, getWithToken(router, token, true).Code)
		assert.Equal(t, http.StatusOK, getWithToken(router, token, false).Code)
	})

	t.Run("missing token", func(t *testing.T) {
		router := protectedRouter(mocks.NewMockUserRepository())

		rec := getWithToken(router, "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		userID := primitive.NewObjectID()
		router := protectedRouter(verifiedUser(userID, domain.RoleMember))
		token := signToken(t, userID, domain.RoleMember, -time.Minute)

		rec := getWithToken(router, token, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeTokenExpired, decodeBody(t, rec)["code"])
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		userID := primitive.NewObjectID()
		router := protectedRouter(verifiedUser(userID, domain.RoleMember))
		claims := &jwtClaims{UserID: userID.Hex(), Role: domain.RoleMember, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
		require.NoError(t, err)

		rec := getWithToken(router, token, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, CodeInvalidToken, decodeBody(t, rec)["code"])
	})

	t.Run("deleted account is rejected despite a valid token", func(t *testing.T) {
		userID := primitive.NewObjectID()
		router := protectedRouter(mocks.NewMockUserRepository())
		token := signToken(t, userID, domain.RoleMember, time.Hour)

		rec := getWithToken(router, token, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unverified account is blocked", func(t *testing.T) {
		userID := primitive.NewObjectID()
		userRepo := mocks.NewMockUserRepository()
		userRepo.GetByIDFunc = func(ctx context.Context, uid primitive.ObjectID) (*domain.User, error) {
			return &domain.User{ID: userID, Role: domain.RoleMember}, nil
		}
		router := protectedRouter(userRepo)
		token := signToken(t, userID, domain.RoleMember, time.Hour)

		rec := getWithToken(router, token, false)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRoleMiddleware(t *testing.T) {
	userID := primitive.NewObjectID()
	userRepo := mocks.NewMockUserRepository()
	userRepo.GetByIDFunc = func(ctx context.Context, uid primitive.ObjectID) (*domain.User, error) {
		return &domain.User{ID: userID, Role: domain.RoleMember, IsVerified: true}, nil
	}
	token := signToken(t, userID, domain.RoleMember, time.Hour)

	t.Run("allowed role passes", func(t *testing.T) {
		router := protectedRouter(userRepo, domain.RoleMember, domain.RoleTrainer)
		assert.Equal(t, http.StatusOK, getWithToken(router, token, false).Code)
	})

	t.Run("other roles are denied", func(t *testing.T) {
		router := protectedRouter(userRepo, domain.RoleAdmin)
		rec := getWithToken(router, token, false)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
