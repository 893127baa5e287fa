package middleware

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"newsiq/database"
	"newsiq/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-test-secret-test-secret!"

func setupAuthTest(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.SetDB(db)
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func userClaims(userID uint, isAdmin bool, exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":  userID,
		"username": "tester",
		"is_guest": false,
		"is_admin": isAdmin,
		"exp":      exp.Unix(),
		"iat":      time.Now().Unix(),
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	setupAuthTest(t)

	app := fiber.New()
	app.Get("/protected", AuthMiddleware, func(c *fiber.Ctx) error {
		userID, err := GetUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})

	token := signToken(t, userClaims(42, false, time.Now().Add(time.Hour)), testSecret)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	setupAuthTest(t)

	app := fiber.New()
	app.Get("/protected", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	setupAuthTest(t)

	app := fiber.New()
	app.Get("/protected", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	token := signToken(t, userClaims(42, false, time.Now().Add(time.Hour)), "some-other-secret-some-other-secret!")
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("expected 401 for a forged token, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	setupAuthTest(t)

	app := fiber.New()
	app.Get("/protected", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	token := signToken(t, userClaims(42, false, time.Now().Add(-time.Hour)), testSecret)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("expected 401 for an expired token, got %d", resp.StatusCode)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	setupAuthTest(t)

	app := fiber.New()
	app.Get("/articles", OptionalAuthMiddleware, func(c *fiber.Ctx) error {
		if userID, err := GetUserID(c); err == nil {
			return c.JSON(fiber.Map{"user_id": userID})
		}
		return c.JSON(fiber.Map{"anonymous": true})
	})

	// Anonymous requests pass through.
	resp, err := app.Test(httptest.NewRequest("GET", "/articles", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("anonymous request should pass, got %d", resp.StatusCode)
	}

	// An invalid token is ignored, not rejected.
	req := httptest.NewRequest("GET", "/articles", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("invalid token should be ignored, got %d", resp.StatusCode)
	}

	// Websocket clients pass the token as a query parameter.
	token := signToken(t, userClaims(7, false, time.Now().Add(time.Hour)), testSecret)
	resp, err = app.Test(httptest.NewRequest("GET", "/articles?token="+token, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("query token should be accepted, got %d", resp.StatusCode)
	}
}

func TestAdminAuthMiddlewareRejectsNonAdmin(t *testing.T) {
	setupAuthTest(t)

	app := fiber.New()
	app.Get("/admin", AdminAuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	token := signToken(t, userClaims(42, false, time.Now().Add(time.Hour)), testSecret)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("non-admin token should get 403, got %d", resp.StatusCode)
	}

	admin := signToken(t, userClaims(1, true, time.Now().Add(time.Hour)), testSecret)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("admin token should pass, got %d", resp.StatusCode)
	}
}
