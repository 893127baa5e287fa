package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"newsiq/database"
	"newsiq/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAdminTest(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", "admin-test-secret-admin-test-secret!")

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
	return db
}

func seedAdminUser(t *testing.T, db *gorm.DB, username, password string, isAdmin, isGuest, isBanned bool) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Username: username,
		Password: string(hashed),
		IsAdmin:  isAdmin,
		IsGuest:  isGuest,
		IsBanned: isBanned,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func postAdminLogin(t *testing.T, app *fiber.App, username, password string) int {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest("POST", "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp.StatusCode
}

func TestAdminLogin(t *testing.T) {
	db := setupAdminTest(t)

	seedAdminUser(t, db, "boss", "correct-horse", true, false, false)
	seedAdminUser(t, db, "reader", "correct-horse", false, false, false)
	seedAdminUser(t, db, "suspended", "correct-horse", true, false, true)
	seedAdminUser(t, db, "sneaky-guest", "correct-horse", true, true, false)

	app := fiber.New()
	app.Post("/admin/login", Login)

	if code := postAdminLogin(t, app, "boss", "correct-horse"); code != 200 {
		t.Errorf("admin with the right password should log in, got %d", code)
	}
	if code := postAdminLogin(t, app, "boss", "wrong"); code != 401 {
		t.Errorf("wrong password should get 401, got %d", code)
	}
	if code := postAdminLogin(t, app, "reader", "correct-horse"); code != 401 {
		t.Errorf("non-admin should get 401, got %d", code)
	}
	if code := postAdminLogin(t, app, "suspended", "correct-horse"); code != 403 {
		t.Errorf("banned admin should get 403, got %d", code)
	}
	if code := postAdminLogin(t, app, "sneaky-guest", "correct-horse"); code != 401 {
		t.Errorf("guest account must never log in as admin, got %d", code)
	}
}

func TestAdminLoginResponseShape(t *testing.T) {
	db := setupAdminTest(t)
	seedAdminUser(t, db, "boss", "correct-horse", true, false, false)

	app := fiber.New()
	app.Post("/admin/login", Login)

	body, _ := json.Marshal(LoginRequest{Username: "boss", Password: "correct-horse"})
	req := httptest.NewRequest("POST", "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if login.Token == "" {
		t.Error("response should carry a token")
	}
	if login.Username != "boss" || login.UserID == 0 {
		t.Errorf("response should identify the admin, got %q/%d", login.Username, login.UserID)
	}
	if login.ExpiresAt == 0 {
		t.Error("response should carry the token expiry")
	}
}
