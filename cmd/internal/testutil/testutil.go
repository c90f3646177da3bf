package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/db"
)

var dbSeq atomic.Int64

// OpenTestDB opens a private in-memory SQLite database with the schema applied.
// It is closed through t.Cleanup.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	gdb, err := db.GetConnection(db.DBConfig{Driver: "sqlite", Path: dsn})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	if err := db.ApplyMigrations(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

// GenerateJWTHS256 returns a signed session token carrying the claims the server issues.
// A zero ttl produces an already expired token.
func GenerateJWTHS256(t *testing.T, secret, sub, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"role":  role,
		"email": sub + "@example.com",
		"name":  sub,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	if ttl == 0 {
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
