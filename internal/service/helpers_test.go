package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/educonnect-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, password, role, name string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Username: username, Password: string(hash), Role: role, Name: name}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedPaper(t *testing.T, db *gorm.DB, title string) models.Paper {
	t.Helper()
	paper := models.Paper{Title: title, Filename: "papers/" + title + ".pdf", UploadedBy: "admin", UploadedAt: time.Now()}
	require.NoError(t, db.Create(&paper).Error)
	return paper
}

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }
