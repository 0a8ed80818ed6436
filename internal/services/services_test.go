package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/models"
	"github.com/neighbourhood-connect/backend/internal/ratelimit"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Event{},
		&models.Attendance{},
		&models.Notification{},
	))
	return db
}

type sentMail struct {
	To      string
	Subject string
}

// fakeMailer records sends instead of talking to SMTP. Set fail to simulate a
// delivery outage.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(toEmail, toName, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{To: toEmail, Subject: subject})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newAccountFixture(t *testing.T) (*AccountService, *fakeMailer, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	fm := &fakeMailer{}
	sessions := NewSessionService(db, testSecret, 24*time.Hour)
	accounts := NewAccountService(db, fm, sessions, ratelimit.New(100, time.Minute), 15*time.Minute)
	return accounts, fm, db
}

// seedUser inserts a verified, active user directly, bypassing the OTP flow.
func seedUser(t *testing.T, db *gorm.DB, username, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	user := models.User{
		ID:              uuid.New(),
		Username:        username,
		Email:           email,
		Password:        string(hash),
		FullName:        "Test Neighbour",
		IsVerified:      true,
		IsActive:        true,
		EmailVerifiedAt: &now,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func storedOTP(t *testing.T, db *gorm.DB, email string) string {
	t.Helper()
	var user models.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	require.NotNil(t, user.OTPCode)
	return *user.OTPCode
}
