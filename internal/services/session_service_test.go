package services

import (
	"testing"
	"time"

	"github.com/neighbourhood-connect/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSessionCreateAndValidate(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db, testSecret, 24*time.Hour)
	user := seedUser(t, db, "alice", "alice@example.com", "secret1")

	token, session, err := sessions.Create(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, session.UserID)

	got, err := sessions.Validate(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestSessionRotationRevokesOldToken(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db, testSecret, 24*time.Hour)
	user := seedUser(t, db, "alice", "alice@example.com", "secret1")

	oldToken, _, err := sessions.Create(user.ID)
	require.NoError(t, err)
	newToken, _, err := sessions.Create(user.ID)
	require.NoError(t, err)

	_, err = sessions.Validate(oldToken)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = sessions.Validate(newToken)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSessionExpiryDestroysRow(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db, testSecret, 24*time.Hour)
	user := seedUser(t, db, "alice", "alice@example.com", "secret1")

	token, session, err := sessions.Create(user.ID)
	require.NoError(t, err)

	// Age the row past its TTL without touching the token itself.
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", session.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = sessions.Validate(token)
	require.ErrorIs(t, err, ErrNoSession)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSessionEndsWhenUserDeactivated(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db, testSecret, 24*time.Hour)
	user := seedUser(t, db, "alice", "alice@example.com", "secret1")

	token, _, err := sessions.Create(user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = sessions.Validate(token)
	require.ErrorIs(t, err, ErrNoSession)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSessionRejectsForeignToken(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db, testSecret, 24*time.Hour)
	foreign := NewSessionService(db, "another-secret", 24*time.Hour)
	user := seedUser(t, db, "alice", "alice@example.com", "secret1")

	token, _, err := foreign.Create(user.ID)
	require.NoError(t, err)

	_, err = sessions.Validate(token)
	require.ErrorIs(t, err, ErrNoSession)
	_, err = sessions.Validate("not-a-token")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessionDestroyIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db, testSecret, 24*time.Hour)
	user := seedUser(t, db, "alice", "alice@example.com", "secret1")

	token, _, err := sessions.Create(user.ID)
	require.NoError(t, err)

	require.NoError(t, sessions.Destroy(token))
	_, err = sessions.Validate(token)
	require.ErrorIs(t, err, ErrNoSession)
	require.NoError(t, sessions.Destroy(token))
}
