package services

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/models"
	"gorm.io/gorm"
)

var ErrNoSession = errors.New("no active session")

// SessionService owns login sessions. The token handed to clients is a signed
// JWT, but the user_sessions row is the source of truth: it enforces the
// absolute TTL and makes logout an actual revocation.
type SessionService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewSessionService(db *gorm.DB, secret string, ttl time.Duration) *SessionService {
	return &SessionService{db: db, secret: []byte(secret), ttl: ttl}
}

// Create rotates the user's sessions: any prior session row is deleted before
// the new one is stored, so old tokens stop validating immediately.
func (s *SessionService) Create(userID uuid.UUID) (string, *models.Session, error) {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return "", nil, fmt.Errorf("failed to rotate sessions: %w", err)
	}

	sessionID := uuid.New()
	expiresAt := time.Now().Add(s.ttl)

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"sid": sessionID.String(),
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	session := models.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	return token, &session, nil
}

// Validate re-checks the session row and the user on every call: an expired
// row is destroyed, and a user that is no longer active and verified ends the
// session as well.
func (s *SessionService) Validate(token string) (*models.User, error) {
	sessionID, err := s.parseSessionID(token)
	if err != nil {
		return nil, ErrNoSession
	}

	var session models.Session
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, ErrNoSession
	}
	if session.TokenHash != hashToken(token) {
		return nil, ErrNoSession
	}
	if time.Now().After(session.ExpiresAt) {
		s.db.Delete(&session)
		return nil, ErrNoSession
	}

	var user models.User
	err = s.db.Where("id = ? AND is_active = ? AND is_verified = ?", session.UserID, true, true).First(&user).Error
	if err != nil {
		s.db.Delete(&session)
		return nil, ErrNoSession
	}
	return &user, nil
}

// Destroy deletes the session row. Destroying a token with no session is not
// an error.
func (s *SessionService) Destroy(token string) error {
	return s.db.Where("token_hash = ?", hashToken(token)).Delete(&models.Session{}).Error
}

func (s *SessionService) parseSessionID(token string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrNoSession
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	return uuid.Parse(sid)
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
