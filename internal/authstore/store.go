// Package authstore holds the per-interview authorization records the login
// step writes and the session gate reads. A record proves the candidate
// passed access-code verification for one interview within the last 24
// hours. Records are stored as HS256 JWTs signed with a per-install key so
// the verified flag and timestamp cannot be hand-edited.
package authstore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// TTL is how long a verification stays valid.
const TTL = 24 * time.Hour

var (
	// ErrNotAuthorized means no record exists for the interview.
	ErrNotAuthorized = errors.New("authstore: no authorization record")
	// ErrExpired means a record exists but is older than TTL.
	ErrExpired = errors.New("authstore: authorization record expired")
	// ErrInvalid means the record failed signature or claim checks.
	ErrInvalid = errors.New("authstore: authorization record invalid")
)

// Record is a decoded authorization record.
type Record struct {
	InterviewID string
	Email       string
	Verified    bool
	WrittenAt   time.Time
}

type recordClaims struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// Store reads and writes records under one directory.
type Store struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

// New creates a Store rooted at dir. The directory is created on first write.
func New(dir string, log zerolog.Logger) *Store {
	return &Store{
		dir: dir,
		log: log.With().Str("component", "authstore").Logger(),
		now: time.Now,
	}
}

// Write records a successful access verification for interviewID.
func (s *Store) Write(interviewID, email string) error {
	key, err := s.signingKey()
	if err != nil {
		return err
	}

	now := s.now()
	claims := recordClaims{
		Email:    email,
		Verified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   interviewID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return fmt.Errorf("sign record: %w", err)
	}

	if err := os.WriteFile(s.recordPath(interviewID), []byte(signed), 0o600); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	s.log.Debug().Str("interview_id", interviewID).Msg("Authorization record written")
	return nil
}

// Verify returns the record for interviewID if it exists, is untampered,
// carries the verified flag, and is younger than TTL.
func (s *Store) Verify(interviewID string) (*Record, error) {
	raw, err := os.ReadFile(s.recordPath(interviewID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	key, err := s.signingKey()
	if err != nil {
		return nil, err
	}

	claims := &recordClaims{}
	_, err = jwt.ParseWithClaims(string(raw), claims,
		func(t *jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	if claims.Subject != interviewID || !claims.Verified || claims.IssuedAt == nil {
		return nil, ErrInvalid
	}

	return &Record{
		InterviewID: interviewID,
		Email:       claims.Email,
		Verified:    claims.Verified,
		WrittenAt:   claims.IssuedAt.Time,
	}, nil
}

// recordPath hashes the opaque interview id into a stable filename.
func (s *Store) recordPath(interviewID string) string {
	sum := sha256.Sum256([]byte(interviewID))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:8])+".jwt")
}

// signingKey loads the per-install key, generating it on first use.
func (s *Store) signingKey() ([]byte, error) {
	path := filepath.Join(s.dir, ".key")

	if raw, err := os.ReadFile(path); err == nil && len(raw) >= 32 {
		return raw, nil
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create auth dir: %w", err)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}
