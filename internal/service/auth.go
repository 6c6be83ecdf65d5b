package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	tokenIssuer       = "foodgram"
	denylistKeyPrefix = "auth:denylist:"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
	redis     *redis.Client
	now       func() time.Time
}

// NewAuthService creates the auth service. rdb may be nil, in which case
// logout does not revoke tokens before they expire.
func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, rdb *redis.Client) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		redis:     rdb,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	var verrs ValidationErrors
	var taken []models.User
	if err := s.db.WithContext(ctx).Select("email", "username").
		Where("email = ? OR username = ?", email, username).
		Find(&taken).Error; err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	for _, u := range taken {
		if u.Email == email && !verrs.Has("email") {
			verrs.Add("email", "A user with that email already exists.")
		}
		if u.Username == username && !verrs.Has("username") {
			verrs.Add("username", "A user with that username already exists.")
		}
	}
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, &ValidationError{Field: "errors", Message: "A user with that username or email already exists."}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return &user, nil
}

// Login checks the credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(&user)
}

// GenerateToken signs an HS256 token for user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
		Version:  user.TokenVersion,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses the token and rejects it if it was revoked, if its
// user is gone or if the password changed after it was issued
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	var versions []int
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", claims.UserID).
		Limit(1).
		Pluck("token_version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to check token version: %w", err)
	}
	if len(versions) == 0 || versions[0] != claims.Version {
		return nil, ErrInvalidToken
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		// redis trouble should not lock every user out
		logging.Ctx(ctx).Warn().Err(err).Msg("token denylist unavailable")
		return claims, nil
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if s.redis == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, denylistKeyPrefix+claims.ID, claims.UserID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logging.Ctx(ctx).Debug().Str("user_id", claims.UserID.String()).Msg("token revoked")
	return nil
}

func (s *AuthService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetPassword replaces the viewer's password after checking the current one.
// Tokens issued before the change are revoked.
func (s *AuthService) SetPassword(ctx context.Context, viewer Viewer, current, next string) error {
	if err := viewer.requireUser(); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", viewer.UserID).Take(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("user not found")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return &ValidationError{Field: "current_password", Message: "Invalid password."}
	}
	if current == next {
		return &ValidationError{Field: "new_password", Message: "The new password must differ from the current one."}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// every token issued so far stops validating
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"password_hash": string(hashed),
			"token_version": gorm.Expr("token_version + 1"),
		}).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("password changed")
	return nil
}
