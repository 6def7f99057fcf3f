package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 12
	// TokenExpiry is how long session tokens are valid by default.
	TokenExpiry = 7 * 24 * time.Hour
	// RememberMeExpiry is how long tokens are valid when remember_me is set.
	RememberMeExpiry = 30 * 24 * time.Hour
)

// JWTClaims represents the claims in a session token.
type JWTClaims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles authentication operations.
type Service struct {
	db        *bun.DB
	jwtSecret []byte
}

// NewService creates a new auth service.
func NewService(db *bun.DB, jwtSecret string) *Service {
	return &Service{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// RegisterUserOptions are the options for Register.
type RegisterUserOptions struct {
	Username string
	Email    string
	Password string
}

// Register creates a new reader account. Usernames and emails are unique
// case-insensitively.
func (s *Service) Register(ctx context.Context, opts RegisterUserOptions) (*models.User, error) {
	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("username = ? COLLATE NOCASE", opts.Username).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("A user with this username already exists")
	}

	exists, err = s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ? COLLATE NOCASE", opts.Email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("A user with this email already exists")
	}

	passwordHash, err := HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     opts.Username,
		Email:        opts.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleReader,
	}

	_, err = s.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return s.GetUserByID(ctx, user.ID)
}

// Authenticate validates credentials and returns the user if valid.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("AuthorProfile").
		Where("u.username = ? COLLATE NOCASE", username).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid username or password")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid username or password")
	}

	return user, nil
}

// GenerateToken creates a new session token for the user. rememberMe extends
// the expiry from a week to a month.
func (s *Service) GenerateToken(user *models.User, rememberMe bool) (string, time.Duration, error) {
	expiry := TokenExpiry
	if rememberMe {
		expiry = RememberMeExpiry
	}

	now := time.Now()
	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, errors.WithStack(err)
	}

	return signedToken, expiry, nil
}

// ValidateToken validates a session token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID with their author profile, if any.
func (s *Service) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("AuthorProfile").
		Where("u.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("User")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
