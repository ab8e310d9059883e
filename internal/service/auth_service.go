package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of an issued session token.
const TokenTTL = 7 * 24 * time.Hour

// VerificationTTL is how long an email verification token stays redeemable.
const VerificationTTL = 24 * time.Hour

// AuthService implements signup, login, logout, and email verification.
// Redis backs the token revocation list and pending verification tokens;
// a nil client disables both (tests, degraded mode).
type AuthService struct {
	userRepo  repository.UserRepository
	rdb       *redis.Client
	jwtSecret string
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type SignupResult struct {
	User              *models.User
	Token             string
	VerificationToken string
}

type LoginResult struct {
	User  *models.User
	Token string
}

func NewAuthService(userRepo repository.UserRepository, rdb *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		rdb:       rdb,
		jwtSecret: jwtSecret,
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	verification, err := s.issueVerificationToken(ctx, user.ID)
	if err != nil {
		// Account creation succeeded; the user can request a resend.
		middleware.Logger.WarnContext(ctx, "verification token issue failed",
			"user_id", user.ID, "error", err.Error())
	}

	return &SignupResult{User: user, Token: token, VerificationToken: verification}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Logout puts the token's jti on the revocation list until the token would
// have expired anyway.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return models.NewValidationError("Token has no ID")
	}
	if s.rdb == nil {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, "jwt:blacklist:"+jti, "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// VerifyEmail redeems a verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.NewValidationError("Verification token is required")
	}
	if s.rdb == nil {
		return nil, models.NewInternalError(fmt.Errorf("verification store unavailable"))
	}

	key := "verify:" + token
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, models.NewNotFoundError("Verification token", token)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user, err := s.userRepo.GetByID(ctx, uint(userID))
	if err != nil {
		return nil, err
	}

	if !user.EmailVerified {
		user.EmailVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	s.rdb.Del(ctx, key)
	return user, nil
}

// ResendVerification issues a fresh verification token. Unknown emails and
// already-verified accounts return no error so the endpoint does not leak
// which addresses exist.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil || user.EmailVerified {
		return "", nil
	}
	return s.issueVerificationToken(ctx, user.ID)
}

func (s *AuthService) issueVerificationToken(ctx context.Context, userID uint) (string, error) {
	if s.rdb == nil {
		return "", nil
	}
	token := uuid.New().String()
	key := "verify:" + token
	if err := s.rdb.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), VerificationTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// GenerateToken creates a JWT token for the given user ID and username
func (s *AuthService) GenerateToken(userID uint, username string) (string, error) {
	if s.jwtSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      middleware.TokenIssuer,
		"aud":      middleware.TokenAudience,
		"exp":      now.Add(TokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
