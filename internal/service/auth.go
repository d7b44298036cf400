package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLen = 6
	maxNameLen     = 50
)

// Mailer delivers account activation links.
type Mailer interface {
	SendActivation(ctx context.Context, to, link string) error
}

// LogMailer writes activation links to the log instead of sending mail.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendActivation(ctx context.Context, to, link string) error {
	l := m.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "activation link issued", "email", to, "link", link)
	return nil
}

// AuthService handles registration, sessions and account maintenance.
type AuthService struct {
	db         *gorm.DB
	tokens     *util.TokenIssuer
	mailer     Mailer
	bcryptCost int
	apiURL     string
}

type AuthOptions struct {
	BcryptCost int
	// APIURL prefixes activation links, e.g. http://localhost:8080.
	APIURL string
}

func NewAuthService(db *gorm.DB, tokens *util.TokenIssuer, mailer Mailer, opts AuthOptions) *AuthService {
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &AuthService{
		db:         db,
		tokens:     tokens,
		mailer:     mailer,
		bcryptCost: opts.BcryptCost,
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
	}
}

// Tokens exposes the issuer so handlers can size cookies.
func (s *AuthService) Tokens() *util.TokenIssuer { return s.tokens }

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountInput is a partial account update.
type AccountInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Session is the result of a successful login or refresh.
type Session struct {
	User   *models.User   `json:"user"`
	Tokens util.TokenPair `json:"tokens"`
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "is not a valid address")
	}
	return email, nil
}

func checkName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid("name", "is required")
	}
	if len([]rune(name)) > maxNameLen {
		return "", invalid("name", "too long, max %d characters", maxNameLen)
	}
	return name, nil
}

func checkPassword(pwd string) error {
	if len(pwd) < MinPasswordLen {
		return invalid("password", "must be at least %d characters", MinPasswordLen)
	}
	// bcrypt ignores everything past 72 bytes
	if len(pwd) > 72 {
		return invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func (s *AuthService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// Register creates an inactive account and mails its activation link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name, err := checkName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	link := uuid.NewString()
	user := &models.User{
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           models.RoleUser,
		ActivationLink: &link,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendActivation(ctx, email, s.apiURL+"/api/auth/activate/"+link); err != nil {
		slog.WarnContext(ctx, "send activation failed", "user_id", user.ID, "err", err)
	}
	return user, nil
}

// Activate marks the account holding link as activated.
func (s *AuthService) Activate(ctx context.Context, link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return invalid("link", "is required")
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("activation_link = ?", link).
		Updates(map[string]any{"is_activated": true, "activation_link": nil})
	if res.Error != nil {
		return fmt.Errorf("activate user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return invalid("link", "unknown or already used activation link")
	}
	return nil
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, invalid("", "email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActivated {
		return nil, invalid("email", "account is not activated")
	}

	pair, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(&models.Token{UserID: user.ID, RefreshToken: pair.RefreshToken}).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{User: &user, Tokens: pair}, nil
}

// Refresh rotates a stored refresh token and returns a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	var sess *Session
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.Token
		if err := tx.Where("refresh_token = ? AND user_id = ?", refreshToken, claims.UserID).First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return fmt.Errorf("find refresh token: %w", err)
		}
		var user models.User
		if err := tx.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return fmt.Errorf("find user: %w", err)
		}

		pair, err := s.tokens.Generate(user.ID, string(user.Role))
		if err != nil {
			return fmt.Errorf("issue tokens: %w", err)
		}
		if err := tx.Model(&stored).Updates(map[string]any{
			"refresh_token": pair.RefreshToken,
			"created_at":    time.Now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("rotate refresh token: %w", err)
		}
		sess = &Session{User: &user, Tokens: pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout forgets a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("refresh_token = ?", refreshToken).Delete(&models.Token{}).Error; err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// UserByID loads a user for the auth middleware.
func (s *AuthService) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// UpdateAccount changes the caller's own name, email or password.
func (s *AuthService) UpdateAccount(ctx context.Context, userID uint, in AccountInput) (*models.User, error) {
	cols := map[string]any{}
	if in.Name != nil {
		name, err := checkName(*in.Name)
		if err != nil {
			return nil, err
		}
		cols["name"] = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		taken, err := s.emailTaken(ctx, email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
		}
		cols["email"] = email
	}
	if in.Password != nil {
		if err := checkPassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		cols["password_hash"] = string(hash)
	}
	if len(cols) == 0 {
		return nil, invalid("", "no fields to update")
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(cols)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.UserByID(ctx, userID)
}

// DeleteAccount removes the user together with everything they own.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Transaction{}, &models.Budget{}, &models.Token{}, &models.AuditLog{}} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return fmt.Errorf("delete user data: %w", err)
			}
		}
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListUsers returns every account, oldest first. Callers must be admins.
func (s *AuthService) ListUsers(ctx context.Context, caller Caller) ([]models.User, error) {
	if !caller.Admin {
		return nil, ErrForbidden
	}
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
