package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
	repo "github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
	"github.com/oksasatya/narrative-weaver/pkg/validation"
)

// UserService owns accounts, credentials and the Redis login session.
type UserService struct {
	Users    repo.UserRepository
	Entries  repo.DiaryEntryRepository
	Index    EntryIndex
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	Notifier *Notifier
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewUserService(users repo.UserRepository, entries repo.DiaryEntryRepository, index EntryIndex, jwt *helpers.JWTManager, rdb *redis.Client, notifier *Notifier, logger *logrus.Logger) *UserService {
	return &UserService{
		Users:    users,
		Entries:  entries,
		Index:    index,
		JWT:      jwt,
		Redis:    rdb,
		Notifier: notifier,
		Logger:   logger,
		Now:      time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// UpdateProfileInput follows the partial-update rules of the profile form:
// a nil field is left alone. Name and Email also ignore empty strings,
// an empty DateOfBirth clears it.
type UpdateProfileInput struct {
	Name        *string
	Email       *string
	Phone       *string
	DateOfBirth *string
	Gender      *string
	Ethnicity   *string
	Address     *string
	Password    *string
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, "", errs.Validation("Please fill in all required fields")
	}
	if validation.Var(email, "email") != nil {
		return nil, "", errs.Validation("Please provide a valid email address")
	}
	if validation.Var(in.Password, "pwd") != nil {
		return nil, "", errs.Validation("Password must be at least 8 characters long")
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, "", errs.Validation("User already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", errs.Store("lookup user", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", errs.Store("hash password", err)
	}
	now := s.now()
	u := &entity.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", errs.Validation("User already exists")
		}
		return nil, "", errs.Store("create user", err)
	}

	token, err := s.issueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	s.Notifier.Welcome(ctx, u)
	return u, token, nil
}

// Login never reveals whether the email exists.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", errs.Validation("Please provide email and password")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", errs.Unauthenticated("Invalid email or password")
		}
		return nil, "", errs.Store("lookup user", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", errs.Unauthenticated("Invalid email or password")
	}
	token, err := s.issueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, errs.Store("get user", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, string, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		email := normalizeEmail(*in.Email)
		if validation.Var(email, "email") != nil {
			return nil, "", errs.Validation("Please provide a valid email address")
		}
		if email != u.Email {
			if other, err := s.Users.GetByEmail(ctx, email); err == nil && other.ID != u.ID {
				return nil, "", errs.Validation("User already exists")
			} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, "", errs.Store("lookup user", err)
			}
			u.Email = email
		}
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Gender != nil {
		u.Gender = strings.TrimSpace(*in.Gender)
	}
	if in.Ethnicity != nil {
		u.Ethnicity = strings.TrimSpace(*in.Ethnicity)
	}
	if in.Address != nil {
		u.Address = strings.TrimSpace(*in.Address)
	}
	if in.DateOfBirth != nil {
		raw := strings.TrimSpace(*in.DateOfBirth)
		if raw == "" {
			u.DateOfBirth = nil
		} else {
			dob, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				return nil, "", errs.Validation("Date of birth must be in YYYY-MM-DD format")
			}
			u.DateOfBirth = &dob
		}
	}
	if in.Password != nil && *in.Password != "" {
		if validation.Var(*in.Password, "pwd") != nil {
			return nil, "", errs.Validation("Password must be at least 8 characters long")
		}
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, "", errs.Store("hash password", err)
		}
		u.Password = hash
	}

	u.UpdatedAt = s.now()
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", errs.Validation("User already exists")
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", errs.NotFound("User not found")
		}
		return nil, "", errs.Store("update user", err)
	}

	token, err := s.issueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string, meta RequestMeta) error {
	if current == "" || next == "" {
		return errs.Validation("Please provide both current and new passwords.")
	}
	if validation.Var(next, "pwd") != nil {
		return errs.Validation("New password must be at least 8 characters long.")
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return errs.Unauthenticated("Invalid current password.")
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return errs.Store("hash password", err)
	}
	u.Password = hash
	u.UpdatedAt = s.now()
	if err := s.Users.Update(ctx, u); err != nil {
		return errs.Store("update password", err)
	}
	s.Notifier.PasswordChanged(ctx, u, meta)
	return nil
}

// DeleteAccount removes the user's entries, their search documents, the user
// and the session, in that order. Steps already done are not rolled back when
// a later one fails.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errs.NotFound("User not found.")
		}
		return errs.Store("get user", err)
	}

	n, err := s.Entries.DeleteByOwner(ctx, u.ID)
	if err != nil {
		return errs.Store("delete entries", err)
	}
	if s.Index != nil {
		if err := s.Index.RemoveByOwner(ctx, u.ID); err != nil {
			helpers.LogError(s.Logger, "unindex owner entries failed", err, logrus.Fields{"user_id": u.ID})
		}
	}
	if err := s.Users.Delete(ctx, u.ID); err != nil {
		return errs.Store("delete user", err)
	}
	if s.Redis != nil {
		if err := helpers.DeleteSession(ctx, s.Redis, u.ID); err != nil {
			helpers.LogError(s.Logger, "delete session failed", err, logrus.Fields{"user_id": u.ID})
		}
	}

	helpers.LogInfo(s.Logger, "account deleted", logrus.Fields{"user_id": u.ID, "entries": n})
	s.Notifier.AccountDeleted(ctx, u, n)
	return nil
}

// issueToken signs a JWT and records the Redis session the auth middleware
// checks. A failed session write is logged, not returned.
func (s *UserService) issueToken(ctx context.Context, u *entity.User) (string, error) {
	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		helpers.LogError(s.Logger, "generate token failed", err, logrus.Fields{"user_id": u.ID})
		return "", errs.Store("generate token", err)
	}
	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"logged_in":  true,
			"expires_at": exp.UTC().Format(time.RFC3339),
			"updated_at": s.now().Format(time.RFC3339Nano),
		}
		if rErr := helpers.SaveSession(ctx, s.Redis, u.ID, fields, s.JWT.TTL); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", helpers.SessionKey(u.ID)).Warn("redis pipeline failed")
		}
	}
	return token, nil
}
