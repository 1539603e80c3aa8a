package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShubhamRajbabu/taskvault/internal/apperror"
	"github.com/ShubhamRajbabu/taskvault/internal/events"
	"github.com/ShubhamRajbabu/taskvault/internal/hash"
	"github.com/ShubhamRajbabu/taskvault/internal/logging"
	"github.com/ShubhamRajbabu/taskvault/internal/models"
	"github.com/ShubhamRajbabu/taskvault/internal/repo"
	"github.com/ShubhamRajbabu/taskvault/internal/tokens"
)

// AuthService orchestrates register, login, refresh and logout over the
// credential store, session store and token issuer.
type AuthService struct {
	Repo     *repo.GormRepo
	Issuer   *tokens.Issuer
	Producer *events.Producer
}

type AuthResult struct {
	User *models.User
	Pair *tokens.Pair
}

// One message for bad credentials regardless of whether the account exists,
// and one for every refresh failure mode (bad signature, expired, revoked).
var (
	errBadCredentials = apperror.Unauthorized("invalid email or password")
	errBadRefresh     = apperror.Unauthorized("invalid or expired refresh token")
)

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || email == "" || password == "" {
		return nil, apperror.BadRequest("all fields are required")
	}

	if _, err := s.Repo.FindUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("lookup failed", "error", err)
		return nil, apperror.Internal()
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("hash failed", "error", err)
		return nil, apperror.Internal()
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		// Two racing registrations can both pass the lookup above; the
		// unique index decides the loser.
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("user already exists")
		}
		l.Error("create failed", "error", err)
		return nil, apperror.Internal()
	}

	pair, err := s.startSession(ctx, l, &user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})
	l.Info("user registered", "user_id", user.ID)

	return &AuthResult{User: &user, Pair: pair}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, apperror.BadRequest("email and password are required")
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errBadCredentials
		}
		l.Error("lookup failed", "error", err)
		return nil, apperror.Internal()
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, errBadCredentials
	}

	// Single active session: any prior refresh token dies here.
	if err := s.Repo.DeleteSessionByUser(ctx, user.ID); err != nil {
		l.Error("session invalidation failed", "error", err)
		return nil, apperror.Internal()
	}

	pair, err := s.startSession(ctx, l, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})
	l.Info("user logged in", "user_id", user.ID)

	return &AuthResult{User: user, Pair: pair}, nil
}

// Refresh rotates the whole pair: the presented token is deleted from the
// session store and a fresh one persisted, so replaying it fails.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if rawRefresh == "" {
		return nil, errBadRefresh
	}

	claims, err := s.Issuer.ParseRefresh(rawRefresh)
	if err != nil {
		return nil, errBadRefresh
	}

	// Cryptographically valid but already rotated or revoked tokens are
	// absent from the store.
	if _, err := s.Repo.FindSessionByToken(ctx, rawRefresh); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errBadRefresh
		}
		l.Error("session lookup failed", "error", err)
		return nil, apperror.Internal()
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, errBadRefresh
	}

	if err := s.Repo.DeleteSessionByToken(ctx, rawRefresh); err != nil {
		l.Error("session rotation failed", "error", err)
		return nil, apperror.Internal()
	}

	pair, err := s.Issuer.IssuePair(userID, claims.Role)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, apperror.Internal()
	}
	if err := s.Repo.PutSession(ctx, userID, pair.RefreshToken, pair.RefreshJTI, pair.RefreshExp); err != nil {
		l.Error("session persist failed", "error", err)
		return nil, apperror.Internal()
	}

	l.Info("tokens refreshed", "user_id", userID)
	return pair, nil
}

// Logout is best-effort and idempotent: no token, an unknown token and a
// repeated call all succeed.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if rawRefresh == "" {
		return
	}
	if err := s.Repo.DeleteSessionByToken(ctx, rawRefresh); err != nil {
		l.Warn("session delete failed", "error", err)
		return
	}
	if claims, err := s.Issuer.ParseRefresh(rawRefresh); err == nil {
		if userID, err := claims.UserID(); err == nil {
			s.publish(ctx, events.TopicUserEvents, userID, map[string]any{
				"type":    "user_logged_out",
				"user_id": userID,
			})
		}
	}
	l.Info("user logged out")
}

func (s *AuthService) startSession(ctx context.Context, l *slog.Logger, user *models.User) (*tokens.Pair, error) {
	pair, err := s.Issuer.IssuePair(user.ID, user.Role)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, apperror.Internal()
	}
	if err := s.Repo.PutSession(ctx, user.ID, pair.RefreshToken, pair.RefreshJTI, pair.RefreshExp); err != nil {
		l.Error("session persist failed", "error", err)
		return nil, apperror.Internal()
	}
	return pair, nil
}

func (s *AuthService) publish(ctx context.Context, topic string, key uint, event map[string]any) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", topic, "error", err)
	}
}
