package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ShubhamRajbabu/taskvault/internal/models"
	"github.com/ShubhamRajbabu/taskvault/internal/tokens"
)

// The session store keeps at most one refresh-token row per user. It does
// not enforce that itself: Login and Refresh delete prior rows before
// inserting the replacement.

func (r *GormRepo) PutSession(ctx context.Context, userID uint, refreshToken string, jti string, expiresAt time.Time) error {
	row := models.RefreshToken{
		Token:     tokens.Sha256Hex(refreshToken),
		UserID:    userID,
		JTI:       jti,
		ExpiresAt: expiresAt.Unix(),
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormRepo) FindSessionByToken(ctx context.Context, refreshToken string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token = ?", tokens.Sha256Hex(refreshToken)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// DeleteSessionByUser is idempotent; deleting a user with no session is not
// an error.
func (r *GormRepo) DeleteSessionByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.RefreshToken{}).Error
}

func (r *GormRepo) DeleteSessionByToken(ctx context.Context, refreshToken string) error {
	return r.DB.WithContext(ctx).
		Where("token = ?", tokens.Sha256Hex(refreshToken)).
		Delete(&models.RefreshToken{}).Error
}

func (r *GormRepo) CountSessionsByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
