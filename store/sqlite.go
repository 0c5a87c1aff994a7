package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bokaap-reservations/models"
)

// SQLiteStore keeps everything in a single sqlite file through gorm. It backs
// local development and the test suites.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway; one connection avoids "database is locked"
	// and makes every transaction exclusive.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.AdminUser{},
		&models.MenuItem{},
		&models.Reservation{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	slog.Info("sqlite store opened and migrated", "path", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) AdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &admin, nil
}

func (s *SQLiteStore) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error
	return count, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	row := *admin
	row.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err)
	}
	admin.ID = row.ID
	return nil
}

func (s *SQLiteStore) CreateFirstAdmin(ctx context.Context, admin *models.AdminUser) error {
	row := *admin
	row.ID = uuid.NewString()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSetupDone
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return translateGormError(err)
	}
	admin.ID = row.ID
	return nil
}

func (s *SQLiteStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if err := s.db.WithContext(ctx).Limit(PageSize).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SQLiteStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	row := *r
	row.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	r.ID = row.ID
	return nil
}

func (s *SQLiteStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	if err := s.db.WithContext(ctx).Limit(PageSize).Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *SQLiteStore) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &r, nil
}

func (s *SQLiteStore) UpdateReservationStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	var r models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Reservation{}).Where("id = ?", id).Update("status", string(status))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", id).First(&r).Error
	})
	if err != nil {
		return nil, translateGormError(err)
	}
	return &r, nil
}

func translateGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrSetupDone):
		return ErrSetupDone
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicate
	default:
		return err
	}
}
