package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ventrilinks/models"
)

// sessionRow ist das Tabellen-Schema für den Postgres-Session-Store.
type sessionRow struct {
	Token     string    `gorm:"primaryKey;size:64"`
	RecordID  string    `gorm:"size:32;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (sessionRow) TableName() string { return "sessions" }

// PostgresSessionStore persistiert Sessions in Postgres, damit Logins einen
// Prozess-Neustart überleben. Wird über SESSIONS_DSN aktiviert.
type PostgresSessionStore struct {
	db *gorm.DB
}

// NewPostgresSessionStore verbindet sich und migriert das Schema.
func NewPostgresSessionStore(dsn string) (*PostgresSessionStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, err
	}
	return &PostgresSessionStore{db: db}, nil
}

func (p *PostgresSessionStore) Put(ctx context.Context, s models.Session) error {
	row := sessionRow{Token: s.Token, RecordID: s.RecordID, ExpiresAt: s.ExpiresAt}
	return p.db.WithContext(ctx).Save(&row).Error
}

func (p *PostgresSessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	var row sessionRow
	if err := p.db.WithContext(ctx).First(&row, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &models.Session{Token: row.Token, RecordID: row.RecordID, ExpiresAt: row.ExpiresAt}, nil
}

func (p *PostgresSessionStore) Delete(ctx context.Context, token string) error {
	return p.db.WithContext(ctx).Delete(&sessionRow{}, "token = ?", token).Error
}

func (p *PostgresSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res := p.db.WithContext(ctx).Delete(&sessionRow{}, "expires_at < ?", now)
	return int(res.RowsAffected), res.Error
}
