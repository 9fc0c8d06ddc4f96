// Package repository はデータアクセス層の実装を提供する。
package repository

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sealed-mail/internal/domain"
)

// Migrations は鍵ストアのスキーマ定義。
//
//go:embed migrations/*.sql
var Migrations embed.FS

// KeyRecordModel はgorm用のモデル定義。
type KeyRecordModel struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(128);not null;uniqueIndex:uk_name_type"`
	KeyType     string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_name_type;index:idx_key_type"`
	WrappedData []byte    `gorm:"type:blob;not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName はテーブル名を返す。
func (KeyRecordModel) TableName() string {
	return "key_records"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (m *KeyRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *KeyRecordModel) toDomain() *domain.KeyRecord {
	return &domain.KeyRecord{
		ID:          m.ID,
		Name:        m.Name,
		Type:        domain.KeyType(m.KeyType),
		WrappedData: m.WrappedData,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// KeyRotationModel はkey_rotationsテーブルのモデル。
type KeyRotationModel struct {
	ID            string    `gorm:"type:char(36);primaryKey"`
	KeyID         string    `gorm:"type:varchar(128);not null"`
	PreviousKeyID *string   `gorm:"type:varchar(128)"`
	RotatedAt     time.Time `gorm:"not null"`
}

// TableName はテーブル名を返す。
func (KeyRotationModel) TableName() string {
	return "key_rotations"
}

// KeyRepository は鍵素材の永続化を提供する。
type KeyRepository struct {
	db *gorm.DB
}

// NewKeyRepository は新しいKeyRepositoryを生成する。
func NewKeyRepository(db *gorm.DB) *KeyRepository {
	return &KeyRepository{db: db}
}

// Create は新しい鍵レコードを保存する。同じ名前・種別が存在する場合は ErrKeyAlreadyExists を返す。
func (r *KeyRepository) Create(ctx context.Context, rec *domain.KeyRecord) error {
	model := &KeyRecordModel{
		ID:          rec.ID,
		Name:        rec.Name,
		KeyType:     string(rec.Type),
		WrappedData: rec.WrappedData,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrKeyAlreadyExists
		}
		slog.ErrorContext(ctx, "failed to create key record",
			"operation", "create",
			"name", rec.Name,
			"key_type", rec.Type,
			"error", err,
		)
		return err
	}
	rec.ID = model.ID
	rec.CreatedAt = model.CreatedAt
	rec.UpdatedAt = model.UpdatedAt
	return nil
}

// Upsert は鍵レコードを保存し、既存の場合はラップ済みデータを置き換える。
func (r *KeyRepository) Upsert(ctx context.Context, rec *domain.KeyRecord) error {
	model := &KeyRecordModel{
		ID:          rec.ID,
		Name:        rec.Name,
		KeyType:     string(rec.Type),
		WrappedData: rec.WrappedData,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "key_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"wrapped_data", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to upsert key record",
			"operation", "upsert",
			"name", rec.Name,
			"key_type", rec.Type,
			"error", err,
		)
		return err
	}
	return nil
}

// FindByNameAndType は指定された名前・種別の鍵レコードを取得する。存在しない場合はnilを返す。
func (r *KeyRepository) FindByNameAndType(ctx context.Context, name string, keyType domain.KeyType) (*domain.KeyRecord, error) {
	var model KeyRecordModel
	err := r.db.WithContext(ctx).
		Where("name = ? AND key_type = ?", name, string(keyType)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find key record",
			"operation", "find_by_name_and_type",
			"name", name,
			"key_type", keyType,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// ExistsByNameAndType は指定された名前・種別の鍵が存在するか確認する。
func (r *KeyRepository) ExistsByNameAndType(ctx context.Context, name string, keyType domain.KeyType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&KeyRecordModel{}).
		Where("name = ? AND key_type = ?", name, string(keyType)).
		Count(&count).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to count key records",
			"operation", "exists_by_name_and_type",
			"name", name,
			"key_type", keyType,
			"error", err,
		)
		return false, err
	}
	return count > 0, nil
}

// FindAll は全鍵レコードを作成順に取得する。
func (r *KeyRepository) FindAll(ctx context.Context) ([]*domain.KeyRecord, error) {
	var models []KeyRecordModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find all key records",
			"operation", "find_all",
			"error", err,
		)
		return nil, err
	}

	records := make([]*domain.KeyRecord, len(models))
	for i := range models {
		records[i] = models[i].toDomain()
	}
	return records, nil
}

// DeleteAll は全鍵レコードとローテーション履歴を削除する。
func (r *KeyRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&KeyRecordModel{}).Error; err != nil {
			slog.ErrorContext(ctx, "failed to delete key records",
				"operation", "delete_all",
				"error", err,
			)
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&KeyRotationModel{}).Error; err != nil {
			slog.ErrorContext(ctx, "failed to delete key rotations",
				"operation", "delete_all",
				"error", err,
			)
			return err
		}
		return nil
	})
}

// RecordRotation は共通鍵の切り替えを記録する。
func (r *KeyRepository) RecordRotation(ctx context.Context, rotation *domain.KeyRotation) error {
	model := &KeyRotationModel{
		ID:            rotation.ID,
		KeyID:         rotation.KeyID,
		PreviousKeyID: rotation.PreviousKeyID,
		RotatedAt:     rotation.RotatedAt,
	}
	if model.ID == "" {
		model.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to record key rotation",
			"operation", "record_rotation",
			"key_id", rotation.KeyID,
			"error", err,
		)
		return err
	}
	rotation.ID = model.ID
	return nil
}

// FindAllRotations はローテーション履歴を古い順に取得する。
func (r *KeyRepository) FindAllRotations(ctx context.Context) ([]*domain.KeyRotation, error) {
	var models []KeyRotationModel
	if err := r.db.WithContext(ctx).Order("rotated_at ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to find key rotations",
			"operation", "find_all_rotations",
			"error", err,
		)
		return nil, err
	}

	rotations := make([]*domain.KeyRotation, len(models))
	for i, m := range models {
		rotations[i] = &domain.KeyRotation{
			ID:            m.ID,
			KeyID:         m.KeyID,
			PreviousKeyID: m.PreviousKeyID,
			RotatedAt:     m.RotatedAt,
		}
	}
	return rotations, nil
}
