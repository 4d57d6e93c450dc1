package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"SignBridge/internal/models"
	"SignBridge/pkg/errors"
	"SignBridge/pkg/logger"
	stores "SignBridge/pkg/storage"
)

// UploadService moves one recording into object storage and records its
// metadata row. The two writes are not atomic; a failed metadata insert
// triggers a best-effort delete of the fresh blob.
type UploadService struct {
	db    *gorm.DB
	store stores.Store
}

func NewUploadService(db *gorm.DB, store stores.Store) *UploadService {
	return &UploadService{db: db, store: store}
}

// UploadAudioFile stores data under "{userId}/{timestamp}_{fileName}" and
// inserts the audio_files row. An empty userID fails before any storage
// traffic.
func (s *UploadService) UploadAudioFile(ctx context.Context, userID, fileName, mimeType string, data []byte) (*models.AudioFile, error) {
	if userID == "" {
		return nil, errors.WithCode(errors.CodeUnauthenticated, "Utilisateur non connecté")
	}
	if mimeType == "" {
		mimeType = "audio/m4a"
	}

	key := fmt.Sprintf("%s/%d_%s", userID, time.Now().UnixMilli(), sanitizeFileName(fileName))
	if err := s.store.Write(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return nil, errors.Wrap(err, "envoi du fichier audio impossible")
	}

	artifact := &models.AudioFile{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		FilePath:   s.store.PublicURL(key),
		FileSize:   int64(len(data)),
		MimeType:   mimeType,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		// compensate: a blob without a metadata row is unreachable garbage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.Error("orphaned blob cleanup failed after metadata insert error",
				zap.String("key", key), zap.Error(delErr))
			return nil, errors.WrapCode(errors.CodePartialRollback, err,
				"enregistrement des métadonnées échoué et fichier orphelin non supprimé")
		}
		return nil, errors.Wrap(err, "enregistrement des métadonnées impossible")
	}

	return artifact, nil
}

// ListUserAudio returns the caller's artifacts, newest first.
func (s *UploadService) ListUserAudio(ctx context.Context, userID string) ([]models.AudioFile, error) {
	var files []models.AudioFile
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, errors.Wrap(err, "lecture des fichiers audio impossible")
	}
	return files, nil
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "recording.m4a"
	}
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, " ", "_")
}
