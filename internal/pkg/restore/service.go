package restore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/revivapix/RevivaPix/app/models"
	"github.com/revivapix/RevivaPix/app/repository"
	"github.com/revivapix/RevivaPix/internal/pkg/imageprocessor"
)

// CreditsPerRestoration is the credit price of one restoration job.
const CreditsPerRestoration = 1

var (
	// ErrJobNotFound means the job does not exist or belongs to another user.
	ErrJobNotFound = errors.New("restoration job not found")
	// ErrResultNotReady means the job has no stored result to serve.
	ErrResultNotReady = errors.New("restoration result not ready")
)

// Ledger is the slice of the billing service the restore flow needs.
type Ledger interface {
	DebitCredits(ctx context.Context, userID uint, amount int64) error
	CreditBack(ctx context.Context, userID uint, amount int64) error
}

// Restorer produces a restored image from the original bytes.
type Restorer interface {
	Restore(ctx context.Context, filename string, data []byte) ([]byte, error)
}

// ObjectStore persists restoration artifacts and serves their URLs.
type ObjectStore interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) error
	Download(ctx context.Context, objectKey string) ([]byte, error)
	Delete(ctx context.Context, objectKey string) error
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	ObjectURL(objectKey string) string
}

// KeyBuilder maps a job UUID to the object keys of its artifacts.
type KeyBuilder interface {
	OriginalKey(imageUUID, fileExtension string) string
	ProcessedKey(imageUUID string) string
	PreviewKey(imageUUID string) string
}

// Service runs one restoration end to end: debit a credit, store the
// original, call the restoration model, store result and preview, record the
// job. A failure after the debit credits the user back.
type Service struct {
	ledger   Ledger
	restorer Restorer
	store    ObjectStore
	keys     KeyBuilder
	images   repository.ImageRepository
}

// NewService creates a restore service from injected collaborators.
func NewService(ledger Ledger, restorer Restorer, store ObjectStore, keys KeyBuilder, images repository.ImageRepository) *Service {
	return &Service{
		ledger:   ledger,
		restorer: restorer,
		store:    store,
		keys:     keys,
		images:   images,
	}
}

// Result is the client-facing view of a finished restoration.
type Result struct {
	UUID         string `json:"uuid"`
	OriginalURL  string `json:"original_url"`
	ProcessedURL string `json:"processed_url"`
	PreviewURL   string `json:"preview_url"`
}

// Restore processes one uploaded image for the user.
func (s *Service) Restore(ctx context.Context, userID uint, filename string, data []byte, contentType string) (*Result, error) {
	if err := s.ledger.DebitCredits(ctx, userID, CreditsPerRestoration); err != nil {
		return nil, err
	}

	result, err := s.process(ctx, userID, filename, data, contentType)
	if err != nil {
		if refundErr := s.ledger.CreditBack(ctx, userID, CreditsPerRestoration); refundErr != nil {
			log.Errorf("[Restore] failed to credit back user %d after failure: %v", userID, refundErr)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) process(ctx context.Context, userID uint, filename string, data []byte, contentType string) (*Result, error) {
	jobID := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filename))

	originalKey := s.keys.OriginalKey(jobID, ext)
	if err := s.store.Upload(ctx, originalKey, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store original: %w", err)
	}

	record := &models.ProcessedImage{
		UUID:        jobID,
		UserID:      userID,
		FileName:    filepath.Base(filename),
		OriginalKey: originalKey,
		Status:      models.ProcessedImageStatusPending,
	}
	if err := s.images.Create(record); err != nil {
		return nil, fmt.Errorf("failed to record restoration job: %w", err)
	}

	restored, err := s.restorer.Restore(ctx, filename, data)
	if err != nil {
		s.markFailed(record.ID)
		return nil, fmt.Errorf("restoration failed: %w", err)
	}

	preview, err := imageprocessor.GeneratePreview(restored)
	if err != nil {
		s.markFailed(record.ID)
		return nil, fmt.Errorf("preview generation failed: %w", err)
	}

	processedKey := s.keys.ProcessedKey(jobID)
	if err := s.store.Upload(ctx, processedKey, restored, "image/jpeg"); err != nil {
		s.markFailed(record.ID)
		return nil, fmt.Errorf("failed to store result: %w", err)
	}
	previewKey := s.keys.PreviewKey(jobID)
	if err := s.store.Upload(ctx, previewKey, preview, "image/jpeg"); err != nil {
		s.markFailed(record.ID)
		return nil, fmt.Errorf("failed to store preview: %w", err)
	}

	record.ProcessedKey = processedKey
	record.PreviewKey = previewKey
	record.Status = models.ProcessedImageStatusCompleted
	if err := s.images.Update(record); err != nil {
		return nil, fmt.Errorf("failed to finalize restoration job: %w", err)
	}

	return &Result{
		UUID:         jobID,
		OriginalURL:  s.store.ObjectURL(originalKey),
		ProcessedURL: s.store.ObjectURL(processedKey),
		PreviewURL:   s.store.ObjectURL(previewKey),
	}, nil
}

func (s *Service) markFailed(recordID uint) {
	if err := s.images.UpdateStatus(recordID, models.ProcessedImageStatusFailed); err != nil {
		log.Errorf("[Restore] failed to mark job %d failed: %v", recordID, err)
	}
}

// History returns the user's restoration jobs, newest first.
func (s *Service) History(userID uint, offset, limit int) ([]models.ProcessedImage, error) {
	return s.images.GetByUserID(userID, offset, limit)
}

// ownedJob loads a job by uuid and enforces ownership. Foreign jobs report
// not-found so the route does not leak their existence.
func (s *Service) ownedJob(userID uint, imageUUID string) (*models.ProcessedImage, error) {
	record, err := s.images.GetByUUID(imageUUID)
	if err != nil || record.UserID != userID {
		return nil, ErrJobNotFound
	}
	return record, nil
}

// Download returns the restored result of one of the user's jobs.
func (s *Service) Download(ctx context.Context, userID uint, imageUUID string) ([]byte, string, error) {
	record, err := s.ownedJob(userID, imageUUID)
	if err != nil {
		return nil, "", err
	}
	if record.Status != models.ProcessedImageStatusCompleted || record.ProcessedKey == "" {
		return nil, "", ErrResultNotReady
	}

	exists, err := s.store.ObjectExists(ctx, record.ProcessedKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check stored result: %w", err)
	}
	if !exists {
		return nil, "", ErrResultNotReady
	}

	data, err := s.store.Download(ctx, record.ProcessedKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch stored result: %w", err)
	}
	return data, "image/jpeg", nil
}

// Delete removes one of the user's jobs together with its stored artifacts.
// A missing object is not fatal; the record is the source of truth.
func (s *Service) Delete(ctx context.Context, userID uint, imageUUID string) error {
	record, err := s.ownedJob(userID, imageUUID)
	if err != nil {
		return err
	}

	for _, key := range []string{record.OriginalKey, record.ProcessedKey, record.PreviewKey} {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			log.Warnf("[Restore] failed to delete object %s: %v", key, err)
		}
	}
	return s.images.Delete(record.ID)
}
