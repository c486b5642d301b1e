package service

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUploadConfirmationFailed = errors.New("failed to confirm upload")
	ErrUploadURLError           = errors.New("failed to generate upload URL")
	ErrDownloadURLError         = errors.New("failed to generate download URL")
)

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key the client reports back on confirm
}

// UploadConfirmation describes a file the client finished uploading.
type UploadConfirmation struct {
	ObjectKey   string
	FileName    string
	ContentType string
	Size        int64
}

// MediaService manages form-check videos and photos attached to a workout exercise.
type MediaService interface {
	RequestUploadURL(ctx context.Context, userID, workoutID, entryID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmUpload(ctx context.Context, userID, workoutID, entryID primitive.ObjectID, c UploadConfirmation) (*domain.Upload, error)
	GetDownloadURL(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (string, error)
}

// mediaService implements the MediaService interface.
type mediaService struct {
	workoutRepo repository.WorkoutRepository
	uploadRepo  repository.UploadRepository
	fileStorage storage.FileStorage
}

// NewMediaService creates a new instance of mediaService.
func NewMediaService(
	workoutRepo repository.WorkoutRepository,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
) MediaService {
	return &mediaService{
		workoutRepo: workoutRepo,
		uploadRepo:  uploadRepo,
		fileStorage: fileStorage,
	}
}

func mediaKeyPrefix(userID, workoutID, entryID primitive.ObjectID) string {
	return path.Join("media", userID.Hex(), workoutID.Hex(), entryID.Hex()) + "/"
}

func validMediaType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "image/")
}

// checkEntry verifies that the entry belongs to a workout the user owns.
func (s *mediaService) checkEntry(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) error {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, userID)
	if err != nil {
		return mapRepoError(err, ErrWorkoutNotFound)
	}
	if workout.Exercise(entryID) == nil {
		return ErrTrackerNotFound
	}
	return nil
}

// RequestUploadURL generates a pre-signed URL the client uploads the file to.
func (s *mediaService) RequestUploadURL(ctx context.Context, userID, workoutID, entryID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	// 1. Validate Inputs
	if !validMediaType(contentType) {
		return nil, validationError("content type must be a video or image type")
	}

	// 2. Authorize
	if err := s.checkEntry(ctx, userID, workoutID, entryID); err != nil {
		return nil, err
	}

	// 3. Generate a unique object key
	fileExtension := "bin"
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		fileExtension = parts[1]
	}
	objectKey := mediaKeyPrefix(userID, workoutID, entryID) + fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension)

	// 4. Generate the pre-signed URL
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		logrus.WithError(err).WithField("object_key", objectKey).Error("failed to presign upload")
		return nil, ErrUploadURLError
	}

	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmUpload records the metadata of a finished upload. The object key
// must be one issued for this entry.
func (s *mediaService) ConfirmUpload(ctx context.Context, userID, workoutID, entryID primitive.ObjectID, c UploadConfirmation) (*domain.Upload, error) {
	if c.ObjectKey == "" || c.FileName == "" {
		return nil, validationError("object key and file name are required")
	}
	if !strings.HasPrefix(c.ObjectKey, mediaKeyPrefix(userID, workoutID, entryID)) {
		return nil, validationError("object key does not belong to this workout exercise")
	}
	if !validMediaType(c.ContentType) {
		return nil, validationError("content type must be a video or image type")
	}
	if c.Size < 0 {
		return nil, validationError("size must not be negative")
	}

	if err := s.checkEntry(ctx, userID, workoutID, entryID); err != nil {
		return nil, err
	}

	upload := &domain.Upload{
		WorkoutID:   workoutID,
		EntryID:     entryID,
		UserID:      userID,
		S3ObjectKey: c.ObjectKey,
		FileName:    c.FileName,
		ContentType: c.ContentType,
		Size:        c.Size,
	}
	uploadID, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		logrus.WithError(err).WithField("object_key", c.ObjectKey).Error("failed to save upload metadata")
		return nil, ErrUploadConfirmationFailed
	}
	upload.ID = uploadID
	return upload, nil
}

// GetDownloadURL returns a temporary URL to the latest upload of an entry.
func (s *mediaService) GetDownloadURL(ctx context.Context, userID, workoutID, entryID primitive.ObjectID) (string, error) {
	if err := s.checkEntry(ctx, userID, workoutID, entryID); err != nil {
		return "", err
	}

	upload, err := s.uploadRepo.GetLatestByEntryID(ctx, entryID)
	if err != nil {
		return "", mapRepoError(err, ErrUploadNotFound)
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, upload.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		logrus.WithError(err).WithField("object_key", upload.S3ObjectKey).Error("failed to presign download")
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}
