package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/shared"
)

// MinIOService stores badge artwork. Uploading new artwork for a badge also
// repoints the catalog entry's image URL.
type MinIOService struct {
	appContext.DefaultService
	sqlSvc *PostgresService

	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
	baseURL    string
}

const MINIO_SVC = "minio_svc"

const maxArtworkSize = 5 * 1024 * 1024

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "geoid-badges"
	}

	svc.baseURL = os.Getenv("BASE_URL")
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}
	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("MinIO service started with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MinIOService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		if err := svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		log.Printf("Created MinIO bucket: %s", svc.bucketName)
	}
	return nil
}

// UploadBadgeArtwork stores the image and updates the badge's image URL.
func (svc *MinIOService) UploadBadgeArtwork(badgeID uint64, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	if !isValidImageFile(file.Filename) {
		return nil, shared.NewBadRequestError(nil, "Invalid image format. Supported: JPG, PNG, WEBP, SVG")
	}
	if file.Size > maxArtworkSize {
		return nil, shared.NewBadRequestError(nil, "Image too large. Maximum size: 5MB")
	}

	badge, err := svc.sqlSvc.GetBadge(badgeID)
	if err != nil {
		return nil, shared.NewAppError(http.StatusNotFound, shared.ErrCodeBadgeNotFound, err, "Badge not found")
	}

	ext := filepath.Ext(file.Filename)
	objectName := fmt.Sprintf("badges/%d_%d%s", badgeID, time.Now().Unix(), ext)

	src, err := file.Open()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to open uploaded file")
	}
	defer src.Close()

	uploadCtx := context.Background()
	info, err := svc.client.PutObject(uploadCtx, svc.bucketName, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to upload artwork to storage")
	}

	fileURL := fmt.Sprintf("%s/%s/%s", svc.baseURL, svc.bucketName, objectName)
	if presigned, err := svc.client.PresignedGetObject(uploadCtx, svc.bucketName, objectName, 7*24*time.Hour, nil); err == nil {
		fileURL = presigned.String()
	} else {
		log.WithError(err).Warn("Failed to generate presigned URL, falling back to public URL")
	}

	badge.ImageURL = fileURL
	if err := svc.sqlSvc.UpdateBadge(badge); err != nil {
		if delErr := svc.client.RemoveObject(uploadCtx, svc.bucketName, objectName, minio.RemoveObjectOptions{}); delErr != nil {
			log.WithError(delErr).WithField("object", objectName).Warn("Failed to clean up orphaned artwork")
		}
		return nil, shared.NewInternalError(err, "Failed to update badge artwork")
	}

	log.WithFields(log.Fields{
		"badge_id": badgeID,
		"object":   info.Key,
		"size":     info.Size,
	}).Info("Badge artwork uploaded")

	return &dto.MediaUploadResponse{
		URL:      fileURL,
		ObjectID: objectName,
		Size:     file.Size,
	}, nil
}

func isValidImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExt := range []string{".jpg", ".jpeg", ".png", ".webp", ".svg"} {
		if ext == validExt {
			return true
		}
	}
	return false
}
