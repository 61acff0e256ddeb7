package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"strings"
	"time"

	"tecshop_backend/internal/database"

	"github.com/minio/minio-go/v7"
)

// UploadFile téléverse un fichier dans le bucket et retourne son chemin objet
func UploadFile(objectName string, file multipart.File, size int64, contentType string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	bucket := os.Getenv("MINIO_BUCKET")
	_, err := database.MinIO.PutObject(context.Background(), bucket, objectName, file, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}

	return objectName, nil
}

// GenerateSignedURL génère une URL signée avec expiration pour un objet du bucket
func GenerateSignedURL(ctx context.Context, objectPath string, duration time.Duration) (string, error) {
	reqParams := make(url.Values)

	bucket := os.Getenv("MINIO_BUCKET")

	// Nettoie une éventuelle URL complète pour ne garder que le chemin relatif au bucket
	prefix := fmt.Sprintf("http://%s/%s/", os.Getenv("MINIO_ENDPOINT"), bucket)
	key := strings.TrimPrefix(objectPath, prefix)

	presignedURL, err := database.MinIO.PresignedGetObject(
		ctx,
		bucket,
		key,
		duration,
		reqParams,
	)
	if err != nil {
		return "", err
	}

	return presignedURL.String(), nil
}
