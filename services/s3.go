package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"wewearapi/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type AWSServiceProvider interface {
	InitPresignClient(ctx context.Context) error
	PresignLink(ctx context.Context, bucketName string, objectKey string) (string, error)
	UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error)
	GetPresignedR2FileReadURL(ctx context.Context, bucketName, objectKey string) (string, error)
}

// AWSService presigns against Cloudflare R2 through the S3 API.
type AWSService struct {
	S3PresignClient *s3.PresignClient
}

func (awsService *AWSService) InitPresignClient(ctx context.Context) error {
	accountID := config.GetEnv("R2_ACCOUNT_ID", "")
	accessKeyID := config.GetEnv("R2_ACCESS_KEY_ID", "")
	accessKeySecret := config.GetEnv("R2_ACCESS_KEY_SECRET", "")

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
	})
	awsService.S3PresignClient = s3.NewPresignClient(client)
	return nil
}

func (awsService *AWSService) PresignLink(ctx context.Context, bucketName string, objectKey string) (string, error) {
	request, err := awsService.S3PresignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put: %w", err)
	}
	return request.URL, nil
}

func (awsService *AWSService) GetPresignedR2FileReadURL(ctx context.Context, bucketName, objectKey string) (string, error) {
	request, err := awsService.S3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(presignedURLExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	return request.URL, nil
}

var allowedImageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
}

func (awsService *AWSService) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	mimeType := http.DetectContentType(fileContent)
	if !allowedImageMimeTypes[mimeType] {
		return 0, fmt.Errorf("unsupported file type: %s", mimeType)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(fileContent))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("uploading file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}
	return resp.StatusCode, nil
}
