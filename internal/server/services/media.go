package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/dmitrijs2005/communityfeed/internal/server/config"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignPutObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignPutObject(ctx, in, optFns...)
	}
)

const presignExpiry = 15 * time.Minute

// imageTypes lists the accepted media types and the key suffix used for each.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaService stores user-uploaded images in S3-compatible object storage
// and returns the URLs posts and profiles refer to.
type MediaService struct {
	config *sc.Config
	now    func() time.Time
}

func NewMediaService(config *sc.Config) *MediaService {
	return &MediaService{config: config, now: time.Now}
}

// StorageKey lays keys out per user and day.
func StorageKey(userID, ext string, t time.Time) string {
	return fmt.Sprintf("uploads/%s/%04d/%02d/%02d/%s%s", userID, t.Year(), t.Month(), t.Day(), uuid.NewString(), ext)
}

// PublicURL is where clients read the object stored under key.
func (s *MediaService) PublicURL(key string) string {
	base := s.config.S3PublicBaseURL
	if base == "" {
		base = strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket
	}
	return strings.TrimRight(base, "/") + "/" + key
}

func imageExt(contentType string) (string, string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", "", validationError("content type is required")
	}
	ext, ok := imageTypes[mediaType]
	if !ok {
		return "", "", validationError(fmt.Sprintf("unsupported content type %q", mediaType))
	}
	return mediaType, ext, nil
}

func (s *MediaService) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload stores data as a new object owned by userID and returns its public
// URL.
func (s *MediaService) Upload(ctx context.Context, userID, contentType string, data []byte) (url string, err error) {
	ctx, span := tracer.Start(ctx, "MediaService.Upload")
	defer func() { endSpan(span, err) }()

	mediaType, ext, err := imageExt(contentType)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", validationError("upload is empty")
	}
	if s.config.MaxUploadBytes > 0 && int64(len(data)) > s.config.MaxUploadBytes {
		return "", validationError(fmt.Sprintf("upload exceeds %d bytes", s.config.MaxUploadBytes))
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", fmt.Errorf("error configuring storage: %w", err)
	}

	key := StorageKey(userID, ext, s.now())
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mediaType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("error storing upload: %w", err)
	}

	return s.PublicURL(key), nil
}

// PresignUpload reserves a key for userID and returns a short-lived URL the
// client can PUT the image to directly.
func (s *MediaService) PresignUpload(ctx context.Context, userID, contentType string) (*models.UploadTicket, error) {
	mediaType, ext, err := imageExt(contentType)
	if err != nil {
		return nil, err
	}

	client, err := s.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error configuring storage: %w", err)
	}

	key := StorageKey(userID, ext, s.now())
	req, err := presignPutObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mediaType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	return &models.UploadTicket{UploadURL: req.URL, URL: s.PublicURL(key), Key: key}, nil
}
