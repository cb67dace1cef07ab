package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// StorageConfig holds connection settings for the S3-compatible object store
// that keeps listing photos.
type StorageConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

type Storage struct {
	cfg    StorageConfig
	client *s3.S3
}

func NewStorage(cfg StorageConfig) *Storage {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(cfg.Region),
		Endpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey, cfg.SecretKey, "",
		),
	}))
	return &Storage{cfg: cfg, client: s3.New(sess)}
}

// UploadFile puts the file under folder/fileName and returns its public URL.
func (s *Storage) UploadFile(file []byte, fileName, folder, contentType string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	host := strings.TrimPrefix(s.cfg.Endpoint, "https://")
	return fmt.Sprintf("https://%s.%s/%s", s.cfg.Bucket, host, filePath), nil
}
