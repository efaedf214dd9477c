// Package docstore
package docstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

const integrityMetaKey = "Integrity-Sha256"

type S3Config struct {
	Bucket string
	Region string

	Logger *zap.Logger
}

type s3Store struct {
	bucket string
	svc    *s3.S3
	logger *zap.Logger
}

func NewS3(cfg S3Config) (Store, error) {
	keyID := os.Getenv("AWS_ACCESS_KEY_ID")
	keyAccess := os.Getenv("AWS_SECRET_ACCESS_KEY")
	sess, err := session.NewSession(
		&aws.Config{
			Region: aws.String(cfg.Region),
			Credentials: credentials.NewStaticCredentials(
				keyID,
				keyAccess,
				"",
			),
		})
	if err != nil {
		return nil, err
	}
	return &s3Store{
		bucket: cfg.Bucket,
		svc:    s3.New(sess),
		logger: cfg.Logger,
	}, nil
}

func (s *s3Store) Put(ctx context.Context, data []byte, name string, tags map[string]string) (*PutResult, error) {
	digest := sha256.Sum256(data)
	integrity := hex.EncodeToString(digest[:])
	key := fmt.Sprintf("%s/%d-%s", integrity[:8], time.Now().Unix(), name)

	metadata := map[string]*string{
		integrityMetaKey: aws.String(integrity),
	}
	for k, v := range tags {
		metadata[k] = aws.String(v)
	}
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}
	return &PutResult{ContentID: key, IntegrityHash: integrity}, nil
}

func (s *s3Store) Get(ctx context.Context, contentID string) ([]byte, bool, error) {
	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(contentID),
	})
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err := out.Body.Close(); err != nil {
			s.logger.Warn("cannot close object body", zap.Error(err))
		}
	}()
	data, err := ioutil.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	digest := sha256.Sum256(data)
	verified := false
	if stored, ok := out.Metadata[integrityMetaKey]; ok && stored != nil {
		verified = *stored == hex.EncodeToString(digest[:])
	}
	return data, verified, nil
}
