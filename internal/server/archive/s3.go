// Package archive publishes finished proof documents to S3-compatible
// storage, so verifiers can fetch them even if the API goes away.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/fairdraw/internal/fair"
	sc "github.com/dmitrijs2005/fairdraw/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// S3Archive writes proof documents to a bucket, one object per giveaway.
type S3Archive struct {
	config *sc.Config
}

func NewS3Archive(config *sc.Config) *S3Archive {
	return &S3Archive{config: config}
}

// StorageKey is the bucket key for a giveaway's proof document.
func StorageKey(publicID uuid.UUID) string {
	return fmt.Sprintf("proofs/%v.json", publicID)
}

func (a *S3Archive) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(a.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,     // MINIO_ROOT_USER
			a.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Put uploads the proof document as pretty-printed JSON. The object is
// rewritten on every call, so re-archiving after a late verification run is
// safe.
func (a *S3Archive) Put(ctx context.Context, publicID uuid.UUID, proof *fair.Proof) error {
	client, err := a.getClient()
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(proof, "", "  ")
	if err != nil {
		return err
	}

	bucket := a.config.S3Bucket
	key := StorageKey(publicID)
	contentType := "application/json"

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("error uploading proof: %w", err)
	}

	return nil
}
