// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package s3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/urfave/cli/v3"

	awsx "github.com/hopeline/sitectl/internal/aws"
	"github.com/hopeline/sitectl/internal/content"
)

var ErrBucketNotSet = errors.New("bucket is not set")

// ObjectGetter is the slice of the S3 API the backend needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// BackendS3 reads a published, read-only export of the site content from a
// bucket laid out as:
//
//	<prefix>/articles.json
//	<prefix>/stats/<id>.json
//	<prefix>/comments/<id>.json
type BackendS3 struct {
	Bucket   string
	Prefix   string
	Region   string
	Profile  string
	Endpoint string
	Client   ObjectGetter
}

// BackendOption configures a BackendS3.
type BackendOption func(*BackendS3) error

// FromCommand reads --bucket, --prefix, --region, --profile and --endpoint.
func FromCommand(cmd *cli.Command) BackendOption {
	return func(be *BackendS3) error {
		if cmd == nil {
			return nil
		}
		be.Bucket = cmd.String("bucket")
		be.Prefix = cmd.String("prefix")
		be.Region = cmd.String("region")
		be.Profile = cmd.String("profile")
		be.Endpoint = cmd.String("endpoint")
		return nil
	}
}

func WithBucket(bucket, prefix string) BackendOption {
	return func(be *BackendS3) error {
		be.Bucket = bucket
		be.Prefix = prefix
		return nil
	}
}

// WithClient skips AWS config loading and uses c as is.
func WithClient(c ObjectGetter) BackendOption {
	return func(be *BackendS3) error {
		be.Client = c
		return nil
	}
}

func NewBackendS3(ctx context.Context, opts ...BackendOption) (*BackendS3, error) {
	be := &BackendS3{}
	for _, opt := range opts {
		if err := opt(be); err != nil {
			return nil, err
		}
	}

	if be.Bucket == "" {
		return nil, fmt.Errorf("set --bucket: %w", ErrBucketNotSet)
	}

	if be.Client == nil {
		var awsOpts []awsx.Option
		if be.Profile != "" {
			awsOpts = append(awsOpts, awsx.WithProfile(be.Profile))
		}
		if be.Region != "" {
			awsOpts = append(awsOpts, awsx.WithRegion(be.Region))
		}

		cfg, err := awsx.LoadAWSConfig(ctx, awsOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		be.Client = awsx.NewS3(cfg, awsx.WithS3Endpoint(be.Endpoint))
	}

	log.Debugf("s3 backend: s3://%s/%s", be.Bucket, be.Prefix)
	return be, nil
}

func (be *BackendS3) key(parts ...string) string {
	return path.Join(append([]string{be.Prefix}, parts...)...)
}

// articleKey builds the object key of a per-article document under dir. Ids
// are single path segments; anything that would escape dir is not found.
func (be *BackendS3) articleKey(dir, articleID string) (string, error) {
	if articleID == "" || articleID == "." || strings.ContainsAny(articleID, `/\`) || strings.Contains(articleID, "..") {
		return "", fmt.Errorf("article id %q: %w", articleID, content.ErrNotFound)
	}
	return be.key(dir, articleID+".json"), nil
}

// getJSON decodes the object at key into v. It reports found=false, with no
// error, when the key does not exist.
func (be *BackendS3) getJSON(ctx context.Context, key string, v any) (bool, error) {
	out, err := be.Client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(be.Bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		if isMissing(err) {
			log.Debugf("s3 object missing: %s", key)
			return false, nil
		}
		return false, fmt.Errorf("failed to get S3 object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func isMissing(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

// Articles fails with content.ErrNotFound when the export has no article list.
func (be *BackendS3) Articles(ctx context.Context) ([]*content.Article, error) {
	var articles []*content.Article
	found, err := be.getJSON(ctx, be.key("articles.json"), &articles)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("s3://%s/%s: %w", be.Bucket, be.key("articles.json"), content.ErrNotFound)
	}
	return articles, nil
}

func (be *BackendS3) ArticleStats(ctx context.Context, articleID string) (*content.ArticleStats, error) {
	key, err := be.articleKey("stats", articleID)
	if err != nil {
		return nil, err
	}
	stats := &content.ArticleStats{}
	if _, err := be.getJSON(ctx, key, stats); err != nil {
		return nil, err
	}
	stats.ArticleID = articleID
	return stats, nil
}

func (be *BackendS3) Comments(ctx context.Context, articleID string) ([]*content.Comment, error) {
	key, err := be.articleKey("comments", articleID)
	if err != nil {
		return nil, err
	}
	comments := []*content.Comment{}
	if _, err := be.getJSON(ctx, key, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (be *BackendS3) PostComment(context.Context, string, content.NewComment) (*content.Comment, error) {
	return nil, fmt.Errorf("post comment to s3://%s: %w", be.Bucket, content.ErrReadOnly)
}

func (be *BackendS3) String() string {
	return fmt.Sprintf("backend-s3 s3://%s/%s", be.Bucket, be.Prefix)
}

func (be *BackendS3) Type() string {
	return "s3"
}
