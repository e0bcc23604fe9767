// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopeline/sitectl/internal/content"
)

// fakeBucket serves objects from a map and NoSuchKey for anything else.
type fakeBucket struct {
	objects map[string]string
	err     error
	keys    []string
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	key := awsv2.ToString(in.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: awsv2.String("missing")}
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func newTestBackend(t *testing.T, objects map[string]string) (*BackendS3, *fakeBucket) {
	t.Helper()
	fb := &fakeBucket{objects: objects}
	be, err := NewBackendS3(context.Background(), WithBucket("site", "prod"), WithClient(fb))
	require.NoError(t, err)
	return be, fb
}

func TestNewBackendS3RequiresBucket(t *testing.T) {
	_, err := NewBackendS3(context.Background(), WithClient(&fakeBucket{}))
	assert.ErrorIs(t, err, ErrBucketNotSet)
}

func TestArticles(t *testing.T) {
	be, fb := newTestBackend(t, map[string]string{
		"prod/articles.json": `[{"id":"a1","title":"Hello"}]`,
	})

	got, err := be.Articles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hello", got[0].Title)
	assert.Equal(t, []string{"prod/articles.json"}, fb.keys)
}

func TestArticlesMissing(t *testing.T) {
	be, _ := newTestBackend(t, nil)
	_, err := be.Articles(context.Background())
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestArticleStats(t *testing.T) {
	be, _ := newTestBackend(t, map[string]string{
		"prod/stats/a1.json": `{"views":5,"likes":1}`,
	})

	got, err := be.ArticleStats(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, content.ArticleStats{ArticleID: "a1", Views: 5, Likes: 1}, *got)

	got, err = be.ArticleStats(context.Background(), "a2")
	require.NoError(t, err, "missing stats are zero, not an error")
	assert.Equal(t, content.ArticleStats{ArticleID: "a2"}, *got)
}

func TestComments(t *testing.T) {
	be, _ := newTestBackend(t, map[string]string{
		"prod/comments/a1.json": `[{"id":"c1","author_name":"ann","content":"hi"}]`,
	})

	got, err := be.Comments(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ann", got[0].Author)

	got, err = be.Comments(context.Background(), "a2")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestArticleIDMustBeOneSegment(t *testing.T) {
	be, fb := newTestBackend(t, map[string]string{
		"x.json":           `{"views":99}`,
		"prod/x.json":      `[{"id":"leak"}]`,
		"prod/stats/.json": `{"views":1}`,
	})

	for _, id := range []string{"../../x", "../x", "a/b", `a\b`, "..", ".", ""} {
		t.Run(id, func(t *testing.T) {
			_, err := be.ArticleStats(context.Background(), id)
			assert.ErrorIs(t, err, content.ErrNotFound)

			_, err = be.Comments(context.Background(), id)
			assert.ErrorIs(t, err, content.ErrNotFound)
		})
	}
	assert.Empty(t, fb.keys, "no object is requested for a bad id")
}

func TestBadJSON(t *testing.T) {
	be, _ := newTestBackend(t, map[string]string{"prod/articles.json": `{nope`})
	_, err := be.Articles(context.Background())
	assert.ErrorContains(t, err, "failed to decode")
}

func TestOtherErrorsPropagate(t *testing.T) {
	be, fb := newTestBackend(t, nil)
	fb.err = errors.New("access denied")

	_, err := be.Comments(context.Background(), "a1")
	assert.ErrorContains(t, err, "access denied")
}

func TestPostCommentIsReadOnly(t *testing.T) {
	be, _ := newTestBackend(t, nil)
	_, err := be.PostComment(context.Background(), "a1", content.NewComment{Author: "x", Body: "y"})
	assert.ErrorIs(t, err, content.ErrReadOnly)
	assert.Equal(t, "s3", be.Type())
}
