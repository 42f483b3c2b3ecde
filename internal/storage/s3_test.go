package storage

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"

	"go-doc-library/internal/model"
)

// fakeObjectStore is an in-memory bucket honoring If-None-Match on writes.
type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	puts      []*s3.PutObjectInput
	failWith  error
	deadlines []bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, hasDeadline := ctx.Deadline()
	f.deadlines = append(f.deadlines, hasDeadline)

	if f.failWith != nil {
		return nil, f.failWith
	}

	key := aws.ToString(params.Key)
	if _, exists := f.objects[key]; exists && aws.ToString(params.IfNoneMatch) == "*" {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = body
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectStore) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}

	body, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(body)))}, nil
}

func (f *fakeObjectStore) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	expires time.Duration
}

func (p *fakePresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	p.expires = opts.Expires

	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.example.test/" + aws.ToString(params.Key) + "?X-Amz-Signature=abc",
		Method: "GET",
	}, nil
}

func newTestS3Backend(store *fakeObjectStore, presigner *fakePresigner) *S3Backend {
	return newS3Backend(S3Config{Bucket: "docs", PresignTTL: 15 * time.Minute}, store, presigner)
}

func TestS3BackendStore(t *testing.T) {
	t.Parallel()

	store := newFakeObjectStore()
	backend := newTestS3Backend(store, &fakePresigner{})
	ctx := context.Background()

	t.Run("pdf uploads are served inline", func(t *testing.T) {
		stored, err := backend.Store(ctx, strings.NewReader("%PDF-1.4"), "Resume 2026.pdf", 8, model.CategoryResumes)
		require.NoError(t, err)
		require.Equal(t, "Resume_2026.pdf", stored.OriginalName)
		require.Equal(t, "application/pdf", stored.ContentType)
		require.True(t, strings.HasPrefix(stored.StorageKey, "resumes/"))

		put := store.puts[len(store.puts)-1]
		require.Equal(t, "docs", aws.ToString(put.Bucket))
		require.Equal(t, "*", aws.ToString(put.IfNoneMatch))
		require.Equal(t, "application/pdf", aws.ToString(put.ContentType))
		require.Equal(t, `inline; filename=Resume_2026.pdf`, aws.ToString(put.ContentDisposition))
		require.Nil(t, put.CacheControl)
		require.Equal(t, int64(8), aws.ToInt64(put.ContentLength))
	})

	t.Run("images get a long cache lifetime", func(t *testing.T) {
		_, err := backend.Store(ctx, strings.NewReader("png"), "logo.png", 3, model.CategoryProjects)
		require.NoError(t, err)

		put := store.puts[len(store.puts)-1]
		require.Equal(t, "image/png", aws.ToString(put.ContentType))
		require.Equal(t, imageCacheControl, aws.ToString(put.CacheControl))
		require.Nil(t, put.ContentDisposition)
	})

	t.Run("every call carries a deadline", func(t *testing.T) {
		for _, hasDeadline := range store.deadlines {
			require.True(t, hasDeadline)
		}
	})
}

func TestS3BackendStoreFailure(t *testing.T) {
	t.Parallel()

	store := newFakeObjectStore()
	store.failWith = &smithy.GenericAPIError{Code: "InternalError", Message: "boom"}
	backend := newTestS3Backend(store, &fakePresigner{})

	_, err := backend.Store(context.Background(), strings.NewReader("x"), "cv.pdf", 1, model.CategoryResumes)
	require.ErrorIs(t, err, model.ErrRemoteFailure)
	require.NotErrorIs(t, err, ErrKeyExists)
}

func TestS3BackendStoreExistingKey(t *testing.T) {
	t.Parallel()

	store := newFakeObjectStore()
	store.failWith = &smithy.GenericAPIError{Code: "PreconditionFailed"}
	backend := newTestS3Backend(store, &fakePresigner{})

	_, err := backend.Store(context.Background(), strings.NewReader("x"), "cv.pdf", 1, model.CategoryResumes)
	require.ErrorIs(t, err, ErrKeyExists)
	require.ErrorIs(t, err, model.ErrRemoteFailure)
}

func TestS3BackendLocate(t *testing.T) {
	t.Parallel()

	presigner := &fakePresigner{}
	backend := newTestS3Backend(newFakeObjectStore(), presigner)

	before := time.Now()
	locator, err := backend.Locate(context.Background(), "resumes/abc_cv.pdf")
	require.NoError(t, err)
	require.Equal(t, model.LocatorURL, locator.Kind)
	require.Contains(t, locator.Value, "resumes/abc_cv.pdf")
	require.Equal(t, 15*time.Minute, presigner.expires)
	require.NotNil(t, locator.ExpiresAt)
	require.WithinDuration(t, before.Add(15*time.Minute), *locator.ExpiresAt, 5*time.Second)
}

func TestS3BackendDeleteAndExists(t *testing.T) {
	t.Parallel()

	store := newFakeObjectStore()
	backend := newTestS3Backend(store, &fakePresigner{})
	ctx := context.Background()

	stored, err := backend.Store(ctx, strings.NewReader("gif"), "a.gif", 3, model.CategoryProfile)
	require.NoError(t, err)

	exists, err := backend.Exists(ctx, stored.StorageKey)
	require.NoError(t, err)
	require.True(t, exists)

	removed, err := backend.Delete(ctx, stored.StorageKey)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = backend.Delete(ctx, stored.StorageKey)
	require.NoError(t, err)
	require.False(t, removed)

	exists, err = backend.Exists(ctx, stored.StorageKey)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestNewS3BackendRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewS3Backend(context.Background(), S3Config{Bucket: "docs"})
	require.ErrorIs(t, err, model.ErrConfigurationMissing)
	require.Contains(t, err.Error(), "AWS_ACCESS_KEY_ID")
	require.Contains(t, err.Error(), "AWS_SECRET_ACCESS_KEY")
	require.NotContains(t, err.Error(), "AWS_S3_BUCKET")
}
