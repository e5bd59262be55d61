package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/lifetrack/domain"
)

type fakeObjects struct {
	objects map[string][]byte
	err     error
}

func (f *fakeObjects) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.objects, *in.Key)
	return &awss3.DeleteObjectOutput{}, nil
}

func TestDocumentRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &fakeObjects{objects: map[string][]byte{}}
	repo := NewDocumentRepository(client, "lifetrack-data")

	_, err := repo.Get(ctx, "user.json")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	require.NoError(t, repo.Put(ctx, "user.json", []byte(`{"Id":1}`)))
	data, err := repo.Get(ctx, "user.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Id":1}`, string(data))

	require.NoError(t, repo.Delete(ctx, "user.json"))
	require.NoError(t, repo.Delete(ctx, "user.json"), "deleting an absent key is not an error")
}

func TestDocumentRepositoryMissingBucketIsAFailure(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(&fakeObjects{err: &types.NoSuchBucket{}}, "gone")

	_, err := repo.Get(ctx, "user.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDocumentNotFound)

	assert.Error(t, repo.Delete(ctx, "user.json"))
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		noSuchKey     bool
		bucketMissing bool
	}{
		{"typed no such key", &types.NoSuchKey{}, true, false},
		{"typed no such bucket", &types.NoSuchBucket{}, false, true},
		{"head not found", &types.NotFound{}, true, true},
		{"api no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, false, true},
		{"api no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, true, false},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false, false},
		{"transport", errors.New("dial tcp: refused"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.noSuchKey, IsNoSuchKey(tc.err))
			assert.Equal(t, tc.bucketMissing, IsBucketMissing(tc.err))
		})
	}
}
