package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	s, err := ParseConnectionString("Endpoint=http://minio:9000; AccessKeyId=key ;SecretAccessKey=secret;region=eu-west-1;PathStyle=false;")
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Endpoint:        "http://minio:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Region:          "eu-west-1",
		PathStyle:       false,
	}, s)

	s, err = ParseConnectionString("endpoint=https://acct.r2.cloudflarestorage.com;accesskeyid=a;secretaccesskey=b")
	require.NoError(t, err)
	assert.Equal(t, "auto", s.Region)
	assert.True(t, s.PathStyle)
}

func TestParseConnectionStringErrors(t *testing.T) {
	for name, raw := range map[string]string{
		"no endpoint":    "AccessKeyId=a;SecretAccessKey=b",
		"no credentials": "Endpoint=http://x",
		"bad segment":    "Endpoint=http://x;garbage",
		"bad path style": "Endpoint=http://x;AccessKeyId=a;SecretAccessKey=b;PathStyle=maybe",
		"sentinel":       "UseDevelopmentStorage=true",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConnectionString(raw)
			assert.Error(t, err)
		})
	}
}

type fakeBuckets struct {
	headErr   error
	createErr error
	created   []string
}

func (f *fakeBuckets) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeBuckets) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, *in.Bucket)
	return &s3.CreateBucketOutput{}, nil
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("existing bucket untouched", func(t *testing.T) {
		f := &fakeBuckets{}
		require.NoError(t, EnsureBucket(ctx, f, "data", nil))
		assert.Empty(t, f.created)
	})

	t.Run("missing bucket created", func(t *testing.T) {
		f := &fakeBuckets{headErr: &types.NotFound{}}
		require.NoError(t, EnsureBucket(ctx, f, "data", nil))
		assert.Equal(t, []string{"data"}, f.created)
	})

	t.Run("no such bucket created", func(t *testing.T) {
		f := &fakeBuckets{headErr: &types.NoSuchBucket{}}
		require.NoError(t, EnsureBucket(ctx, f, "data", nil))
		assert.Equal(t, []string{"data"}, f.created)
	})

	t.Run("transport failure propagated", func(t *testing.T) {
		f := &fakeBuckets{headErr: errors.New("dial tcp: refused")}
		err := EnsureBucket(ctx, f, "data", nil)
		assert.ErrorContains(t, err, "refused")
		assert.Empty(t, f.created)
	})
}
