package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.MirrorConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.MirrorConfig{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.MirrorConfig{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestNewMirror(t *testing.T) {
	ctx := context.Background()

	t.Run("BucketExists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "assets").Return(true, nil)

		mirror, err := storage.NewMirror(ctx, client, "assets")
		assert.NoError(t, err)
		assert.NotNil(t, mirror)
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BucketCreated", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "assets").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "assets", mock.Anything).Return(nil)

		mirror, err := storage.NewMirror(ctx, client, "assets")
		assert.NoError(t, err)
		assert.NotNil(t, mirror)
		client.AssertExpectations(t)
	})

	t.Run("BucketCheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "assets").Return(false, errors.New("connection refused"))

		mirror, err := storage.NewMirror(ctx, client, "assets")
		assert.Error(t, err)
		assert.Nil(t, mirror)
	})
}

func TestMirrorUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("UploadsContent", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "assets").Return(true, nil)
		client.On("PutObject", mock.Anything, "assets", "Android/bundle1",
			mock.Anything, int64(4), mock.Anything).Return(minio.UploadInfo{Size: 4}, nil)

		mirror, err := storage.NewMirror(ctx, client, "assets")
		assert.NoError(t, err)

		err = mirror.Upload(ctx, "Android/bundle1", []byte("data"))
		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("NilMirrorIsNoop", func(t *testing.T) {
		var mirror *storage.Mirror
		assert.NoError(t, mirror.Upload(ctx, "Android/bundle1", []byte("data")))
		assert.NoError(t, mirror.Remove(ctx, "Android/bundle1"))
	})

	t.Run("RemoveDeletesObject", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "assets").Return(true, nil)
		client.On("RemoveObject", mock.Anything, "assets", "Android/bundle1", mock.Anything).Return(nil)

		mirror, err := storage.NewMirror(ctx, client, "assets")
		assert.NoError(t, err)

		assert.NoError(t, mirror.Remove(ctx, "Android/bundle1"))
		client.AssertExpectations(t)
	})
}
