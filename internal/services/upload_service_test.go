package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/models"
	"salemre/backend/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadStoresImagesAndQueuesThumbnails(t *testing.T) {
	ctx := context.Background()
	files := newMemFileStore()
	tasks := new(mockTaskEnqueuer)
	svc := NewUploadService(files, testConfig(), tasks)
	actor := &Actor{UserID: 7, Role: models.RoleAgent}

	tasks.On("EnqueueThumbnail", mock.Anything, mock.AnythingOfType("string")).Return(nil).Twice()

	res, err := svc.Upload(ctx, []UploadFile{
		{Filename: "front.PNG", Data: pngHeader},
		{Filename: "back.png", Data: pngHeader},
	}, actor)
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "front.PNG", res[0].OriginalName)
	assert.True(t, strings.HasSuffix(res[0].URL, res[0].PublicID+".png"))
	assert.NotEqual(t, res[0].PublicID, res[1].PublicID)
	assert.Equal(t, 2, files.count())
	tasks.AssertExpectations(t)

	rc, ct, err := svc.Open(ctx, res[0].PublicID+".png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.True(t, bytes.Equal(pngHeader, data))
}

func TestUploadRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	files := newMemFileStore()
	cfg := testConfig()
	cfg.UploadMaxBytes = 1 << 20
	svc := NewUploadService(files, cfg, nil)
	actor := &Actor{UserID: 7, Role: models.RoleAgent}

	big := append(append([]byte(nil), pngHeader...), make([]byte, 2<<20)...)
	_, err := svc.Upload(ctx, []UploadFile{
		{Filename: "ok.png", Data: pngHeader},
		{Filename: "notes.txt", Data: []byte("plain text")},
		{Filename: "huge.png", Data: big},
	}, actor)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, []string{"notes.txt is not an image", "huge.png exceeds the 1 MB limit"}, appErr.Details)
	assert.Zero(t, files.count())
}

func TestUploadRequiresFilesAndAuth(t *testing.T) {
	svc := NewUploadService(newMemFileStore(), testConfig(), nil)

	_, err := svc.Upload(context.Background(), nil, &Actor{UserID: 1})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	_, err = svc.Upload(context.Background(), []UploadFile{{Filename: "a.png", Data: pngHeader}}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestOpenUnknownOrInvalidName(t *testing.T) {
	svc := NewUploadService(newMemFileStore(), testConfig(), nil)

	for _, name := range []string{"../etc/passwd", "not-a-uuid.png", "0b5e1a1c-6d0e-4b8e-9d55-2f7f2f6d1a10.png"} {
		_, _, err := svc.Open(context.Background(), name)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound), name)
	}
	assert.True(t, storage.ValidName("0b5e1a1c-6d0e-4b8e-9d55-2f7f2f6d1a10.png"))
}
