package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile(ImageField, "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadMutationForm_Multipart(t *testing.T) {
	t.Run("text and image", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{"text": "hello"}, pngHeader)

		form, err := ReadMutationForm(httptest.NewRecorder(), req, 1<<20, "text")
		require.NoError(t, err)
		require.NotNil(t, form.Field("text"))
		assert.Equal(t, "hello", *form.Field("text"))
		require.NotNil(t, form.Image)
		assert.Equal(t, "image/png", form.Image.ContentType)
		assert.Equal(t, "photo.png", form.Image.Filename)
	})

	t.Run("empty text is present", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{"text": ""}, nil)

		form, err := ReadMutationForm(httptest.NewRecorder(), req, 1<<20, "text")
		require.NoError(t, err)
		require.NotNil(t, form.Field("text"))
		assert.Equal(t, "", *form.Field("text"))
		assert.Nil(t, form.Image)
	})

	t.Run("omitted text is absent", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{}, pngHeader)

		form, err := ReadMutationForm(httptest.NewRecorder(), req, 1<<20, "text")
		require.NoError(t, err)
		assert.Nil(t, form.Field("text"))
	})

	t.Run("non image blob rejected", func(t *testing.T) {
		req := multipartRequest(t, nil, []byte("just some text, not an image"))

		_, err := ReadMutationForm(httptest.NewRecorder(), req, 1<<20, "text")
		assert.True(t, errors.Is(err, types.ErrValidation))
	})

	t.Run("oversized image rejected", func(t *testing.T) {
		big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
		req := multipartRequest(t, nil, big)

		_, err := ReadMutationForm(httptest.NewRecorder(), req, 32, "text")
		assert.True(t, errors.Is(err, types.ErrValidation))
	})
}

func TestReadMutationForm_JSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantText  *string
		wantError bool
	}{
		{name: "present", body: `{"text":"updated"}`, wantText: ptr("updated")},
		{name: "present empty", body: `{"text":""}`, wantText: ptr("")},
		{name: "absent", body: `{}`},
		{name: "null is absent", body: `{"text":null}`},
		{name: "empty body", body: ``},
		{name: "unknown key", body: `{"title":"x"}`, wantError: true},
		{name: "wrong type", body: `{"text":42}`, wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/posts/1", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			form, err := ReadMutationForm(httptest.NewRecorder(), req, 1<<20, "text")
			if tc.wantError {
				assert.True(t, errors.Is(err, types.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantText, form.Field("text"))
			assert.Nil(t, form.Image)
		})
	}
}

func TestReadMutationForm_URLEncoded(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/users/1", strings.NewReader("name=Alice&bio="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ReadMutationForm(httptest.NewRecorder(), req, 1<<20, "name", "bio")
	require.NoError(t, err)
	assert.Equal(t, ptr("Alice"), form.Field("name"))
	assert.Equal(t, ptr(""), form.Field("bio"))
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, ".jpg", ImageExtension("image/jpeg"))
	assert.Equal(t, ".webp", ImageExtension("image/webp"))
	assert.Equal(t, ".bin", ImageExtension("application/pdf"))
	assert.False(t, IsImageContentType("text/plain; charset=utf-8"))
}

func ptr(s string) *string { return &s }
