package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"socialhub/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadPart struct {
	name    string
	content []byte
}

func (ts *testServer) upload(path, token string, parts ...uploadPart) response {
	ts.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.CreateFormFile(uploadField, p.name)
		require.NoError(ts.t, err)
		_, err = fw.Write(p.content)
		require.NoError(ts.t, err)
	}
	require.NoError(ts.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return ts.send(req)
}

func TestUploadImages(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token("alice")

	res := ts.upload("/api/uploads?folder=avatars", tok,
		uploadPart{"a.png", testutil.TinyPNG(t, 2, 2)},
		uploadPart{"b.gif", testutil.TinyGIF(t, 2, 2)},
	)
	require.Equal(t, fiber.StatusCreated, res.Status, string(res.Raw))
	urls := items(t, res.Body, "urls")
	require.Len(t, urls, 2)

	publicID := urls[0]["publicId"].(string)
	assert.True(t, strings.HasPrefix(publicID, "avatars/"))
	assert.True(t, strings.HasSuffix(publicID, ".png"))
	assert.Equal(t, "http://localhost:8080/uploads/"+publicID, urls[0]["url"])

	_, err := os.Stat(filepath.Join(ts.store.Dir, filepath.FromSlash(publicID)))
	require.NoError(t, err)

	// The local backend serves stored files.
	served := ts.do(http.MethodGet, "/uploads/"+publicID, "", nil)
	assert.Equal(t, fiber.StatusOK, served.Status)

	res = ts.do(http.MethodDelete, "/api/uploads/"+publicID, tok, nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, true, res.Body["deleted"])

	res = ts.do(http.MethodDelete, "/api/uploads/"+publicID, tok, nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, false, res.Body["deleted"])
}

func TestUploadImages_Rejects(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token("alice")
	png := testutil.TinyPNG(t, 1, 1)

	tests := []struct {
		name    string
		path    string
		parts   []uploadPart
		wantMsg string
	}{
		{"no files", "/api/uploads", nil, "No files uploaded"},
		{"too many", "/api/uploads", []uploadPart{{"1.png", png}, {"2.png", png}, {"3.png", png}, {"4.png", png}, {"5.png", png}}, "Too many files (max 4)"},
		{"not an image", "/api/uploads", []uploadPart{{"evil.png", []byte("<?php echo 1; ?>")}}, "Invalid image type"},
		{"too large", "/api/uploads", []uploadPart{{"big.png", append(append([]byte{}, png...), make([]byte, 1<<20)...)}}, "File too large (max 1MB)"},
		{"bad folder", "/api/uploads?folder=a%20b", []uploadPart{{"a.png", png}}, "Validation error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.upload(tt.path, tok, tt.parts...)
			assert.Equal(t, fiber.StatusBadRequest, res.Status)
			assert.Equal(t, tt.wantMsg, res.Body["message"])
		})
	}

	res := ts.do(http.MethodPost, "/api/uploads", tok, map[string]any{"images": "nope"})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	res = ts.do(http.MethodDelete, "/api/uploads/../../etc/passwd", tok, nil)
	assert.NotEqual(t, fiber.StatusOK, res.Status)
}
