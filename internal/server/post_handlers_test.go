package server

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postJSON struct {
	ID            uint           `json:"id"`
	Content       string         `json:"content"`
	ImageURL      string         `json:"image_url"`
	UserID        uint           `json:"user_id"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
	Liked         bool           `json:"liked"`
	Author        map[string]any `json:"author"`
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func createTextPost(t *testing.T, app *fiber.App, token, content string) postJSON {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"content": content,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[postJSON](t, resp)
}

func postPath(id uint) string {
	return fmt.Sprintf("/api/posts/%d", id)
}

func TestCreateTextPost(t *testing.T) {
	_, app, _ := newTestServer(t)
	token, _ := signupTestUser(t, app, "poster")

	resp := doJSON(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"content": "hello feed",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody[postJSON](t, resp)
	assert.Equal(t, "hello feed", post.Content)
	assert.Empty(t, post.ImageURL)
	require.NotNil(t, post.Author)
	assert.Equal(t, "poster", post.Author["username"])
}

func TestCreatePostRejectsEmptyComposer(t *testing.T) {
	_, app, _ := newTestServer(t)
	token, _ := signupTestUser(t, app, "empty")

	resp := doJSON(t, app, http.MethodPost, "/api/posts/", token, map[string]string{
		"content": "   ",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostWithImageMultipart(t *testing.T) {
	_, app, _ := newTestServer(t)
	token, _ := signupTestUser(t, app, "shutterbug")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("content", "look at this"))
	fw, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes(t, 48, 48))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	post := decodeBody[postJSON](t, resp)
	assert.Equal(t, "look at this", post.Content)
	assert.Contains(t, post.ImageURL, "/media/")

	// The stored rendition is actually served.
	imgResp, err := app.Test(httptest.NewRequest(http.MethodGet, post.ImageURL, nil))
	require.NoError(t, err)
	defer func() { _ = imgResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, imgResp.StatusCode)
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	_, app, _ := newTestServer(t)
	ownerToken, _ := signupTestUser(t, app, "owner")
	otherToken, _ := signupTestUser(t, app, "other")

	post := createTextPost(t, app, ownerToken, "first draft")

	resp := doJSON(t, app, http.MethodPut, postPath(post.ID), otherToken, map[string]string{
		"content": "vandalism",
	})
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, postPath(post.ID), ownerToken, map[string]string{
		"content": "final version",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[postJSON](t, resp)
	assert.Equal(t, "final version", updated.Content)
}

func TestDeletePostRemovesItFromFeed(t *testing.T) {
	_, app, _ := newTestServer(t)
	token, _ := signupTestUser(t, app, "deleter")

	post := createTextPost(t, app, token, "soon gone")

	resp := doJSON(t, app, http.MethodDelete, postPath(post.ID), token, nil)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/feed", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := decodeBody[[]postJSON](t, resp)
	assert.Empty(t, feed)

	resp = doJSON(t, app, http.MethodGet, postPath(post.ID), "", nil)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleLikeTwiceRestoresCount(t *testing.T) {
	_, app, _ := newTestServer(t)
	authorToken, _ := signupTestUser(t, app, "liked")
	fanToken, _ := signupTestUser(t, app, "fan")

	post := createTextPost(t, app, authorToken, "like me")

	resp := doJSON(t, app, http.MethodPost, postPath(post.ID)+"/like", fanToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	liked := decodeBody[postJSON](t, resp)
	assert.Equal(t, 1, liked.LikesCount)
	assert.True(t, liked.Liked)

	resp = doJSON(t, app, http.MethodPost, postPath(post.ID)+"/like", fanToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	unliked := decodeBody[postJSON](t, resp)
	assert.Equal(t, 0, unliked.LikesCount)
	assert.False(t, unliked.Liked)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	_, app, _ := newTestServer(t)
	token, _ := signupTestUser(t, app, "lost")

	resp := doJSON(t, app, http.MethodPost, "/api/posts/999/like", token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
