package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"vidmarket/domain/model"
)

type stubAccessUsecase struct {
	previewURL    string
	previewErr    error
	streamToken   string
	streamErr     error
	validatedURL  string
	validateErr   error
	downloadID    string
	downloadErr   error
	downloadLink  *model.DownloadLink
	processErr    error
	processedOnce bool
}

func (s *stubAccessUsecase) GetPreviewURL(ctx context.Context, videoID string) (string, error) {
	return s.previewURL, s.previewErr
}

func (s *stubAccessUsecase) GetStreamingToken(ctx context.Context, videoID, userID string) (string, error) {
	return s.streamToken, s.streamErr
}

func (s *stubAccessUsecase) ValidateStreamingToken(ctx context.Context, token string) (string, error) {
	return s.validatedURL, s.validateErr
}

func (s *stubAccessUsecase) GetDownloadToken(ctx context.Context, videoID, userID string) (string, error) {
	return s.downloadID, s.downloadErr
}

func (s *stubAccessUsecase) ProcessDownload(ctx context.Context, downloadID string) (*model.DownloadLink, error) {
	if s.processErr != nil {
		return nil, s.processErr
	}
	if s.processedOnce {
		return nil, nil
	}
	s.processedOnce = true
	return s.downloadLink, nil
}

func (s *stubAccessUsecase) IsVideoOwner(ctx context.Context, videoID, userID string) (bool, error) {
	return false, nil
}

func (s *stubAccessUsecase) VerifyPurchase(ctx context.Context, userID, videoID string) (bool, error) {
	return false, nil
}

type stubStreamUsecase struct {
	byteRange *model.ByteRange
	err       error
}

func (s *stubStreamUsecase) ServeRange(ctx context.Context, signedURL, rangeHeader string) (*model.ByteRange, error) {
	if s.err != nil {
		return nil, s.err
	}
	if rangeHeader == "" {
		return nil, nil
	}
	return s.byteRange, nil
}

func newAccessRouter(access *stubAccessUsecase, stream *stubStreamUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewVideoAccessHandler(access, stream)

	router := gin.New()
	router.GET("/videos/validate-stream", handler.ValidateStream)
	router.GET("/videos/:videoId/preview", handler.Preview)
	router.GET("/videos/:videoId/stream", handler.Stream)
	router.GET("/downloads/:downloadId", handler.Download)

	authed := router.Group("", func(c *gin.Context) { c.Set("user_id", "buyer-1") })
	authed.GET("/api/videos/:videoId/stream-token", handler.StreamToken)
	authed.GET("/api/videos/:videoId/download-token", handler.DownloadToken)
	return router
}

func TestPreviewEndpoint(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{previewURL: "https://store.test/preview"}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/vid-1/preview", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "https://store.test/preview")
}

func TestPreviewEndpoint_UnknownVideo(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{previewErr: model.ErrNotFound}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/missing/preview", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewEndpoint_StillProcessing(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{previewErr: model.ErrVideoNotReady}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/vid-1/preview", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestValidateStreamEndpoint(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{validatedURL: "https://store.test/signed"}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/validate-stream?token=ok", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "https://store.test/signed")
}

func TestValidateStreamEndpoint_MissDenied(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{validatedURL: ""}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/validate-stream?token=stale", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), deniedMessage)
}

func TestValidateStreamEndpoint_MissingTokenDenied(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/validate-stream", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestStreamTokenEndpoint(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{streamToken: "token-1"}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/videos/vid-1/stream-token", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "token-1")
}

func TestStreamTokenEndpoint_DeniedUsesGenericMessage(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{streamToken: ""}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/videos/vid-1/stream-token", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), deniedMessage)
}

func TestStreamTokenEndpoint_RateLimited(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{streamErr: model.ErrRateLimitExceeded}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/videos/vid-1/stream-token", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestStreamEndpoint_MissingToken(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/vid-1/stream", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamEndpoint_InvalidTokenDenied(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{validatedURL: ""}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/vid-1/stream?token=stale", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestStreamEndpoint_NoRangeRedirects(t *testing.T) {
	router := newAccessRouter(
		&stubAccessUsecase{validatedURL: "https://store.test/signed"},
		&stubStreamUsecase{},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/vid-1/stream?token=ok", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://store.test/signed", w.Header().Get("Location"))
}

// closeTrackingBody records whether the handler released the upstream
// ranged response.
type closeTrackingBody struct {
	io.Reader
	closed bool
}

func (b *closeTrackingBody) Close() error {
	b.closed = true
	return nil
}

func TestStreamEndpoint_RangeReturns206(t *testing.T) {
	body := &closeTrackingBody{Reader: strings.NewReader(strings.Repeat("x", 1000))}
	router := newAccessRouter(
		&stubAccessUsecase{validatedURL: "https://store.test/signed"},
		&stubStreamUsecase{byteRange: &model.ByteRange{Start: 0, End: 999, Size: 10_000_000, Body: body}},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/vid-1/stream?token=ok", nil)
	req.Header.Set("Range", "bytes=0-999")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusPartialContent, w.Code)
	require.Equal(t, "bytes 0-999/10000000", w.Header().Get("Content-Range"))
	require.Equal(t, "1000", w.Header().Get("Content-Length"))
	require.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	require.Len(t, w.Body.String(), 1000)
	require.True(t, body.closed, "upstream body must be closed after the copy")
}

func TestStreamEndpoint_UnsatisfiableRange(t *testing.T) {
	router := newAccessRouter(
		&stubAccessUsecase{validatedURL: "https://store.test/signed"},
		&stubStreamUsecase{err: model.ErrInvalidRange},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos/vid-1/stream?token=ok", nil)
	req.Header.Set("Range", "bytes=99999999-")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestedRangeNotSatisfiable, w.Code)
}

func TestDownloadEndpoint_OneTime(t *testing.T) {
	router := newAccessRouter(&stubAccessUsecase{
		downloadLink: &model.DownloadLink{URL: "https://store.test/dl", Filename: "lecture.mp4"},
	}, &stubStreamUsecase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/downloads/dl-1", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://store.test/dl", w.Header().Get("Location"))

	// Replay of the same link is refused.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/downloads/dl-1", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
