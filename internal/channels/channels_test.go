package channels

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records every call and replies per operation name.
type fakeTransport struct {
	calls     []fakeCall
	responses map[string]map[string]any
	errs      map[string]error
}

type fakeCall struct {
	op   string
	body map[string]any
}

func (f *fakeTransport) Do(_ context.Context, op string, body map[string]any) (map[string]any, error) {
	f.calls = append(f.calls, fakeCall{op: op, body: body})
	if err, ok := f.errs[op]; ok {
		return nil, err
	}
	return f.responses[op], nil
}

func TestBlog_Publish(t *testing.T) {
	ft := &fakeTransport{responses: map[string]map[string]any{
		"posts.create": {"id": "42"},
	}}
	blog := NewBlog(ft)

	res, err := blog.Publish(context.Background(), map[string]any{
		"title":   "Launch day",
		"content": "We shipped.",
	})

	require.NoError(t, err)
	assert.Equal(t, "42", res.RemoteID)
	require.Len(t, ft.calls, 1)
	assert.Equal(t, "posts.create", ft.calls[0].op)
	assert.Equal(t, "publish", ft.calls[0].body["status"])
}

func TestBlog_MissingTitleIsTerminal(t *testing.T) {
	blog := NewBlog(&fakeTransport{})

	_, err := blog.Publish(context.Background(), map[string]any{"content": "no title"})

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.False(t, pubErr.IsRetryable())
}

func TestFacebook_Publish(t *testing.T) {
	ft := &fakeTransport{responses: map[string]map[string]any{
		"feed": {"id": "page_123"},
	}}
	fb := NewFacebook(ft)

	res, err := fb.Publish(context.Background(), map[string]any{"message": "hello"})

	require.NoError(t, err)
	assert.Equal(t, "page_123", res.RemoteID)
	assert.Equal(t, "hello", ft.calls[0].body["message"])
}

func TestFacebook_LinkOnlyIsAccepted(t *testing.T) {
	ft := &fakeTransport{responses: map[string]map[string]any{
		"feed": {"id": "page_9"},
	}}
	fb := NewFacebook(ft)

	_, err := fb.Publish(context.Background(), map[string]any{"link": "https://example.com"})

	require.NoError(t, err)
}

func TestFacebook_MissingMessageAndLinkIsTerminal(t *testing.T) {
	fb := NewFacebook(&fakeTransport{})

	_, err := fb.Publish(context.Background(), map[string]any{})

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.False(t, pubErr.IsRetryable())
}

func TestFacebook_VendorCodeClassification(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		retryable bool
	}{
		{"rate limit code 4", "4", true},
		{"rate limit code 613", "613", true},
		{"oauth failure code 190", "190", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{errs: map[string]error{
				"feed": &HTTPError{Message: "graph error", Code: tt.code},
			}}
			fb := NewFacebook(ft)

			_, err := fb.Publish(context.Background(), map[string]any{"message": "x"})

			var pubErr *PublishError
			require.ErrorAs(t, err, &pubErr)
			assert.Equal(t, tt.retryable, pubErr.IsRetryable())
			assert.Equal(t, tt.code, pubErr.Code)
		})
	}
}

func TestInstagram_TwoStepPublish(t *testing.T) {
	ft := &fakeTransport{responses: map[string]map[string]any{
		"media":         {"id": "container_1"},
		"media_publish": {"id": "ig_media_7"},
	}}
	ig := NewInstagram(ft)

	res, err := ig.Publish(context.Background(), map[string]any{
		"media_url": "https://cdn.example.com/pic.jpg",
		"caption":   "sunset",
	})

	require.NoError(t, err)
	assert.Equal(t, "ig_media_7", res.RemoteID)
	require.Len(t, ft.calls, 2)
	assert.Equal(t, "media", ft.calls[0].op)
	assert.Equal(t, "media_publish", ft.calls[1].op)
	assert.Equal(t, "container_1", ft.calls[1].body["creation_id"])
}

func TestInstagram_ContainerFailureStopsFlow(t *testing.T) {
	ft := &fakeTransport{errs: map[string]error{
		"media": &HTTPError{Status: 503, Message: "service temporarily unavailable"},
	}}
	ig := NewInstagram(ft)

	_, err := ig.Publish(context.Background(), map[string]any{"media_url": "https://x/pic.jpg"})

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.True(t, pubErr.IsRetryable())
	assert.Len(t, ft.calls, 1, "publish step must not run after container failure")
}

func TestTikTok_Publish(t *testing.T) {
	ft := &fakeTransport{responses: map[string]map[string]any{
		"video.publish": {"publish_id": "v_55"},
	}}
	tk := NewTikTok(ft)

	res, err := tk.Publish(context.Background(), map[string]any{
		"video_url": "https://cdn.example.com/clip.mp4",
		"caption":   "new drop",
	})

	require.NoError(t, err)
	assert.Equal(t, "v_55", res.RemoteID)
	assert.Equal(t, "new drop", ft.calls[0].body["title"])
}

func TestTikTok_VendorCodeClassification(t *testing.T) {
	tests := []struct {
		code      string
		retryable bool
	}{
		{"rate_limit_exceeded", true},
		{"server_busy", true},
		{"spam_risk_too_many_posts", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ft := &fakeTransport{errs: map[string]error{
				"video.publish": &HTTPError{Message: "tiktok refused", Code: tt.code},
			}}
			tk := NewTikTok(ft)

			_, err := tk.Publish(context.Background(), map[string]any{"video_url": "https://x/v.mp4"})

			var pubErr *PublishError
			require.ErrorAs(t, err, &pubErr)
			assert.Equal(t, tt.retryable, pubErr.IsRetryable())
		})
	}
}

func TestYouTube_Publish(t *testing.T) {
	ft := &fakeTransport{responses: map[string]map[string]any{
		"videos.insert": {"id": "yt_abc"},
	}}
	yt := NewYouTube(ft)

	res, err := yt.Publish(context.Background(), map[string]any{
		"title":       "Q3 recap",
		"description": "highlights",
	})

	require.NoError(t, err)
	assert.Equal(t, "yt_abc", res.RemoteID)
	snippet, ok := ft.calls[0].body["snippet"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Q3 recap", snippet["title"])
}

func TestYouTube_VendorReasonClassification(t *testing.T) {
	tests := []struct {
		code      string
		retryable bool
	}{
		{"quotaExceeded", true},
		{"backendError", true},
		{"uploadLimitExceeded", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ft := &fakeTransport{errs: map[string]error{
				"videos.insert": &HTTPError{Message: "youtube rejected the upload", Code: tt.code},
			}}
			yt := NewYouTube(ft)

			_, err := yt.Publish(context.Background(), map[string]any{"title": "x"})

			var pubErr *PublishError
			require.ErrorAs(t, err, &pubErr)
			assert.Equal(t, tt.retryable, pubErr.IsRetryable())
		})
	}
}

func TestYouTube_ForbiddenStatusIsTerminal(t *testing.T) {
	ft := &fakeTransport{errs: map[string]error{
		"videos.insert": &HTTPError{Status: 403, Message: "HTTP 403: channel suspended"},
	}}
	yt := NewYouTube(ft)

	_, err := yt.Publish(context.Background(), map[string]any{"title": "x"})

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.False(t, pubErr.IsRetryable())
}

func TestGoogleBusiness_Publish(t *testing.T) {
	ft := &fakeTransport{responses: map[string]map[string]any{
		"localPosts.create": {"name": "accounts/1/locations/2/localPosts/3"},
	}}
	gb := NewGoogleBusiness(ft)

	res, err := gb.Publish(context.Background(), map[string]any{
		"summary":            "Open late on Fridays",
		"call_to_action_url": "https://example.com/hours",
	})

	require.NoError(t, err)
	assert.Equal(t, "accounts/1/locations/2/localPosts/3", res.RemoteID)
	cta, ok := ft.calls[0].body["callToAction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/hours", cta["url"])
}

func TestGoogleBusiness_MissingSummaryIsTerminal(t *testing.T) {
	gb := NewGoogleBusiness(&fakeTransport{})

	_, err := gb.Publish(context.Background(), map[string]any{})

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.False(t, pubErr.IsRetryable())
}

func TestPublishError_MessageIsVerbatim(t *testing.T) {
	cause := &HTTPError{Status: 500, Message: "HTTP 500: backend blew up"}
	err := wrapPublishError("tiktok", cause, nil)

	assert.Equal(t, "HTTP 500: backend blew up", err.Error())
	assert.Equal(t, 500, err.StatusCode())
}

func TestWrapPublishError_UnknownCauseFailsClosed(t *testing.T) {
	err := wrapPublishError("wordpress_blog", errors.New("something odd happened"), nil)

	assert.False(t, err.IsRetryable())
}

func TestRESTTransport_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"id":"remote_1"}`))
	}))
	defer srv.Close()

	tr := NewRESTTransport(srv.URL, "tok", 5*time.Second)
	resp, err := tr.Do(context.Background(), "feed", map[string]any{"message": "hi"})

	require.NoError(t, err)
	assert.Equal(t, "remote_1", resp["id"])
}

func TestRESTTransport_ErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "flat message and code",
			status:      429,
			body:        `{"message":"slow down","code":"rate_limit_exceeded"}`,
			wantMessage: "HTTP 429: slow down",
			wantCode:    "rate_limit_exceeded",
		},
		{
			name:        "google reason",
			status:      403,
			body:        `{"message":"quota","reason":"quotaExceeded"}`,
			wantMessage: "HTTP 403: quota",
			wantCode:    "quotaExceeded",
		},
		{
			name:        "nested graph error with numeric code",
			status:      400,
			body:        `{"error":{"message":"rate limited","code":613}}`,
			wantMessage: "HTTP 400: rate limited",
			wantCode:    "613",
		},
		{
			name:        "non-json body falls back to raw",
			status:      502,
			body:        `bad gateway`,
			wantMessage: "HTTP 502: bad gateway",
			wantCode:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tr := NewRESTTransport(srv.URL, "", 5*time.Second)
			_, err := tr.Do(context.Background(), "op", nil)

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.wantMessage, httpErr.Message)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}
