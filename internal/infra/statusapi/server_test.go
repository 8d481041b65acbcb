package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func outcome(seq, class int) domain.WindowOutcome {
	return domain.WindowOutcome{
		WindowID:  "w" + string(rune('0'+seq)),
		Seq:       seq,
		Diagnosis: &domain.Diagnosis{ClassIndex: class, Label: domain.DefaultLabels()[class], Confidence: 0.9},
	}
}

func TestHealthAndLatest(t *testing.T) {
	s := New(domain.APIConfig{}, nil)

	rec := get(t, s.Handler(), "/api/v1/diagnosis/latest", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, s.Publish(context.Background(), outcome(1, 0)))
	require.NoError(t, s.Publish(context.Background(), outcome(2, 3)))

	rec = get(t, s.Handler(), "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","windows":2}`, rec.Body.String())

	rec = get(t, s.Handler(), "/api/v1/diagnosis/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.WindowOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 2, got.Seq)
	require.Equal(t, "Ventricular fibrillation", got.Diagnosis.Label)
}

func TestWindows_NewestFirstWithLimit(t *testing.T) {
	s := New(domain.APIConfig{}, nil)
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Publish(context.Background(), outcome(i, 0)))
	}

	rec := get(t, s.Handler(), "/api/v1/windows?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Windows []domain.WindowOutcome `json:"windows"`
		Total   int                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 5, body.Total)
	require.Len(t, body.Windows, 2)
	require.Equal(t, 5, body.Windows[0].Seq)
	require.Equal(t, 4, body.Windows[1].Seq)

	rec = get(t, s.Handler(), "/api/v1/windows?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryIsBounded(t *testing.T) {
	s := New(domain.APIConfig{}, nil)
	s.max = 3
	for i := 1; i <= 7; i++ {
		require.NoError(t, s.Publish(context.Background(), outcome(i%10, 0)))
	}
	require.Len(t, s.recent, 3)
	require.Equal(t, 7, s.recent[2].Seq)
	require.Equal(t, 7, s.total)
}

func TestBearerAuth(t *testing.T) {
	secret := []byte("s3cret")
	s := New(domain.APIConfig{JWTSecret: string(secret)}, nil)
	require.NoError(t, s.Publish(context.Background(), outcome(1, 1)))

	require.Equal(t, http.StatusOK, get(t, s.Handler(), "/healthz", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(t, s.Handler(), "/api/v1/diagnosis/latest", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(t, s.Handler(), "/api/v1/diagnosis/latest", "garbage").Code)

	wrong, err := IssueToken([]byte("other"), "nurse", time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, get(t, s.Handler(), "/api/v1/diagnosis/latest", wrong).Code)

	expired, err := IssueToken(secret, "nurse", -time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, get(t, s.Handler(), "/api/v1/diagnosis/latest", expired).Code)

	ok, err := IssueToken(secret, "nurse", time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(t, s.Handler(), "/api/v1/diagnosis/latest", ok).Code)
}

func TestCORSHeaders(t *testing.T) {
	s := New(domain.APIConfig{AllowOrigins: []string{"https://ward.example"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://ward.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, "https://ward.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(domain.APIConfig{Addr: "127.0.0.1:0"}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	rec := get(t, New(domain.APIConfig{}, nil).Handler(), "/api/v1/history", "")
	require.Equal(t, http.StatusNotImplemented, rec.Code)

	var gotDevice string
	var gotLimit int
	s := New(domain.APIConfig{}, nil, WithHistory(func(_ context.Context, device string, limit int) (any, error) {
		gotDevice, gotLimit = device, limit
		return []map[string]any{{"label": "Normal"}}, nil
	}))

	rec = get(t, s.Handler(), "/api/v1/history?device=COM8&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"rows":[{"label":"Normal"}]}`, rec.Body.String())
	require.Equal(t, "COM8", gotDevice)
	require.Equal(t, 5, gotLimit)

	failing := New(domain.APIConfig{}, nil, WithHistory(func(context.Context, string, int) (any, error) {
		return nil, errors.New("db down")
	}))
	require.Equal(t, http.StatusBadGateway, get(t, failing.Handler(), "/api/v1/history", "").Code)
}
