package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facequiz/internal/analysis"
	"facequiz/internal/api"
	"facequiz/internal/classifier"
	"facequiz/internal/model"
	"facequiz/internal/quiz"
	"facequiz/internal/theme"
	"facequiz/internal/util"
)

type fakeModel struct {
	err error
}

func (f fakeModel) Predict(context.Context, image.Image) (model.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return model.Prediction{
		{ClassName: "강아지 (Dog)", Probability: 0.2},
		{ClassName: "고양이 (Cat)", Probability: 0.8},
	}, nil
}
func (fakeModel) TotalClasses() int { return 2 }
func (fakeModel) Labels() []string  { return []string{"강아지 (Dog)", "고양이 (Cat)"} }
func (fakeModel) Close() error      { return nil }

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }
func (c *stepClock) Frame(ctx context.Context) error {
	c.now = c.now.Add(250 * time.Millisecond)
	return ctx.Err()
}

func newRouter(t *testing.T, m fakeModel, store theme.Store) http.Handler {
	t.Helper()
	svc := api.NewService(m, store, model.Options{},
		api.WithClock(func() analysis.Clock { return &stepClock{now: time.Unix(0, 0)} }),
		api.WithRand(rand.New(rand.NewPCG(1, 1))),
	)
	return api.NewRouter(svc, api.ServerOptions{})
}

func upload(t *testing.T, path string, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "face.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	router := newRouter(t, fakeModel{}, nil)
	for _, path := range []string{"/health", "/api/health"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestPredict(t *testing.T) {
	router := newRouter(t, fakeModel{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "/api/predict", "image", pngData(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pred model.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	require.Len(t, pred, 2)
	assert.Equal(t, "고양이 (Cat)", pred[1].ClassName)
	assert.InDelta(t, 0.8, pred[1].Probability, 1e-9)
}

func TestPredict_BadRequests(t *testing.T) {
	router := newRouter(t, fakeModel{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "/api/predict", "photo", pngData(t)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "/api/predict", "image", []byte("not an image")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredict_TooLarge(t *testing.T) {
	router := newRouter(t, fakeModel{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "/api/predict", "image", make([]byte, api.MaxUploadBytes+1)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "10.0 MB")
}

func TestModelDocuments(t *testing.T) {
	router := newRouter(t, fakeModel{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metadata.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var meta classifier.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, []string{"강아지 (Dog)", "고양이 (Cat)"}, meta.Labels)
	assert.Equal(t, "predict", meta.PredictURL)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/model.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// A facequiz server is itself a hosted model for another facequiz.
func TestServerAsHostedModel(t *testing.T) {
	srv := httptest.NewServer(newRouter(t, fakeModel{}, nil))
	defer srv.Close()

	ep, err := util.ModelEndpoints(srv.URL+"/api/", "", "")
	require.NoError(t, err)
	m, err := classifier.LoadHosted(context.Background(), ep)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/predict", m.Endpoints().Predict)

	pred, err := m.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	assert.Equal(t, "고양이 (Cat)", pred[1].ClassName)
}

func TestPredict_ModelFailure(t *testing.T) {
	router := newRouter(t, fakeModel{err: errors.New("boom")}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "/api/predict", "image", pngData(t)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), quiz.MsgPredictFailed)
}

type streamLine struct {
	Data  api.AnalyzeEvent `json:"data"`
	Error string           `json:"error"`
	Code  int              `json:"code"`
}

func readStream(t *testing.T, body *bytes.Buffer) []streamLine {
	t.Helper()
	var out []streamLine
	sc := bufio.NewScanner(body)
	for sc.Scan() {
		var l streamLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		out = append(out, l)
	}
	return out
}

func TestAnalyze_Stream(t *testing.T) {
	router := newRouter(t, fakeModel{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "/api/analyze", "image", pngData(t)))
	require.Equal(t, http.StatusOK, rec.Code)

	lines := readStream(t, rec.Body)
	require.GreaterOrEqual(t, len(lines), 2)

	prev := -1
	for _, l := range lines[:len(lines)-1] {
		assert.Equal(t, "progress", l.Data.Type)
		assert.GreaterOrEqual(t, l.Data.Percent, prev)
		prev = l.Data.Percent
	}
	last := lines[len(lines)-1]
	assert.Equal(t, "result", last.Data.Type)
	require.NotNil(t, last.Data.Verdict)
	assert.Equal(t, quiz.KindCat, last.Data.Verdict.Kind)
	assert.Equal(t, 80, last.Data.Verdict.Confidence)
	assert.NotEmpty(t, last.Data.Session)
}

func TestAnalyze_Failure(t *testing.T) {
	router := newRouter(t, fakeModel{err: errors.New("boom")}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, upload(t, "/api/analyze", "image", pngData(t)))
	require.Equal(t, http.StatusOK, rec.Code)

	lines := readStream(t, rec.Body)
	require.NotEmpty(t, lines)
	last := lines[len(lines)-1]
	assert.Equal(t, http.StatusBadGateway, last.Code)
	assert.Equal(t, quiz.MsgPredictFailed, last.Error)
}

func TestTheme(t *testing.T) {
	store := &theme.MemoryStore{}
	router := newRouter(t, fakeModel{}, store)

	get := func(method, path string) map[string]string {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var out map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	assert.Equal(t, map[string]string{"theme": "dark", "buttonLabel": "라이트모드"}, get(http.MethodGet, "/api/theme/"))
	assert.Equal(t, map[string]string{"theme": "light", "buttonLabel": "다크모드"}, get(http.MethodPost, "/api/theme/toggle"))
	assert.Equal(t, map[string]string{"theme": "dark", "buttonLabel": "라이트모드"}, get(http.MethodPost, "/api/theme/toggle"))
}

func TestLotto(t *testing.T) {
	router := newRouter(t, fakeModel{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lotto?sets=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Sets    [][]int `json:"sets"`
		Buckets [][]int `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Sets, 3)
	require.Len(t, out.Buckets, 3)
	for _, set := range out.Sets {
		assert.Len(t, set, 6)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lotto", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Sets, 1)

	for _, q := range []string{"sets=0", "sets=11", "sets=abc"} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lotto?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}
