package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_ai_editor/generator"
	"blog_ai_editor/posts"
	"blog_ai_editor/transform"
)

type stubTransformer struct {
	result any
	err    error
}

func (s stubTransformer) Transform(context.Context, transform.Request) (any, error) {
	return s.result, s.err
}

func newTestServer(t *testing.T, agent Transformer, opts Options) (*httptest.Server, posts.Repository) {
	t.Helper()
	repo := posts.NewMemoryRepository()
	srv, err := New(agent, repo, opts)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, repo
}

func mockAgent(t *testing.T) *generator.Agent {
	t.Helper()
	agent, err := generator.NewAgent(generator.MockLLM{}, nil)
	require.NoError(t, err)
	return agent
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestTransformEndToEndWithClient(t *testing.T) {
	ts, _ := newTestServer(t, mockAgent(t), Options{})
	client, err := transform.NewClient(ts.URL + "/api/ai/transform")
	require.NoError(t, err)

	raw, err := client.Transform(context.Background(), transform.Request{
		Action: transform.GenerateTitle,
		Input:  "<p>Nou sistema de cita prèvia digital implementat amb èxit</p>",
		Context: transform.Context{
			TargetAudience: transform.DefaultAudience,
			Language:       transform.DefaultLanguage,
		},
	})
	require.NoError(t, err)

	var titles []string
	require.NoError(t, json.Unmarshal(raw, &titles))
	assert.Len(t, titles, 3)
	assert.Equal(t, "Nou sistema de cita prèvia digital", titles[0])
}

func TestTransformOutlineShape(t *testing.T) {
	ts, _ := newTestServer(t, mockAgent(t), Options{})

	resp, body := do(t, http.MethodPost, ts.URL+"/api/ai/transform",
		`{"action":"generate-outline","input":"Teletreball","context":{"targetAudience":"empleats-publics","language":"ca"}}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Teletreball", result["title"])
	assert.Len(t, result["sections"], 3)
}

func TestTransformErrors(t *testing.T) {
	cases := []struct {
		name   string
		agent  Transformer
		method string
		body   string
		status int
	}{
		{"unknown action", mockAgent(t), http.MethodPost, `{"action":"summon","input":"x"}`, http.StatusBadRequest},
		{"empty input", mockAgent(t), http.MethodPost, `{"action":"fix-grammar","input":" "}`, http.StatusBadRequest},
		{"bad json", mockAgent(t), http.MethodPost, `{`, http.StatusBadRequest},
		{"wrong method", mockAgent(t), http.MethodGet, ``, http.StatusMethodNotAllowed},
		{
			"model failure",
			stubTransformer{err: errors.New("upstream 500")},
			http.MethodPost, `{"action":"fix-grammar","input":"x"}`,
			http.StatusBadGateway,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts, _ := newTestServer(t, tc.agent, Options{})
			resp, body := do(t, tc.method, ts.URL+"/api/ai/transform", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestModelFailureMessageReachesClient(t *testing.T) {
	ts, _ := newTestServer(t, stubTransformer{err: errors.New("secret upstream detail")}, Options{})
	client, err := transform.NewClient(ts.URL + "/api/ai/transform")
	require.NoError(t, err)

	_, err = client.Transform(context.Background(), transform.Request{Action: transform.FixGrammar, Input: "x"})

	var f *transform.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, http.StatusBadGateway, f.Status)
	assert.Equal(t, msgModelFailed, f.Message)
}

func TestTransformRateLimit(t *testing.T) {
	ts, _ := newTestServer(t, stubTransformer{result: "ok"}, Options{RateLimit: 0.001, Burst: 1})
	body := `{"action":"fix-grammar","input":"x"}`

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/ai/transform", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := do(t, http.MethodPost, ts.URL+"/api/ai/transform", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, msgRateLimited, out["error"])
}

func TestPostsAPI(t *testing.T) {
	ts, _ := newTestServer(t, stubTransformer{}, Options{})

	resp, created := do(t, http.MethodPost, ts.URL+"/api/posts",
		`{"title":"Cita prèvia","content":"<p>Nou</p>","tags":["digital"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp, got := do(t, http.MethodGet, ts.URL+"/api/posts/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cita prèvia", got["title"])

	resp, updated := do(t, http.MethodPut, ts.URL+"/api/posts/"+id,
		`{"title":"Cita prèvia digital","content":"<p>Nou</p>","excerpt":"Resum"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Resum", updated["excerpt"])
	assert.Equal(t, id, updated["id"])

	resp, reacted := do(t, http.MethodPost, ts.URL+"/api/posts/"+id+"/reactions/like", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	like := reacted["reactions"].(map[string]any)["like"].(map[string]any)
	assert.Equal(t, float64(1), like["count"])
	assert.Equal(t, true, like["active"])

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/posts", nil)
	require.NoError(t, err)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list []posts.Post
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Cita prèvia digital", list[0].Title)
}

func TestPostsAPIErrors(t *testing.T) {
	ts, repo := newTestServer(t, stubTransformer{}, Options{})
	p, err := repo.Create(context.Background(), posts.Post{Title: "x"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing post", http.MethodGet, "/api/posts/nope", "", http.StatusNotFound},
		{"missing title", http.MethodPost, "/api/posts", `{"content":"<p>x</p>"}`, http.StatusBadRequest},
		{"unknown reaction", http.MethodPost, "/api/posts/" + p.ID + "/reactions/angry", "", http.StatusBadRequest},
		{"reaction via get", http.MethodGet, "/api/posts/" + p.ID + "/reactions/like", "", http.StatusMethodNotAllowed},
		{"delete", http.MethodDelete, "/api/posts/" + p.ID, "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, tc.method, ts.URL+tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/posts/"+p.ID+"/comments", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowedIsLocalized(t *testing.T) {
	ts, repo := newTestServer(t, mockAgent(t), Options{})
	p, err := repo.Create(context.Background(), posts.Post{Title: "x"})
	require.NoError(t, err)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/ai/transform"},
		{http.MethodDelete, "/api/posts"},
		{http.MethodPatch, "/api/posts/" + p.ID},
		{http.MethodGet, "/api/posts/" + p.ID + "/reactions/like"},
	} {
		resp, body := do(t, tc.method, ts.URL+tc.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, tc.path)
		assert.Equal(t, msgMethodNotAllowed, body["error"], tc.path)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, posts.NewMemoryRepository(), Options{})
	assert.Error(t, err)
	_, err = New(stubTransformer{}, nil, Options{})
	assert.Error(t, err)
}
