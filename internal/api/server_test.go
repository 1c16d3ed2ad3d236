package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/regdiff/internal/analyze"
	"github.com/dgallion1/regdiff/internal/cache"
	"github.com/dgallion1/regdiff/internal/config"
	"github.com/dgallion1/regdiff/internal/diff"
	"github.com/dgallion1/regdiff/internal/metrics"
	"github.com/dgallion1/regdiff/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oldPolicy = "1.0 Scope\nThis applies to all vendors.\n\n2.0 Fees\nFees are due monthly."
	newPolicy = "1.0 Scope\nThis applies to all vendors and contractors.\n\n3.0 Penalties\nLate fees incur a 5% penalty."
)

type stubBackend struct{}

func (stubBackend) Generate(_ context.Context, prompt string) (string, error) {
	if id, ok := sectionID(prompt); ok {
		return `[{"section_id":"` + id + `","change_summary":"Extends scope to contractors.","change_type":"Stricter Requirement","change_impact":"medium"}]`, nil
	}
	return `{"change_summary":"Introduces late payment penalties.","change_type":"New Requirement"}`, nil
}

func sectionID(prompt string) (string, bool) {
	for _, line := range strings.Split(prompt, "\n") {
		if id, ok := strings.CutPrefix(line, "Section ID: "); ok {
			return id, true
		}
	}
	return "", false
}

type testEnv struct {
	server *Server
	reg    *prometheus.Registry
}

func newTestServer(t *testing.T, withAnalyzer bool, mutate ...func(*config.Config)) testEnv {
	t.Helper()
	cfg := config.Config{MaxUploadBytes: 1 << 20, SnippetChars: 500}
	for _, m := range mutate {
		m(&cfg)
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)

	var a *analyze.Analyzer
	if withAnalyzer {
		a = analyze.NewAnalyzer(stubBackend{}, analyze.Config{Model: "stub-model"}, nil, rec, nil)
	}
	c := pipeline.NewComparator(cache.New(time.Hour, 16), a, rec, nil, cfg.SnippetChars)
	orch := pipeline.NewOrchestrator(c, pipeline.NewJobStore(time.Hour), 1, 4, rec, nil)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return testEnv{server: NewServer(c, orch, metrics.HTTPHandler(reg), nil, cfg), reg: reg}
}

type part struct {
	field, filename string
	content         []byte
}

func filePart(field, filename, content string) part {
	return part{field: field, filename: filename, content: []byte(content)}
}

func valuePart(field, value string) part {
	return part{field: field, content: []byte(value)}
}

func policyParts() []part {
	return []part{
		filePart("old_version", "v1.txt", oldPolicy),
		filePart("new_version", "v2.txt", newPolicy),
	}
}

func (e testEnv) do(t *testing.T, method, path string, parts []part) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	contentType := ""
	if parts != nil {
		mw := multipart.NewWriter(&body)
		for _, p := range parts {
			var (
				w   io.Writer
				err error
			)
			if p.filename != "" {
				w, err = mw.CreateFormFile(p.field, p.filename)
			} else {
				w, err = mw.CreateFormField(p.field)
			}
			require.NoError(t, err)
			_, err = w.Write(p.content)
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())
		contentType = mw.FormDataContentType()
	}

	req := httptest.NewRequest(method, path, &body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestServer(t, false)
	env.do(t, http.MethodPost, "/api/compare/sections", policyParts())

	rr := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy","cache_size":1}`, rr.Body.String())
}

func TestCompareSections(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodPost, "/api/compare/sections", policyParts())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	res := decode[diff.SectionComparisonResult](t, rr)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "30 penalties", res.Added[0].Title)
	require.Len(t, res.Deleted, 1)
	assert.Equal(t, "2.0 Fees\nFees are due monthly.", res.Deleted[0].Content)
}

func TestCompareSections_EmptyResultsAreArrays(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodPost, "/api/compare/sections", []part{
		filePart("old_version", "v1.txt", oldPolicy),
		filePart("new_version", "v2.txt", oldPolicy),
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"added":[],"deleted":[]}`, rr.Body.String())
}

func TestCompareSections_Markdown(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodPost, "/api/compare/sections", []part{
		filePart("old_version", "v1.md", "# Handbook\n\n## Fees\n\nFees are *due* monthly.\n"),
		filePart("new_version", "v2.md", "# Handbook\n\n## Fees\n\nFees are due monthly.\n\n## Appeals\n\nFile within 30 days.\n"),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[diff.SectionComparisonResult](t, rr)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "appeals", res.Added[0].Title)
	assert.Empty(t, res.Deleted)
}

func TestCompareSections_UploadErrors(t *testing.T) {
	tests := []struct {
		name  string
		parts []part
		code  int
		msg   string
	}{
		{
			name:  "missing new version",
			parts: []part{filePart("old_version", "v1.txt", oldPolicy)},
			code:  http.StatusBadRequest,
			msg:   "new_version is required",
		},
		{
			name: "invalid utf-8",
			parts: []part{
				filePart("old_version", "v1.txt", oldPolicy),
				filePart("new_version", "v2.txt", "1.0 Scope\n\xff\xfe\xfd broken"),
			},
			code: http.StatusBadRequest,
			msg:  "decode v2.txt",
		},
		{
			name: "unsupported type",
			parts: []part{
				filePart("old_version", "v1.csv", "a,b"),
				filePart("new_version", "v2.txt", newPolicy),
			},
			code: http.StatusBadRequest,
			msg:  "unsupported file type: .csv",
		},
		{
			name: "oversize",
			parts: []part{
				filePart("old_version", "v1.txt", strings.Repeat("x", 2048)),
				filePart("new_version", "v2.txt", newPolicy),
			},
			code: http.StatusRequestEntityTooLarge,
			msg:  "old_version exceeds max size",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestServer(t, false, func(c *config.Config) { c.MaxUploadBytes = 1024 })
			rr := env.do(t, http.MethodPost, "/api/compare/sections", tt.parts)
			require.Equal(t, tt.code, rr.Code, rr.Body.String())
			body := decode[map[string]string](t, rr)
			assert.Contains(t, body["error"], tt.msg)
		})
	}
}

func TestCompareSections_NotMultipart(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodPost, "/api/compare/sections", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCompareParagraphs(t *testing.T) {
	env := newTestServer(t, false)
	rr := env.do(t, http.MethodPost, "/api/compare/paragraphs", policyParts())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	res := decode[map[string]diff.ParagraphComparisonResult](t, rr)
	require.Contains(t, res, "10 scope")
	require.Len(t, res["10 scope"].Modified, 1)
	assert.InDelta(t, 76.0/92.0, *res["10 scope"].Modified[0].Similarity, 1e-9)

	filtered := env.do(t, http.MethodPost, "/api/compare/paragraphs",
		append(policyParts(), valuePart("section_filter", "20 fees")))
	require.Equal(t, http.StatusOK, filtered.Code)
	assert.JSONEq(t, `{}`, filtered.Body.String())
}

func TestAnalyze_Disabled(t *testing.T) {
	env := newTestServer(t, false)
	for _, path := range []string{"/api/analyze/added", "/api/analyze/modified", "/api/analyze/jobs"} {
		rr := env.do(t, http.MethodPost, path, policyParts())
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, path)
	}
	rr := env.do(t, http.MethodGet, "/api/stats/llm", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAnalyzeAdded(t *testing.T) {
	env := newTestServer(t, true)
	rr := env.do(t, http.MethodPost, "/api/analyze/added", policyParts())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	res := decode[[]pipeline.AddedAnalysis](t, rr)
	require.Len(t, res, 1)
	assert.Equal(t, "30 penalties", res[0].SectionTitle)
	assert.Equal(t, "New Requirement", res[0].Analysis.ChangeType)
	assert.Equal(t, "Introduces late payment penalties.", res[0].Analysis.ChangeSummary)
}

func TestAnalyzeModified(t *testing.T) {
	env := newTestServer(t, true, func(c *config.Config) { c.SnippetChars = 9 })
	rr := env.do(t, http.MethodPost, "/api/analyze/modified",
		append(policyParts(), valuePart("batch_size", "2")))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	res := decode[map[string]map[string]any](t, rr)
	require.Contains(t, res, "10 scope")
	got := res["10 scope"]
	assert.Equal(t, "Stricter Requirement", got["change_type"])
	assert.Equal(t, "Medium", got["change_impact"])
	assert.Equal(t, "1.0 Scope...", got["old_content"])
	assert.Equal(t, "1.0 Scope...", got["new_content"])
}

func TestAnalyzeModified_BadBatchSize(t *testing.T) {
	env := newTestServer(t, true)
	rr := env.do(t, http.MethodPost, "/api/analyze/modified",
		append(policyParts(), valuePart("batch_size", "zero")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalysisJobs(t *testing.T) {
	env := newTestServer(t, true)
	rr := env.do(t, http.MethodPost, "/api/analyze/jobs",
		append(policyParts(), valuePart("kind", "modified")))
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	accepted := decode[map[string]string](t, rr)
	require.NotEmpty(t, accepted["job_id"])
	assert.Equal(t, "/api/analyze/jobs/"+accepted["job_id"], accepted["poll_url"])

	var snap map[string]any
	require.Eventually(t, func() bool {
		poll := env.do(t, http.MethodGet, accepted["poll_url"], nil)
		if poll.Code != http.StatusOK {
			return false
		}
		snap = decode[map[string]any](t, poll)
		return snap["status"] == string(pipeline.StatusCompleted)
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "v1.txt", snap["old_version"])
	result, ok := snap["result"].(map[string]any)
	require.True(t, ok, "missing result in %v", snap)
	assert.Contains(t, result, "10 scope")
}

func TestAnalysisJobs_Errors(t *testing.T) {
	env := newTestServer(t, true)

	rr := env.do(t, http.MethodPost, "/api/analyze/jobs",
		append(policyParts(), valuePart("kind", "everything")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/analyze/jobs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"job not found"}`, rr.Body.String())
}

func TestClearCache(t *testing.T) {
	env := newTestServer(t, false)
	env.do(t, http.MethodPost, "/api/compare/sections", policyParts())

	rr := env.do(t, http.MethodDelete, "/api/cache", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"cleared":1}`, rr.Body.String())

	rr = env.do(t, http.MethodDelete, "/api/cache", nil)
	assert.JSONEq(t, `{"cleared":0}`, rr.Body.String())
}

func TestLLMStats(t *testing.T) {
	env := newTestServer(t, true)
	env.do(t, http.MethodPost, "/api/analyze/added", policyParts())

	rr := env.do(t, http.MethodGet, "/api/stats/llm", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[struct {
		Model string                `json:"model"`
		Stats analyze.StatsSnapshot `json:"stats"`
	}](t, rr)
	assert.Equal(t, "stub-model", body.Model)
	assert.Equal(t, 1, body.Stats.Count)
	assert.Equal(t, int64(1), body.Stats.Outcomes[metrics.OutcomeSingle])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestServer(t, false)
	env.do(t, http.MethodPost, "/api/compare/sections", policyParts())
	env.do(t, http.MethodPost, "/api/compare/sections", policyParts())

	rr := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "regdiff_cache_hits_total 1")
	assert.Contains(t, rr.Body.String(), "regdiff_cache_misses_total 1")
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"policy.txt":           "policy.txt",
		"../../etc/passwd.txt": "passwd.txt",
		`C:\docs\v1.md`:        "C:_docs_v1.md",
		"":                     "unnamed",
		"/":                    "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
