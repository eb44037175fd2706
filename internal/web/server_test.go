// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pii-analyzer/internal/analyzer"
	"pii-analyzer/internal/config"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	engine, err := analyzer.Build(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(":0", engine).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postAnalyze(t *testing.T, srv *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp, raw
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := postAnalyze(t, srv, `{"text": "Envoyez un mail à jean.dupont@example.be ou appelez le +32 470 12 34 56.", "language": "fr"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var results []AnalyzeResult
	require.NoError(t, json.Unmarshal(body, &results))
	require.Len(t, results, 2)

	// offsets count code points: "à" is one character
	assert.Equal(t, "EMAIL_ADDRESS", results[0].EntityType)
	assert.Equal(t, 18, results[0].Start)
	assert.Equal(t, 40, results[0].End)
	assert.Equal(t, "EmailRecognizer", results[0].RecognitionMetadata.RecognizerName)
	assert.Nil(t, results[0].AnalysisExplanation)

	assert.Equal(t, "PHONE_NUMBER", results[1].EntityType)
	assert.Equal(t, 55, results[1].Start)
	assert.Equal(t, 71, results[1].End)
	assert.InDelta(t, 1.0, results[1].Score, 1e-9)
}

func TestAnalyzeEndpointDecisionProcess(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := postAnalyze(t, srv, `{"text": "Contactez-moi au 04 12 34 56 78", "return_decision_process": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &results))
	require.Len(t, results, 1)

	explanation, ok := results[0]["analysis_explanation"].(map[string]interface{})
	require.True(t, ok, "analysis_explanation missing: %s", body)
	assert.InDelta(t, 0.8, explanation["original_score"], 1e-9)
	assert.Equal(t, "contactez", explanation["supportive_context_word"])
}

func TestAnalyzeEndpointNoEntities(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := postAnalyze(t, srv, `{"text": "Bonjour tout le monde", "language": "fr"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestAnalyzeEndpointClientErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "empty text", body: `{"text": "", "language": "fr"}`, wantErr: "text field is missing or empty"},
		{name: "missing text", body: `{"language": "fr"}`, wantErr: "text field is missing or empty"},
		{name: "malformed JSON", body: `{"text": `, wantErr: "malformed JSON"},
		{name: "empty body", body: ``, wantErr: "request body is empty"},
		{name: "unsupported language", body: `{"text": "jean@example.com", "language": "de"}`, wantErr: `unsupported language "de"`},
		{name: "threshold out of range", body: `{"text": "jean@example.com", "score_threshold": 1.5}`, wantErr: "score_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postAnalyze(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp errorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Contains(t, errResp.Error, tt.wantErr)
		})
	}
}

func TestAnalyzeEndpointRecognizerFailure(t *testing.T) {
	sidecar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(sidecar.Close)

	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.NLPEngine.Endpoint = sidecar.URL
	})

	resp, body := postAnalyze(t, srv, `{"text": "jean@example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Contains(t, errResp.Error, "NERRecognizer")
}

func TestAnalyzeEndpointMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/analyze")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestEngineNotInitialized(t *testing.T) {
	srv := httptest.NewServer(NewServer(":0", nil, WithInitError(errors.New("bad config"))).Handler())
	t.Cleanup(srv.Close)

	resp, body := postAnalyze(t, srv, `{"text": "jean@example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Analyzer engine not initialized"}`, string(body))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "unavailable", health["status"])
	assert.Equal(t, "bad config", health["error"])
}

func getJSON(t *testing.T, url string, target interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	var health map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "pii-analyzer", health["service"])
	assert.Equal(t, []interface{}{"fr"}, health["supported_languages"])
	assert.Contains(t, health, "build_info")
	assert.NotContains(t, health, "ner")
}

func TestHealthEndpointReportsOpenSidecarCircuit(t *testing.T) {
	sidecar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(sidecar.Close)

	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.NLPEngine.Endpoint = sidecar.URL
		cfg.NLPEngine.MaxRetries = 0
	})

	var health map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	assert.Equal(t, "healthy", health["status"])
	ner, ok := health["ner"].(map[string]interface{})
	require.True(t, ok, "expected a ner section, got %v", health)
	assert.Equal(t, "CLOSED", ner["state"])

	for i := 0; i < 5; i++ {
		resp, _ := postAnalyze(t, srv, `{"text": "Jean Dupont"}`)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	}

	health = nil
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	assert.Equal(t, "degraded", health["status"])
	ner = health["ner"].(map[string]interface{})
	assert.Equal(t, "OPEN", ner["state"])
	assert.Equal(t, "NERRecognizer", ner["name"])
}

func TestRecognizersEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	var names []string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/recognizers?language=fr", &names))
	assert.Contains(t, names, "EmailRecognizer")
	assert.Contains(t, names, "BeNationalRegisterNumberRecognizer")

	var defaults []string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/recognizers", &defaults))
	assert.Equal(t, names, defaults)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/recognizers?language=de", &errResp))
	assert.Contains(t, errResp.Error, "unsupported language")
}

func TestSupportedEntitiesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	var entities []string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/supportedentities?language=fr", &entities))
	assert.Contains(t, entities, "IBAN")
	assert.Contains(t, entities, "PHONE_NUMBER")
	assert.IsIncreasing(t, entities)
}

func TestServeGracefulShutdown(t *testing.T) {
	engine, err := analyzer.Build(config.Default())
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServer(listener.Addr().String(), engine).Serve(ctx, listener)
	}()

	var health map[string]interface{}
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return json.NewDecoder(resp.Body).Decode(&health) == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "healthy", health["status"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCodePointIndex(t *testing.T) {
	text := "é€a😀"
	index := codePointIndex(text)
	require.Len(t, index, len(text)+1)

	assert.Equal(t, 0, index[0])
	assert.Equal(t, 1, index[len("é")])
	assert.Equal(t, 2, index[len("é€")])
	assert.Equal(t, 3, index[len("é€a")])
	assert.Equal(t, 4, index[len(text)])
}
