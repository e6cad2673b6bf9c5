package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"auto_wp_seo_publisher/generator"
	"auto_wp_seo_publisher/pipeline"
)

type fakeBuilder struct {
	err error
}

func (b fakeBuilder) Build(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	if b.err != nil {
		return pipeline.Result{}, b.err
	}
	return pipeline.Result{
		PostID:   7,
		Link:     "https://blog.example/?p=7",
		Title:    req.Topic,
		Failures: []*generator.Failure{{Stage: "faq", Kind: generator.FailureCall}},
	}, nil
}

func startBuild(t *testing.T, h http.Handler, body string) (int, buildCreateResp) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/builds", strings.NewReader(body)))
	var resp buildCreateResp
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	return rec.Code, resp
}

func getBuild(t *testing.T, h http.Handler, id string) (int, build) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/builds/"+id, nil))
	var b build
	_ = json.NewDecoder(rec.Body).Decode(&b)
	return rec.Code, b
}

func TestBuildLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		builder    fakeBuilder
		wantStatus string
	}{
		{"success", fakeBuilder{}, statusDone},
		{"publish rejected", fakeBuilder{err: errors.New("publish: 401")}, statusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.builder, nil)
			if err != nil {
				t.Fatal(err)
			}
			h := s.Routes()

			code, created := startBuild(t, h, `{"topic":"청년 월세","internal_links":[{"title":"a","url":"https://blog.example/a"}]}`)
			if code != http.StatusAccepted || created.BuildID == "" || created.Status != statusRunning {
				t.Fatalf("create: %d %+v", code, created)
			}
			s.Wait()

			code, b := getBuild(t, h, created.BuildID)
			if code != http.StatusOK || b.Status != tt.wantStatus {
				t.Fatalf("get: %d %+v", code, b)
			}
			if tt.wantStatus == statusDone && (b.Result == nil || b.Result.PostID != 7 || len(b.Failures) != 1) {
				t.Errorf("done build = %+v", b)
			}
			if tt.wantStatus == statusFailed && b.Error == "" {
				t.Error("failed build without error")
			}
		})
	}
}

func TestBuildCreateValidation(t *testing.T) {
	s, _ := New(fakeBuilder{}, nil)
	h := s.Routes()
	for _, body := range []string{`{"topic":"  "}`, `not json`} {
		if code, _ := startBuild(t, h, body); code != http.StatusBadRequest {
			t.Errorf("body %q: status %d", body, code)
		}
	}
	if code, _ := getBuild(t, h, "missing"); code != http.StatusNotFound {
		t.Errorf("unknown build: status %d", code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := New(fakeBuilder{}, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status %d", rec.Code)
	}
}
