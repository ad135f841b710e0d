package main

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

	"github.com/HaritsAcheiz/kontakte-extractor/internal/classifier"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/pipeline"
)

type fakeCollector struct {
	location string
	links    []string
	res      *pipeline.Result
	err      error
}

func (f *fakeCollector) Collect(_ context.Context, location string) (*pipeline.Result, error) {
	f.location = location
	return f.res, f.err
}

func (f *fakeCollector) CollectLinks(_ context.Context, links []string) (*pipeline.Result, error) {
	f.links = links
	return f.res, f.err
}

func acmeRecord() models.Record {
	rec := models.NewRecord([]string{"Firma", "Telefon"})
	rec.Set("Firma", "Acme GmbH")
	rec.Set("Telefon", "0891234")
	return rec
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := do(t, newRouter(&fakeCollector{}, "x"), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestExtract(t *testing.T) {
	fc := &fakeCollector{res: &pipeline.Result{
		RunID:    "run-1",
		Location: "muenchen",
		Records:  []models.Record{acmeRecord()},
		Labels:   map[string]int{classifier.LabelReachable: 1},
	}}
	rr := do(t, newRouter(fc, "unterschleissheim"), http.MethodPost, "/extract", `{"location":"muenchen"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "muenchen", fc.location)
	assert.JSONEq(t, `{"runId":"run-1","location":"muenchen","records":[{"Firma":"Acme GmbH","Telefon":"0891234"}],"failures":[],"labels":{"reachable":1}}`, rr.Body.String())
}

func TestExtractDefaultLocation(t *testing.T) {
	fc := &fakeCollector{res: &pipeline.Result{RunID: "r"}}
	rr := do(t, newRouter(fc, "unterschleissheim"), http.MethodPost, "/extract", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "unterschleissheim", fc.location)
}

func TestExtractErrors(t *testing.T) {
	h := newRouter(&fakeCollector{err: errors.New("category discovery: http status 503")}, "x")

	rr := do(t, h, http.MethodPost, "/extract", `{"location":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/extract", `{"location":"x"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "http status 503")

	rr = do(t, h, http.MethodGet, "/extract", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestExtractDetail(t *testing.T) {
	fc := &fakeCollector{res: &pipeline.Result{RunID: "r", Records: []models.Record{acmeRecord()}}}
	rr := do(t, newRouter(fc, "x"), http.MethodPost, "/extract/detail", `{"url":"https://example.com/acme"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"https://example.com/acme"}, fc.links)

	var body struct {
		URL    string            `json:"url"`
		Record map[string]string `json:"record"`
		Class  struct {
			Label string `json:"label"`
		} `json:"class"`
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Acme GmbH", body.Record["Firma"])
	assert.Equal(t, classifier.LabelReachable, body.Class.Label)
	assert.Equal(t, []string{}, body.Missing)
}

func TestExtractDetailMissingFields(t *testing.T) {
	rec := models.NewRecord([]string{"Firma", "Telefon", "E-Mail"})
	rec.Set("Firma", "Acme GmbH")
	fc := &fakeCollector{res: &pipeline.Result{RunID: "r", Records: []models.Record{rec}}}
	rr := do(t, newRouter(fc, "x"), http.MethodPost, "/extract/detail", `{"url":"https://example.com/acme"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"E-Mail", "Telefon"}, body.Missing)
}

func TestExtractDetailFailures(t *testing.T) {
	h := newRouter(&fakeCollector{res: &pipeline.Result{
		Failures: []models.Failure{{Stage: pipeline.StageDetail, URL: "u", Error: "POST u: http status 500"}},
	}}, "x")
	rr := do(t, h, http.MethodPost, "/extract/detail", `{"url":"u"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	h = newRouter(&fakeCollector{res: &pipeline.Result{
		Failures: []models.Failure{{Stage: pipeline.StageExtract, URL: "u", Error: "no structured data"}},
	}}, "x")
	rr = do(t, h, http.MethodPost, "/extract/detail", `{"url":"u"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodPost, "/extract/detail", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
