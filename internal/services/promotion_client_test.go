package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"promotion-console/internal/apperror"
	"promotion-console/internal/config"
	"promotion-console/internal/logger"
	"promotion-console/internal/metrics"
	"promotion-console/internal/models"
	"promotion-console/internal/testserver"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(t *testing.T, baseURL string) (*PromotionClient, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.New("promotest", reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	return NewPromotionClient(&config.APIConfig{BaseURL: baseURL}, logger.Discard(), m), reg
}

func requestCount(t *testing.T, reg *prometheus.Registry, op, outcome string) float64 {
	t.Helper()
	samples, err := metrics.Counters(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	labels := `{operation="` + op + `",outcome="` + outcome + `"}`
	for _, s := range samples {
		if s.Name == "promotest_requests_total" && s.Labels == labels {
			return s.Value
		}
	}
	return 0
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestPromotionClient_CreateSendsPayload(t *testing.T) {
	srv := testserver.New(t)
	client, reg := newTestClient(t, srv.URL+"/")

	payload := models.PromotionPayload{
		Name:      "Sale",
		StartDate: "2024-01-01",
		EndDate:   "2024-02-01",
		Type:      "PERCENT",
		Ongoing:   true,
		ProductID: int64Ptr(42),
		Value:     float64Ptr(10),
	}
	created, err := client.Create(context.Background(), payload)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != "1" || created.Name != "Sale" || created.ProductID == nil || *created.ProductID != 42 {
		t.Fatalf("unexpected created promotion: %+v", created)
	}

	req, ok := srv.LastRequest()
	if !ok {
		t.Fatalf("server saw no request")
	}
	if req.Method != http.MethodPost || req.Path != "/promotions" {
		t.Fatalf("unexpected request line: %s %s", req.Method, req.Path)
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type: %q", req.Header.Get("Content-Type"))
	}
	if req.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
	want := `{"name":"Sale","start_date":"2024-01-01","end_date":"2024-02-01","type":"PERCENT","ongoing":true,"product_id":42,"value":10}`
	if string(req.Body) != want {
		t.Fatalf("unexpected body:\n got %s\nwant %s", req.Body, want)
	}

	if got := requestCount(t, reg, OpCreate, metrics.OutcomeOK); got != 1 {
		t.Fatalf("expected one successful create, got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "promotest_requests_total"); err != nil || n != 1 {
		t.Fatalf("expected one counter series, got %d (%v)", n, err)
	}
}

func TestPromotionClient_RetrieveNotFoundUsesServerMessage(t *testing.T) {
	srv := testserver.New(t)
	client, _ := newTestClient(t, srv.URL)

	_, err := client.Retrieve(context.Background(), "9")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !apperror.Is(err, apperror.KindServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if apperror.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", apperror.StatusCode(err))
	}
	if got := apperror.Message(err); got != "Promotion with id '9' was not found." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestPromotionClient_ServerErrorWithoutMessage(t *testing.T) {
	srv := testserver.New(t)
	client, _ := newTestClient(t, srv.URL)

	bodies := []string{"", "not json", `{"message":""}`, `{"message":null}`, `{"error":"boom"}`}
	for _, body := range bodies {
		body := body
		srv.SetHook(func(w http.ResponseWriter, r *http.Request) bool {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, body)
			return true
		})
		_, err := client.Retrieve(context.Background(), "1")
		if got := apperror.Message(err); got != apperror.GenericMessage {
			t.Fatalf("body %q: expected generic message, got %q", body, got)
		}
	}
}

func TestPromotionClient_UpdateSendsIDOnlyInPath(t *testing.T) {
	srv := testserver.New(t)
	id := srv.Seed(testserver.Promotion{Name: "Old"})
	client, _ := newTestClient(t, srv.URL)

	updated, err := client.Update(context.Background(), "1", models.PromotionPayload{Name: "New", Type: "BOGO"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "New" || updated.ID != "1" {
		t.Fatalf("unexpected updated promotion: %+v", updated)
	}

	req, _ := srv.LastRequest()
	if req.Method != http.MethodPut || req.Path != "/promotions/1" {
		t.Fatalf("unexpected request line: %s %s", req.Method, req.Path)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if _, ok := body["id"]; ok {
		t.Fatalf("id must not be sent in body: %s", req.Body)
	}
	if stored, _ := srv.Get(id); stored.Name != "New" {
		t.Fatalf("server did not store update: %+v", stored)
	}
}

func TestPromotionClient_UpdateValidationMessage(t *testing.T) {
	srv := testserver.New(t)
	srv.Seed(testserver.Promotion{Name: "Old"})
	client, _ := newTestClient(t, srv.URL)

	_, err := client.Update(context.Background(), "1", models.PromotionPayload{})
	if got := apperror.Message(err); got != "Invalid Promotion: missing name" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestPromotionClient_DeleteIgnoresBody(t *testing.T) {
	srv := testserver.New(t)
	srv.Seed(testserver.Promotion{Name: "Gone"})
	client, _ := newTestClient(t, srv.URL)

	if err := client.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := srv.Get(1); ok {
		t.Fatalf("promotion still stored")
	}

	srv.SetHook(func(w http.ResponseWriter, r *http.Request) bool {
		testserver.WriteError(w, http.StatusConflict, "cannot delete")
		return true
	})
	err := client.Delete(context.Background(), "1")
	if got := apperror.Message(err); got != apperror.GenericMessage {
		t.Fatalf("delete failure must use generic message, got %q", got)
	}
}

func TestPromotionClient_SearchBuildsURL(t *testing.T) {
	srv := testserver.New(t)
	srv.Seed(testserver.Promotion{Name: "Sale", ProductID: int64Ptr(7)})
	srv.Seed(testserver.Promotion{Name: "Other"})
	client, _ := newTestClient(t, srv.URL)

	found, err := client.Search(context.Background(), "name=Sale")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Sale" {
		t.Fatalf("unexpected search result: %+v", found)
	}
	req, _ := srv.LastRequest()
	if req.Path != "/promotions" || req.RawQuery != "name=Sale" {
		t.Fatalf("unexpected url: %s?%s", req.Path, req.RawQuery)
	}

	all, err := client.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected all promotions, got %d", len(all))
	}
	req, _ = srv.LastRequest()
	if req.RawQuery != "" {
		t.Fatalf("empty query must not add parameters: %q", req.RawQuery)
	}
}

func TestPromotionClient_SearchNullIsEmpty(t *testing.T) {
	srv := testserver.New(t)
	srv.SetHook(func(w http.ResponseWriter, r *http.Request) bool {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "null")
		return true
	})
	client, _ := newTestClient(t, srv.URL)

	found, err := client.Search(context.Background(), "name=none")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if found == nil || len(found) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", found)
	}
}

func TestPromotionClient_DecodeFailure(t *testing.T) {
	srv := testserver.New(t)
	srv.SetHook(func(w http.ResponseWriter, r *http.Request) bool {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "{broken")
		return true
	})
	client, reg := newTestClient(t, srv.URL)

	_, err := client.Retrieve(context.Background(), "1")
	if !apperror.Is(err, apperror.KindDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if apperror.Message(err) != apperror.GenericMessage {
		t.Fatalf("unexpected message: %q", apperror.Message(err))
	}
	if got := requestCount(t, reg, OpRetrieve, string(apperror.KindDecode)); got != 1 {
		t.Fatalf("expected decode outcome recorded, got %v", got)
	}
}

func TestPromotionClient_TransportFailure(t *testing.T) {
	client, _ := newTestClient(t, "http://promotions.invalid")
	client.client.Transport = roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	for name, call := range map[string]func() error{
		OpCreate: func() error {
			_, err := client.Create(context.Background(), models.PromotionPayload{Name: "x"})
			return err
		},
		OpDelete: func() error { return client.Delete(context.Background(), "1") },
		OpSearch: func() error {
			_, err := client.Search(context.Background(), "")
			return err
		},
	} {
		err := call()
		if !apperror.Is(err, apperror.KindTransport) {
			t.Fatalf("%s: expected transport error, got %v", name, err)
		}
		if apperror.Message(err) != apperror.GenericMessage {
			t.Fatalf("%s: unexpected message %q", name, apperror.Message(err))
		}
	}
}

func TestPromotionClient_CanceledContext(t *testing.T) {
	srv := testserver.New(t)
	client, _ := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Retrieve(ctx, "1")
	if !apperror.Is(err, apperror.KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected wrapped context error, got %v", err)
	}
}

func TestPromotionPathEscapesID(t *testing.T) {
	if got := promotionPath("a/b c"); !strings.HasSuffix(got, "/a%2Fb%20c") {
		t.Fatalf("id not escaped: %s", got)
	}
}
