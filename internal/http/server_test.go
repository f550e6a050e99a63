package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expns/internal/core"
	"expns/internal/log"
	"expns/internal/services"
	"expns/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(log.Config{Output: io.Discard})
	svc := services.NewLedgerService(memory.New(), services.WithLogger(logger))
	srv := NewServer(":0", svc, logger)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

const formType = "application/x-www-form-urlencoded"

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodGet, "/", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<title>Expense Tracker - No Transactions</title>") {
		t.Fatalf("index body missing empty title:\n%s", rr.Body.String())
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := do(srv, http.MethodGet, path, "", ""); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	if rr := do(srv, http.MethodGet, "/nope", "", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rr.Code)
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t)
	rr := do(srv, http.MethodGet, "/healthz", "", "")

	for _, name := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "X-Request-ID"} {
		if rr.Header().Get(name) == "" {
			t.Errorf("missing header %s", name)
		}
	}
}

func TestAddTransactionForm(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodPost, "/transactions", formType, "title=Coffee&category=Food&amount=4")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get(TransactionCountHeader); got != "1" {
		t.Fatalf("expected count header 1, got %q", got)
	}
	body := rr.Body.String()
	for _, want := range []string{"Transaction Added!", "1. Coffee", "Category: Food", "Amount: 4"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "transaction:added") {
		t.Errorf("missing transaction:added trigger: %q", rr.Header().Get("HX-Trigger"))
	}

	rr = do(srv, http.MethodGet, "/", "", "")
	if !strings.Contains(rr.Body.String(), "Expense Tracker - 1 Transactions") {
		t.Fatalf("index title not updated:\n%s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "1 Transaction(s) Recorded") {
		t.Fatal("index missing status line")
	}
}

func TestAddTransactionValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", "title=&category=Food&amount=4", "Please enter a title for the transaction."},
		{"missing category", "title=Coffee&category=&amount=4", "Please enter a category for the transaction."},
		{"missing amount", "title=Coffee&category=Food", "Please enter an amount for the transaction."},
		{"decimal amount", "title=Coffee&category=Food&amount=4.50", "Amount must be a number."},
		{"negative amount", "title=Coffee&category=Food&amount=-4", "Amount must be a number."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			rr := do(srv, http.MethodPost, "/transactions", formType, tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Fatalf("body missing %q:\n%s", tt.want, rr.Body.String())
			}
			if got := rr.Header().Get(TransactionCountHeader); got != "0" {
				t.Fatalf("count must stay 0, got %q", got)
			}
		})
	}
}

func TestAddTransactionJSON(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodPost, "/transactions", "application/json", `{"title":"Lunch","category":"Food","amount":12}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var out addResultJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Transaction == nil || out.Transaction.Amount != 12 {
		t.Fatalf("unexpected result %+v", out)
	}
	if out.Notice.Title != "Success" || out.ListItem != "1. Lunch\n   Category: Food\n   Amount: 12" {
		t.Fatalf("unexpected notice or list item %+v", out)
	}

	rr = do(srv, http.MethodPost, "/transactions", "application/json", `{"title":"Lunch","category":"Food","amount":12.5}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("fractional JSON amount: expected 422, got %d", rr.Code)
	}

	rr = do(srv, http.MethodPost, "/transactions", "application/json", `{"title":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed JSON: expected 400, got %d", rr.Code)
	}

	rr = do(srv, http.MethodPost, "/transactions", "application/json", `{"title":"a"} {"title":"b"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("trailing JSON: expected 400, got %d", rr.Code)
	}
}

func TestAddTransactionKeepsAmountText(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        int64
	}{
		{"JSON number above 2^53", "application/json", `{"title":"a","category":"b","amount":9007199254740993}`, 9007199254740993},
		{"JSON largest amount", "application/json", `{"title":"a","category":"b","amount":9223372036854775807}`, math.MaxInt64},
		{"JSON string amount", "application/json", `{"title":"a","category":"b","amount":"9007199254740993"}`, 9007199254740993},
		{"form amount", formType, "title=a&category=b&amount=9007199254740993", 9007199254740993},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			if rr := do(srv, http.MethodPost, "/transactions", tt.contentType, tt.body); rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var out listJSON
			rr := do(srv, http.MethodGet, "/transactions", "", "")
			if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(out.Transactions) != 1 || out.Transactions[0].Amount != tt.want {
				t.Fatalf("expected amount %d, got %+v", tt.want, out.Transactions)
			}
		})
	}
}

func TestAddTransactionRejectsOversizedBody(t *testing.T) {
	title := strings.Repeat("x", maxBodyBytes)
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"form", formType, "title=" + title + "&category=Food&amount=123456789"},
		{"JSON", "application/json", `{"title":"` + title + `","category":"Food","amount":123456789}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			rr := do(srv, http.MethodPost, "/transactions", tt.contentType, tt.body)
			if rr.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("expected 413, got %d", rr.Code)
			}
			if n, _ := srv.ledger.Len(context.Background()); n != 0 {
				t.Fatalf("oversized body must not be recorded, ledger has %d", n)
			}
		})
	}

	// A body of exactly the limit is still parsed.
	srv := newTestServer(t)
	body := "category=Food&amount=5&title="
	body += strings.Repeat("x", maxBodyBytes-len(body))
	if rr := do(srv, http.MethodPost, "/transactions", formType, body); rr.Code != http.StatusOK {
		t.Fatalf("body at the limit: expected 200, got %d", rr.Code)
	}
}

func TestAddTransactionWhitespaceAndOverflow(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodPost, "/transactions", formType, "title=+&category=+&amount=4")
	if rr.Code != http.StatusOK {
		t.Fatalf("whitespace fields are present: expected 200, got %d", rr.Code)
	}

	rr = do(srv, http.MethodPost, "/transactions", formType, "title=a&category=Food&amount=9223372036854775807")
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "Amount is too large.") {
		t.Fatalf("expected 422 overflow notice, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get(TransactionCountHeader); got != "1" {
		t.Fatalf("count must stay 1, got %q", got)
	}

	rr = do(srv, http.MethodGet, "/chart.json", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("chart after rejected overflow: expected 200, got %d", rr.Code)
	}
}

func TestListTransactions(t *testing.T) {
	srv := newTestServer(t)

	var out listJSON
	rr := do(srv, http.MethodGet, "/transactions", "", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.State != "empty" || out.Count != 0 || len(out.Transactions) != 0 {
		t.Fatalf("unexpected empty list %+v", out)
	}

	do(srv, http.MethodPost, "/transactions", formType, "title=Rent&category=Home&amount=900")
	do(srv, http.MethodPost, "/transactions", formType, "title=Bus&category=Travel&amount=2")

	rr = do(srv, http.MethodGet, "/transactions", "", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.State != "non_empty" || out.Count != 2 {
		t.Fatalf("unexpected list %+v", out)
	}
	if out.Transactions[0].Title != "Rent" || out.Transactions[1].Seq != 2 {
		t.Fatalf("transactions out of order %+v", out.Transactions)
	}
}

func TestChartEmpty(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodGet, "/chart", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No transactions to show graph.") {
		t.Fatalf("missing No Data notice:\n%s", rr.Body.String())
	}

	rr = do(srv, http.MethodGet, "/chart.json", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var out map[string]core.Notice
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["notice"].Title != "No Data" {
		t.Fatalf("unexpected notice %+v", out)
	}
}

func TestChartAggregatesByCategory(t *testing.T) {
	srv := newTestServer(t)
	for _, body := range []string{
		"title=Coffee&category=Food&amount=4",
		"title=Bus&category=Travel&amount=2",
		"title=Lunch&category=Food&amount=16",
	} {
		if rr := do(srv, http.MethodPost, "/transactions", formType, body); rr.Code != http.StatusOK {
			t.Fatalf("add %q: %d", body, rr.Code)
		}
	}

	rr := do(srv, http.MethodGet, "/chart.json", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out chartJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Title != "Transaction Breakdown" || out.XLabel != "Categories" || out.YLabel != "Amount" {
		t.Fatalf("unexpected captions %+v", out)
	}
	want := []barJSON{{Category: "Food", Total: 20}, {Category: "Travel", Total: 2}}
	if len(out.Bars) != len(want) || out.Bars[0] != want[0] || out.Bars[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, out.Bars)
	}

	rr = do(srv, http.MethodGet, "/chart", "", "")
	body := rr.Body.String()
	for _, want := range []string{"Transaction Breakdown", "width: 100%", "width: 10%", "Travel"} {
		if !strings.Contains(body, want) {
			t.Errorf("chart missing %q:\n%s", want, body)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rr := do(srv, http.MethodDelete, "/transactions", "", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestRateLimitOnPOST(t *testing.T) {
	srv := newTestServer(t)
	for i := 0; i < 60; i++ {
		if rr := do(srv, http.MethodPost, "/transactions", formType, "title=x&category=y&amount=1"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}
	if rr := do(srv, http.MethodPost, "/transactions", formType, "title=x&category=y&amount=1"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/transactions", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", rr.Code)
	}
}

func TestStats(t *testing.T) {
	srv := newTestServer(t)
	do(srv, http.MethodGet, "/?file=../../etc/passwd", "", "")

	rr := do(srv, http.MethodGet, "/debug/stats", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got statsJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalRequests != 2 || got.SuspiciousRequests != 1 || got.RateLimited != 0 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

type brokenLedger struct{}

func (brokenLedger) Add(context.Context, string, string, string) (services.AddResult, error) {
	return services.AddResult{}, errors.New("disk full")
}
func (brokenLedger) Aggregate(context.Context) (core.ChartSeries, error) {
	return core.ChartSeries{}, errors.New("disk full")
}
func (brokenLedger) Transactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("disk full")
}
func (brokenLedger) Len(context.Context) (int, error) { return 0, errors.New("disk full") }

func TestBackendFailures(t *testing.T) {
	srv := NewServer(":0", brokenLedger{}, log.New(log.Config{Output: io.Discard}))
	defer srv.Shutdown(context.Background())

	if rr := do(srv, http.MethodPost, "/transactions", formType, "title=a&category=b&amount=1"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("add: expected 500, got %d", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/chart.json", "", ""); rr.Code != http.StatusInternalServerError {
		t.Fatalf("chart: expected 500, got %d", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/readyz", "", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz: expected 503, got %d", rr.Code)
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		total, peak int64
		want        int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{5, 10, 50},
		{1, 1000, 2},
		{3, 0, 0},
		{math.MaxInt64, math.MaxInt64, 100},
		{math.MaxInt64 / 2, math.MaxInt64, 50},
	}
	for _, tt := range tests {
		if got := barWidth(tt.total, tt.peak); got != tt.want {
			t.Errorf("barWidth(%d, %d) = %d, want %d", tt.total, tt.peak, got, tt.want)
		}
	}
}
