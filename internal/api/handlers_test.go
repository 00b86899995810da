package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/MarsCodex3/Lawclone/internal/payment"
	"github.com/MarsCodex3/Lawclone/internal/service"
	"github.com/MarsCodex3/Lawclone/internal/storage/sqlite"
)

// fakeGateway returns a canned checkout URL.
type fakeGateway struct {
	lastReq payment.SessionRequest
	url     string
	err     error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (string, error) {
	f.lastReq = req
	return f.url, f.err
}

// fakeWebhooks skips signature verification and returns a canned event.
type fakeWebhooks struct {
	event *payment.Event
	err   error
}

func (f *fakeWebhooks) VerifyAndParse(payload []byte, signature string) (*payment.Event, error) {
	return f.event, f.err
}

type testEnv struct {
	server   *httptest.Server
	gateway  *fakeGateway
	webhooks *fakeWebhooks
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "lawclone-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gateway := &fakeGateway{url: "https://checkout.stripe.example/session/abc"}
	webhooks := &fakeWebhooks{}

	srv := NewServer(
		service.NewInvoiceService(store),
		service.NewPaymentService(gateway, store),
		webhooks,
	)

	router := mux.NewRouter()
	srv.Register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, gateway: gateway, webhooks: webhooks}
}

func validInvoiceBody() map[string]any {
	return map[string]any{
		"userDetails": map[string]any{
			"name":    "Jane Advocate",
			"email":   "jane@chambers.example",
			"company": "Advocate & Co",
			"address": "1 Court Street",
		},
		"billTo": map[string]any{
			"name":    "Acme Corp",
			"email":   "billing@acme.example",
			"address": "99 Industry Way",
		},
		"invoiceDetails": map[string]any{
			"issueDate": "2026-01-12",
			"dueDate":   "2026-02-12",
			"frequency": "once",
		},
		"items": []map[string]any{
			{
				"activityType": "consultation",
				"date":         "2026-01-10",
				"description":  "Initial consultation",
				"amount":       "100",
			},
			{
				"activityType": "drafting",
				"date":         "2026-01-11",
				"description":  "Contract draft",
				"duration":     "2",
				"rate":         "50",
				"amount":       "1",
			},
		},
	}
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, decoded
}

func TestCreateInvoice(t *testing.T) {
	env := setupTestServer(t)

	resp, body := postJSON(t, env.server.URL+"/api/invoices", validInvoiceBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %v)", resp.StatusCode, body)
	}

	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	invoice, ok := body["invoice"].(map[string]any)
	if !ok {
		t.Fatalf("invoice missing from response: %v", body)
	}
	if invoice["id"] == "" {
		t.Error("expected invoice id")
	}
	if invoice["number"] != "INV-00001" {
		t.Errorf("number = %v, want INV-00001", invoice["number"])
	}
}

func TestCreateInvoice_ValidationFailures(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name      string
		mutate    func(body map[string]any)
		wantField string
	}{
		{
			name:      "empty items",
			mutate:    func(b map[string]any) { b["items"] = []map[string]any{} },
			wantField: "items",
		},
		{
			name: "invalid user email",
			mutate: func(b map[string]any) {
				b["userDetails"].(map[string]any)["email"] = "not-an-email"
			},
			wantField: "userDetails.email",
		},
		{
			name: "missing bill-to address",
			mutate: func(b map[string]any) {
				delete(b["billTo"].(map[string]any), "address")
			},
			wantField: "billTo.address",
		},
		{
			name: "missing due date",
			mutate: func(b map[string]any) {
				delete(b["invoiceDetails"].(map[string]any), "dueDate")
			},
			wantField: "invoiceDetails.dueDate",
		},
		{
			name: "unknown frequency",
			mutate: func(b map[string]any) {
				b["invoiceDetails"].(map[string]any)["frequency"] = "fortnightly"
			},
			wantField: "invoiceDetails.frequency",
		},
		{
			name: "item missing description",
			mutate: func(b map[string]any) {
				delete(b["items"].([]map[string]any)[0], "description")
			},
			wantField: "items[0].description",
		},
		{
			name: "negative amount",
			mutate: func(b map[string]any) {
				b["items"].([]map[string]any)[0]["amount"] = "-5"
			},
			wantField: "items[0].amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validInvoiceBody()
			tt.mutate(body)

			resp, decoded := postJSON(t, env.server.URL+"/api/invoices", body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body: %v)", resp.StatusCode, decoded)
			}

			fields, ok := decoded["fields"].(map[string]any)
			if !ok {
				t.Fatalf("fields missing from response: %v", decoded)
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("expected field error for %q, got %v", tt.wantField, fields)
			}
		})
	}

	// None of the rejected submissions may have reached persistence.
	resp, decoded := getJSON(t, env.server.URL+"/api/invoices")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	if invoices, ok := decoded["invoices"].([]any); ok && len(invoices) != 0 {
		t.Errorf("rejected submissions were persisted: %v", invoices)
	}
}

func TestGetInvoice(t *testing.T) {
	env := setupTestServer(t)

	_, created := postJSON(t, env.server.URL+"/api/invoices", validInvoiceBody())
	id := created["invoice"].(map[string]any)["id"].(string)

	resp, body := getJSON(t, env.server.URL+"/api/invoices/"+id)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %v)", resp.StatusCode, body)
	}

	if body["number"] != "INV-00001" {
		t.Errorf("number = %v, want INV-00001", body["number"])
	}
	if body["status"] != "pending" {
		t.Errorf("status = %v, want pending", body["status"])
	}
	// 100 + 2*50 (the duration*rate recomputation overrides the manual "1")
	if body["total"] != "200" {
		t.Errorf("total = %v, want 200", body["total"])
	}
	if body["subtotal"] != body["total"] {
		t.Errorf("subtotal %v != total %v", body["subtotal"], body["total"])
	}
	if body["tax"] != "0" {
		t.Errorf("tax = %v, want 0", body["tax"])
	}

	user := body["userDetails"].(map[string]any)
	if user["email"] != "jane@chambers.example" {
		t.Errorf("userDetails.email = %v", user["email"])
	}
	items := body["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("items count = %d, want 2", len(items))
	}
	second := items[1].(map[string]any)
	if second["amount"] != "100" {
		t.Errorf("items[1].amount = %v, want 100", second["amount"])
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	env := setupTestServer(t)

	resp, _ := getJSON(t, env.server.URL+"/api/invoices/does-not-exist")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreatePayment(t *testing.T) {
	env := setupTestServer(t)

	resp, body := postJSON(t, env.server.URL+"/api/create-payment", map[string]any{
		"amount":      49.99,
		"invoiceId":   "inv-123",
		"description": "Legal services",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %v)", resp.StatusCode, body)
	}

	if body["url"] != env.gateway.url {
		t.Errorf("url = %v, want %s", body["url"], env.gateway.url)
	}
	if got := payment.MinorUnits(env.gateway.lastReq.Amount); got != 4999 {
		t.Errorf("minor units = %d, want 4999", got)
	}
}

func TestCreatePayment_Validation(t *testing.T) {
	env := setupTestServer(t)

	resp, body := postJSON(t, env.server.URL+"/api/create-payment", map[string]any{
		"amount": 10.0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body: %v)", resp.StatusCode, body)
	}
	fields := body["fields"].(map[string]any)
	if _, ok := fields["invoiceId"]; !ok {
		t.Errorf("expected field error for invoiceId, got %v", fields)
	}
}

func TestCreatePayment_GatewayError(t *testing.T) {
	env := setupTestServer(t)
	env.gateway.err = fmt.Errorf("provider unavailable")

	resp, body := postJSON(t, env.server.URL+"/api/create-payment", map[string]any{
		"amount":    10.0,
		"invoiceId": "inv-123",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Error("expected error message")
	}
}

func TestStripeWebhook_MarksInvoicePaid(t *testing.T) {
	env := setupTestServer(t)

	_, created := postJSON(t, env.server.URL+"/api/invoices", validInvoiceBody())
	id := created["invoice"].(map[string]any)["id"].(string)

	env.webhooks.event = &payment.Event{
		Type:      payment.EventCheckoutCompleted,
		InvoiceID: id,
	}

	resp, body := postJSON(t, env.server.URL+"/api/webhooks/stripe", map[string]any{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %v)", resp.StatusCode, body)
	}

	_, invoice := getJSON(t, env.server.URL+"/api/invoices/"+id)
	if invoice["status"] != "paid" {
		t.Errorf("status = %v, want paid", invoice["status"])
	}
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	env := setupTestServer(t)
	env.webhooks.err = fmt.Errorf("stripe signature invalid")

	resp, _ := postJSON(t, env.server.URL+"/api/webhooks/stripe", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
