package ordersync

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

func writeTestKey(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "netsuite.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("writing key: %v", err)
	}
	return path, key
}

func testNetSuiteConfig(keyPath string) config.NetSuiteConfig {
	return config.NetSuiteConfig{
		AccountID:      "123456",
		ConsumerKey:    "consumer-key",
		CertificateID:  "cert-id",
		ScriptID:       42,
		DeployID:       1,
		PrivateKeyPath: keyPath,
	}
}

func TestTokenSourceExchangesAndCaches(t *testing.T) {
	keyPath, key := writeTestKey(t)

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "client_credentials" {
			t.Errorf("unexpected grant_type: %s", got)
		}
		assertion := r.Form.Get("client_assertion")
		if assertion == "" {
			t.Error("missing client_assertion")
		}

		parsed, err := jwt.Parse(assertion, func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != "PS256" {
				return nil, fmt.Errorf("unexpected alg %s", token.Method.Alg())
			}
			return &key.PublicKey, nil
		})
		if err != nil || !parsed.Valid {
			t.Errorf("assertion does not verify: %v", err)
		}
		if kid := parsed.Header["kid"]; kid != "cert-id" {
			t.Errorf("unexpected kid: %v", kid)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	source, err := NewTokenSource(testNetSuiteConfig(keyPath), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("NewTokenSource: %v", err)
	}

	ctx := context.Background()
	token, err := source.Token(ctx)
	if err != nil || token != "tok-1" {
		t.Fatalf("Token: token=%q err=%v", token, err)
	}

	// Second call must reuse the cached token.
	if _, err := source.Token(ctx); err != nil {
		t.Fatalf("cached Token: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected one token exchange, got %d", requests)
	}
}

func TestTokenSourceRejectsErrorResponse(t *testing.T) {
	keyPath, _ := writeTestKey(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	source, err := NewTokenSource(testNetSuiteConfig(keyPath), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("NewTokenSource: %v", err)
	}

	if _, err := source.Token(context.Background()); err == nil {
		t.Fatal("expected error for failed exchange")
	}
}

type staticTokens struct{ token string }

func (s staticTokens) Token(ctx context.Context) (string, error) { return s.token, nil }

func TestClientFetchWorkOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-9" {
			t.Errorf("unexpected authorization: %s", got)
		}
		query := r.URL.Query()
		if query.Get("script") != "42" || query.Get("deploy") != "1" {
			t.Errorf("unexpected restlet params: %v", query)
		}
		if query.Get("created_at_min") != "01/06/2025" {
			t.Errorf("unexpected created_at_min: %s", query.Get("created_at_min"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"Work_order_list":[
			{"work_order_no":"WO-1001","mcpl_part_code":"MCPL-1","customer_name":"Acme","guage":"0.35"},
			{"work_order_no":"WO-1002","wire_type":"FLRY-A T2 (7/0.21)"}
		]}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(testNetSuiteConfig(""), staticTokens{token: "tok-9"}, server.Client(), server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	orders, err := client.FetchWorkOrders(context.Background(), "01/06/2025")
	if err != nil {
		t.Fatalf("FetchWorkOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].WorkOrderNo != "WO-1001" || orders[0].Gauge != "0.35" {
		t.Fatalf("unexpected first order: %+v", orders[0])
	}
	if !strings.Contains(orders[1].Raw(), "FLRY-A") {
		t.Fatalf("raw payload not preserved: %s", orders[1].Raw())
	}
}

type fakeFetcher struct {
	orders []WorkOrderPayload
	err    error
}

func (f fakeFetcher) FetchWorkOrders(ctx context.Context, createdAtMin string) ([]WorkOrderPayload, error) {
	return f.orders, f.err
}

type fakeUpserter struct {
	saved  []string
	failOn string
}

func (f *fakeUpserter) Upsert(ctx context.Context, order *models.WorkOrder) error {
	if order.WorkOrderNo == f.failOn {
		return fmt.Errorf("constraint violation")
	}
	f.saved = append(f.saved, order.WorkOrderNo)
	return nil
}

func newSyncLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestSyncAggregatesPartialFailures(t *testing.T) {
	fetcher := fakeFetcher{orders: []WorkOrderPayload{
		{WorkOrderNo: "WO-1"},
		{WorkOrderNo: ""},
		{WorkOrderNo: "WO-2"},
		{WorkOrderNo: "WO-3"},
	}}
	repo := &fakeUpserter{failOn: "WO-2"}

	svc, err := NewService(fetcher, repo, newSyncLogger(), "01/06/2025")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	saved, err := svc.Sync(context.Background())
	if saved != 2 {
		t.Fatalf("expected 2 saved, got %d", saved)
	}
	if len(multierr.Errors(err)) != 2 {
		t.Fatalf("expected 2 aggregated errors, got %v", err)
	}
	if len(repo.saved) != 2 || repo.saved[0] != "WO-1" || repo.saved[1] != "WO-3" {
		t.Fatalf("unexpected saved orders: %v", repo.saved)
	}
}

func TestSyncFetchFailure(t *testing.T) {
	svc, err := NewService(fakeFetcher{err: fmt.Errorf("boom")}, &fakeUpserter{}, newSyncLogger(), "")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.Sync(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestMapToModelFields(t *testing.T) {
	raw := json.RawMessage(`{"work_order_no":"WO-9","extra":"kept"}`)
	payload := WorkOrderPayload{WorkOrderNo: "WO-9", raw: raw}
	if payload.Raw() != string(raw) {
		t.Fatalf("unexpected raw: %s", payload.Raw())
	}
	if (WorkOrderPayload{}).Raw() != "{}" {
		t.Fatal("empty payload should serialize to {}")
	}
}
