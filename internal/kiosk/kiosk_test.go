package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/application"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure/boardingpass"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
	pkgInfra "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/zaplogger/adapter"
)

func newTestServer(t *testing.T) (*httptest.Server, *KioskSlice, string) {
	t.Helper()
	logger := zapAdapter.NewZapAppLoggerFrom(zap.NewNop())
	clock := domain.ClockFunc(func() time.Time { return time.Date(2026, 10, 15, 9, 40, 0, 0, time.UTC) })
	exportDir := t.TempDir()

	slice := NewKioskSlice(Options{
		ExportBus: pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.ExportBoardingPassData], application.ExportBoardingPassData](logger),
		FindBus:   pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindTicketData], application.FindTicketData, domain.Ticket](logger),
		ListBus:   pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.ListTicketsData], application.ListTicketsData, []domain.Ticket](logger),
		EventBus:  pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.KioskEventData], application.KioskEventData](logger),
		Factory: domain.NewTicketFactory(
			domain.WithCounter(&domain.TicketCounter{}),
			domain.WithClock(clock),
			domain.WithRandom(rand.New(rand.NewPCG(1, 1))),
		),
		Serializer: boardingpass.NewSerializer(boardingpass.WithRandom(rand.New(rand.NewPCG(2, 2)))),
		Clock:      clock,
		ExportDir:  exportDir,
		Logger:     logger,
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID, infrastructure.RequestContext)
	slice.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, slice, exportDir
}

func call(t *testing.T, server *httptest.Server, method, path, body string, wantStatus int) []byte {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s = %d, want %d: %s", method, path, resp.StatusCode, wantStatus, data)
	}
	return data
}

func TestKioskPurchaseOverHTTP(t *testing.T) {
	server, slice, exportDir := newTestServer(t)

	var origins []string
	_ = json.Unmarshal(call(t, server, http.MethodGet, "/catalog/origins", "", http.StatusOK), &origins)
	if len(origins) != 8 || origins[0] != "Lahore" {
		t.Fatalf("origins = %v", origins)
	}

	var destinations []map[string]interface{}
	_ = json.Unmarshal(call(t, server, http.MethodGet, "/catalog/destinations?category=train&origin=Karachi", "", http.StatusOK), &destinations)
	if len(destinations) != 9 {
		t.Fatalf("got %d destinations", len(destinations))
	}

	call(t, server, http.MethodPut, "/session/category", `{"category":"rail"}`, http.StatusOK)
	call(t, server, http.MethodPut, "/session/origin", `{"origin":"Lahore"}`, http.StatusOK)
	call(t, server, http.MethodPut, "/session/destination", `{"destination":"Islamabad"}`, http.StatusOK)
	call(t, server, http.MethodPut, "/session/passengers", `{"passengers":2}`, http.StatusOK)
	call(t, server, http.MethodPut, "/session/class", `{"class":"Economy"}`, http.StatusOK)

	var snap domain.Snapshot
	_ = json.Unmarshal(call(t, server, http.MethodGet, "/session", "", http.StatusOK), &snap)
	if snap.TotalPrice != 11550 || snap.State != domain.StatePriced {
		t.Fatalf("snapshot = %+v", snap)
	}

	for _, amount := range []string{"5000", "5000", "1000", "500"} {
		call(t, server, http.MethodPost, "/session/payments", `{"amount":`+amount+`}`, http.StatusOK)
	}
	call(t, server, http.MethodPost, "/session/complete", "", http.StatusConflict)
	call(t, server, http.MethodPost, "/session/payments", `{"amount":100}`, http.StatusOK)

	var result application.PurchaseResult
	_ = json.Unmarshal(call(t, server, http.MethodPost, "/session/complete", "", http.StatusCreated), &result)
	if result.Change != 50 || result.Ticket.ID != "PK0001" || len(result.Ticket.Seats) != 2 {
		t.Fatalf("result = %+v", result)
	}

	var tickets []domain.Ticket
	_ = json.Unmarshal(call(t, server, http.MethodGet, "/tickets?category=rail", "", http.StatusOK), &tickets)
	if len(tickets) != 1 || tickets[0].ID != "PK0001" {
		t.Fatalf("tickets = %+v", tickets)
	}
	call(t, server, http.MethodGet, "/tickets/last", "", http.StatusOK)
	call(t, server, http.MethodGet, "/tickets/PK0001", "", http.StatusOK)

	pass := call(t, server, http.MethodGet, "/tickets/PK0001/boarding-pass.pdf", "", http.StatusOK)
	if !bytes.HasPrefix(pass, []byte("%PDF-1.4\n")) || !bytes.Contains(pass, []byte("/Count 2")) {
		t.Fatalf("unexpected boarding pass %q", pass[:32])
	}
	receipt := call(t, server, http.MethodGet, "/tickets/PK0001/receipt.pdf", "", http.StatusOK)
	if !bytes.HasPrefix(receipt, []byte("%PDF-")) {
		t.Fatal("receipt is not a PDF")
	}

	call(t, server, http.MethodPost, "/tickets/PK0001/export", "", http.StatusCreated)
	exported, err := os.ReadFile(filepath.Join(exportDir, "BoardingPass_PK0001.pdf"))
	if err != nil || !bytes.HasPrefix(exported, []byte("%PDF-1.4\n")) {
		t.Fatalf("export missing: %v", err)
	}

	var summary application.SalesSummary
	_ = json.Unmarshal(call(t, server, http.MethodGet, "/sales", "", http.StatusOK), &summary)
	if summary.TicketsSold != 1 || summary.Revenue != 11550 || slice.Sales() != summary {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestKioskErrorStatuses(t *testing.T) {
	server, _, _ := newTestServer(t)

	call(t, server, http.MethodGet, "/catalog/destinations?category=ferry", "", http.StatusBadRequest)
	call(t, server, http.MethodPut, "/session/category", `{"category":"ferry"}`, http.StatusBadRequest)
	call(t, server, http.MethodPut, "/session/category", `not json`, http.StatusBadRequest)
	call(t, server, http.MethodPut, "/session/passengers", `{"passengers":11}`, http.StatusBadRequest)
	call(t, server, http.MethodPut, "/session/class", `{"class":"first"}`, http.StatusBadRequest)
	call(t, server, http.MethodPost, "/session/payments", `{"amount":-1}`, http.StatusUnprocessableEntity)
	call(t, server, http.MethodPost, "/session/payments", `{"amount":1e19}`, http.StatusUnprocessableEntity)
	call(t, server, http.MethodPost, "/session/complete", "", http.StatusConflict)
	call(t, server, http.MethodGet, "/tickets/last", "", http.StatusNotFound)
	call(t, server, http.MethodGet, "/tickets/PK9999", "", http.StatusNotFound)
	call(t, server, http.MethodGet, "/tickets/PK9999/boarding-pass.pdf", "", http.StatusNotFound)
	call(t, server, http.MethodPost, "/tickets/PK9999/export", "", http.StatusNotFound)

	call(t, server, http.MethodPut, "/session/category", `{"category":"bus"}`, http.StatusOK)
	call(t, server, http.MethodPut, "/session/origin", `{"origin":"Lahore"}`, http.StatusOK)
	call(t, server, http.MethodPost, "/session/payments", `{"amount":500}`, http.StatusOK)

	var body map[string]interface{}
	_ = json.Unmarshal(call(t, server, http.MethodPost, "/session/cancel", "", http.StatusOK), &body)
	if body["refund"] != float64(500) || body["formatted"] != "Rs. 500" {
		t.Fatalf("refund = %v", body)
	}
	call(t, server, http.MethodPost, "/session/reset", "", http.StatusOK)
}

func TestNewKioskSliceDefaultsMissingCollaborators(t *testing.T) {
	clock := domain.ClockFunc(func() time.Time { return time.Date(2026, 10, 15, 9, 40, 0, 0, time.UTC) })
	slice := NewKioskSlice(Options{
		Factory:   domain.NewTicketFactory(domain.WithCounter(&domain.TicketCounter{}), domain.WithClock(clock)),
		ExportDir: t.TempDir(),
	})

	ctx := context.Background()
	service := slice.Service()
	steps := []func() (domain.Snapshot, error){
		func() (domain.Snapshot, error) { return service.SelectCategory(ctx, domain.CategoryRail) },
		func() (domain.Snapshot, error) { return service.SelectOrigin(ctx, "Lahore") },
		func() (domain.Snapshot, error) { return service.SelectDestination(ctx, "Islamabad") },
		func() (domain.Snapshot, error) { return service.SetPassengerCount(ctx, 2) },
		func() (domain.Snapshot, error) { return service.InsertMoney(ctx, 12000) },
	}
	for i, step := range steps {
		if _, err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	result, err := service.CompletePurchase(ctx)
	if err != nil {
		t.Fatalf("CompletePurchase: %v", err)
	}
	if result.Ticket.ID != "PK0001" || result.Change != 450 {
		t.Fatalf("unexpected result %+v", result)
	}
	if sales := slice.Sales(); sales.TicketsSold != 1 || sales.Revenue != 11550 {
		t.Fatalf("default event bus did not feed the tally: %+v", sales)
	}

	router := chi.NewRouter()
	slice.RegisterRoutes(router)
	server := httptest.NewServer(router)
	defer server.Close()
	call(t, server, http.MethodGet, "/tickets/PK0001", "", http.StatusOK)
}
