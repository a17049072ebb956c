package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/application"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure/boardingpass"
	pkgApp "github.com/mateusmacedo/ticket-kiosk/pkg/application"
)

const requestTimeout = 10 * time.Second

// DocumentRenderer writes a ticket document to w.
type DocumentRenderer interface {
	Write(w io.Writer, ticket domain.Ticket) error
}

type KioskHTTPHandler struct {
	service   *application.KioskService
	findBus   application.FindTicketQueryBus
	listBus   application.ListTicketsQueryBus
	exportBus application.ExportCommandBus
	passes    DocumentRenderer
	receipts  DocumentRenderer
	tally     *application.SalesTally
	exportDir string
	logger    pkgApp.AppLogger
}

type KioskHTTPHandlerConfig struct {
	Service   *application.KioskService
	FindBus   application.FindTicketQueryBus
	ListBus   application.ListTicketsQueryBus
	ExportBus application.ExportCommandBus
	Passes    DocumentRenderer
	Receipts  DocumentRenderer
	Tally     *application.SalesTally
	ExportDir string
	Logger    pkgApp.AppLogger
}

func NewKioskHTTPHandler(cfg KioskHTTPHandlerConfig) *KioskHTTPHandler {
	return &KioskHTTPHandler{
		service:   cfg.Service,
		findBus:   cfg.FindBus,
		listBus:   cfg.ListBus,
		exportBus: cfg.ExportBus,
		passes:    cfg.Passes,
		receipts:  cfg.Receipts,
		tally:     cfg.Tally,
		exportDir: cfg.ExportDir,
		logger:    cfg.Logger,
	}
}

func (h *KioskHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Route("/catalog", func(r chi.Router) {
		r.Get("/origins", h.HandleOrigins)
		r.Get("/destinations", h.HandleDestinations)
		r.Get("/classes", h.HandleClasses)
	})
	router.Route("/session", func(r chi.Router) {
		r.Get("/", h.HandleSnapshot)
		r.Put("/category", h.HandleSelectCategory)
		r.Put("/origin", h.HandleSelectOrigin)
		r.Put("/destination", h.HandleSelectDestination)
		r.Put("/passengers", h.HandleSetPassengers)
		r.Put("/class", h.HandleSelectClass)
		r.Post("/payments", h.HandleInsertMoney)
		r.Post("/complete", h.HandleComplete)
		r.Post("/cancel", h.HandleCancel)
		r.Post("/reset", h.HandleReset)
	})
	router.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.HandleListTickets)
		r.Get("/last", h.HandleLastTicket)
		r.Get("/{ticketID}", h.HandleFindTicket)
		r.Get("/{ticketID}/boarding-pass.pdf", h.HandleBoardingPass)
		r.Get("/{ticketID}/receipt.pdf", h.HandleReceipt)
		r.Post("/{ticketID}/export", h.HandleExport)
	})
	router.Get("/sales", h.HandleSales)
}

func (h *KioskHTTPHandler) HandleOrigins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Catalog().Origins())
}

func (h *KioskHTTPHandler) HandleDestinations(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseTicketCategory(r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	origin := r.URL.Query().Get("origin")
	writeJSON(w, http.StatusOK, h.service.Catalog().DestinationsFrom(category, origin))
}

func (h *KioskHTTPHandler) HandleClasses(w http.ResponseWriter, r *http.Request) {
	type classView struct {
		Name       domain.TravelClass `json:"name"`
		Multiplier float64            `json:"multiplier"`
	}
	classes := domain.TravelClasses()
	views := make([]classView, len(classes))
	for i, c := range classes {
		views[i] = classView{Name: c, Multiplier: c.Multiplier()}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *KioskHTTPHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *KioskHTTPHandler) HandleSelectCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category domain.TicketCategory `json:"category"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.respondSnapshot(w, r)(h.service.SelectCategory(r.Context(), body.Category))
}

func (h *KioskHTTPHandler) HandleSelectOrigin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Origin string `json:"origin"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.respondSnapshot(w, r)(h.service.SelectOrigin(r.Context(), body.Origin))
}

func (h *KioskHTTPHandler) HandleSelectDestination(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Destination string `json:"destination"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.respondSnapshot(w, r)(h.service.SelectDestination(r.Context(), body.Destination))
}

func (h *KioskHTTPHandler) HandleSetPassengers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Passengers int `json:"passengers"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.respondSnapshot(w, r)(h.service.SetPassengerCount(r.Context(), body.Passengers))
}

func (h *KioskHTTPHandler) HandleSelectClass(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Class domain.TravelClass `json:"class"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.respondSnapshot(w, r)(h.service.SelectClass(r.Context(), body.Class))
}

func (h *KioskHTTPHandler) HandleInsertMoney(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount float64 `json:"amount"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.respondSnapshot(w, r)(h.service.InsertMoney(r.Context(), body.Amount))
}

func (h *KioskHTTPHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CompletePurchase(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *KioskHTTPHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	refund := h.service.Cancel(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"refund": refund, "formatted": domain.FormatPKR(refund)})
}

func (h *KioskHTTPHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Reset(r.Context()))
}

func (h *KioskHTTPHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	var filter application.ListTicketsData
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := domain.ParseTicketCategory(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		filter.Category = category
	}
	filter.Origin = r.URL.Query().Get("origin")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tickets, err := h.listBus.Dispatch(ctx, application.NewListTicketsQuery(filter))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *KioskHTTPHandler) HandleLastTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.LastTicket(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *KioskHTTPHandler) HandleFindTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.findTicket(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *KioskHTTPHandler) HandleBoardingPass(w http.ResponseWriter, r *http.Request) {
	h.renderDocument(w, r, h.passes, boardingpass.FileName)
}

func (h *KioskHTTPHandler) HandleReceipt(w http.ResponseWriter, r *http.Request) {
	h.renderDocument(w, r, h.receipts, boardingpass.ReceiptFileName)
}

func (h *KioskHTTPHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	data := application.ExportBoardingPassData{
		TicketID: ticketID,
		Path:     filepath.Join(h.exportDir, boardingpass.FileName(ticketID)),
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.exportBus.Dispatch(ctx, application.NewExportBoardingPassCommand(data)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Boarding pass exported", "data": data})
}

func (h *KioskHTTPHandler) HandleSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tally.Summary())
}

func (h *KioskHTTPHandler) findTicket(r *http.Request) (domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	query := application.NewFindTicketQuery(application.FindTicketData{TicketID: chi.URLParam(r, "ticketID")})
	return h.findBus.Dispatch(ctx, query)
}

// renderDocument renders into memory first so a failure still yields a clean
// error response.
func (h *KioskHTTPHandler) renderDocument(w http.ResponseWriter, r *http.Request, renderer DocumentRenderer, name func(string) string) {
	ticket, err := h.findTicket(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Write(&buf, ticket); err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", boardingpass.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name(ticket.ID)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		pkgApp.LogError(r.Context(), h.logger, "error writing document", err, map[string]interface{}{"ticket_id": ticket.ID})
	}
}

func (h *KioskHTTPHandler) respondSnapshot(w http.ResponseWriter, r *http.Request) func(domain.Snapshot, error) {
	return func(snapshot domain.Snapshot, err error) {
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func (h *KioskHTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var validation domain.ValidationError
		if errors.As(err, &validation) {
			h.fail(w, r, validation)
			return false
		}
		handleError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *KioskHTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		pkgApp.LogError(r.Context(), h.logger, "request failed", err, map[string]interface{}{
			"path":   r.URL.Path,
			"status": status,
		})
	}
	handleError(w, err.Error(), status)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsPayment(err):
		return http.StatusUnprocessableEntity
	case domain.IsState(err):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RequestContext copies the chi request id into the context used by AppLogger.
// It must run after middleware.RequestID.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(pkgApp.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func handleError(w http.ResponseWriter, message string, statusCode int) {
	http.Error(w, message, statusCode)
}
