package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/form"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type formView struct {
	Form    *form.Form
	Choices []core.Category
	Error   string
}

type chartView struct {
	chart.Pie
	ViewBox int
	Center  int
	Radius  int
}

type pageData struct {
	Form   formView
	Ledger services.View
	Chart  chartView
	Types  []core.TxType
}

func newFormView(f *form.Form, cats []core.Category, errMsg string) formView {
	return formView{Form: f, Choices: f.Choices(cats), Error: errMsg}
}

func newChartView(t core.Totals) chartView {
	return chartView{Pie: chart.NewPie(t), ViewBox: chart.ViewBox, Center: chart.Center, Radius: chart.Radius}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	checks["templates"] = "ok"

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "not_configured"
	}

	if s.broker != nil {
		if err := s.broker.Ping(); err != nil {
			checks["broker"] = fmt.Sprintf("degraded: %v", err)
		} else {
			checks["broker"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	view := s.tracker.View()

	w.WriteHeader(http.StatusOK)

	metric := func(name, help, kind string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_request_duration_avg_microseconds", "Average request duration", "gauge", traceMetrics.AverageResponseTime)
	metric("transactions_created_total", "Transactions created through the web form", "counter", atomic.LoadInt64(&s.appMetrics.transactionsCreated))
	metric("transactions_deleted_total", "Transactions deleted", "counter", atomic.LoadInt64(&s.appMetrics.transactionsDeleted))
	metric("categories_created_total", "Categories created", "counter", atomic.LoadInt64(&s.appMetrics.categoriesCreated))
	metric("validation_errors_total", "Rejected submissions", "counter", atomic.LoadInt64(&s.appMetrics.validationErrors))
	metric("transactions", "Transactions currently stored", "gauge", view.All)
	metric("categories", "Categories currently stored", "gauge", len(view.Categories))
	metric("rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}

	s.tracker.Reload(r.Context())
	view := s.tracker.View()
	data := pageData{
		Form:   newFormView(form.New(), view.Categories, ""),
		Ledger: view,
		Chart:  newChartView(view.Totals),
		Types:  []core.TxType{core.Income, core.Expense},
	}
	s.render(w, r, "index.html", data, NewHTMXResponse())
}

// handleCreateTransaction submits the form. On success the fresh form is
// returned (type kept); on rejection the entered values come back with the
// error and a 422.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	sub, ok := s.readBody(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)
	f := formFromSubmission(sub)
	entered := *f
	s.tracker.Reload(ctx)
	cats := s.tracker.Categories()

	payload, err := f.Submit(cats)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.validationErrors, 1)
		logger.WarnContext(ctx, "Transaction rejected",
			log.FieldError, err, log.FieldOperation, log.OpValidate)
		msg := validationMessage(err)
		s.render(w, r, "form", newFormView(&entered, cats, msg),
			NewHTMXResponse().Status(http.StatusUnprocessableEntity).TriggerErrorNotification(msg))
		return
	}

	tx, err := s.tracker.AddTransaction(ctx, payload)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Failed to save transaction"
		if core.IsValidation(err) {
			atomic.AddInt64(&s.appMetrics.validationErrors, 1)
			status, msg = http.StatusUnprocessableEntity, validationMessage(err)
		}
		s.render(w, r, "form", newFormView(&entered, cats, msg),
			NewHTMXResponse().Status(status).TriggerErrorNotification(msg))
		return
	}

	atomic.AddInt64(&s.appMetrics.transactionsCreated, 1)
	s.render(w, r, "form", newFormView(f, cats, ""),
		NewHTMXResponse().
			TriggerTransactionCreated(tx.ID).
			TriggerFormReset().
			TriggerSuccessNotification("Transaction added"))
}

// handleDeleteTransaction removes a transaction by id. Unknown ids are a
// successful no-op that announces nothing.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodDelete, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	sub, ok := s.readBody(w, r)
	if !ok {
		return
	}

	id, err := parseID(sub.Value("id"))
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}

	deleted, err := s.tracker.DeleteTransaction(r.Context(), id)
	if err != nil {
		InternalServerError("Failed to delete transaction").
			TriggerErrorNotification("Failed to delete transaction").
			Write(w)
		return
	}
	if !deleted {
		NewHTMXResponse().Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.transactionsDeleted, 1)
	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	sub, ok := s.readBody(w, r)
	if !ok {
		return
	}

	name := sub.Value("name")
	typ := core.TxType(strings.ToLower(sub.Value("type")))

	c, err := s.tracker.AddCategory(r.Context(), name, typ)
	if err != nil {
		if core.IsValidation(err) {
			atomic.AddInt64(&s.appMetrics.validationErrors, 1)
			msg := validationMessage(err)
			UnprocessableEntityError(msg).TriggerErrorNotification(msg).Write(w)
			return
		}
		InternalServerError("Failed to save category").
			TriggerErrorNotification("Failed to save category").
			Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.categoriesCreated, 1)
	NewHTMXResponse().
		TriggerCategoryCreated(c.ID, string(c.Type)).
		TriggerSuccessNotification(fmt.Sprintf("Category %q added", c.Name)).
		Write(w)
}

// handleLedgerPartial applies the filter from the query and returns the
// filters, table and totals. Without filter parameters the current filter
// is kept.
func (s *Server) handleLedgerPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	s.tracker.Reload(r.Context())
	q := r.URL.Query()
	if q.Has("type") || q.Has("category") {
		f := core.ParseFilter(q.Get("type"), q.Get("category"))
		s.tracker.SetFilter(f)
		log.FromContext(r.Context()).DebugContext(r.Context(), "Filter applied",
			"type", f.TypeValue(), "category", f.CategoryValue(), log.FieldOperation, log.OpFilter)
	}

	s.render(w, r, "ledger", s.tracker.View(), NewHTMXResponse().TriggerLedgerRefresh())
}

func (s *Server) handleChartPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	s.tracker.Reload(r.Context())
	s.render(w, r, "chart", newChartView(s.tracker.View().Totals), NewHTMXResponse())
}

// handleFormPartial re-renders the form for the requested type, keeping the
// entered values and dropping a category the type does not offer.
func (s *Server) handleFormPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	sub := querySubmission(r)
	f := formFromSubmission(sub)
	s.tracker.Reload(r.Context())
	cats := s.tracker.Categories()
	t, err := core.ParseTxType(sub.Value(form.FieldType))
	if err != nil {
		t = core.Income
	}
	f.SetType(t, cats)
	s.render(w, r, "form", newFormView(f, cats, ""), NewHTMXResponse())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}

	s.tracker.Reload(r.Context())
	var buf bytes.Buffer
	if err := s.tracker.ExportCSV(r.Context(), &buf); err != nil {
		InternalServerError("Failed to export transactions").Write(w)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// render executes the named template into a buffer so a template failure
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data interface{}, resp *HTMXResponseBuilder) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Template render failed", err, log.OpRender,
				log.NewFields().WithComponent(log.ComponentTemplate))
		InternalServerError("Failed to render page").Write(w)
		return
	}
	resp.BodyHTML(buf.String()).Write(w)
}

// readBody decodes the request body, answering 413 or 400 itself when it
// cannot.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (*submission, bool) {
	sub, err := readSubmission(r)
	switch {
	case errors.Is(err, errBodyTooLarge):
		ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").Write(w)
		return nil, false
	case err != nil:
		log.FromContext(r.Context()).WarnContext(r.Context(), "Unreadable request body",
			log.FieldError, err, log.FieldOperation, log.OpParse)
		BadRequestError("Invalid request format").Write(w)
		return nil, false
	}
	return sub, true
}

// formFromSubmission builds the form state from submitted values. Notes are
// free text and keep their surrounding whitespace.
func formFromSubmission(sub *submission) *form.Form {
	return &form.Form{
		Type:       core.TxType(strings.ToLower(sub.Value(form.FieldType))),
		Amount:     sub.Value(form.FieldAmount),
		Date:       sub.Value(form.FieldDate),
		CategoryID: sub.Value(form.FieldCategory),
		Notes:      sub.Text(form.FieldNotes),
	}
}
