package http

import (
	"errors"
	"net/http"

	"expns/internal/core"
	"expns/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the ledger backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.Len(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger not ready", log.FieldError, err.Error())
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type statsJSON struct {
	TotalRequests      int64 `json:"total_requests"`
	LastResponseMicros int64 `json:"last_response_us"`
	RateLimited        int64 `json:"rate_limited"`
	ActiveClients      int64 `json:"active_clients"`
	SuspiciousRequests int64 `json:"suspicious_requests"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	lm := s.limiter.GetMetrics()
	NewHTMXResponse().BodyJSON(statsJSON{
		TotalRequests:      tm.TotalRequests,
		LastResponseMicros: tm.LastResponseTimeMicros,
		RateLimited:        lm.TotalHits,
		ActiveClients:      lm.ClientCount,
		SuspiciousRequests: s.detector.SuspiciousRequests(),
	}).Write(w)
}

type indexPage struct {
	WindowTitle string
	Status      string
	Count       int
	Items       []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	txs, err := s.ledger.Transactions(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "List transactions failed", log.FieldError, err.Error())
		http.Error(w, "could not load transactions", http.StatusInternalServerError)
		return
	}

	page := indexPage{
		WindowTitle: core.WindowTitle(len(txs)),
		Count:       len(txs),
		Items:       make([]string, 0, len(txs)),
	}
	if len(txs) > 0 {
		page.Status = core.StatusMessage(len(txs))
	}
	for i, t := range txs {
		page.Items = append(page.Items, core.FormatListItem(i+1, t))
	}

	body, err := s.render("index.html", page)
	if err != nil {
		logger.ErrorContext(ctx, "Index template execution failed", log.FieldError, err.Error())
		http.Error(w, "templates not available", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

type addResultJSON struct {
	Notice      core.Notice      `json:"notice"`
	Count       int              `json:"count"`
	Transaction *transactionJSON `json:"transaction,omitempty"`
	ListItem    string           `json:"list_item,omitempty"`
	WindowTitle string           `json:"window_title,omitempty"`
	Status      string           `json:"status,omitempty"`
}

type addResultView struct {
	Notice   core.Notice
	ListItem string
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	req, isJSON, err := parseAddRequest(r)
	asJSON := isJSON || wantsJSON(r)
	if err != nil {
		logger.WarnContext(ctx, "Parse request body failed", log.FieldError, err.Error())
		status, msg := http.StatusBadRequest, "malformed request body"
		if errors.Is(err, errBodyTooLarge) {
			status, msg = http.StatusRequestEntityTooLarge, "request body too large"
		}
		if asJSON {
			NewHTMXResponse().Status(status).BodyJSON(map[string]string{"error": msg}).Write(w)
			return
		}
		if status == http.StatusBadRequest {
			BadRequestError("Malformed request").Write(w)
			return
		}
		ErrorResponse(status, "Request too large").Write(w)
		return
	}

	res, err := s.ledger.Add(ctx, req.Title, req.Category, req.Amount)
	notice := core.NoticeFor(err)

	status := http.StatusOK
	if err != nil {
		if !isValidationError(err) {
			logger.ErrorContext(ctx, "Add transaction failed", log.FieldOperation, log.OpAdd, log.FieldError, err.Error())
			if asJSON {
				NewHTMXResponse().Status(http.StatusInternalServerError).BodyJSON(addResultJSON{Notice: notice}).Write(w)
				return
			}
			ErrorResponse(http.StatusInternalServerError, notice.Message).Write(w)
			return
		}
		status = http.StatusUnprocessableEntity
	}

	b := NewHTMXResponse().Status(status).Count(res.Count).TriggerNotice(notice)
	if err == nil {
		b.TriggerTransactionAdded(res.Count).TriggerFormReset()
	}

	if asJSON {
		out := addResultJSON{Notice: notice, Count: res.Count}
		if err == nil {
			tx := toTransactionJSON(res.Count, res.Transaction)
			out.Transaction = &tx
			out.ListItem = res.ListItem
			out.WindowTitle = res.WindowTitle
			out.Status = res.StatusMessage
		}
		b.BodyJSON(out).Write(w)
		return
	}

	body, rerr := s.render("add_result", addResultView{Notice: notice, ListItem: res.ListItem})
	if rerr != nil {
		logger.ErrorContext(ctx, "Add result template failed", log.FieldError, rerr.Error())
		body = []byte(notice.Title + ": " + notice.Message)
	}
	b.BodyHTML(body).Write(w)
}

func isValidationError(err error) bool {
	if _, ok := core.MissingField(err); ok {
		return true
	}
	return errors.Is(err, core.ErrInvalidAmount)
}

type listJSON struct {
	Count        int               `json:"count"`
	State        string            `json:"state"`
	WindowTitle  string            `json:"window_title"`
	Transactions []transactionJSON `json:"transactions"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txs, err := s.ledger.Transactions(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "List transactions failed", log.FieldError, err.Error())
		NewHTMXResponse().Status(http.StatusInternalServerError).BodyJSON(map[string]string{"error": "could not load transactions"}).Write(w)
		return
	}

	state := core.Empty
	if len(txs) > 0 {
		state = core.NonEmpty
	}
	out := listJSON{
		Count:        len(txs),
		State:        state.String(),
		WindowTitle:  core.WindowTitle(len(txs)),
		Transactions: make([]transactionJSON, 0, len(txs)),
	}
	for i, t := range txs {
		out.Transactions = append(out.Transactions, toTransactionJSON(i+1, t))
	}
	NewHTMXResponse().Count(len(txs)).BodyJSON(out).Write(w)
}

type chartRow struct {
	Category string
	Amount   int64
	Width    int
}

type chartView struct {
	Title   string
	XLabel  string
	YLabel  string
	Total   int64
	MaxName string
	Max     int64
	Rows    []chartRow
}

// handleChart renders the category breakdown as an HTML bar chart partial.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	series, err := s.ledger.Aggregate(ctx)
	if err != nil {
		s.writeChartError(w, r, err, false)
		return
	}

	top := series.Max()
	view := chartView{
		Title:   series.Title,
		XLabel:  series.XLabel,
		YLabel:  series.YLabel,
		Total:   series.Total(),
		MaxName: top.Category,
		Max:     top.Total,
	}
	for _, b := range series.Bars {
		view.Rows = append(view.Rows, chartRow{Category: b.Category, Amount: b.Total, Width: barWidth(b.Total, top.Total)})
	}

	body, err := s.render("chart", view)
	if err != nil {
		logger.ErrorContext(ctx, "Chart template failed", log.FieldError, err.Error())
		ErrorResponse(http.StatusInternalServerError, "Could not render chart").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

func (s *Server) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	series, err := s.ledger.Aggregate(r.Context())
	if err != nil {
		s.writeChartError(w, r, err, true)
		return
	}
	NewHTMXResponse().BodyJSON(toChartJSON(series)).Write(w)
}

// writeChartError answers 404 with the No Data notice for an empty ledger.
func (s *Server) writeChartError(w http.ResponseWriter, r *http.Request, err error, asJSON bool) {
	status := http.StatusNotFound
	if !errors.Is(err, core.ErrNoData) {
		status = http.StatusInternalServerError
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Aggregate failed",
			log.FieldOperation, log.OpAggregate, log.FieldError, err.Error())
	}
	notice := core.NoticeFor(err)

	b := NewHTMXResponse().Status(status).TriggerNotice(notice)
	if asJSON {
		b.BodyJSON(map[string]core.Notice{"notice": notice}).Write(w)
		return
	}
	body, rerr := s.render("notice", notice)
	if rerr != nil {
		ErrorResponse(status, notice.Message).Write(w)
		return
	}
	b.BodyHTML(body).Write(w)
}
