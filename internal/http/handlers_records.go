package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"deliverynav/internal/core"
	applog "deliverynav/internal/log"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ident, err := s.resolveIdentity(r)
	if err != nil {
		s.structLog.LogError(r.Context(), "Identity resolution failed", err,
			applog.ComponentIdentity, applog.OpResolve, applog.NewFields())
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	limit := defaultListLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := s.records.List(r.Context(), ident.ID, limit)
	if err != nil {
		s.structLog.LogError(r.Context(), "List records failed", err,
			applog.ComponentRecord, applog.OpList, applog.NewFields().WithIdentity(ident.ID, ident.Token))
		InternalServerError("list records failed").Write(w)
		return
	}
	if records == nil {
		records = []core.Record{}
	}

	NewJSONResponse().Body(map[string]any{"records": records}).Write(w)
}

// handleCreateRecord accepts a record payload, coercing the amount across
// its aliases. Malformed amounts become zero rather than an error; only an
// unreadable body is rejected.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	ident, err := s.resolveIdentity(r)
	if err != nil {
		s.structLog.LogError(r.Context(), "Identity resolution failed", err,
			applog.ComponentIdentity, applog.OpResolve, applog.NewFields())
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Record body parse failed", applog.FieldError, err.Error())
		BadRequestError("invalid request body").Write(w)
		return
	}

	rawAmount, _ := parser.Amount()
	label := parser.Label()

	var occurredAt time.Time
	if v := parser.Get("occurred_at"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			occurredAt = t
		}
	}

	rec, err := s.records.Create(r.Context(), ident.ID, rawAmount, label, occurredAt)
	if err != nil {
		s.structLog.LogError(r.Context(), "Record creation failed", err,
			applog.ComponentRecord, applog.OpCreate, applog.NewFields().WithIdentity(ident.ID, ident.Token))
		InternalServerError("record creation failed").Write(w)
		return
	}

	s.invalidateTotal(ident.ID, rec.OccurredAt)
	s.structLog.LogRecordCreated(r.Context(), rec.ID, ident.ID, rec.Amount, rec.Label)

	NewJSONResponse().Status(http.StatusCreated).Body(rec).Write(w)
}

// monthlyTotalBody is the wire shape of a monthly aggregation.
type monthlyTotalBody struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Total int64 `json:"total"`
	Count int64 `json:"count"`
}

func (s *Server) handleMonthlyTotal(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	ident, err := s.resolveIdentity(r)
	if err != nil {
		s.structLog.LogError(r.Context(), "Identity resolution failed", err,
			applog.ComponentIdentity, applog.OpResolve, applog.NewFields())
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	params := ParseMonthParams(r.URL.Query(), s.loc)

	key := s.totalsCacheKey(ident.ID, params.Year, params.Month)
	if total, found := s.totalsCache.Get(key); found {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Monthly total cache hit",
			applog.FieldIdentityID, ident.ID, applog.FieldYear, params.Year, applog.FieldMonth, params.Month)
		NewJSONResponse().Body(monthlyTotalBody{
			Year:  params.Year,
			Month: params.Month,
			Total: total.Total,
			Count: total.Count,
		}).Write(w)
		return
	}

	total, _, err := s.records.MonthlyTotal(r.Context(), ident.ID, params.Year, params.Month)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidMonth):
			BadRequestError("month must be between 1 and 12").Write(w)
		case errors.Is(err, core.ErrInvalidYear):
			BadRequestError("invalid year").Write(w)
		default:
			s.structLog.LogError(r.Context(), "Monthly total failed", err,
				applog.ComponentRecord, applog.OpRead, applog.NewFields().WithIdentity(ident.ID, ident.Token))
			InternalServerError("monthly total failed").Write(w)
		}
		return
	}

	s.totalsCache.Set(key, total)

	NewJSONResponse().Body(monthlyTotalBody{
		Year:  params.Year,
		Month: params.Month,
		Total: total.Total,
		Count: total.Count,
	}).Write(w)
}
