package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tournevent/upslink/pkg/shipper"
	"go.uber.org/zap"
)

const bodyLimit = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusNotFound, errorPayload{Code: "NOT_FOUND", Message: "route not found"})
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, carriersPayload{Carriers: s.registry.Names()})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	var input quoteInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	ctx := r.Context()
	req := input.model()

	start := time.Now()
	quotes, errs := s.registry.GetQuotesFromCarriers(ctx, req, req.Options.Carriers)
	s.metrics.RecordRequest("quote", "all", statusLabel(len(quotes) > 0), time.Since(start).Seconds())
	for _, err := range errs {
		s.recordError(ctx, "quote", err)
	}

	payload := quotePayload{Success: len(quotes) > 0, Rates: []ratePayload{}, Errors: errorsToPayload(errs)}
	for _, q := range quotes {
		if payload.QuoteID == "" {
			payload.QuoteID = q.QuoteID
		}
		for _, rate := range q.Rates {
			payload.Rates = append(payload.Rates, rateToPayload(rate))
		}
	}
	s.writeJSON(w, r, http.StatusOK, payload)
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var input createOrderInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	carrier := chi.URLParam(r, "carrier")

	start := time.Now()
	resp, err := s.registry.CreateOrder(r.Context(), carrier, input.model())
	s.metrics.RecordRequest("create_order", carrier, statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		s.recordError(r.Context(), "create_order", err)
		s.writeJSON(w, r, statusFor(err), orderPayload{Errors: errorsToPayload([]error{err})})
		return
	}
	s.writeJSON(w, r, http.StatusOK, orderToPayload(resp))
}

func (s *Server) handleGetLabel(w http.ResponseWriter, r *http.Request) {
	carrier := chi.URLParam(r, "carrier")
	req := &shipper.GetLabelRequest{
		OrderID: chi.URLParam(r, "orderID"),
		Format:  shipper.LabelFormat(strings.ToLower(r.URL.Query().Get("format"))),
	}

	start := time.Now()
	resp, err := s.registry.GetLabel(r.Context(), carrier, req)
	s.metrics.RecordRequest("get_label", carrier, statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		s.recordError(r.Context(), "get_label", err)
		s.writeJSON(w, r, statusFor(err), labelResultPayload{OrderID: req.OrderID, Errors: errorsToPayload([]error{err})})
		return
	}
	s.writeJSON(w, r, http.StatusOK, labelResultToPayload(resp))
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	carrier := chi.URLParam(r, "carrier")
	number := chi.URLParam(r, "trackingNumber")

	start := time.Now()
	resp, err := s.registry.Track(r.Context(), carrier, &shipper.TrackRequest{TrackingNumber: number})
	s.metrics.RecordRequest("track", carrier, statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		s.recordError(r.Context(), "track", err)
		s.writeJSON(w, r, statusFor(err), trackPayload{TrackingNumber: number, Errors: errorsToPayload([]error{err})})
		return
	}
	s.writeJSON(w, r, http.StatusOK, trackToPayload(resp))
}

// statusFor maps an operation error onto an HTTP status. Carrier
// rejections are reported in the payload with 200.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return http.StatusNotFound
	case shipper.IsInvalidAttribute(err):
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func (s *Server) recordError(ctx context.Context, operation string, err error) {
	payload := errorToPayload(err)
	carrier := "unknown"
	var shipErr *shipper.ShipperError
	if errors.As(err, &shipErr) {
		carrier = shipErr.Carrier
	}
	s.metrics.RecordError(carrier, payload.Code)
	s.logger.Ctx(ctx).Warn("Carrier operation failed",
		zap.String("operation", operation),
		zap.String("carrier", carrier),
		zap.String("code", payload.Code),
		zap.Error(err),
	)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Ctx(r.Context()).Error("Encoding response failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorPayload{Code: "INVALID_JSON", Message: err.Error()})
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		s.writeJSON(w, r, http.StatusBadRequest, errorPayload{Code: "INVALID_JSON", Message: "trailing data after JSON body"})
		return false
	}
	return true
}
