package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"FundVal/internal/domain/models"
	"FundVal/pkg/logger"
	"FundVal/pkg/util"
)

// FilingEventHandler consumes filing events and re-validates the cached
// fundamentals they touch. A malformed payload is a permanent failure and
// goes straight to the DLQ; only store errors are worth retrying.
type FilingEventHandler struct {
	svc   *ValuationService
	topic string
	log   *logger.Logger
}

func NewFilingEventHandler(svc *ValuationService, topic string, log *logger.Logger) *FilingEventHandler {
	return &FilingEventHandler{svc: svc, topic: topic, log: log}
}

func (h *FilingEventHandler) Topic() string {
	return h.topic
}

func (h *FilingEventHandler) Handle(ctx context.Context, data []byte) error {
	var event models.FilingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode filing event: %w", err)
	}

	ticker := NormalizeTicker(event.Ticker)
	if ticker == "" {
		return fmt.Errorf("filing event without ticker")
	}
	observed, ok := util.ParseISODate(event.FilingDate)
	if !ok {
		return fmt.Errorf("filing event with bad date %q", event.FilingDate)
	}

	h.log.Info("filing observed",
		logger.String("ticker", ticker),
		logger.String("filing_date", event.FilingDate),
		logger.String("form_type", event.FormType))

	return h.svc.Refresh(ctx, ticker, observed)
}
