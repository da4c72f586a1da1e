package taskapi

import (
	"encoding/json"

	"video-pipeline-monitor/internal/domain/model"
)

// The pipeline endpoints report insufficient balance in several structurally
// different payloads (a nested error.code, a flat errorType tag, numeric
// fields at either nesting depth). Everything is normalized here, once, into
// model.CreditError; nothing downstream re-probes raw shapes.

type rawCreditDetails struct {
	Required         *int64 `json:"required"`
	Available        *int64 `json:"available"`
	Shortfall        *int64 `json:"shortfall"`
	SuggestedPackage string `json:"suggestedPackage"`
}

type rawCreditPayload struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		rawCreditDetails
		Details *rawCreditDetails `json:"details"`
	} `json:"error"`

	// flat variant
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
	rawCreditDetails
}

// NormalizeCreditError maps any known insufficient-balance payload shape into
// the single normalized record. The second return is false when the body does
// not look like a credit error at all.
func NormalizeCreditError(body []byte, reqCtx model.CreditErrorContext) (*model.CreditError, bool) {
	var raw rawCreditPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}

	details, ok := pickDetails(&raw)
	tagged := raw.ErrorType == "credit_insufficient" ||
		(raw.Error != nil && raw.Error.Code == model.CreditErrorCode)
	if !tagged && !ok {
		return nil, false
	}

	ce := &model.CreditError{
		Code:    model.CreditErrorCode,
		Message: pickMessage(&raw),
		Context: reqCtx,
	}
	if ok {
		ce.Details.Required = *details.Required
		ce.Details.Available = *details.Available
		if details.Shortfall != nil {
			ce.Details.Shortfall = *details.Shortfall
		} else if d := ce.Details.Required - ce.Details.Available; d > 0 {
			ce.Details.Shortfall = d
		}
		ce.Details.SuggestedPackage = details.SuggestedPackage
	}
	return ce, true
}

// pickDetails returns the first location carrying both numeric fields:
// error.details, then error itself, then the flat top level.
func pickDetails(raw *rawCreditPayload) (*rawCreditDetails, bool) {
	if raw.Error != nil {
		if d := raw.Error.Details; d != nil && d.Required != nil && d.Available != nil {
			return d, true
		}
		if d := &raw.Error.rawCreditDetails; d.Required != nil && d.Available != nil {
			return d, true
		}
	}
	if d := &raw.rawCreditDetails; d.Required != nil && d.Available != nil {
		return d, true
	}
	return nil, false
}

func pickMessage(raw *rawCreditPayload) string {
	if raw.Error != nil && raw.Error.Message != "" {
		return raw.Error.Message
	}
	if raw.Message != "" {
		return raw.Message
	}
	return "Insufficient credits to continue video generation."
}
