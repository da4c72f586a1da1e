//go:build !integration

package taskapi

import (
	"testing"

	"video-pipeline-monitor/internal/domain/model"
)

func TestNormalizeCreditError_NestedShape(t *testing.T) {
	body := []byte(`{
		"error": {
			"code": "INSUFFICIENT_CREDITS",
			"message": "Not enough credits",
			"details": {"required": 100, "available": 40, "suggestedPackage": "pro"}
		}
	}`)
	ce, ok := NormalizeCreditError(body, model.CreditErrorContext{Route: "resume"})
	if !ok {
		t.Fatal("nested shape not recognized")
	}
	if ce.Code != model.CreditErrorCode {
		t.Fatalf("code = %q", ce.Code)
	}
	if ce.Details.Required != 100 || ce.Details.Available != 40 {
		t.Fatalf("details = %+v", ce.Details)
	}
	if ce.Details.Shortfall != 60 {
		t.Fatalf("shortfall not derived: %d", ce.Details.Shortfall)
	}
	if ce.Details.SuggestedPackage != "pro" {
		t.Fatalf("suggested package = %q", ce.Details.SuggestedPackage)
	}
	if ce.Message != "Not enough credits" {
		t.Fatalf("message = %q", ce.Message)
	}
	if ce.Context.Route != "resume" {
		t.Fatalf("context not attached: %+v", ce.Context)
	}
}

func TestNormalizeCreditError_FlatShape(t *testing.T) {
	body := []byte(`{
		"errorType": "credit_insufficient",
		"message": "balance too low",
		"required": 100,
		"available": 25,
		"shortfall": 75
	}`)
	ce, ok := NormalizeCreditError(body, model.CreditErrorContext{})
	if !ok {
		t.Fatal("flat shape not recognized")
	}
	if ce.Code != model.CreditErrorCode {
		t.Fatalf("flat variant must normalize to the canonical code, got %q", ce.Code)
	}
	if ce.Details.Required != 100 || ce.Details.Available != 25 || ce.Details.Shortfall != 75 {
		t.Fatalf("details = %+v", ce.Details)
	}
}

func TestNormalizeCreditError_NumbersInsideErrorObject(t *testing.T) {
	body := []byte(`{
		"error": {
			"code": "INSUFFICIENT_CREDITS",
			"required": 50,
			"available": 10
		}
	}`)
	ce, ok := NormalizeCreditError(body, model.CreditErrorContext{})
	if !ok {
		t.Fatal("shape with numerics directly on error not recognized")
	}
	if ce.Details.Required != 50 || ce.Details.Shortfall != 40 {
		t.Fatalf("details = %+v", ce.Details)
	}
}

func TestNormalizeCreditError_TaggedWithoutNumbers(t *testing.T) {
	body := []byte(`{"error": {"code": "INSUFFICIENT_CREDITS"}}`)
	ce, ok := NormalizeCreditError(body, model.CreditErrorContext{})
	if !ok {
		t.Fatal("tagged payload without numerics must still normalize")
	}
	if ce.Message == "" {
		t.Fatal("fallback message expected")
	}
	if ce.Details.Required != 0 || ce.Details.Shortfall != 0 {
		t.Fatalf("details should be zero: %+v", ce.Details)
	}
}

func TestNormalizeCreditError_RejectsUnrelatedBodies(t *testing.T) {
	for _, body := range []string{
		`{"error": {"code": "RATE_LIMITED", "message": "slow down"}}`,
		`{"message": "internal server error"}`,
		`not json at all`,
		`{}`,
	} {
		if _, ok := NormalizeCreditError([]byte(body), model.CreditErrorContext{}); ok {
			t.Fatalf("body %q wrongly classified as a credit error", body)
		}
	}
}
