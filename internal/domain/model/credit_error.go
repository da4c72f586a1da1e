package model

// CreditErrorDetails carries the numeric breakdown of an insufficient-balance
// rejection. Shortfall is derived when the server omits it.
type CreditErrorDetails struct {
	Required         int64  `json:"required"`
	Available        int64  `json:"available"`
	Shortfall        int64  `json:"shortfall"`
	SuggestedPackage string `json:"suggestedPackage,omitempty"`
}

// CreditErrorContext echoes which request produced the error, for display and
// for correlating support tickets.
type CreditErrorContext struct {
	ScriptID  string `json:"scriptId,omitempty"`
	VersionID string `json:"versionId,omitempty"`
	Route     string `json:"route,omitempty"`
}

// CreditError is the single normalized form of the several raw
// insufficient-balance payloads the pipeline endpoints return. It is built
// exactly once at the API boundary; nothing downstream re-probes raw shapes.
type CreditError struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details CreditErrorDetails `json:"details"`
	Context CreditErrorContext `json:"context"`
}

// CreditErrorCode is the canonical code all raw variants normalize to.
const CreditErrorCode = "INSUFFICIENT_CREDITS"
