package dto

import (
	"strings"

	ierr "github.com/signalforge/signalforge/internal/errors"
)

// SyncSubscriptionResponse returns the merged metadata patch after a
// successful reconciliation.
type SyncSubscriptionResponse struct {
	Success  bool                   `json:"success"`
	Metadata map[string]interface{} `json:"metadata"`
}

func NewSyncSubscriptionResponse(metadata map[string]interface{}) *SyncSubscriptionResponse {
	return &SyncSubscriptionResponse{Success: true, Metadata: metadata}
}

// PortalSessionRequest optionally overrides the configured return URL.
type PortalSessionRequest struct {
	ReturnURL string `json:"return_url,omitempty"`
}

func (r *PortalSessionRequest) Validate() error {
	if r.ReturnURL != "" && !strings.HasPrefix(r.ReturnURL, "https://") {
		return ierr.NewError("invalid return url").
			WithHint("Return URL must be https").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PortalSessionResponse carries the provider's billing portal redirect.
type PortalSessionResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a processed webhook delivery.
type WebhookResponse struct {
	Received bool `json:"received"`
}
