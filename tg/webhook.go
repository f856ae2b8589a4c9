package tg

// WebhookInfo is the webhook state acknowledged by the provider.
type WebhookInfo struct {
	URL                          string   `json:"url"`
	HasCustomCertificate         bool     `json:"has_custom_certificate"`
	PendingUpdateCount           int      `json:"pending_update_count"`
	IPAddress                    string   `json:"ip_address,omitempty"`
	LastErrorDate                int64    `json:"last_error_date,omitempty"`
	LastErrorMessage             string   `json:"last_error_message,omitempty"`
	LastSynchronizationErrorDate int64    `json:"last_synchronization_error_date,omitempty"`
	MaxConnections               int      `json:"max_connections,omitempty"`
	AllowedUpdates               []string `json:"allowed_updates,omitempty"`
}

// EffectiveAllowedUpdates returns the allowed-update filter, or ["ALL"] when
// the provider reports no filter.
func (w *WebhookInfo) EffectiveAllowedUpdates() []string {
	if w == nil || len(w.AllowedUpdates) == 0 {
		return []string{"ALL"}
	}
	return w.AllowedUpdates
}
