package registry

import "github.com/prilive-com/tgbots/internal/scrub"

// Row describes one handle for listings. Tokens are shown as fingerprints,
// including inside the webhook URL.
type Row struct {
	Bot        string   `json:"bot"`
	ID         string   `json:"id,omitempty"`
	Username   string   `json:"username,omitempty"`
	Default    bool     `json:"default"`
	Polling    bool     `json:"polling"`
	Queued     bool     `json:"queued"`
	WebhookURL string   `json:"webhook_url,omitempty"`
	Allowed    []string `json:"allowed_updates,omitempty"`
	Pending    int      `json:"pending_update_count"`
}

// Summary lists the handles in insertion order without touching the
// used-token set.
func (r *Registry) Summary() []Row {
	handles := r.All()
	rows := make([]Row, 0, len(handles))
	for i, h := range handles {
		row := Row{
			Bot:      h.Token.Fingerprint(),
			ID:       h.ID,
			Username: h.Username(),
			Default:  i == 0,
			Polling:  h.Updater != nil,
			Queued:   h.Bot.Queued(),
		}
		if info := h.Bot.WebhookInfo(); info != nil {
			row.WebhookURL = scrub.String(info.URL, h.Token)
			row.Allowed = info.EffectiveAllowedUpdates()
			row.Pending = info.PendingUpdateCount
		}
		rows = append(rows, row)
	}
	return rows
}
