package projector

// RefreshRequest asks the refresher to rebuild one portal's access
// projection. Requests are idempotent: refreshing an already fresh portal
// recomputes the same rows.
type RefreshRequest struct {
	PortalID string `json:"portal_id"`

	// Sweep marks requests fanned out by the periodic sweeper, as opposed to
	// targeted requests from a writer.
	Sweep bool `json:"sweep"`
}

// RefreshOutcome reports one finished refresh attempt.
type RefreshOutcome struct {
	PortalID   string `json:"portal_id"`
	Ok         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}
