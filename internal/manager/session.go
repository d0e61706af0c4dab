package manager

// Form mirrors the id/name inputs of the modal.
type Form struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	Focus       string `json:"focus,omitempty"`
}

// Session describes the currently open manager dialog.
type Session struct {
	Records   []Record `json:"records"`
	Type      Type     `json:"type"`
	Endpoint  string   `json:"endpoint"`
	Inventory bool     `json:"inventory"`
	Title     string   `json:"title"`
	Form      Form     `json:"form"`
	Visible   bool     `json:"visible"`
}

// Notification is a toast or alert for the host page to present.
type Notification struct {
	Title    string `json:"title"`
	Text     string `json:"text,omitempty"`
	Icon     string `json:"icon"`
	Toast    bool   `json:"toast,omitempty"`
	Position string `json:"position,omitempty"`
	TimerMS  int    `json:"timer,omitempty"`
}

const (
	IconSuccess = "success"
	IconError   = "error"
)

// Outcome tells the caller what to do after Submit or DeleteItem.
// Closed and Reload are never both set.
type Outcome struct {
	Closed       bool
	Reload       bool
	Notification *Notification
}
