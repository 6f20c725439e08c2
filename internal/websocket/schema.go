package websocket

import "github.com/stemsi/exstem-report/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect Action = "select"
	ActionPing   Action = "ping"
)

// RequestPayload carries every client action; selection fields are only
// read for ActionSelect.
type RequestPayload struct {
	Action  Action `json:"action"`
	Student string `json:"student" binding:"required_if=Action select,max=200"`
	Class   string `json:"class" binding:"required_if=Action select,max=100"`
	Subject string `json:"subject" binding:"max=200"`
}

// Selection extracts the selection of a select action.
func (p RequestPayload) Selection() model.Selection {
	return model.Selection{Student: p.Student, Class: p.Class, Subject: p.Subject}.Normalize()
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventOptions   Event = "options"
	EventSummaries Event = "summaries"
	EventPong      Event = "pong"
)

// OptionsResponse is sent once on connect so the client can fill its controls.
type OptionsResponse struct {
	Event   Event         `json:"event"`
	Options model.Options `json:"options"`
}

// SummariesResponse answers a select action. Dashboard holds the selection,
// the three summaries and their panels.
type SummariesResponse struct {
	Event     Event       `json:"event"`
	Dashboard interface{} `json:"dashboard"`
}

type ErrorResponse struct {
	Event  Event             `json:"event"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
