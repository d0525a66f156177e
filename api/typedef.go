package api

// MessageType identifies a console message.
type MessageType string

const (
	MessageTypeEval       MessageType = "eval"
	MessageTypeEvalResult MessageType = "eval_result"
	MessageTypeDiagnostic MessageType = "diagnostic"
	MessageTypeStatus     MessageType = "status"
	MessageTypeAck        MessageType = "ack"
	MessageTypeError      MessageType = "error"
)

// WSMessage is the envelope for every console frame in both directions.
type WSMessage struct {
	Type MessageType `json:"type"`
	ID   string      `json:"id,omitempty"`
	Data any         `json:"data,omitempty"`
}

// EvalRequest asks the editor to evaluate an expression.
type EvalRequest struct {
	Source string `json:"source"`
}

// EvalResult carries the outcome of an evaluation.
type EvalResult struct {
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// StatusReport describes the editor process.
type StatusReport struct {
	Goroutines  int     `json:"goroutines"`
	MemUsedMB   float64 `json:"memUsedMB"`
	MemPercent  float64 `json:"memPercent"`
	CPUPercent  float64 `json:"cpuPercent"`
	Diagnostics int     `json:"diagnostics"`
}
