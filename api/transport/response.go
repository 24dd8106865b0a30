package transport

// Envelope wraps every API response so clients can branch on status and the
// typed error code without sniffing the payload shape.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewSuccess(data any) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
	}
}

// NewError carries the domain error code alongside the message so clients do
// not have to parse error strings.
func NewError(code, message string) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  message,
	}
}
