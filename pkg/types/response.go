package types

// Envelope is the standard {status, message, data} response. Field order is
// the serialized key order.
type Envelope struct {
	Status  int    `json:"status" validate:"gte=100,lte=599"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	DefaultStatus  = 200
	DefaultMessage = ""
)

// EmptyData is the payload used when the caller supplies none.
func EmptyData() map[string]any {
	return map[string]any{}
}
