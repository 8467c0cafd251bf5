package types

// PutRequest is the body of a store request.
type PutRequest struct {
	Key   string   `json:"key" msgpack:"key"`
	Value string   `json:"value" msgpack:"value"`
	Tags  []string `json:"tags" msgpack:"tags"`
}

// RevalidateRequest is the body of a bulk invalidation request.
type RevalidateRequest struct {
	Tags []string `json:"tags" msgpack:"tags"`
}

// Message is a plain acknowledgement.
type Message struct {
	Message string `json:"message" msgpack:"message"`
}

// RevalidateResponse acknowledges a bulk invalidation.
type RevalidateResponse struct {
	Message string `json:"message" msgpack:"message"`
	Removed int    `json:"removed" msgpack:"removed"`
}

// ErrorResponse carries a failure description.
type ErrorResponse struct {
	Error string `json:"error" msgpack:"error"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status   string `json:"status" msgpack:"status"`
	Version  string `json:"version" msgpack:"version"`
	Instance string `json:"instance" msgpack:"instance"`
}
