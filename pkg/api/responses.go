package api

import "time"

// askResponse is the POST /api/ask reply.
type askResponse struct {
	JobID string `json:"jobId"`
	WSURL string `json:"wsUrl"`
}

// healthResponse is the GET /health reply.
type healthResponse struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	RealtimeAvailable bool      `json:"realtimeAvailable"`
}
