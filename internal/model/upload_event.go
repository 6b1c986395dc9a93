package model

import "time"

type UploadEvent struct {
	RequestID      string    `json:"request_id"`
	Filename       string    `json:"filename"`
	ContentType    string    `json:"content_type"`
	Size           int64     `json:"size"`
	UpstreamStatus int       `json:"upstream_status"`
	UploadedAt     time.Time `json:"uploaded_at"`
}
