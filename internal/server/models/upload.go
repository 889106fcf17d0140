package models

// UploadTicket lets a client PUT an asset straight to object storage.
type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	URL       string `json:"url"`
	Key       string `json:"key"`
}
