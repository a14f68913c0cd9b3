package service

import "context"

// Attachment is the optional image sent with a booking.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AttachmentSource opens an image by location (a path or bucket URL) and
// checks its type and size.
type AttachmentSource interface {
	Open(ctx context.Context, location string) (*Attachment, error)
}
