package model

import "time"

// Message represents a persisted direct message.
// Exactly one of TextBody and ImageBody is set for messages written by the relay.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	TextBody   *string   `json:"text_body,omitempty"`
	ImageBody  *string   `json:"image_body,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Payload is the body of a send: text or image.
type Payload struct {
	Text  string
	Image string
}

// TextPayload builds a text-only payload.
func TextPayload(text string) Payload {
	return Payload{Text: text}
}

// ImagePayload builds an image-only payload.
func ImagePayload(image string) Payload {
	return Payload{Image: image}
}

// IsText reports whether the payload carries exactly a text body.
func (p Payload) IsText() bool {
	return p.Text != "" && p.Image == ""
}

// IsImage reports whether the payload carries exactly an image body.
func (p Payload) IsImage() bool {
	return p.Image != "" && p.Text == ""
}

// Columns returns the payload as nullable column values, nil for the unset side.
func (p Payload) Columns() (text, image *string) {
	if p.Text != "" {
		t := p.Text
		text = &t
	}
	if p.Image != "" {
		i := p.Image
		image = &i
	}
	return text, image
}
