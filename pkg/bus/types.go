package bus

// InboundMessage is one text message received from a messaging platform.
type InboundMessage struct {
	Channel  string            `json:"channel"`
	SenderID string            `json:"sender_id"`
	ChatID   string            `json:"chat_id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MessageKind tags the payload carried by an OutboundMessage.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
)

// OutboundMessage is one reply to deliver to the original sender.
type OutboundMessage struct {
	Kind     MessageKind `json:"kind"`
	Text     string      `json:"text,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
}

// Text builds a text reply.
func Text(body string) OutboundMessage {
	return OutboundMessage{Kind: KindText, Text: body}
}

// Image builds an image-attachment reply.
func Image(url string) OutboundMessage {
	return OutboundMessage{Kind: KindImage, ImageURL: url}
}

// IsImage reports whether the message carries an image attachment.
func (m OutboundMessage) IsImage() bool {
	return m.Kind == KindImage
}
