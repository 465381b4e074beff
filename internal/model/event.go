package model

// Inbound event types.
const (
	EventLogin       = "login"
	EventSendMessage = "sendMessage"
	EventSendImage   = "sendImage"
	EventTyping      = "typing"
)

// Outbound event types.
const (
	EventPresenceSnapshot = "presenceSnapshot"
	EventMessageDelivered = "messageDelivered"
	EventImageDelivered   = "imageDelivered"
	EventPeerTyping       = "peerTyping"
	EventError            = "error"
)

// InboundEvent is a websocket frame sent by a client.
// Which fields are meaningful depends on Type.
type InboundEvent struct {
	Type            string `json:"type"`
	UserID          int64  `json:"userId,omitempty"`
	Token           string `json:"token,omitempty"`
	ReceiverID      int64  `json:"receiverId,omitempty"`
	TextBody        string `json:"textBody,omitempty"`
	ImageBody       string `json:"imageBody,omitempty"`
	ClientTimestamp string `json:"clientTimestamp,omitempty"`
}

// OutboundEvent is a websocket frame pushed to a client.
type OutboundEvent struct {
	Type            string  `json:"type"`
	OnlineUsers     []int64 `json:"onlineUsers,omitzero"`
	SenderID        int64   `json:"senderId,omitempty"`
	TextBody        string  `json:"textBody,omitempty"`
	ImageBody       string  `json:"imageBody,omitempty"`
	ClientTimestamp string  `json:"clientTimestamp,omitempty"`
	Code            string  `json:"code,omitempty"`
	Message         string  `json:"message,omitempty"`
}

// PresenceSnapshot builds the broadcast listing every online identity.
// An empty snapshot still serialises onlineUsers as [].
func PresenceSnapshot(online []int64) OutboundEvent {
	if online == nil {
		online = []int64{}
	}
	return OutboundEvent{Type: EventPresenceSnapshot, OnlineUsers: online}
}

// Delivered builds the delivery event matching the payload kind.
func Delivered(senderID int64, p Payload, clientTimestamp string) OutboundEvent {
	if p.IsImage() {
		return OutboundEvent{
			Type:            EventImageDelivered,
			SenderID:        senderID,
			ImageBody:       p.Image,
			ClientTimestamp: clientTimestamp,
		}
	}
	return OutboundEvent{
		Type:            EventMessageDelivered,
		SenderID:        senderID,
		TextBody:        p.Text,
		ClientTimestamp: clientTimestamp,
	}
}

// PeerTyping builds the typing notification for a receiver.
func PeerTyping(senderID int64) OutboundEvent {
	return OutboundEvent{Type: EventPeerTyping, SenderID: senderID}
}

// ErrorEvent builds an error report for the offending connection.
func ErrorEvent(code, message string) OutboundEvent {
	return OutboundEvent{Type: EventError, Code: code, Message: message}
}
