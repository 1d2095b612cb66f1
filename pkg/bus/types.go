package bus

import "time"

// Event is a single inbound post delivered by a source channel.
// Identity is (ChatID, MessageID); message IDs are unique per chat.
type Event struct {
	ChatID    int64     `json:"chat_id"`
	MessageID int       `json:"message_id"`
	Text      string    `json:"text"`
	Time      time.Time `json:"time"`
}
