package models

import "time"

// Message is a directed text between two users. Conversations are derived
// by grouping on the sender/receiver pair.
type Message struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	SenderID   string    `gorm:"size:64;not null;index" json:"sender_id"`
	ReceiverID string    `gorm:"size:64;not null;index" json:"receiver_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Read       bool      `gorm:"default:false" json:"read"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}

func (Message) TableName() string {
	return "messages"
}
