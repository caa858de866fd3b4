package models

import "time"

/************************************************
/**** MARK: EVENT STATUS ****/
/************************************************/
const EVENT_STATUS_PENDING = "pending"
const EVENT_STATUS_PROCESSING = "processing"
const EVENT_STATUS_DONE = "done"
const EVENT_STATUS_IGNORED = "ignored"
const EVENT_STATUS_FAILED = "failed"

// Event is one inbound WhatsApp text message.
// It is stored as "pending" by the webhook and answered by the events worker,
// so the webhook can reply to Meta immediately. MessageID is unique, which
// makes webhook retries from Meta a no-op.
//
// Recipient is only the ownership key: normalizing assumes the local dialing
// code, so replies are delivered to From, which Meta already sends in
// international format.
type Event struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Recipient   string     `gorm:"not null;index" json:"recipient"`             // normalized sender phone, owner identity
	From        string     `gorm:"column:from_number;default:''" json:"from"` // number as sent by Meta, replies go here
	SenderName  string     `gorm:"column:sender_name;default:''" json:"sender_name"`
	MessageID   string     `gorm:"column:message_id;unique_index" json:"message_id"`
	Text        string     `gorm:"type:text" json:"text"`
	Status      string     `gorm:"not null;default:'pending';index" json:"status"`
	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	ReplyText   string     `gorm:"type:text" json:"reply_text"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
