package models

import "time"

// TicketModel is the gorm persistence model for tickets. The unique index on
// group_message_id backs the hot-path lookup for every staff reply.
type TicketModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	EncryptedUserID string    `gorm:"column:encrypted_user_id;type:text;not null"`
	UserMessageID   int64     `gorm:"column:user_message_id;not null"`
	GroupMessageID  int64     `gorm:"column:group_message_id;uniqueIndex:idx_tickets_group_message_id;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

// TableName overrides the gorm naming convention.
func (TicketModel) TableName() string {
	return "tickets"
}
