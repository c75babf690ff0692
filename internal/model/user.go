package model

import "time"

// Role values assigned to chat users after INN verification.
const (
	RoleGuest  = "guest"
	RoleMember = "member"
)

// User is a chat user profile. The primary key is the external chat user id
// supplied by the transport layer, not an auto-increment.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	INN       string    `gorm:"size:12" json:"inn"`
	IsMember  bool      `gorm:"not null;default:false" json:"is_member"`
	Role      string    `gorm:"size:16;not null;default:guest" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
