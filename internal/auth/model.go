package auth

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the users table. Removal is a soft flag, not a gorm
// soft delete: signup must still see removed accounts.
type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username   *string    `gorm:"size:20"`
	Email      string     `gorm:"size:50;not null"`
	Password   string     `gorm:"size:140;not null"`
	Verified   bool       `gorm:"not null"`
	Removed    bool       `gorm:"not null"`
	VerifiedAt *time.Time `gorm:"column:verified_at"`
	CTime      time.Time  `gorm:"column:ctime;autoCreateTime"`
	MTime      time.Time  `gorm:"column:mtime;autoUpdateTime"`
	RTime      *time.Time `gorm:"column:rtime"`
}

func (User) TableName() string {
	return "users"
}

// UserSession is one authenticated device. Token holds the refresh
// token; at most one non-removed row exists per token value. Expiry is
// fixed at creation and never extended.
type UserSession struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null"`
	User       *User      `gorm:"foreignKey:UserID"`
	Token      string     `gorm:"type:text;uniqueIndex;not null"`
	IPAddress  string     `gorm:"column:ipaddress;type:inet;not null"`
	UserAgent  string     `gorm:"column:user_agent;type:text;not null"`
	Location   string     `gorm:"type:text;not null"`
	Removed    bool       `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null"`
	LastUsedAt time.Time  `gorm:"column:last_used_at;not null"`
	CTime      time.Time  `gorm:"column:ctime;autoCreateTime"`
	MTime      time.Time  `gorm:"column:mtime;autoUpdateTime"`
	RTime      *time.Time `gorm:"column:rtime"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

// ClientMeta is the request-scoped device metadata recorded on a
// session and mirrored into its cache entry.
type ClientMeta struct {
	IPAddress string `json:"ipaddress"`
	UserAgent string `json:"user_agent"`
	Location  string `json:"location"`
}

// SessionPayload is the cache mirror of a session, keyed by the signed
// session token. Disposable projection; the database row stays
// authoritative.
type SessionPayload struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	IPAddress string    `json:"ipaddress"`
	UserAgent string    `json:"user_agent"`
	Location  string    `json:"location"`
}
