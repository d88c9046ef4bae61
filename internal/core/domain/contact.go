package domain

import (
	"strconv"
	"strings"
	"time"
)

// Contact shadows an Account inside the chat subsystem. Friends is a set of
// contact ids and is not kept symmetric.
type Contact struct {
	ID      int64   `json:"id"`
	UserID  int64   `json:"user_id"`
	Friends []int64 `json:"friends"`
}

// HasFriend reports whether contactID is in c's friend set.
func (c *Contact) HasFriend(contactID int64) bool {
	for _, f := range c.Friends {
		if f == contactID {
			return true
		}
	}
	return false
}

// ContactIdentity addresses an account either by numeric id or by username.
type ContactIdentity struct {
	AccountID int64
	Username  string
}

// ParseContactIdentity treats an all-digit string as an account id and
// anything else as a username.
func ParseContactIdentity(raw string) ContactIdentity {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return ContactIdentity{AccountID: id}
	}
	return ContactIdentity{Username: raw}
}

func (i ContactIdentity) String() string {
	if i.AccountID != 0 {
		return strconv.FormatInt(i.AccountID, 10)
	}
	return i.Username
}

// Chat is a conversation between contacts. Messages holds message ids in
// insertion order.
type Chat struct {
	ID           int64
	Participants []int64
	Messages     []int64
	CreatedAt    time.Time
}

// HasParticipant reports whether the contact takes part in the chat.
func (c *Chat) HasParticipant(contactID int64) bool {
	for _, p := range c.Participants {
		if p == contactID {
			return true
		}
	}
	return false
}

// Message is immutable once created.
type Message struct {
	ID        int64
	ContactID int64
	Content   string
	Timestamp time.Time
}
