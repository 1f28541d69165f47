package models

import "time"

// MessageType enumerates the kinds of chat messages.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeAudio MessageType = "audio"
)

// KnownType reports whether t is one of the supported message types.
func KnownType(t MessageType) bool {
	switch t {
	case TypeText, TypeImage, TypeAudio:
		return true
	}
	return false
}

// Message is a single chat message. For image and audio messages the
// content holds the URL of the uploaded media file.
type Message struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Sender    string      `json:"sender"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}
