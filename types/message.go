// Package types defines core domain types for lintstream.
//
//nolint:revive // types is a common Go package naming convention
package types

import "strings"

// MessageType is the severity class of a diagnostic.
type MessageType string

// Message type constants.
const (
	MessageTypeError        MessageType = "error"
	MessageTypeWarning      MessageType = "warning"
	MessageTypeInfo         MessageType = "info"
	MessageTypeSupplemental MessageType = "supplemental"
	MessageTypeUnknown      MessageType = "unknown"
)

// IsPrimary reports whether the type starts a new group.
// Supplemental messages are never primary; Unknown is treated as primary.
func (t MessageType) IsPrimary() bool {
	return t != MessageTypeSupplemental
}

// ParseMessageType maps the tool's type text to a MessageType.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseMessageType(s string) MessageType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return MessageTypeError
	case "warning":
		return MessageTypeWarning
	case "info", "note", "elective note":
		return MessageTypeInfo
	case "supplemental":
		return MessageTypeSupplemental
	default:
		return MessageTypeUnknown
	}
}

// Message is one diagnostic produced by the lint tool.
// Identity is the full value: two messages are equal iff every field matches,
// so Message is usable directly as a map key.
type Message struct {
	// File is the source path, normalized to the host separator.
	File string `json:"file" yaml:"file"`
	// Line is the 1-based line number.
	Line int `json:"line" yaml:"line"`
	// Type is the severity class.
	Type MessageType `json:"type" yaml:"type"`
	// Number is the tool's message number.
	Number int `json:"number" yaml:"number"`
	// Description is the message text, entities decoded.
	Description string `json:"description" yaml:"description"`
}

// MessageGroup is a primary message followed by zero or more supplemental
// messages that elaborate on it. A group is never empty.
type MessageGroup struct {
	Messages []Message `json:"messages" yaml:"messages"`
}

// Primary returns the leading message of the group.
func (g MessageGroup) Primary() Message {
	return g.Messages[0]
}

// Supplementals returns the messages following the primary.
func (g MessageGroup) Supplementals() []Message {
	return g.Messages[1:]
}

// Len returns the number of messages in the group.
func (g MessageGroup) Len() int {
	return len(g.Messages)
}
