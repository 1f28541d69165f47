package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"minichat/pkg/models"
)

// Error describes a rejected message. Handlers map it to a 400 response.
type Error struct {
	Fields []string
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// Rules holds the tunable limits applied to incoming messages.
type Rules struct {
	MaxContentLen int
	MaxSenderLen  int
}

// Defaults mirror the limits the web client enforces.
var rules = Rules{MaxContentLen: 200, MaxSenderLen: 64}

func SetRules(r Rules) {
	if r.MaxContentLen > 0 {
		rules.MaxContentLen = r.MaxContentLen
	}
	if r.MaxSenderLen > 0 {
		rules.MaxSenderLen = r.MaxSenderLen
	}
}

// ValidateMessage checks the required fields and limits of a message.
// The id and timestamp are assigned by the caller and are not checked here.
func ValidateMessage(m models.Message) error {
	var missing []string
	if strings.TrimSpace(m.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(m.Sender) == "" {
		missing = append(missing, "sender")
	}
	if m.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return &Error{Fields: missing, Msg: "Campos obrigatórios ausentes"}
	}
	if !models.KnownType(m.Type) {
		return &Error{Fields: []string{"type"}, Msg: fmt.Sprintf("unknown message type: %s", m.Type)}
	}
	if n := utf8.RuneCountInString(m.Content); m.Type == models.TypeText && n > rules.MaxContentLen {
		return &Error{Fields: []string{"content"}, Msg: fmt.Sprintf("content exceeds %d characters", rules.MaxContentLen)}
	}
	if n := utf8.RuneCountInString(m.Sender); n > rules.MaxSenderLen {
		return &Error{Fields: []string{"sender"}, Msg: fmt.Sprintf("sender exceeds %d characters", rules.MaxSenderLen)}
	}
	return nil
}
