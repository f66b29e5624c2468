package domain

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// MaxDestinationIDLength bounds destination identifiers in bytes.
const MaxDestinationIDLength = 256

// Notification is a targeted message submitted by a caller.
type Notification struct {
	DestinationID string
	SenderID      string
	Message       string
	SentAt        time.Time
}

// ValidateDestinationID checks that id can name a registry slot.
func ValidateDestinationID(id string) error {
	if id == "" {
		return ErrMissingArgument.WithDetails("destination_id is required")
	}
	if len(id) > MaxDestinationIDLength {
		return ErrInvalidDestination.WithDetails("longer than " + strconv.Itoa(MaxDestinationIDLength) + " bytes")
	}
	if !utf8.ValidString(id) {
		return ErrInvalidDestination.WithDetails("not valid UTF-8")
	}
	return nil
}

// Validate checks the message body. maxMessageBytes <= 0 disables the
// size check. The destination is not checked here: an identifier that
// could never be registered is simply not connected.
func (n *Notification) Validate(maxMessageBytes int) error {
	if maxMessageBytes > 0 && len(n.Message) > maxMessageBytes {
		return ErrInvalidArgument.WithDetails("message exceeds " + strconv.Itoa(maxMessageBytes) + " bytes")
	}
	if !utf8.ValidString(n.Message) {
		return ErrInvalidArgument.WithDetails("message is not valid UTF-8")
	}
	return nil
}
