// Package session holds the append-only conversation transcript shared by the
// personas of a group chat.
package session

import (
	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// Transcript is an ordered, append-only sequence of messages. Insertion order
// defines turn history and the "last message". Implementations must be safe
// for concurrent use.
type Transcript interface {
	// ID returns the unique transcript identifier.
	ID() string
	// Append stamps msg with the next sequence number and creation time,
	// stores it, and returns the stored copy.
	Append(msg protocol.Message) protocol.Message
	// Messages returns a defensive copy of the history.
	Messages() []protocol.Message
	// Last returns the most recent message, false when empty.
	Last() (protocol.Message, bool)
	// Len returns the number of messages.
	Len() int
}
