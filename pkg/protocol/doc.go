// Package protocol is the wire format peers exchange through the relay.
//
// Every frame is a JSON array of exactly two elements, [type, args]:
//
//	Ping (type 0):
//	  args: [sent_at_ms]          // sender clock, unix milliseconds
//
//	Move (type 1):
//	  args: [from, to]            // square labels, file letter + rank digit, "e2"
//
// The relay never looks inside a frame beyond checking that it decodes.
// Anything else is dropped by the receiver.
package protocol
