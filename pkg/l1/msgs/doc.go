// Package msgs provides the station bus protocol and all message schemas.
//
// Every message travels in a Typed envelope. The type ID tells the kind
// (command or event), the group and whether a command-kind message is a
// reply. Replies carry the sequence of the command they answer.
package msgs
