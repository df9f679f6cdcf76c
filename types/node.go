package types

// Address identifies a node of the network. Contacts are referred to by the
// address of the peer on the other side.
type Address string

// MessageID uniquely identifies a message carried by a node
type MessageID string
