package state

import "github.com/google/uuid"

// sessionID identifies this process to live-view viewers.
var sessionID = uuid.NewString()

func SessionID() string {
	return sessionID
}

func newPathID() string {
	return uuid.NewString()
}
