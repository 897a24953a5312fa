package model

import (
	"net"
	"time"
)

const SourceRemote = "remote"

// Entry is an accepted LogMessage together with receive metadata.
type Entry struct {
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	Source     string    `json:"source"`
}

func NewEntry(msg LogMessage, remoteAddr string, receivedAt time.Time) Entry {
	return Entry{
		Message:    msg.Message,
		ReceivedAt: receivedAt.UTC(),
		RemoteAddr: remoteAddr,
		Source:     SourceRemote,
	}
}

// RemoteHost strips the port from RemoteAddr when present.
func (e Entry) RemoteHost() string {
	host, _, err := net.SplitHostPort(e.RemoteAddr)
	if err != nil {
		return e.RemoteAddr
	}
	return host
}
