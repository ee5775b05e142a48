// Package protocol defines the JSON text messages exchanged with the
// stream server. Text frames carry these messages; binary frames carry
// raw JPEG bytes, each announced by a preceding Frame message.
package protocol

import (
	"encoding/json"
	"strings"
)

// Message type identifiers.
const (
	TypeConnection = "connection"
	TypeFrame      = "frame"
	TypeHeartbeat  = "heartbeat"
	TypeLog        = "log"
	TypeDeviceInfo = "device_info"
)

// ackToken is the substring of a server text message that acknowledges
// the device after connect. Its arrival promotes the session to
// Authenticated.
const ackToken = "connection_ack"

// Connection is the hello message sent right after the transport opens.
type Connection struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Device string `json:"device"`
	Token  string `json:"token"`
}

// NewConnection builds the hello message for the given device and token.
func NewConnection(device, token string) Connection {
	return Connection{Type: TypeConnection, Status: "connected", Device: device, Token: token}
}

// Frame announces a binary JPEG payload. It must be sent strictly before
// the payload it describes, on the same session.
type Frame struct {
	Type      string  `json:"type"`
	Size      int     `json:"size"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Timestamp int64   `json:"timestamp"`
	FPS       float64 `json:"fps"`
	Device    string  `json:"device"`
}

// Heartbeat is the periodic liveness message.
type Heartbeat struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Device    string `json:"device"`
}

// Log mirrors an agent log line to the server.
type Log struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DeviceInfo identifies the device after authentication.
type DeviceInfo struct {
	Type    string `json:"type"`
	Device  string `json:"device"`
	Version string `json:"version"`
}

// Encode marshals a message to its JSON wire form.
func Encode(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}

// IsConnectionAck reports whether a server text message acknowledges the
// device. The server is loose about the envelope, so this matches on the
// ack token anywhere in the payload.
func IsConnectionAck(text string) bool {
	return strings.Contains(text, ackToken)
}
