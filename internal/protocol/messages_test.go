package protocol

import (
	"encoding/json"
	"testing"
)

func TestNewConnection(t *testing.T) {
	msg := NewConnection("cam-01", "secret")

	if msg.Type != TypeConnection {
		t.Errorf("Type = %s, want %s", msg.Type, TypeConnection)
	}
	if msg.Status != "connected" {
		t.Errorf("Status = %s, want connected", msg.Status)
	}
	if msg.Device != "cam-01" || msg.Token != "secret" {
		t.Errorf("Device/Token = %s/%s, want cam-01/secret", msg.Device, msg.Token)
	}
}

func TestEncode_FrameFields(t *testing.T) {
	data, err := Encode(Frame{
		Type:      TypeFrame,
		Size:      1024,
		Width:     800,
		Height:    600,
		Timestamp: 1700000000000,
		FPS:       29.5,
		Device:    "cam-01",
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := map[string]interface{}{
		"type":      "frame",
		"size":      float64(1024),
		"width":     float64(800),
		"height":    float64(600),
		"timestamp": float64(1700000000000),
		"fps":       29.5,
		"device":    "cam-01",
	}
	for k, v := range want {
		if decoded[k] != v {
			t.Errorf("field %q = %v, want %v", k, decoded[k], v)
		}
	}
	if len(decoded) != len(want) {
		t.Errorf("encoded %d fields, want %d: %s", len(decoded), len(want), data)
	}
}

func TestEncode_Heartbeat(t *testing.T) {
	data, err := Encode(Heartbeat{Type: TypeHeartbeat, Timestamp: 42, Device: "cam-01"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := `{"type":"heartbeat","timestamp":42,"device":"cam-01"}`
	if string(data) != want {
		t.Errorf("Encode() = %s, want %s", data, want)
	}
}

func TestIsConnectionAck(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bare token", "connection_ack", true},
		{"json envelope", `{"type":"connection_ack","status":"ok"}`, true},
		{"embedded", `server says: connection_ack received`, true},
		{"other message", `{"type":"command","action":"restart"}`, false},
		{"partial token", "connection", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionAck(tt.text); got != tt.want {
				t.Errorf("IsConnectionAck(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
