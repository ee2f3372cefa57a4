package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Engine.IO packet types (first byte of each polling frame).
const (
	packetOpen    = '0'
	packetClose   = '1'
	packetPing    = '2'
	packetPong    = '3'
	packetMessage = '4'
	packetNoop    = '6'
)

// Socket.IO packet types (second byte, inside a message frame).
const (
	sioConnect    = '0'
	sioDisconnect = '1'
	sioEvent      = '2'
)

// recordSeparator joins multiple packets in one polling payload.
const recordSeparator = "\x1e"

// handshake is the JSON body of the Engine.IO open packet.
type handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
}

// splitPayload splits a polling body into individual packets.
func splitPayload(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, recordSeparator)
}

// joinPayload joins packets into one polling body.
func joinPayload(packets []string) string {
	return strings.Join(packets, recordSeparator)
}

// encodeEvent builds a "42[event,payload]" frame.
func encodeEvent(event string, payload any) (string, error) {
	args := []any{event}
	if payload != nil {
		args = append(args, payload)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("realtime: encode event %s: %w", event, err)
	}
	return string(packetMessage) + string(sioEvent) + string(data), nil
}

// decodeEvent parses a "42[...]" frame into the event name and its first
// argument. ok is false for frames that are not events.
func decodeEvent(frame string) (event string, arg json.RawMessage, ok bool) {
	if len(frame) < 2 || frame[0] != packetMessage || frame[1] != sioEvent {
		return "", nil, false
	}
	var args []json.RawMessage
	if err := json.Unmarshal([]byte(frame[2:]), &args); err != nil || len(args) == 0 {
		return "", nil, false
	}
	if err := json.Unmarshal(args[0], &event); err != nil {
		return "", nil, false
	}
	if len(args) > 1 {
		arg = args[1]
	}
	return event, arg, true
}
