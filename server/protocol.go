// Package server streams the simulation over WebSocket and accepts
// interactive commands from connected clients.
package server

import (
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/telemetry"
)

// Command types accepted from clients.
const (
	CmdPlace     = "place"
	CmdConfigure = "configure"
	CmdReset     = "reset"
	CmdPause     = "pause"
	CmdResize    = "resize"
	CmdSnapshot  = "snapshot"
)

// Placement kinds for CmdPlace.
const (
	KindFood     = "food"
	KindObstacle = "obstacle"
	KindPredator = "predator"
)

// Command is a client request. Only the fields relevant to Type are read.
type Command struct {
	Type    string        `json:"type"`
	Kind    string        `json:"kind,omitempty"`
	X       float32       `json:"x,omitempty"`
	Y       float32       `json:"y,omitempty"`
	Width   float32       `json:"width,omitempty"`
	Height  float32       `json:"height,omitempty"`
	Paused  bool          `json:"paused,omitempty"`
	Options *game.Options `json:"options,omitempty"`
}

// Message types sent to clients.
const (
	MsgHello    = "hello"
	MsgAck      = "ack"
	MsgState    = "state"
	MsgSnapshot = "snapshot"
)

// Message is a server push or a reply to a Command.
type Message struct {
	Type     string              `json:"type"`
	OK       bool                `json:"ok,omitempty"`
	Error    string              `json:"error,omitempty"`
	Command  string              `json:"command,omitempty"`
	Stats    *game.Stats         `json:"stats,omitempty"`
	Options  *game.Options       `json:"options,omitempty"`
	Snapshot *telemetry.Snapshot `json:"snapshot,omitempty"`
}

func ack(cmd string, ok bool, err string) Message {
	return Message{Type: MsgAck, Command: cmd, OK: ok, Error: err}
}
