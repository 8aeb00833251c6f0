package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/telemetry"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func newTestSim() *game.Simulation {
	cfg := config.Cfg().WithWorldSize(400, 400)
	opts := game.OptionsFromConfig(cfg)
	opts.AgentTarget = 10
	opts.FoodSourceTarget = 2
	return game.New(cfg, opts, 7)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, cmd Command) Message {
	t.Helper()
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketCommands(t *testing.T) {
	s := New(newTestSim(), config.Cfg().Server)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts)

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != MsgHello || hello.Options == nil || hello.Snapshot == nil {
		t.Fatalf("bad hello: %+v", hello)
	}
	if hello.Options.AgentTarget != 10 {
		t.Errorf("hello agent target = %d, want 10", hello.Options.AgentTarget)
	}

	tests := []struct {
		name   string
		cmd    Command
		wantOK bool
	}{
		{"food far from nest", Command{Type: CmdPlace, Kind: KindFood, X: 50, Y: 50}, true},
		{"food on the nest", Command{Type: CmdPlace, Kind: KindFood, X: 200, Y: 200}, false},
		{"obstacle", Command{Type: CmdPlace, Kind: KindObstacle, X: 350, Y: 60}, true},
		{"predator out of bounds", Command{Type: CmdPlace, Kind: KindPredator, X: -5, Y: 10}, false},
		{"unknown kind", Command{Type: CmdPlace, Kind: "rock", X: 10, Y: 10}, false},
		{"pause", Command{Type: CmdPause, Paused: true}, true},
		{"resize", Command{Type: CmdResize, Width: 500, Height: 450}, true},
		{"resize invalid", Command{Type: CmdResize, Width: 0, Height: 450}, false},
		{"configure without options", Command{Type: CmdConfigure}, false},
		{"unknown command", Command{Type: "dance"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := roundTrip(t, conn, tt.cmd)
			if msg.Type != MsgAck || msg.OK != tt.wantOK {
				t.Errorf("reply = %+v, want ok=%v", msg, tt.wantOK)
			}
		})
	}

	s.Runner().Do(func(sim *game.Simulation) {
		if !sim.Paused() {
			t.Error("simulation not paused")
		}
		if w, h := sim.WorldSize(); w != 500 || h != 450 {
			t.Errorf("world = %vx%v, want 500x450", w, h)
		}
		if n := len(sim.Obstacles()); n != 1 {
			t.Errorf("obstacles = %d, want 1", n)
		}
	})
}

func TestWebSocketConfigureAndReset(t *testing.T) {
	s := New(newTestSim(), config.Cfg().Server)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	var hello Message
	conn.ReadJSON(&hello)

	opts := *hello.Options
	opts.PheromoneStrength = 42
	msg := roundTrip(t, conn, Command{Type: CmdConfigure, Options: &opts})
	if !msg.OK || msg.Options == nil || msg.Options.PheromoneStrength != 10 {
		t.Fatalf("configure reply = %+v, want clamped strength 10", msg)
	}

	opts.AgentTarget = 3
	msg = roundTrip(t, conn, Command{Type: CmdReset, Options: &opts})
	if !msg.OK || msg.Snapshot == nil {
		t.Fatalf("reset reply = %+v", msg)
	}
	if len(msg.Snapshot.Ants) != 3 || msg.Snapshot.Tick != 0 {
		t.Errorf("reset snapshot has %d ants at tick %d, want 3 at 0", len(msg.Snapshot.Ants), msg.Snapshot.Tick)
	}

	msg = roundTrip(t, conn, Command{Type: CmdSnapshot})
	if msg.Type != MsgSnapshot || msg.Snapshot == nil || msg.Stats == nil {
		t.Fatalf("snapshot reply = %+v", msg)
	}
	if len(msg.Snapshot.HomeGrid) != msg.Snapshot.GridW*msg.Snapshot.GridH {
		t.Errorf("home grid has %d cells, want %d", len(msg.Snapshot.HomeGrid), msg.Snapshot.GridW*msg.Snapshot.GridH)
	}
}

func TestStateBroadcast(t *testing.T) {
	s := New(newTestSim(), config.ServerConfig{TickRate: 1000, BroadcastEvery: 2})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	conn := dial(t, ts)
	var hello Message
	conn.ReadJSON(&hello)

	// Wait for registration before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for s.Hub().Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	s.Runner().Step()
	s.Runner().Step()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read state: %v", err)
	}
	if msg.Type != MsgState || msg.Snapshot == nil || msg.Snapshot.Tick != 2 {
		t.Fatalf("state = %+v, want snapshot at tick 2", msg)
	}
	if msg.Snapshot.HomeGrid != nil {
		t.Error("broadcast snapshot should omit pheromone grids")
	}
}

func TestHTTPEndpoints(t *testing.T) {
	s := New(newTestSim(), config.Cfg().Server)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	var stats game.Stats
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()
	if stats.ActiveAgents != 10 {
		t.Errorf("active agents = %d, want 10", stats.ActiveAgents)
	}

	resp, err = http.Get(ts.URL + "/snapshot")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	var snap telemetry.Snapshot
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if snap.Version != telemetry.SnapshotVersion || len(snap.Ants) != 10 {
		t.Errorf("snapshot version=%d ants=%d", snap.Version, len(snap.Ants))
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	var mu sync.Mutex
	published := 0
	r := NewRunner(newTestSim(), 500, 1, func(*telemetry.Snapshot) {
		mu.Lock()
		published++
		mu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("Run returned %v, want deadline exceeded", err)
	}

	var tick int32
	r.Do(func(sim *game.Simulation) { tick = sim.CurrentTick() })
	mu.Lock()
	defer mu.Unlock()
	if tick == 0 || int32(published) != tick {
		t.Errorf("ticks=%d published=%d, want equal and non-zero", tick, published)
	}
}

func TestHubPublishKeepsLatest(t *testing.T) {
	h := NewHub()
	h.Publish(&telemetry.Snapshot{Tick: 1})
	h.Publish(&telemetry.Snapshot{Tick: 2})

	select {
	case snap := <-h.pending:
		if snap.Tick != 2 {
			t.Errorf("pending tick = %d, want 2", snap.Tick)
		}
	default:
		t.Fatal("nothing pending")
	}
}
