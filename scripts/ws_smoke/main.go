package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/hypertac-server/internal/proto"
)

// wireMessage mirrors proto.Outbound with the payload left raw.
type wireMessage struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

type player struct {
	name string
	conn *websocket.Conn
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	x, err := connect(ctx, *addr, "x")
	if err != nil {
		return err
	}
	defer x.conn.Close(websocket.StatusNormalClosure, "bye")
	o, err := connect(ctx, *addr, "o")
	if err != nil {
		return err
	}
	defer o.conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, x, proto.InboundTypeCreateRoom, proto.CreateRoomData{PlayerName: x.name}); err != nil {
		return err
	}
	raw, err := await(ctx, x, "room_setup")
	if err != nil {
		return err
	}
	var setup proto.EventRoomSetup
	if err := json.Unmarshal(raw, &setup); err != nil {
		return fmt.Errorf("decode room_setup: %w", err)
	}
	log.Printf("room %s created", setup.Room)

	if err := send(ctx, o, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: setup.Room, PlayerName: o.name}); err != nil {
		return err
	}
	if _, err := await(ctx, o, "room_setup"); err != nil {
		return err
	}

	if err := send(ctx, x, proto.InboundTypeStartGame, nil); err != nil {
		return err
	}

	// x takes the main diagonal, o plays the top row.
	moves := []struct {
		p   *player
		pos []int
	}{
		{x, []int{0, 0}}, {o, []int{1, 0}},
		{x, []int{1, 1}}, {o, []int{2, 0}},
		{x, []int{2, 2}},
	}
	for _, mv := range moves {
		if err := awaitTurn(ctx, mv.p); err != nil {
			return err
		}
		if err := send(ctx, mv.p, proto.InboundTypePlace, proto.PlaceData{Position: mv.pos}); err != nil {
			return err
		}
		log.Printf("%s placed at %v", mv.p.name, mv.pos)
	}

	raw, err = await(ctx, o, "game_end")
	if err != nil {
		return err
	}
	var end proto.EventGameEnd
	if err := json.Unmarshal(raw, &end); err != nil {
		return fmt.Errorf("decode game_end: %w", err)
	}
	if end.Winner != x.name {
		return fmt.Errorf("expected %s to win, got reason=%s winner=%q", x.name, end.Reason, end.Winner)
	}
	log.Printf("game over: %s won along %v", end.Winner, end.Line)
	return nil
}

func connect(ctx context.Context, addr, name string) (*player, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	p := &player{name: name, conn: conn}
	if err := send(ctx, p, proto.InboundTypeSetup, proto.SetupData{Protocol: proto.ProtocolVersion}); err != nil {
		return nil, err
	}
	if _, err := await(ctx, p, "setup"); err != nil {
		return nil, err
	}
	return p, nil
}

func send(ctx context.Context, p *player, typ string, data any) error {
	var payload json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		payload = b
	}
	if err := wsjson.Write(ctx, p.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("%s send %s: %w", p.name, typ, err)
	}
	return nil
}

// awaitTurn skips next_turn events addressed to the other player.
func awaitTurn(ctx context.Context, p *player) error {
	for {
		raw, err := await(ctx, p, "next_turn")
		if err != nil {
			return err
		}
		var turn proto.EventNextTurn
		if err := json.Unmarshal(raw, &turn); err != nil {
			return fmt.Errorf("decode next_turn: %w", err)
		}
		if turn.NextPlayer == p.name {
			return nil
		}
	}
}

// await reads until the named event arrives. Server errors abort the run.
func await(ctx context.Context, p *player, event string) (json.RawMessage, error) {
	for {
		var msg wireMessage
		if err := wsjson.Read(ctx, p.conn, &msg); err != nil {
			return nil, fmt.Errorf("%s waiting for %s: %w", p.name, event, err)
		}
		log.Printf("%s <- %s %s %s", p.name, msg.Type, msg.Event, msg.Data)
		if msg.Type == proto.OutboundTypeError && msg.Error != nil {
			return nil, fmt.Errorf("%s got error %s: %s", p.name, msg.Error.Code, msg.Error.Msg)
		}
		if msg.Event == event {
			return msg.Data, nil
		}
	}
}
