package http

import (
	"encoding/json"

	"github.com/vovakirdan/hypertac-server/internal/board"
	"github.com/vovakirdan/hypertac-server/internal/core"
	"github.com/vovakirdan/hypertac-server/internal/proto"
)

func invalidMessage(msg string) *core.CoreError {
	return &core.CoreError{Code: core.ErrCodeInvalidMessage, Message: msg}
}

// decodeData unmarshals an inbound payload. A missing payload leaves v zeroed.
func decodeData(inbound proto.Inbound, v any) *core.CoreError {
	if len(inbound.Data) == 0 || string(inbound.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(inbound.Data, v); err != nil {
		return invalidMessage("malformed " + inbound.Type + " payload")
	}
	return nil
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *core.CoreError) {
	switch inbound.Type {
	case proto.InboundTypeSetup:
		var setup proto.SetupData
		if ce := decodeData(inbound, &setup); ce != nil {
			return nil, ce
		}
		if setup.Protocol > proto.ProtocolVersion {
			return nil, &core.CoreError{Code: core.ErrCodeUnsupportedVersion, Message: "unsupported protocol version"}
		}
		return &core.Command{Kind: core.CommandSetup}, nil
	case proto.InboundTypeCreateRoom:
		var create proto.CreateRoomData
		if ce := decodeData(inbound, &create); ce != nil {
			return nil, ce
		}
		return &core.Command{Kind: core.CommandCreateRoom, PlayerName: create.PlayerName}, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if ce := decodeData(inbound, &join); ce != nil {
			return nil, ce
		}
		if join.RoomID == "" {
			return nil, &core.CoreError{Code: core.ErrCodeBadRequest, Message: "roomId is required"}
		}
		return &core.Command{
			Kind:       core.CommandJoinRoom,
			Room:       join.RoomID,
			PlayerName: join.PlayerName,
		}, nil
	case proto.InboundTypeLeaveRoom:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil
	case proto.InboundTypeSelectShape:
		var sel proto.SelectShapeData
		if ce := decodeData(inbound, &sel); ce != nil {
			return nil, ce
		}
		return &core.Command{
			Kind:  core.CommandSelectShape,
			Shape: core.Shape{Type: sel.Shape.Type, Color: sel.Shape.Color},
		}, nil
	case proto.InboundTypeEditSettings:
		var edit proto.EditSettingsData
		if ce := decodeData(inbound, &edit); ce != nil {
			return nil, ce
		}
		return &core.Command{
			Kind: core.CommandEditSettings,
			Settings: core.SettingsPatch{
				DimensionCount: edit.DimensionCount,
				SideLength:     edit.SideLength,
			},
		}, nil
	case proto.InboundTypeStartGame:
		return &core.Command{Kind: core.CommandStartGame}, nil
	case proto.InboundTypePlace:
		var place proto.PlaceData
		if ce := decodeData(inbound, &place); ce != nil {
			return nil, ce
		}
		if len(place.Position) == 0 {
			return nil, &core.CoreError{Code: core.ErrCodeBadRequest, Message: "position is required"}
		}
		return &core.Command{Kind: core.CommandPlace, Position: board.Position(place.Position)}, nil
	default:
		return nil, invalidMessage("unknown message type")
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventSetup:
		return eventOutbound(event, proto.EventSetup{
			ClientID: event.ClientID,
			Protocol: proto.ProtocolVersion,
		})
	case core.EventRoomSetup:
		data := proto.EventRoomSetup{
			Room:    event.Room,
			Admin:   event.Admin,
			Self:    event.Self,
			Players: event.Players,
		}
		if event.Settings != nil {
			data.Settings = proto.Settings{
				DimensionCount: event.Settings.DimensionCount,
				SideLength:     event.Settings.SideLength,
				Shapes:         shapesToProto(event.Settings.Shapes),
			}
		}
		return eventOutbound(event, data)
	case core.EventPlayerChange:
		return eventOutbound(event, proto.EventPlayerChange{
			Room:     event.Room,
			Players:  event.Players,
			NewAdmin: event.NewAdmin,
		})
	case core.EventRoomSettings:
		data := proto.EventRoomSettings{Room: event.Room}
		if event.Delta != nil {
			data.DimensionCount = event.Delta.DimensionCount
			data.SideLength = event.Delta.SideLength
			data.Shapes = shapesToProto(event.Delta.Shapes)
		}
		return eventOutbound(event, data)
	case core.EventNextTurn:
		return eventOutbound(event, proto.EventNextTurn{
			Room:       event.Room,
			NextPlayer: event.NextPlayer,
			Board:      boardToProto(event.Board),
		})
	case core.EventGameEnd:
		data := proto.EventGameEnd{
			Room:   event.Room,
			Board:  boardToProto(event.Board),
			Reason: core.ReasonName(event.Reason),
		}
		if win, ok := event.Reason.(core.BoardWin); ok {
			data.Winner = win.Winner
			data.Line = &proto.Line{
				Start:     []int(win.Line.Start),
				Direction: []int(win.Line.Direction),
			}
		}
		return eventOutbound(event, data)
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(event *core.Event, data any) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: event.Kind.String(),
		Data:  data,
	}
}

func shapesToProto(shapes []core.Shape) []proto.Shape {
	if shapes == nil {
		return nil
	}
	out := make([]proto.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = proto.Shape{Type: s.Type, Color: s.Color}
	}
	return out
}

func boardToProto(view *core.BoardView) proto.Board {
	if view == nil {
		return proto.Board{Cells: map[string]int{}}
	}
	cells := make(map[string]int, len(view.Cells))
	for pos, occ := range view.Cells {
		cells[pos] = int(occ)
	}
	return proto.Board{
		DimensionCount: view.Dimensions,
		SideLength:     view.SideLength,
		Cells:          cells,
	}
}
