package http

import (
	"encoding/json"
	"strings"

	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/proto"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID <= 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: join.RoomID}, nil, nil

	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if strings.TrimSpace(msg.Text) == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "text is required"}, nil
		}
		return &core.Command{Kind: core.CommandSendMessage, Text: msg.Text}, nil, nil

	case proto.InboundTypeFileMessage:
		var msg proto.FileMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.FileURL == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "fileUrl is required"}, nil
		}
		text := msg.Text
		if strings.TrimSpace(text) == "" {
			text = msg.FileURL
		}
		return &core.Command{
			Kind:     core.CommandSendFile,
			Text:     text,
			FileURL:  msg.FileURL,
			FileType: msg.FileType,
		}, nil, nil

	case proto.InboundTypeTyping:
		return &core.Command{Kind: core.CommandTyping}, nil, nil

	case proto.InboundTypeStopTyping:
		return &core.Command{Kind: core.CommandStopTyping}, nil, nil

	case proto.InboundTypeToggleReaction:
		var react proto.ToggleReactionData
		if err := json.Unmarshal(inbound.Data, &react); err != nil {
			return nil, nil, err
		}
		if react.MessageID <= 0 || react.Emoji == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "messageId and emoji are required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandToggleReaction,
			MessageID: react.MessageID,
			Emoji:     react.Emoji,
		}, nil, nil

	case proto.InboundTypePrivateMessage:
		var pm proto.PrivateMessageData
		if err := json.Unmarshal(inbound.Data, &pm); err != nil {
			return nil, nil, err
		}
		if pm.ToUserID <= 0 || strings.TrimSpace(pm.Text) == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "toUserId and text are required"}, nil
		}
		return &core.Command{Kind: core.CommandSendPrivate, ToUserID: pm.ToUserID, Text: pm.Text}, nil, nil

	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomJoined,
			Data: proto.RoomJoinedData{
				Room:        event.RoomView,
				OnlineUsers: onlineToWire(event.Online),
			},
		}

	case core.EventUserJoined, core.EventUserLeft:
		typ := proto.OutboundTypeUserJoined
		if event.Kind == core.EventUserLeft {
			typ = proto.OutboundTypeUserLeft
		}
		data := proto.PresenceData{
			RoomID:      event.Room,
			OnlineUsers: onlineToWire(event.Online),
			Timestamp:   event.At,
		}
		if event.User != nil {
			data.UserID = event.User.UserID
			data.Username = event.User.Username
			data.Avatar = event.User.Avatar
		}
		return proto.Outbound{Type: typ, Data: data}

	case core.EventRoomMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: messageToWire(event.Message),
		}

	case core.EventUserTyping, core.EventUserStoppedTyping:
		typ := proto.OutboundTypeUserTyping
		if event.Kind == core.EventUserStoppedTyping {
			typ = proto.OutboundTypeUserStoppedTyping
		}
		data := proto.TypingData{RoomID: event.Room}
		if event.User != nil {
			data.UserID = event.User.UserID
			data.Username = event.User.Username
		}
		return proto.Outbound{Type: typ, Data: data}

	case core.EventReactionUpdate:
		return proto.Outbound{
			Type: proto.OutboundTypeReactionUpdate,
			Data: proto.ReactionUpdateData{
				MessageID: event.MessageID,
				Reactions: reactionsToWire(event.Reactions),
			},
		}

	case core.EventPrivateMessage:
		return proto.Outbound{
			Type: proto.OutboundTypePrivateMessage,
			Data: messageToWire(event.Message),
		}

	case core.EventPrivateMessageSent:
		return proto.Outbound{
			Type: proto.OutboundTypePrivateMessageSent,
			Data: messageToWire(event.Message),
		}

	case core.EventRoomDeleted:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomDeleted,
			Data: proto.RoomDeletedData{RoomID: event.Room},
		}

	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}

	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}

func messageToWire(m *store.Message) proto.MessageEventData {
	if m == nil {
		return proto.MessageEventData{}
	}
	data := proto.MessageEventData{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		Text:      m.Body,
		Kind:      string(m.Kind),
		FileURL:   m.FileURL,
		FileType:  m.FileType,
		Reactions: reactionsToWire(m.Reactions),
		Timestamp: m.CreatedAt,
	}
	if m.RoomID != nil {
		data.RoomID = *m.RoomID
	}
	if m.RecipientID != nil {
		data.ToUserID = *m.RecipientID
	}
	return data
}

func onlineToWire(online []core.OnlineUser) []proto.OnlineUser {
	out := make([]proto.OnlineUser, 0, len(online))
	for _, u := range online {
		out = append(out, proto.OnlineUser{UserID: u.UserID, Username: u.Username, Avatar: u.Avatar})
	}
	return out
}

func reactionsToWire(reactions []store.Reaction) []proto.ReactionData {
	out := make([]proto.ReactionData, 0, len(reactions))
	for _, r := range reactions {
		out = append(out, proto.ReactionData{UserID: r.UserID, Emoji: r.Emoji})
	}
	return out
}
