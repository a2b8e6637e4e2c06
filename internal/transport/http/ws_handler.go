package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

// WSHandler streams a game to its owner and accepts moves over the same socket.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsAnswerPayload struct {
	Letter string `json:"letter"`
}

type wsHelpPayload struct {
	HelpType string `json:"helpType"`
}

type wsAnswerResult struct {
	Correct bool          `json:"correct"`
	Status  domain.Status `json:"status"`
	Prize   int64         `json:"prize"`
}

type wsHelpResult struct {
	HelpType domain.HelpType `json:"helpType"`
	Used     bool            `json:"used"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeGame upgrades the request and runs the live session for one game.
// Ownership must be checked by the caller.
func (h *WSHandler) ServeGame(w http.ResponseWriter, r *http.Request, userID, gameID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), userID, gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "game", Payload: view}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	fail := func(message string) {
		reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload wsAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail("invalid answer payload")
				continue
			}
			correct, game, err := h.service.Answer(r.Context(), userID, gameID, payload.Letter)
			if err != nil {
				fail(err.Error())
				continue
			}
			reply(outboundMessage[any]{Type: "answerResult", Payload: wsAnswerResult{
				Correct: correct,
				Status:  game.Status(),
				Prize:   game.Prize,
			}})
		case "help":
			var payload wsHelpPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail("invalid help payload")
				continue
			}
			kind, err := domain.ParseHelpType(payload.HelpType)
			if err != nil {
				fail(err.Error())
				continue
			}
			used, _, err := h.service.UseHelp(r.Context(), userID, gameID, kind)
			if err != nil {
				fail(err.Error())
				continue
			}
			reply(outboundMessage[any]{Type: "helpResult", Payload: wsHelpResult{HelpType: kind, Used: used}})
		case "take_money":
			game, err := h.service.TakeMoney(r.Context(), userID, gameID)
			if err != nil {
				fail(err.Error())
				continue
			}
			reply(outboundMessage[any]{Type: "moneyTaken", Payload: game.View()})
		default:
			fail("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
