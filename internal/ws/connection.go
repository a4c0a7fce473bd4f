package ws

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// RunConnection drives one authenticated WebSocket until either side ends it.
// A reader goroutine feeds inbound frames into a channel, and the loop below
// services whichever is ready first: the next inbound frame or the next item
// on the connection's outbound queue.
//
// onMessage must not block on this connection's own outbound queue; hub
// enqueueing is non-blocking by construction, so dispatching through the hub
// is always safe. onDisconnect runs exactly once, after the loop exits and
// before the socket is released.
func RunConnection(socket *websocket.Conn, conn *Conn, onMessage func(ClientMessage), onDisconnect func()) {
	frames := make(chan []byte)
	done := make(chan struct{})

	go readFrames(socket, frames, done)

	defer func() {
		close(done)
		onDisconnect()
		_ = socket.Close()
	}()

	for {
		select {
		case data, ok := <-frames:
			if !ok {
				// close frame, end of stream, or read error
				return
			}

			msg, err := DecodeClientMessage(data)
			if err != nil {
				payload, _ := EncodeServerMessage(NewErrorEvent(CodeParseError, fmt.Sprintf("invalid message: %v", err)))
				if writeErr := socket.WriteMessage(websocket.TextMessage, payload); writeErr != nil {
					return
				}
				continue
			}

			onMessage(msg)

		case msg, ok := <-conn.Outbound():
			if !ok {
				// queue closed: unregistered or superseded
				return
			}

			payload, err := EncodeServerMessage(msg)
			if err != nil {
				continue
			}
			if err := socket.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func readFrames(socket *websocket.Conn, frames chan<- []byte, done <-chan struct{}) {
	defer close(frames)

	for {
		messageType, data, err := socket.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		select {
		case frames <- data:
		case <-done:
			return
		}
	}
}
