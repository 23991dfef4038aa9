package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"hahu_backend/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// Connects to a running server's leaderboard stream, pings it and prints the
// snapshots it receives.
func main() {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	url := fmt.Sprintf("ws://127.0.0.1:%s/ws/leaderboard", port)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"`+ws.MsgPing+`"}`)); err != nil {
		log.Fatalf("write ping: %v", err)
	}

	// a read error (deadline included) leaves the connection unusable
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var gotPong, gotBoard bool
	for !(gotPong && gotBoard) {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Printf("read stopped: %v", err)
			break
		}
		var env struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg, &env); err != nil {
			log.Printf("bad frame: %s", msg)
			continue
		}
		switch env.Type {
		case ws.MsgPong:
			gotPong = true
		case ws.MsgLeaderboard:
			gotBoard = true
			var p ws.LeaderboardPayload
			_ = json.Unmarshal(env.Payload, &p)
			log.Printf("leaderboard with %d entries at %s", len(p.Entries), time.Unix(p.GeneratedAt, 0).Format(time.RFC3339))
		default:
			log.Printf("got %s", env.Type)
		}
	}

	if !gotPong {
		log.Fatal("no pong received")
	}
	if !gotBoard {
		log.Println("no leaderboard snapshot yet (empty board?)")
	}
	log.Println("smoke test finished")
}
