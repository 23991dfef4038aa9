package integration

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hahu_backend/internal/config"
	httpserver "hahu_backend/internal/http"
	"hahu_backend/internal/service"
	"hahu_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestE2E_WS_Leaderboard(t *testing.T) {
	e := newEnv(t)
	u := e.profile("leader", nil)
	if _, err := e.svc.Payments.CompletePayment(e.ctx, u.ID, e.levels[0].ID); err != nil {
		t.Fatal(err)
	}

	hub := ws.NewHub()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpserver.RegisterRoutes(r, httpserver.Deps{
		Store:    e.store,
		Services: e.svc,
		Hub:      hub,
		Config: &config.Config{
			APIRateLimit:   100,
			APIRateWindow:  time.Minute,
			AuthRateLimit:  100,
			AuthRateWindow: time.Minute,
		},
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	service.PushLeaderboard(e.ctx, e.svc.Leaderboard, hub, 10)

	deadline := time.Now().Add(3 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("no leaderboard frame: %v", err)
		}
		var frame struct {
			Type    string                `json:"type"`
			Payload ws.LeaderboardPayload `json:"payload"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			t.Fatal(err)
		}
		if frame.Type != ws.MsgLeaderboard {
			continue
		}
		if len(frame.Payload.Entries) != 1 || frame.Payload.Entries[0].ProfileID != u.ID || frame.Payload.Entries[0].Rank != 1 {
			t.Fatalf("entries = %+v", frame.Payload.Entries)
		}
		return
	}
}
