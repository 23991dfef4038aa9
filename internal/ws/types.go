package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady       = "ready"
	MsgLeaderboard = "leaderboard"
	MsgPong        = "pong"
	MsgError       = "error"
)
