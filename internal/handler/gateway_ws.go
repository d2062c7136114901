package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"woofpack/internal/domain"
	"woofpack/internal/models"
	"woofpack/internal/repository"
	"woofpack/internal/service"
	"woofpack/internal/ws"
	"woofpack/pkg/geo"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	gatewayWriteWait  = 10 * time.Second
	gatewayPongWait   = 60 * time.Second
	gatewayPingPeriod = (gatewayPongWait * 9) / 10
)

var gatewayUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Gateway handles the realtime connection lifecycle and inbound events.
// Every inbound event is dispatched on its own goroutine so one caller's
// slow database work cannot stall the connection's read loop or deliveries
// already in flight.
type Gateway struct {
	hub          *ws.Hub
	authSvc      *service.AuthService
	collectibles *service.CollectibleService
	chatRepo     *repository.ChatRepository
	locRepo      *repository.LocationRepository
	userRepo     *repository.UserRepository
	notifSvc     *service.NotificationService
	log          zerolog.Logger
}

func NewGateway(
	hub *ws.Hub,
	authSvc *service.AuthService,
	collectibles *service.CollectibleService,
	chatRepo *repository.ChatRepository,
	locRepo *repository.LocationRepository,
	userRepo *repository.UserRepository,
	notifSvc *service.NotificationService,
	log zerolog.Logger,
) *Gateway {
	return &Gateway{
		hub:          hub,
		authSvc:      authSvc,
		collectibles: collectibles,
		chatRepo:     chatRepo,
		locRepo:      locRepo,
		userRepo:     userRepo,
		notifSvc:     notifSvc,
		log:          log,
	}
}

type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Upgrade authenticates the handshake and runs the connection. The
// credential is resolved exactly once, before the upgrade; a missing or bad
// token or an inactive account is refused before any room join.
func (g *Gateway) Upgrade(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}
	user, err := g.authSvc.Resolve(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	conn, err := gatewayUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := ws.NewClient(uuid.NewString(), user.ID, user.Username, user.Role)
	g.hub.Register(client)
	defer func() {
		client.Close()
		g.hub.Broadcast(ws.RoomGlobal, "user:offline", gin.H{"user_id": user.ID, "username": user.Username})
	}()

	g.log.Info().Uint("user_id", user.ID).Str("conn_id", client.ID).Msg("gateway connected")

	conn.SetReadDeadline(time.Now().Add(gatewayPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(gatewayPongWait))
		return nil
	})
	go writePump(client, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var ev inboundEvent
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Type == "" {
			g.sendError(client, domain.ErrInvalidInput)
			continue
		}
		go g.dispatch(client, ev)
	}
	g.log.Info().Uint("user_id", user.ID).Str("conn_id", client.ID).Msg("gateway disconnected")
}

func writePump(c *ws.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(gatewayPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(gatewayWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(gatewayWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) dispatch(client *ws.Client, ev inboundEvent) {
	switch ev.Type {
	case "location:update":
		g.handleLocationUpdate(client, ev.Data)
	case "collectible:collect":
		g.handleCollect(client, ev.Data)
	case "chat:message":
		g.handleChatMessage(client, ev.Data)
	case "chat:join":
		g.handleChatJoin(client, ev.Data)
	case "chat:leave":
		g.handleChatLeave(client, ev.Data)
	case "match:request":
		g.handleMatchRequest(client, ev.Data)
	default:
		g.sendError(client, domain.ErrInvalidInput)
	}
}

// sendError converts any service failure into a private error event on the
// originating connection; it never reaches other members of a room.
func (g *Gateway) sendError(client *ws.Client, err error) {
	g.hub.SendTo(client, "error", gin.H{
		"code":    domain.CodeOf(err),
		"message": domain.MessageOf(err),
	})
}

func (g *Gateway) handleLocationUpdate(client *ws.Client, data json.RawMessage) {
	var in struct {
		Lat       float64 `json:"lat"`
		Lng       float64 `json:"lng"`
		IsWalking bool    `json:"isWalking"`
	}
	if err := json.Unmarshal(data, &in); err != nil || !geo.ValidCoords(in.Lat, in.Lng) {
		g.sendError(client, domain.ErrInvalidInput)
		return
	}
	// Durable write is best effort: a storage hiccup must not drop the
	// connection or the broadcast.
	if err := g.locRepo.Upsert(client.UserID, in.Lat, in.Lng, in.IsWalking); err != nil {
		g.log.Warn().Err(err).Uint("user_id", client.UserID).Msg("location persist failed")
	}
	if in.IsWalking {
		g.hub.Join(client, ws.RoomWalking)
	} else {
		g.hub.Leave(client, ws.RoomWalking)
	}
	g.hub.BroadcastExcept(ws.RoomGlobal, client, "user:location:update", gin.H{
		"user_id":    client.UserID,
		"username":   client.Username,
		"lat":        in.Lat,
		"lng":        in.Lng,
		"is_walking": in.IsWalking,
	})
}

func (g *Gateway) handleCollect(client *ws.Client, data json.RawMessage) {
	var in struct {
		SpawnID uint `json:"spawnId"`
	}
	if err := json.Unmarshal(data, &in); err != nil || in.SpawnID == 0 {
		g.sendError(client, domain.ErrInvalidInput)
		return
	}
	reward, err := g.collectibles.Collect(client.UserID, in.SpawnID)
	if err != nil {
		g.sendError(client, err)
		return
	}
	// The reward amount stays private; the global room only learns who
	// collected what.
	g.hub.SendTo(client, "collectible:collected", gin.H{"reward": reward})
	g.hub.Broadcast(ws.RoomGlobal, "collectible:collected:global", gin.H{
		"user_id":  client.UserID,
		"username": client.Username,
		"spawn_id": reward.SpawnID,
		"type":     reward.Type,
	})
}

func (g *Gateway) handleChatMessage(client *ws.Client, data json.RawMessage) {
	var in struct {
		Room    string `json:"room"`
		Content string `json:"content"`
		Kind    string `json:"kind"`
	}
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" || in.Content == "" {
		g.sendError(client, domain.ErrInvalidInput)
		return
	}
	room := ws.ChatRoom(in.Room)
	if !g.hub.InRoom(client, room) {
		g.sendError(client, domain.ErrForbidden)
		return
	}
	kind := in.Kind
	if kind == "" {
		kind = domain.ChatKindText
	}
	msg := &models.ChatMessage{
		Room:     in.Room,
		SenderID: client.UserID,
		Kind:     kind,
		Content:  in.Content,
	}
	if err := g.chatRepo.CreateMessage(msg); err != nil {
		g.sendError(client, err)
		return
	}
	// Echo to everyone including the sender: all clients render the same
	// authoritative record.
	g.hub.Broadcast(room, "chat:message:new", gin.H{
		"id":         msg.ID,
		"room":       msg.Room,
		"sender_id":  msg.SenderID,
		"username":   client.Username,
		"kind":       msg.Kind,
		"content":    msg.Content,
		"created_at": msg.CreatedAt,
	})
}

func (g *Gateway) handleChatJoin(client *ws.Client, data json.RawMessage) {
	var in struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" || len(in.Room) > 100 {
		g.sendError(client, domain.ErrInvalidInput)
		return
	}
	g.hub.Join(client, ws.ChatRoom(in.Room))
}

func (g *Gateway) handleChatLeave(client *ws.Client, data json.RawMessage) {
	var in struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &in); err != nil || in.Room == "" {
		g.sendError(client, domain.ErrInvalidInput)
		return
	}
	g.hub.Leave(client, ws.ChatRoom(in.Room))
}

func (g *Gateway) handleMatchRequest(client *ws.Client, data json.RawMessage) {
	var in struct {
		TargetAccount uint   `json:"targetAccount"`
		Message       string `json:"message"`
	}
	if err := json.Unmarshal(data, &in); err != nil || in.TargetAccount == 0 {
		g.sendError(client, domain.ErrInvalidInput)
		return
	}
	target, err := g.userRepo.GetByID(in.TargetAccount)
	if err != nil || !target.IsActive {
		g.sendError(client, domain.ErrUnknownAccount)
		return
	}
	from, err := g.userRepo.GetByID(client.UserID)
	if err != nil {
		g.sendError(client, err)
		return
	}
	// Durable notification always; the realtime push only lands if the
	// target holds a connection somewhere.
	if err := g.notifSvc.NotifyMatchRequest(target.ID, from, in.Message); err != nil {
		g.sendError(client, err)
		return
	}
}
