package handler

import (
	"net/http"
	"strconv"
	"time"

	"woofpack/config"
	"woofpack/internal/middleware"
	"woofpack/internal/service"
	"woofpack/internal/ws"

	"github.com/gin-gonic/gin"
)

type CollectibleHandler struct {
	svc *service.CollectibleService
	hub *ws.Hub
	cfg *config.GameConfig
}

func NewCollectibleHandler(svc *service.CollectibleService, hub *ws.Hub, cfg *config.GameConfig) *CollectibleHandler {
	return &CollectibleHandler{svc: svc, hub: hub, cfg: cfg}
}

type spawnRequest struct {
	Type       string  `json:"type" binding:"required"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Value      int64   `json:"value" binding:"required"`
	TTLSeconds int64   `json:"ttl_seconds"` // 0 = until deactivated
}

// Spawn creates a collectible (admin only, enforced by the route).
func (h *CollectibleHandler) Spawn(c *gin.Context) {
	var req spawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	spawn, err := h.svc.SpawnCollectible(req.Type, req.Latitude, req.Longitude, req.Value,
		time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"spawn": spawn})
}

func (h *CollectibleHandler) Deactivate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spawn id"})
		return
	}
	if err := h.svc.Deactivate(uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

func (h *CollectibleHandler) Nearby(c *gin.Context) {
	userID := middleware.GetUserID(c)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng required"})
		return
	}
	radius := h.cfg.NearbyRadiusMeters
	if v := c.Query("radius_m"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			radius = r
		}
	}
	if radius > h.cfg.MaxRadiusMeters {
		radius = h.cfg.MaxRadiusMeters
	}
	list, err := h.svc.ListNearby(userID, lat, lng, radius, c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spawns": list, "radius_m": radius})
}

// Collect claims a spawn over REST; the gateway mirrors the same flow for
// connected clients. The public announcement carries no amount.
func (h *CollectibleHandler) Collect(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spawn id"})
		return
	}
	reward, err := h.svc.Collect(userID, uint(id))
	if err != nil {
		fail(c, err)
		return
	}
	username, _ := c.Get("username")
	h.hub.Broadcast(ws.RoomGlobal, "collectible:collected:global", gin.H{
		"user_id":  userID,
		"username": username,
		"spawn_id": reward.SpawnID,
		"type":     reward.Type,
	})
	c.JSON(http.StatusOK, gin.H{"reward": reward})
}

func (h *CollectibleHandler) MyCollections(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.svc.ListCollections(userID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": list})
}
