package handler

import (
	"net/http"
	"strconv"

	"woofpack/config"
	"woofpack/internal/middleware"
	"woofpack/internal/repository"
	"woofpack/internal/ws"
	"woofpack/pkg/geo"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locRepo *repository.LocationRepository
	hub     *ws.Hub
	cfg     *config.GameConfig
}

func NewLocationHandler(locRepo *repository.LocationRepository, hub *ws.Hub, cfg *config.GameConfig) *LocationHandler {
	return &LocationHandler{locRepo: locRepo, hub: hub, cfg: cfg}
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsWalking bool    `json:"is_walking"`
}

// UpdateLocation is the REST mirror of the gateway's location:update event.
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || !geo.ValidCoords(req.Latitude, req.Longitude) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
		return
	}
	if err := h.locRepo.Upsert(userID, req.Latitude, req.Longitude, req.IsWalking); err != nil {
		fail(c, err)
		return
	}
	username, _ := c.Get("username")
	h.hub.Broadcast(ws.RoomGlobal, "user:location:update", gin.H{
		"user_id":    userID,
		"username":   username,
		"lat":        req.Latitude,
		"lng":        req.Longitude,
		"is_walking": req.IsWalking,
	})
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *LocationHandler) GetMyLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	loc, err := h.locRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no location on record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": loc})
}

// NearbyUsers returns other owners within a radius of the given point.
func (h *LocationHandler) NearbyUsers(c *gin.Context) {
	userID := middleware.GetUserID(c)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || !geo.ValidCoords(lat, lng) {
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
	nearby, err := h.locRepo.ListNearby(lat, lng, radius, userID, 50)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(nearby))
	for _, n := range nearby {
		out = append(out, gin.H{
			"user_id":         n.User.ID,
			"username":        n.User.Username,
			"dog_name":        n.User.DogName,
			"dog_breed":       n.User.DogBreed,
			"is_walking":      n.Location.IsWalking,
			"distance_meters": n.DistanceMeters,
			"last_updated_at": n.Location.LastUpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "radius_m": radius})
}
