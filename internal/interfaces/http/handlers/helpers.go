package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/interfaces/http/middleware"
	"couponmap.backend/pkg/geo"
)

// principal returns the authenticated caller or a 401
func principal(c *gin.Context) (entities.Principal, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return entities.Principal{}, domainerrors.Unauthorized("User not authenticated")
	}
	return p, nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.BadRequest("invalid " + name)
	}
	return id, nil
}

func uuidQuery(c *gin.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, domainerrors.BadRequest(name + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domainerrors.BadRequest("invalid " + name)
	}
	return id, nil
}

// floatQuery parses an optional finite float query parameter
func floatQuery(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domainerrors.BadRequest("invalid " + name)
	}
	return &v, nil
}

// originQuery reads lat/lng. Both absent yields nil; a half-set or
// out-of-range pair is a 400.
func originQuery(c *gin.Context) (*geo.Point, error) {
	lat, err := floatQuery(c, "lat")
	if err != nil {
		return nil, err
	}
	lng, err := floatQuery(c, "lng")
	if err != nil {
		return nil, err
	}
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, domainerrors.BadRequest("lat and lng must be set together")
	}
	p := &geo.Point{Lat: *lat, Lng: *lng}
	if err := p.Validate(); err != nil {
		return nil, domainerrors.BadRequest("invalid lat/lng")
	}
	return p, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.BadRequest("invalid " + name)
	}
	return v, nil
}

func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return domainerrors.BadRequest("invalid request body: " + err.Error())
	}
	return nil
}
