package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sectorpulse/internal/domain/dto"
	"github.com/guttosm/sectorpulse/internal/middleware"
	"github.com/guttosm/sectorpulse/internal/service"
	"github.com/guttosm/sectorpulse/internal/storage"
)

// Handler provides HTTP handlers for snapshot read endpoints.
//
// Responsibilities:
//   - Validate path parameters
//   - Query the snapshot service with the request context
//   - Translate results into response DTOs
//   - Map "no snapshot yet" to 404 and everything else to 500
type Handler struct {
	svc service.SnapshotService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.SnapshotService) *Handler {
	return &Handler{svc: svc}
}

// GetRecords handles GET /api/v1/records.
//
// Responses:
//   - 200 OK: every record of the latest snapshot, in build order.
//   - 404 Not Found: no snapshot has been saved yet.
//   - 500 Internal Server Error: storage failure.
func (h *Handler) GetRecords(c *gin.Context) {
	snap, err := h.svc.Latest(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RecordsResponse{
		RunID:      snap.RunID,
		CapturedAt: snap.CapturedAt,
		Count:      len(snap.Records),
		Records:    snap.Records,
	})
}

// GetSectors handles GET /api/v1/sectors and returns per-sector totals of
// the latest snapshot ordered by sector code.
func (h *Handler) GetSectors(c *gin.Context) {
	runID, sectors, err := h.svc.Sectors(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SectorsResponse{RunID: runID, Sectors: sectors})
}

// GetSector handles GET /api/v1/sectors/:code.
//
// Responses:
//   - 200 OK: the sector's totals and records.
//   - 400 Bad Request: code is not three digits.
//   - 404 Not Found: no snapshot yet, or the sector has no records.
//   - 500 Internal Server Error: storage failure.
func (h *Handler) GetSector(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if !validSectorCode(code) {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, dto.MsgBadSectorCode, nil))
		return
	}

	runID, sum, err := h.svc.Sector(c.Request.Context(), code)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if sum == nil {
		c.JSON(http.StatusNotFound, middleware.ErrorBody(c, dto.MsgSectorNotFound, nil))
		return
	}
	c.JSON(http.StatusOK, dto.SectorResponse{RunID: runID, Sector: *sum})
}

func writeServiceError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNoSnapshot) {
		c.JSON(http.StatusNotFound, middleware.ErrorBody(c, dto.MsgNoSnapshot, nil))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, dto.MsgLoadFailed, err))
}

func validSectorCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
