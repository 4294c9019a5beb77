package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"studyreserve/internal/app/dto"
	appspaces "studyreserve/internal/app/spaces"
	"studyreserve/internal/domain/spaces"
)

type SpaceHandler struct {
	Catalog *appspaces.Catalog
}

func (h SpaceHandler) List(c *gin.Context) {
	list, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSpaces(list))
}

func (h SpaceHandler) Get(c *gin.Context) {
	s, err := h.Catalog.Get(c.Request.Context(), spaces.SpaceID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSpace(s))
}

func (h SpaceHandler) Search(c *gin.Context) {
	params := spaces.SearchParams{
		Location: c.Query("location"),
		Name:     c.Query("name"),
	}
	list, err := h.Catalog.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSpaces(list))
}

func (h SpaceHandler) Filter(c *gin.Context) {
	params := spaces.SearchParams{Type: c.Query("type")}
	if raw := c.Query("capacity"); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil || capacity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid capacity"})
			return
		}
		params.MinCapacity = capacity
	}
	if raw := c.Query("noiseLevel"); raw != "" {
		level, ok := spaces.ParseNoiseLevel(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid noise level"})
			return
		}
		params.NoiseLevel = level
	}
	list, err := h.Catalog.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSpaces(list))
}

var _ SpaceHTTP = SpaceHandler{}
