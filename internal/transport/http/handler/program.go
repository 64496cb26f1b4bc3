package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"path2prevention/internal/app"
	"path2prevention/internal/model"
	"path2prevention/internal/search"
	"path2prevention/internal/transport/http/response"
)

type ProgramHandler struct {
	programs *app.ProgramService
	semantic *app.SemanticService
}

// programsBody is the list envelope shared by every program listing.
type programsBody struct {
	Success        bool                `json:"success"`
	Count          int                 `json:"count"`
	Programs       []model.ProgramRow  `json:"programs"`
	SearchCriteria *app.SearchCriteria `json:"searchCriteria,omitempty"`
	SearchTerm     string              `json:"searchTerm,omitempty"`
	Fallback       bool                `json:"fallback,omitempty"`
}

func newProgramsBody(list *app.ProgramList) programsBody {
	programs := list.Programs
	if programs == nil {
		programs = []model.ProgramRow{}
	}
	return programsBody{
		Success:        true,
		Count:          len(programs),
		Programs:       programs,
		SearchCriteria: list.Criteria,
		Fallback:       list.Fallback,
	}
}

func NewProgramHandler(programs *app.ProgramService, semantic *app.SemanticService) *ProgramHandler {
	return &ProgramHandler{programs: programs, semantic: semantic}
}

func (h *ProgramHandler) All(c *gin.Context) {
	list, err := h.programs.All(c.Request.Context())
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "Error getting programs", err)
		return
	}
	c.JSON(http.StatusOK, newProgramsBody(list))
}

func (h *ProgramHandler) Search(c *gin.Context) {
	radius, _ := strconv.Atoi(strings.TrimSpace(c.Query("radius")))
	list, err := h.programs.Search(c.Request.Context(), search.Filter{
		ZipCode:      c.Query("zipCode"),
		State:        c.Query("state"),
		City:         c.Query("city"),
		Radius:       radius,
		DeliveryMode: c.Query("deliveryMode"),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFilterRequired):
			response.Error(c, http.StatusBadRequest, "At least one location parameter (zipCode, state, or city) is required, or specify deliveryMode")
		default:
			response.Failure(c, http.StatusInternalServerError, "Error searching programs", err)
		}
		return
	}
	c.JSON(http.StatusOK, newProgramsBody(list))
}

func (h *ProgramHandler) SearchByName(c *gin.Context) {
	name := c.Query("name")
	list, err := h.programs.ByName(c.Request.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNameRequired):
			response.Error(c, http.StatusBadRequest, "Organization name parameter is required")
		default:
			response.Failure(c, http.StatusInternalServerError, "Error searching programs by name", err)
		}
		return
	}
	body := newProgramsBody(list)
	body.SearchTerm = name
	c.JSON(http.StatusOK, body)
}

func (h *ProgramHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Valid program ID is required")
		return
	}

	result, err := h.programs.ByID(c.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrProgramNotFound):
			response.Error(c, http.StatusNotFound, "Program not found")
		default:
			response.Failure(c, http.StatusInternalServerError, "Error getting program", err)
		}
		return
	}

	body := gin.H{"success": true, "program": result.Program}
	if result.Fallback {
		body["fallback"] = true
	}
	c.JSON(http.StatusOK, body)
}

// Recommended takes deliveryModes as a comma-separated list.
func (h *ProgramHandler) Recommended(c *gin.Context) {
	var modes []string
	for _, m := range strings.Split(c.Query("deliveryModes"), ",") {
		if m = strings.TrimSpace(m); m != "" {
			modes = append(modes, m)
		}
	}
	list, err := h.programs.Recommended(c.Request.Context(), modes, c.Query("state"))
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "Error getting recommended programs", err)
		return
	}
	c.JSON(http.StatusOK, newProgramsBody(list))
}

func (h *ProgramHandler) Stats(c *gin.Context) {
	stats, err := h.semantic.Stats(c.Request.Context())
	if err != nil {
		response.Failure(c, http.StatusInternalServerError, "Error getting vector statistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
