package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
)

type ProfileHandler struct {
	profiles *repository.ProfileRepository
}

func NewProfileHandler(p *repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: p}
}

// Get answers with an empty profile for users that never saved one.
func (h *ProfileHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.profiles.Get(ctx)
	if errors.Is(err, apperr.ErrNotFound) {
		userID, _ := auth.UserFromContext(ctx)
		p, err = &models.Profile{ID: userID}, nil
	}
	if err != nil {
		respondError(c, "load profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var p struct {
		DisplayName *string `json:"display_name"`
		PartnerName *string `json:"partner_name"`
		Email       *string `json:"email"`
		AvatarURL   *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	profile := &models.Profile{
		DisplayName: p.DisplayName,
		PartnerName: p.PartnerName,
		Email:       p.Email,
		AvatarURL:   p.AvatarURL,
	}
	if err := h.profiles.Upsert(c.Request.Context(), profile); err != nil {
		respondError(c, "save profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
