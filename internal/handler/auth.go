package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/utils"
)

// AuthHandler exchanges the organizer admin key for a short-lived access
// token.  There are no user accounts in this service: booking callers
// identify themselves with an opaque user_id string, and the only
// protected surface is event catalog management, guarded by tokens
// issued here.
type AuthHandler struct {
	JWTSecret    string // secret used to sign access tokens
	AdminKeyHash string // bcrypt hash of the admin key
	AccessTTLMin int    // token lifetime in minutes
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(jwtSecret, adminKeyHash string, accessTTLMin int) *AuthHandler {
	return &AuthHandler{JWTSecret: jwtSecret, AdminKeyHash: adminKeyHash, AccessTTLMin: accessTTLMin}
}

// IssueToken handles POST /v1/auth/token.  The request body must carry
// the plaintext admin key; it is verified against the configured bcrypt
// hash and never stored.  On success a signed HS256 token with the
// ORGANIZER role is returned together with its expiry.
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var body struct {
		AdminKey string `json:"admin_key"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.AdminKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "admin_key is required"})
	}
	if !utils.VerifyKey(h.AdminKeyHash, body.AdminKey) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid admin key"})
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, "organizer", "ORGANIZER", h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
