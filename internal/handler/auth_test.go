package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/utils"
)

func TestIssueToken(t *testing.T) {
	hash, err := utils.HashKey("open-sesame", 10)
	require.NoError(t, err)

	h := NewAuthHandler("test-secret", hash, 15)
	e := echo.New()
	e.POST("/v1/auth/token", h.IssueToken)

	// Wrong key.
	rec := doRequest(e, http.MethodPost, "/v1/auth/token", `{"admin_key":"guess"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing key.
	rec = doRequest(e, http.MethodPost, "/v1/auth/token", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Correct key yields a token signed with the configured secret and
	// carrying the ORGANIZER role.
	rec = doRequest(e, http.MethodPost, "/v1/auth/token", `{"admin_key":"open-sesame"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   string `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.ExpiresAt)

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	require.Equal(t, "ORGANIZER", claims["role"])
	require.Equal(t, "organizer", claims["sub"])
}
