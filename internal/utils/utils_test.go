package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.GenerateJWT(7, "m@example.com", "master")
	require.NoError(t, err)

	claims, err := issuer.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "master", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTRejectsForeignAndExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := NewTokenIssuer("other", time.Hour).GenerateJWT(7, "", "client")
	require.NoError(t, err)
	_, err = issuer.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err = issuer.GenerateJWT(7, "", "client")
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestListRendersHydraEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	List[int](c, nil)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body["hydra:member"]))
	assert.JSONEq(t, `0`, string(body["hydra:totalItems"]))
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "abc")

	Error(c, 404, "NOT_FOUND", "Ticket not found")

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "abc", resp.Meta.RequestID)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(8)
	require.NoError(t, err)
	assert.Len(t, s, 16)
}
