//go:build unit || e2e

package authtest

import (
	"encoding/json"
	"net/http"
	"testing"

	"garage-orchestrator/internal/handler/dto/request"
	"garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/tests/common/dbtest"
	"garage-orchestrator/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func LoginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		request.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res response.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.AccessToken, "access token missing from login response")
	return res.AccessToken
}

func CreateAndLogin(t *testing.T, db dbtest.Querier, router *gin.Engine, email, role string) string {
	t.Helper()
	dbtest.CreateTestUser(t, db, email, role)
	return LoginUser(t, router, email, dbtest.DefaultPassword)
}
