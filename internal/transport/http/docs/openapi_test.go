package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveSpec(t *testing.T) (*httptest.ResponseRecorder, OpenAPISpec) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/openapi.json", nil)
	rec := httptest.NewRecorder()

	OpenAPIHandler(rec, req)

	var doc OpenAPISpec
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	return rec, doc
}

func TestOpenAPIHandler_ReturnsJSON(t *testing.T) {
	rec, doc := serveSpec(t)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "Accounts API", doc.Info.Title)
	assert.NotEmpty(t, doc.Servers)
}

func TestOpenAPIHandler_ContainsEndpoints(t *testing.T) {
	_, doc := serveSpec(t)

	for _, p := range []string{
		"/api/v1/health",
		"/api/v1/auth/login",
		"/api/v1/auth/register",
		"/api/v1/auth/verify-email",
		"/api/v1/auth/verify-email/resend",
		"/api/v1/auth/current",
		"/api/v1/user/id/{id}",
	} {
		assert.Contains(t, doc.Paths, p)
	}
	assert.Len(t, doc.Paths, 7)
}

func TestOpenAPIHandler_RequestSchemasMatchValidation(t *testing.T) {
	_, doc := serveSpec(t)

	schemas := doc.Components["schemas"].(map[string]interface{})
	register := schemas["RegisterRequest"].(map[string]interface{})
	assert.ElementsMatch(t, []interface{}{"email", "password"}, register["required"])

	password := register["properties"].(map[string]interface{})["password"].(map[string]interface{})
	assert.EqualValues(t, 8, password["minLength"])

	user := schemas["User"].(map[string]interface{})["properties"].(map[string]interface{})
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
}

func TestOpenAPIHandler_CurrentRequiresBearer(t *testing.T) {
	_, doc := serveSpec(t)

	current := doc.Paths["/api/v1/auth/current"].(map[string]interface{})["get"].(map[string]interface{})
	assert.NotEmpty(t, current["security"])

	schemes := doc.Components["securitySchemes"].(map[string]interface{})
	assert.Contains(t, schemes, "BearerAuth")
}

func TestRoutes_ListsEveryOperation(t *testing.T) {
	routes := Routes()
	assert.Len(t, routes, 7)
	assert.Contains(t, routes, Route{Method: "post", Path: "/api/v1/auth/login"})
	assert.Contains(t, routes, Route{Method: "get", Path: "/api/v1/user/id/{id}"})
}
