package docs

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec represents a simplified OpenAPI 3.0 document.
type OpenAPISpec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       Info                   `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components"`
}

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Route is one documented method + path pair.
type Route struct {
	Method string
	Path   string
}

var spec OpenAPISpec

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func jsonResponse(desc, schema string) map[string]interface{} {
	return map[string]interface{}{
		"description": desc,
		"content":     jsonContent(ref(schema)),
	}
}

func jsonBody(schema string) map[string]interface{} {
	return map[string]interface{}{
		"required": true,
		"content":  jsonContent(ref(schema)),
	}
}

func init() {
	spec = OpenAPISpec{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "Accounts API",
			Description: "Registration, login, email verification and user lookup",
			Version:     "1.0.0",
		},
		Servers: []Server{
			{URL: "http://localhost:8080", Description: "Local development server"},
		},
		Paths: map[string]interface{}{
			"/api/v1/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health Check",
					"description": "Report service status and database reachability",
					"operationId": "healthCheck",
					"tags":        []string{"Health"},
					"responses": map[string]interface{}{
						"200": jsonResponse("Health status, status is error when the database is unreachable", "HealthResponse"),
					},
				},
			},
			"/api/v1/auth/login": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Login",
					"description": "Exchange email and password for a bearer token",
					"operationId": "login",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody("LoginRequest"),
					"responses": map[string]interface{}{
						"200": jsonResponse("Token, or a business error such as invalid credentials", "LoginResponse"),
						"400": jsonResponse("Invalid input", "ErrorResponse"),
					},
				},
			},
			"/api/v1/auth/register": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Register User",
					"description": "Create a local account; a token is returned only when email verification is disabled",
					"operationId": "register",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody("RegisterRequest"),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Registration result, or a business error such as user already exists",
							"content": jsonContent(map[string]interface{}{
								"oneOf": []interface{}{ref("RegisterResponse"), ref("ErrorResponse")},
							}),
						},
						"400": jsonResponse("Invalid input", "ErrorResponse"),
					},
				},
			},
			"/api/v1/auth/verify-email": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Verify Email",
					"description": "Redeem an emailed verification token",
					"operationId": "verifyEmail",
					"tags":        []string{"Authentication"},
					"parameters": []interface{}{
						map[string]interface{}{
							"name":     "token",
							"in":       "query",
							"required": true,
							"schema":   map[string]interface{}{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Verification result", "VerifyEmailResponse"),
						"302": map[string]interface{}{
							"description": "Redirect to the frontend when FRONTEND_URL is configured",
						},
					},
				},
			},
			"/api/v1/auth/verify-email/resend": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Resend Verification Email",
					"description": "Issue a fresh verification token; the answer does not reveal whether the account exists",
					"operationId": "resendVerification",
					"tags":        []string{"Authentication"},
					"requestBody": jsonBody("ResendVerificationRequest"),
					"responses": map[string]interface{}{
						"200": jsonResponse("Always success", "ResendVerificationResponse"),
						"400": jsonResponse("Invalid input", "ErrorResponse"),
					},
				},
			},
			"/api/v1/auth/current": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get Current User",
					"description": "Get the authenticated user's identity",
					"operationId": "getCurrentUser",
					"tags":        []string{"User"},
					"security": []map[string]interface{}{
						{"BearerAuth": []string{}},
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("User information", "User"),
						"401": jsonResponse("Unauthorized", "MessageResponse"),
					},
				},
			},
			"/api/v1/user/id/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get User By ID",
					"description": "Look up a user's public profile",
					"operationId": "getUserByID",
					"tags":        []string{"User"},
					"parameters": []interface{}{
						map[string]interface{}{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]interface{}{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("User information", "User"),
						"404": jsonResponse("User not found", "ErrorResponse"),
						"503": jsonResponse("Directory unavailable", "ErrorResponse"),
					},
				},
			},
		},
		Components: map[string]interface{}{
			"securitySchemes": map[string]interface{}{
				"BearerAuth": map[string]interface{}{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
			"schemas": schemas(),
		},
	}
}

func schemas() map[string]interface{} {
	str := map[string]interface{}{"type": "string"}
	email := map[string]interface{}{"type": "string", "format": "email", "example": "user@example.com"}
	boolean := map[string]interface{}{"type": "boolean"}

	return map[string]interface{}{
		"LoginRequest": map[string]interface{}{
			"type":     "object",
			"required": []string{"email", "password"},
			"properties": map[string]interface{}{
				"email":    email,
				"password": str,
			},
		},
		"RegisterRequest": map[string]interface{}{
			"type":     "object",
			"required": []string{"email", "password"},
			"properties": map[string]interface{}{
				"email": email,
				"password": map[string]interface{}{
					"type":      "string",
					"minLength": 8,
					"example":   "SecurePass123",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Defaults to the local part of the email",
				},
			},
		},
		"ResendVerificationRequest": map[string]interface{}{
			"type":       "object",
			"required":   []string{"email"},
			"properties": map[string]interface{}{"email": email},
		},
		"LoginResponse": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"token": str,
				"error": str,
			},
		},
		"RegisterResponse": map[string]interface{}{
			"type":     "object",
			"required": []string{"emailVerificationNeeded"},
			"properties": map[string]interface{}{
				"token":                   str,
				"emailVerificationNeeded": boolean,
			},
		},
		"VerifyEmailResponse": map[string]interface{}{
			"type":     "object",
			"required": []string{"success"},
			"properties": map[string]interface{}{
				"success": boolean,
				"error":   str,
			},
		},
		"ResendVerificationResponse": map[string]interface{}{
			"type":       "object",
			"required":   []string{"success"},
			"properties": map[string]interface{}{"success": boolean},
		},
		"User": map[string]interface{}{
			"type":     "object",
			"required": []string{"id", "email", "name", "role"},
			"properties": map[string]interface{}{
				"id":    str,
				"email": email,
				"name":  str,
				"role":  map[string]interface{}{"type": "string", "enum": []string{"USER", "ADMIN"}},
			},
		},
		"HealthResponse": map[string]interface{}{
			"type":     "object",
			"required": []string{"message", "status", "timestamp"},
			"properties": map[string]interface{}{
				"message":   str,
				"status":    map[string]interface{}{"type": "string", "enum": []string{"ok", "error"}},
				"timestamp": map[string]interface{}{"type": "integer", "format": "int64", "description": "Unix milliseconds"},
			},
		},
		"ErrorResponse": map[string]interface{}{
			"type":       "object",
			"required":   []string{"error"},
			"properties": map[string]interface{}{"error": str},
		},
		"MessageResponse": map[string]interface{}{
			"type":       "object",
			"required":   []string{"message"},
			"properties": map[string]interface{}{"message": str},
		},
	}
}

// Routes lists every documented operation.
func Routes() []Route {
	var out []Route
	for path, item := range spec.Paths {
		ops, _ := item.(map[string]interface{})
		for method := range ops {
			out = append(out, Route{Method: method, Path: path})
		}
	}
	return out
}

// OpenAPIHandler returns the OpenAPI document as JSON.
func OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(spec)
}
