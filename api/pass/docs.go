// Package pass registers the OpenAPI document for the local pass API with
// swag, so that http-swagger can serve it at /swagger/.
//
// Keep the template in step with the godoc annotations on the handlers in
// internal/pass/http.
package pass

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/login": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the CAS login walk and caches the resulting fusion token.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Pass"],
                "summary": "Sign in",
                "parameters": [
                    {"type": "string", "description": "Campus username", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Campus password", "name": "password", "in": "formData", "required": true},
                    {"type": "boolean", "description": "Keep credentials for unattended refresh", "name": "remember", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/passsdk.AuthResponse"}},
                    "400": {"description": "blank username or password", "schema": {"$ref": "#/definitions/passsdk.AuthResponse"}},
                    "401": {"description": "invalid credentials", "schema": {"$ref": "#/definitions/passsdk.AuthResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/passsdk.ErrorResponse"}},
                    "503": {"description": "CAS or Fusion unavailable", "schema": {"$ref": "#/definitions/passsdk.AuthResponse"}}
                }
            }
        },
        "/v1/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Re-runs the full login with remembered credentials.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Pass"],
                "summary": "Refresh the fusion token",
                "parameters": [
                    {"type": "string", "description": "Campus username", "name": "username", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/passsdk.AuthResponse"}},
                    "401": {"description": "not remembered or credentials rejected", "schema": {"$ref": "#/definitions/passsdk.AuthResponse"}}
                }
            }
        },
        "/v1/barcode": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns a fresh AppBarcodeIdNumber.",
                "produces": ["application/json"],
                "tags": ["Pass"],
                "summary": "Mint a barcode",
                "parameters": [
                    {"type": "string", "description": "Campus username", "name": "username", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/passsdk.BarcodeResponse"}},
                    "401": {"description": "not signed in", "schema": {"$ref": "#/definitions/passsdk.BarcodeResponse"}},
                    "502": {"description": "unexpected upstream response", "schema": {"$ref": "#/definitions/passsdk.BarcodeResponse"}}
                }
            }
        },
        "/v1/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Deletes the cached token and any remembered credentials. Idempotent.",
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["Pass"],
                "summary": "Sign out",
                "parameters": [
                    {"type": "string", "description": "Campus username", "name": "username", "in": "formData", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/passsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Reports whether a token is cached and credentials are remembered.",
                "produces": ["application/json"],
                "tags": ["Pass"],
                "summary": "Local sign-in status",
                "parameters": [
                    {"type": "string", "description": "Campus username", "name": "username", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/passsdk.StatusResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Liveness probe. Always 200 while the process is running.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/passsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe checking the token database.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/passsdk.HealthResponse"}},
                    "503": {"description": "database unreachable", "schema": {"$ref": "#/definitions/passsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "passsdk.AuthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "fusionToken": {"type": "string"},
                "error": {"type": "string"},
                "kind": {"type": "string"}
            }
        },
        "passsdk.BarcodeResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "barcodeId": {"type": "string"},
                "error": {"type": "string"},
                "kind": {"type": "string"}
            }
        },
        "passsdk.StatusResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "remembered": {"type": "boolean"},
                "hasToken": {"type": "boolean"},
                "tokenExpiresAt": {"type": "string"},
                "tokenFingerprint": {"type": "string"},
                "lastLoginAt": {"type": "string"},
                "subject": {"type": "string"},
                "displayName": {"type": "string"},
                "claimedExpiry": {"type": "string"},
                "demo": {"type": "boolean"}
            }
        },
        "passsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/passsdk.HealthChecks"}
            }
        },
        "passsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "vault": {"type": "string"}
            }
        },
        "passsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Static API token from SRCODE_API_TOKEN. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "SRCode Pass API",
	Description:      "Local API for the SRC student pass. Signs in through the campus CAS gateway, caches the Innosoft Fusion token and mints rotating gym barcodes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
