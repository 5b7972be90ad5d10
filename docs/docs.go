// Package docs registers the OpenAPI description served at /swagger when
// SWAGGER_ENABLED is set. Regenerate with `swag init -g cmd/cfbot/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Meta"],
                "summary": "Service banner",
                "operationId": "root",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RootResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Meta"],
                "summary": "Liveness probe",
                "operationId": "health",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/users": {
            "get": {
                "security": [{"AdminKey": []}],
                "description": "Returns every whitelist entry, newest first. Supports weak ETag via If-None-Match.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List whitelisted users",
                "operationId": "listUsers",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.WhitelistEntry"}},
                        "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}
                    },
                    "304": {"description": "Not Modified"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"AdminKey": []}],
                "description": "Adds a user by Telegram username and/or numeric id. Retrying with the same Idempotency-Key returns the original entry.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Whitelist a user",
                "operationId": "createUser",
                "parameters": [
                    {"type": "string", "description": "Retry-safe creation key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "User identity", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.WhitelistEntry"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Already whitelisted", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/users/{id}": {
            "delete": {
                "security": [{"AdminKey": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Remove a user from the whitelist",
                "operationId": "deleteUser",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Entry ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeleteUserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/webhook/test": {
            "get": {
                "description": "Sends the method, caller IP and query to the configured chat. Delivery failures are only logged.",
                "produces": ["application/json"],
                "tags": ["Webhooks"],
                "summary": "Forward a test request to the bot chat",
                "operationId": "webhookTestGet",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.WebhookAck"}}
                }
            },
            "post": {
                "description": "Sends the method, caller IP and body to the configured chat. Delivery failures are only logged.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Webhooks"],
                "summary": "Forward a test request to the bot chat",
                "operationId": "webhookTestPost",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.WebhookAck"}}
                }
            }
        }
    },
    "definitions": {
        "domain.WhitelistEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "telegramId": {"type": "integer"},
                "username": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handlers.CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "@alice"},
                "telegramId": {"type": "integer", "example": 123456789}
            }
        },
        "handlers.DeleteUserResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean", "example": true}}
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "user not found"}
            }
        },
        "handlers.RootResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "Cloudflare Telegram Bot API"}
            }
        },
        "handlers.WebhookAck": {
            "type": "object",
            "properties": {"ok": {"type": "boolean", "example": true}}
        }
    },
    "securityDefinitions": {
        "AdminKey": {"type": "apiKey", "name": "X-Admin-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "cfbot admin API",
	Description:      "Whitelist administration and webhook test endpoints of the Cloudflare Telegram bot.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
