// Package docs holds the Swagger document served at the configured docs path.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/{resource}": {
            "get": {
                "description": "Returns every record of the resource. EEDM resources are paged with offset and limit when pageable.",
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "List resource records",
                "parameters": [
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "integer", "description": "Zero based offset", "name": "offset", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "string", "description": "no-cache bypasses the cache", "name": "Cache-Control", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}},
                    "406": {"description": "Not Acceptable", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}}
                }
            },
            "post": {
                "description": "Creates a record. The body id must be empty or the nil GUID. Only writable resources accept this.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "Create a resource record",
                "parameters": [
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}}
                }
            }
        },
        "/{resource}/{id}": {
            "get": {
                "description": "Returns the record with the given GUID (EEDM) or code (legacy).",
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "Get a resource record",
                "parameters": [
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "string", "description": "Record identifier", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "no-cache bypasses the cache", "name": "Cache-Control", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}}
                }
            },
            "put": {
                "description": "Replaces the record with the given id. The body id must be empty, the nil GUID or match the path.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "Update a resource record",
                "parameters": [
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "string", "description": "Record identifier", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "Unsupported operation",
                "parameters": [
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "string", "description": "Record identifier", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/models.IntegrationErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.IntegrationError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "description": {"type": "string"},
                "guid": {"type": "string"},
                "id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.IntegrationErrorResponse": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/models.IntegrationError"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "v1",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "Student Services EEDM API",
	Description:      "Student records reference and transactional data served as EEDM and legacy resources.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
