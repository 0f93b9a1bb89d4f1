// Package docs registers the OpenAPI document served under /v1/swagger/.
// Keep it in step with the godoc annotations in internal/handler.
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
        "/repos/{name}/{repo}": {
            "get": {
                "description": "Fetch a single repository from GitHub",
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Get Repository",
                "parameters": [
                    {"type": "string", "description": "Owner Name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Repository Name", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        },
        "/user/repos": {
            "post": {
                "description": "Forward a repository creation payload to GitHub unchanged",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "Create Repository",
                "parameters": [
                    {"description": "GitHub repository creation payload", "name": "repository", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        },
        "/users/{name}": {
            "get": {
                "description": "Fetch a GitHub user profile, returned exactly as GitHub sent it",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get User",
                "parameters": [
                    {"type": "string", "description": "User Name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        },
        "/users/{name}/repos": {
            "get": {
                "description": "List the public repositories of a GitHub user in GitHub's order",
                "produces": ["application/json"],
                "tags": ["Repositories"],
                "summary": "List Repositories",
                "parameters": [
                    {"type": "string", "description": "User Name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.HTTPErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.HTTPErrorResponse": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "error_reference": {"type": "string"},
                "kind": {"type": "string"},
                "resolution": {"type": "string"},
                "status": {"type": "integer"},
                "timestamp": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "handler.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8081",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "GitHub Client Service",
	Description:      "Thin HTTP facade over a subset of the GitHub REST API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
