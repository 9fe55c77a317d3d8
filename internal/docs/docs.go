// Package docs registers the OpenAPI document served at /openapi.json.
// Keep it in sync with the swag annotations on the HTTP handlers.
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
        "/analyze": {
            "post": {
                "description": "Sends a base64 crop photo to the vision model and returns the crop report",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Analysis"],
                "summary": "Analyze a crop image",
                "parameters": [
                    {
                        "description": "Image and response language",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/analyze.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analysis.Result"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        },
        "/market-prices": {
            "get": {
                "description": "Proxies the data.gov.in commodity price resource",
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Get mandi prices",
                "parameters": [
                    {"type": "string", "description": "Commodity name, forwarded verbatim", "name": "crop", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Upstream payload", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        },
        "/market-prices/{crop}": {
            "get": {
                "description": "Same as /market-prices with the commodity taken from the path",
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Get mandi prices for one commodity",
                "parameters": [
                    {"type": "string", "description": "Commodity name", "name": "crop", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Upstream payload", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        },
        "/translate": {
            "post": {
                "description": "Translates text with the configured AI model",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Translation"],
                "summary": "Translate text",
                "parameters": [
                    {
                        "description": "Text and target language",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/translate.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/translate.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "analysis.Result": {
            "type": "object",
            "properties": {
                "crop": {"type": "string"},
                "variety": {"type": "string"},
                "health": {"type": "string"},
                "issues": {"type": "array", "items": {"type": "string"}},
                "recommendations": {"type": "array", "items": {"type": "string"}},
                "growingConditions": {"type": "object", "additionalProperties": {"type": "string"}},
                "harvestInfo": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "analyze.Request": {
            "type": "object",
            "properties": {
                "image": {"type": "string", "description": "Base64 image without data URL prefix"},
                "language": {"type": "string", "example": "Hindi"}
            }
        },
        "translate.Request": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "target_language": {"type": "string", "example": "Tamil"}
            }
        },
        "translate.Response": {
            "type": "object",
            "properties": {
                "translation": {"type": "string"}
            }
        },
        "httptransport.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "kind": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "AgroSnap API",
	Description:      "Crop image analysis and mandi price relay.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
