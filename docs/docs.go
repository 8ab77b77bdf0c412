// Package docs holds the OpenAPI description of the landed cost API, served
// by gin-swagger at /swagger. Regenerate with `swag init -g cmd/server/main.go`
// after changing handler annotations.
package docs

import "github.com/swaggo/swag/v2"

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
                "tags": ["system"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Ping the API",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/system/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Get system information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/allocation/preview": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Preview a landed-cost allocation",
                "operationId": "previewAllocation",
                "parameters": [
                    {"description": "Charges and purchase orders", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/vouchers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "List landed-cost vouchers",
                "operationId": "listVouchers",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "Voucher number search", "name": "search", "in": "query"},
                    {"type": "string", "description": "Payable category (freight, partner, packing)", "name": "category", "in": "query"},
                    {"type": "string", "description": "Payable status (pending, paid)", "name": "status", "in": "query"},
                    {"type": "string", "description": "Payee party", "name": "party_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Create a landed-cost voucher",
                "operationId": "createVoucher",
                "parameters": [
                    {"description": "Voucher", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/vouchers/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Get a landed-cost voucher",
                "operationId": "getVoucher",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Voucher ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Revise a landed-cost voucher",
                "operationId": "updateVoucher",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Voucher ID", "name": "id", "in": "path", "required": true},
                    {"description": "Voucher", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Delete a landed-cost voucher",
                "operationId": "deleteVoucher",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Voucher ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/vouchers/{id}/payables/{category}/pay": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Pay one payable of a voucher",
                "operationId": "payVoucherCategory",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Voucher ID", "name": "id", "in": "path", "required": true},
                    {"enum": ["freight", "partner", "packing"], "type": "string", "description": "Payable category", "name": "category", "in": "path", "required": true},
                    {"type": "string", "description": "Replay key for retried requests", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Payment details", "name": "request", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/settlements": {
            "get": {
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "List settlements",
                "operationId": "listSettlements",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "Party type", "name": "party_type", "in": "query"},
                    {"type": "string", "description": "Settlement status (pending, finalized)", "name": "status", "in": "query"},
                    {"type": "string", "description": "Settlement period YYYY-MM", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Capture pending vouchers of a party into a settlement",
                "operationId": "createSettlement",
                "parameters": [
                    {"description": "Settlement", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/settlements/pending-dues": {
            "get": {
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "What each party of a type is owed",
                "operationId": "listPendingDues",
                "parameters": [
                    {"enum": ["logistic", "partner", "packing"], "type": "string", "description": "Payee party type", "name": "party_type", "in": "query", "required": true},
                    {"enum": ["freight", "partner", "packing"], "type": "string", "description": "Payable category", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/settlements/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Get a settlement",
                "operationId": "getSettlement",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Settlement ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/landed-cost/settlements/{id}/finalize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["landed-cost"],
                "summary": "Pay every captured voucher and close the settlement",
                "operationId": "finalizeSettlement",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Settlement ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Replay key for retried requests", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Funding account and notes", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationDetail"}}
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorInfo"},
                "meta": {"$ref": "#/definitions/dto.Meta"}
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Landed Cost & Settlement API",
	Description:      "Allocates import landed cost onto purchase order lines and settles what is owed to logistic, partner and packing parties.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
