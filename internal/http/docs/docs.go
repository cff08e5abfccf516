// Package docs registers the OpenAPI document served under /swagger.
//
// The document mirrors the handler annotations; regenerate with:
//
//	swag init -g cmd/assignd/main.go -o internal/http/docs --parseInternal
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
    "tags": [
        {
            "name": "Allocations",
            "description": "Assign content to learners against a budget"
        },
        {
            "name": "Budgets",
            "description": "Budget aggregates and available balance"
        },
        {
            "name": "Views",
            "description": "Server-driven assignment tables"
        },
        {
            "name": "Bulk",
            "description": "Bulk remind and cancel on a view"
        },
        {
            "name": "Tracking",
            "description": "Analytics events recorded by the engine"
        }
    ],
    "paths": {
        "/allocations/{sessionId}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Allocations"
                ],
                "summary": "Get an allocation session",
                "operationId": "getAllocation",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Session ID",
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    },
                    "404": {
                        "description": "Session not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/allocations/{sessionId}/draft": {
            "put": {
                "description": "Validation is debounced; the snapshot shows phase \"validating\" until it settles.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Allocations"
                ],
                "summary": "Replace the learner lists of a session",
                "operationId": "updateAllocationDraft",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Session ID",
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    },
                    {
                        "description": "Learners",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.UpdateDraftRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Session not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Not editable in current phase",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/allocations/{sessionId}/exit": {
            "post": {
                "description": "Closes every dialog and discards the draft. A pending submission's result is dropped.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Allocations"
                ],
                "summary": "Exit an allocation session",
                "operationId": "exitAllocation",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Session ID",
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    },
                    "404": {
                        "description": "Session not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/allocations/{sessionId}/retry": {
            "post": {
                "description": "Offered only for retryable failure categories.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Allocations"
                ],
                "summary": "Retry a failed allocation",
                "operationId": "retryAllocation",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Session ID",
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    },
                    "404": {
                        "description": "Session not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Not retryable, pending or invalid transition",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Learner set failed validation",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    }
                }
            }
        },
        "/allocations/{sessionId}/submit": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Allocations"
                ],
                "summary": "Submit an open allocation session",
                "operationId": "submitAllocation",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Session ID",
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    },
                    "404": {
                        "description": "Session not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Pending or invalid transition",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Learner set failed validation",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    }
                }
            }
        },
        "/configurations/{configId}/views": {
            "post": {
                "description": "Creates a view and fetches its first page.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Views"
                ],
                "summary": "Open an assignment list view",
                "operationId": "createView",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Assignment configuration ID",
                        "name": "configId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "AIP-132 ordering, e.g. \"amount desc\"",
                        "name": "order_by",
                        "in": "query"
                    },
                    {
                        "description": "View",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateViewRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/services.ViewSnapshot"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/enterprises/{enterpriseId}/budgets": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Budgets"
                ],
                "summary": "List an enterprise's budgets",
                "operationId": "listBudgets",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Enterprise customer ID",
                        "name": "enterpriseId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ListBudgetsResponse"
                        }
                    },
                    "502": {
                        "description": "Budget unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/policies/{policyId}/allocations": {
            "post": {
                "description": "Opens an allocation session for the policy and submits it. With draft=true the\nsession is only opened so the learner list can be edited first.\nSupports idempotency via the Idempotency-Key header (same key → same result).",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Allocations"
                ],
                "summary": "Open and submit an allocation",
                "operationId": "createAllocation",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "example": "7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab",
                        "description": "Idempotency key for safe retries",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Subsidy access policy ID",
                        "name": "policyId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "boolean",
                        "description": "Open without submitting",
                        "name": "draft",
                        "in": "query"
                    },
                    {
                        "description": "Allocation draft",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateAllocationRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        },
                        "headers": {
                            "Idempotency-Replayed": {
                                "type": "string",
                                "description": "true when a stored result was returned"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Same Idempotency-Key still in progress",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Learner set failed validation",
                        "schema": {
                            "$ref": "#/definitions/services.AllocationSnapshot"
                        }
                    },
                    "502": {
                        "description": "Budget unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/policies/{policyId}/allocations/validate": {
            "post": {
                "description": "Checks learner emails and the cost against the budget balance without opening a session.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Allocations"
                ],
                "summary": "Validate an allocation draft",
                "operationId": "validateAllocation",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Subsidy access policy ID",
                        "name": "policyId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Draft",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ValidateAllocationRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/validation.Verdict"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Budget unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/policies/{policyId}/budget": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Budgets"
                ],
                "summary": "Get a budget",
                "operationId": "getBudget",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Subsidy access policy ID",
                        "name": "policyId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.BudgetResponse"
                        }
                    },
                    "502": {
                        "description": "Budget unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/tracking-events": {
            "get": {
                "description": "Returns the operator's analytics events, newest first. Supports weak ETag via If-None-Match and may return 304.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Tracking"
                ],
                "summary": "List tracking events (paginated)",
                "operationId": "listTrackingEvents",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "example": "W/\"tracking:admin-1::3:1700000000\"",
                        "description": "Return 304 if ETag matches",
                        "name": "If-None-Match",
                        "in": "header"
                    },
                    {
                        "enum": [
                            "list_sort_filter_changed",
                            "allocation_submitted",
                            "allocation_failed",
                            "allocation_retried",
                            "bulk_action"
                        ],
                        "type": "string",
                        "description": "Event name",
                        "name": "name",
                        "in": "query"
                    },
                    {
                        "minimum": 1,
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "maximum": 100,
                        "minimum": 1,
                        "type": "integer",
                        "default": 20,
                        "description": "Items per page",
                        "name": "page_size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ListTrackingEventsResponse"
                        },
                        "headers": {
                            "ETag": {
                                "type": "string",
                                "description": "Weak ETag for current result"
                            }
                        }
                    },
                    "304": {
                        "description": "Not Modified",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "500": {
                        "description": "Internal error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/views/{viewId}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Views"
                ],
                "summary": "Get a list view",
                "operationId": "getView",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "View ID",
                        "name": "viewId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.ViewSnapshot"
                        }
                    },
                    "404": {
                        "description": "View not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Views"
                ],
                "summary": "Close a list view",
                "operationId": "deleteView",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "View ID",
                        "name": "viewId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "View not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/views/{viewId}/bulk/{kind}": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bulk"
                ],
                "summary": "Run a bulk remind or cancel",
                "operationId": "performBulk",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "View ID",
                        "name": "viewId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    },
                    {
                        "enum": [
                            "remind",
                            "cancel"
                        ],
                        "type": "string",
                        "description": "remind or cancel",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Selection or all_filtered",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/services.BulkScope"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.BulkOutcome"
                        }
                    },
                    "400": {
                        "description": "Bad kind or scope",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "View not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Already pending",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Nothing eligible",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Upstream failure",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/views/{viewId}/bulk/{kind}/confirm": {
            "post": {
                "description": "Returns the confirmation dialog: label with the actionable count and whether the\nconfirm button is disabled. Ineligible selected rows are not counted.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Bulk"
                ],
                "summary": "Preview a bulk remind or cancel",
                "operationId": "confirmBulk",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "View ID",
                        "name": "viewId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    },
                    {
                        "enum": [
                            "remind",
                            "cancel"
                        ],
                        "type": "string",
                        "description": "remind or cancel",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Selection or all_filtered",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/services.BulkScope"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.BulkConfirmation"
                        }
                    },
                    "400": {
                        "description": "Bad kind or scope",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "View not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/views/{viewId}/refresh": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Views"
                ],
                "summary": "Refetch a view now",
                "operationId": "refreshView",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "View ID",
                        "name": "viewId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.ViewSnapshot"
                        }
                    },
                    "404": {
                        "description": "View not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/views/{viewId}/state": {
            "put": {
                "description": "Fetches are debounced; rapid changes produce one request carrying the latest state.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Views"
                ],
                "summary": "Change sort, filters or page of a view",
                "operationId": "updateViewState",
                "parameters": [
                    {
                        "type": "string",
                        "example": "admin-1",
                        "description": "Operator ID (demo header)",
                        "name": "X-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "View ID",
                        "name": "viewId",
                        "in": "path",
                        "required": true,
                        "format": "uuid"
                    },
                    {
                        "type": "string",
                        "description": "AIP-132 ordering, e.g. \"amount desc, recentAction\"",
                        "name": "order_by",
                        "in": "query"
                    },
                    {
                        "description": "Table state",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.TableQueryState"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/services.ViewSnapshot"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "View not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dialog.ID": {
            "type": "string",
            "enum": [
                "assignment",
                "error",
                "bulk_remind",
                "bulk_cancel"
            ],
            "x-enum-varnames": [
                "Assignment",
                "Error",
                "BulkRemind",
                "BulkCancel"
            ]
        },
        "domain.AllocationRequest": {
            "type": "object",
            "properties": {
                "content_key": {
                    "type": "string"
                },
                "content_price_cents": {
                    "type": "integer"
                },
                "group_emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "learner_emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "policy_id": {
                    "type": "string"
                }
            }
        },
        "domain.AllocationSummary": {
            "type": "object",
            "properties": {
                "total_learners_allocated": {
                    "type": "integer"
                },
                "total_learners_already_allocated": {
                    "type": "integer"
                }
            }
        },
        "domain.AssignmentPage": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "current_page": {
                    "type": "integer"
                },
                "learner_state_counts": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.LearnerStateCount"
                    }
                },
                "num_pages": {
                    "type": "integer"
                },
                "results": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ContentAssignment"
                    }
                }
            }
        },
        "domain.ContentAssignment": {
            "type": "object",
            "properties": {
                "content_key": {
                    "type": "string"
                },
                "content_quantity": {
                    "type": "integer"
                },
                "content_title": {
                    "type": "string"
                },
                "error_reason": {
                    "$ref": "#/definitions/domain.ErrorReason"
                },
                "learner_email": {
                    "type": "string"
                },
                "learner_state": {
                    "$ref": "#/definitions/domain.LearnerState"
                },
                "uuid": {
                    "type": "string"
                }
            }
        },
        "domain.ErrorAction": {
            "type": "string",
            "enum": [
                "retry",
                "exit"
            ],
            "x-enum-varnames": [
                "ErrorActionRetry",
                "ErrorActionExit"
            ]
        },
        "domain.ErrorCategory": {
            "type": "object",
            "properties": {
                "body": {
                    "type": "string"
                },
                "http_status": {
                    "type": "integer"
                },
                "kind": {
                    "$ref": "#/definitions/domain.ErrorKind"
                },
                "reason_code": {
                    "type": "string"
                },
                "retryable": {
                    "type": "boolean"
                },
                "title": {
                    "type": "string"
                }
            }
        },
        "domain.ErrorKind": {
            "type": "string",
            "enum": [
                "content_not_in_catalog",
                "insufficient_balance",
                "spend_limit_reached",
                "unknown"
            ],
            "x-enum-varnames": [
                "ErrorContentNotInCatalog",
                "ErrorInsufficientBalance",
                "ErrorSpendLimitReached",
                "ErrorUnknown"
            ]
        },
        "domain.ErrorReason": {
            "type": "object",
            "properties": {
                "action_type": {
                    "type": "string"
                },
                "error_reason": {
                    "type": "string"
                }
            }
        },
        "domain.Filter": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "value": {}
            }
        },
        "domain.LearnerState": {
            "type": "string",
            "enum": [
                "notifying",
                "waiting",
                "failed",
                "cancelled",
                "accepted"
            ],
            "x-enum-varnames": [
                "LearnerStateNotifying",
                "LearnerStateWaiting",
                "LearnerStateFailed",
                "LearnerStateCancelled",
                "LearnerStateAccepted"
            ]
        },
        "domain.LearnerStateCount": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "learner_state": {
                    "$ref": "#/definitions/domain.LearnerState"
                }
            }
        },
        "domain.SortColumn": {
            "type": "object",
            "properties": {
                "desc": {
                    "type": "boolean"
                },
                "id": {
                    "type": "string"
                }
            }
        },
        "domain.TableQueryState": {
            "type": "object",
            "properties": {
                "filters": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Filter"
                    }
                },
                "page_index": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "sort_by": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.SortColumn"
                    }
                }
            }
        },
        "domain.TrackingEvent": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "operator_id": {
                    "type": "string"
                },
                "properties": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                }
            }
        },
        "handlers.BudgetResponse": {
            "type": "object",
            "properties": {
                "amount_allocated_usd": {
                    "type": "string",
                    "example": "97.00"
                },
                "amount_redeemed_usd": {
                    "type": "string",
                    "example": "500.00"
                },
                "display_name": {
                    "type": "string"
                },
                "enterprise_id": {
                    "type": "string"
                },
                "policy_id": {
                    "type": "string"
                },
                "spend_available_usd": {
                    "type": "string",
                    "example": "403.00"
                },
                "spend_limit_usd": {
                    "type": "string",
                    "example": "1000.00"
                }
            }
        },
        "handlers.CreateAllocationRequest": {
            "type": "object",
            "required": [
                "content_key"
            ],
            "properties": {
                "content_key": {
                    "type": "string",
                    "example": "course-v1:edX+DemoX+Demo_Course"
                },
                "content_price_cents": {
                    "type": "integer",
                    "example": 19900
                },
                "group_emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "learner_emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    },
                    "example": [
                        "ann@example.com"
                    ]
                }
            }
        },
        "handlers.CreateViewRequest": {
            "type": "object",
            "required": [
                "policy_id"
            ],
            "properties": {
                "enterprise_id": {
                    "type": "string",
                    "example": "e1a2b3c4-0000-4000-8000-000000000002"
                },
                "policy_id": {
                    "type": "string",
                    "example": "b5f1c7d2-0000-4000-8000-000000000001"
                },
                "state": {
                    "$ref": "#/definitions/domain.TableQueryState"
                }
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "description": "Stable, machine-readable code (see errors.go)",
                    "example": "not_found"
                },
                "message": {
                    "type": "string",
                    "description": "Human-readable message",
                    "example": "allocation session not found"
                },
                "request_id": {
                    "type": "string",
                    "description": "Echo of X-Request-ID",
                    "example": "123e4567-e89b-12d3-a456-426614174000"
                }
            }
        },
        "handlers.ListBudgetsResponse": {
            "type": "object",
            "properties": {
                "budgets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handlers.BudgetResponse"
                    }
                }
            }
        },
        "handlers.ListTrackingEventsResponse": {
            "type": "object",
            "properties": {
                "events": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.TrackingEvent"
                    }
                },
                "pagination": {
                    "$ref": "#/definitions/handlers.Pagination"
                }
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "has_next": {
                    "type": "boolean"
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "handlers.UpdateDraftRequest": {
            "type": "object",
            "properties": {
                "group_emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "learner_emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "handlers.ValidateAllocationRequest": {
            "type": "object",
            "properties": {
                "available_usd": {
                    "type": "string",
                    "example": "1000.00"
                },
                "content_price_cents": {
                    "type": "integer",
                    "example": 19900
                },
                "emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    },
                    "example": [
                        "ann@example.com",
                        "bob@example.com"
                    ]
                },
                "group_emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "services.AllocationSnapshot": {
            "type": "object",
            "properties": {
                "actions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ErrorAction"
                    }
                },
                "attempts": {
                    "type": "integer"
                },
                "can_submit": {
                    "type": "boolean"
                },
                "dialogs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dialog.ID"
                    }
                },
                "error": {
                    "$ref": "#/definitions/domain.ErrorCategory"
                },
                "expires_at": {
                    "type": "string"
                },
                "pending": {
                    "type": "boolean"
                },
                "phase": {
                    "$ref": "#/definitions/services.Phase"
                },
                "request": {
                    "$ref": "#/definitions/domain.AllocationRequest"
                },
                "session_id": {
                    "type": "string"
                },
                "toast": {
                    "$ref": "#/definitions/services.Toast"
                },
                "verdict": {
                    "$ref": "#/definitions/validation.Verdict"
                }
            }
        },
        "services.BulkConfirmation": {
            "type": "object",
            "properties": {
                "actionable_count": {
                    "type": "integer"
                },
                "dialog": {
                    "$ref": "#/definitions/dialog.ID"
                },
                "disabled": {
                    "type": "boolean"
                },
                "kind": {
                    "$ref": "#/definitions/services.BulkKind"
                },
                "label": {
                    "type": "string"
                },
                "selected_count": {
                    "type": "integer"
                },
                "target_uuids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "services.BulkKind": {
            "type": "string",
            "enum": [
                "remind",
                "cancel"
            ],
            "x-enum-varnames": [
                "BulkRemind",
                "BulkCancel"
            ]
        },
        "services.BulkOutcome": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "kind": {
                    "$ref": "#/definitions/services.BulkKind"
                },
                "message": {
                    "type": "string"
                },
                "reminded_rows": {
                    "type": "integer"
                },
                "removed_rows": {
                    "type": "integer"
                },
                "scope": {
                    "type": "string"
                }
            }
        },
        "services.BulkScope": {
            "type": "object",
            "properties": {
                "all_filtered": {
                    "type": "boolean"
                },
                "assignment_uuids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "services.ListSnapshot": {
            "type": "object",
            "properties": {
                "args": {
                    "$ref": "#/definitions/domain.TableQueryState"
                },
                "error": {
                    "type": "string"
                },
                "fetched_at": {
                    "type": "string"
                },
                "loading": {
                    "type": "boolean"
                },
                "page": {
                    "$ref": "#/definitions/domain.AssignmentPage"
                }
            }
        },
        "services.Phase": {
            "type": "string",
            "enum": [
                "idle",
                "validating",
                "submitting",
                "succeeded",
                "failed",
                "closed"
            ],
            "x-enum-varnames": [
                "PhaseIdle",
                "PhaseValidating",
                "PhaseSubmitting",
                "PhaseSucceeded",
                "PhaseFailed",
                "PhaseClosed"
            ]
        },
        "services.Toast": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "summary": {
                    "$ref": "#/definitions/domain.AllocationSummary"
                }
            }
        },
        "services.ViewSnapshot": {
            "type": "object",
            "properties": {
                "cancel_pending": {
                    "type": "boolean"
                },
                "configuration_id": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "enterprise_id": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "list": {
                    "$ref": "#/definitions/services.ListSnapshot"
                },
                "operator_id": {
                    "type": "string"
                },
                "policy_id": {
                    "type": "string"
                },
                "remind_pending": {
                    "type": "boolean"
                }
            }
        },
        "validation.Verdict": {
            "type": "object",
            "properties": {
                "cost_usd": {
                    "type": "string"
                },
                "emails": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "is_valid": {
                    "type": "boolean"
                },
                "remaining_after_usd": {
                    "type": "string"
                },
                "total_count": {
                    "type": "integer"
                },
                "violation": {
                    "$ref": "#/definitions/validation.Violation"
                }
            }
        },
        "validation.Violation": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "type": {
                    "$ref": "#/definitions/validation.ViolationType"
                },
                "value": {
                    "type": "string"
                }
            }
        },
        "validation.ViolationType": {
            "type": "string",
            "enum": [
                "invalid_email",
                "duplicate",
                "too_many",
                "insufficient_budget"
            ],
            "x-enum-varnames": [
                "ViolationInvalidEmail",
                "ViolationDuplicate",
                "ViolationTooMany",
                "ViolationInsufficientBudget"
            ]
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "assignd API",
	Description:      "Budget-constrained content assignment engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
