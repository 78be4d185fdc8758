package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Progress API",
        "description": "Aggregated lesson progress dashboard for schools, cohorts and students",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "Progress", "description": "Selection state, resolved views, filter options and exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/schools": {
            "get": {
                "tags": ["Progress"],
                "summary": "List accessible schools",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/schools/{id}/cohorts": {
            "get": {
                "tags": ["Progress"],
                "summary": "List cohorts of a school",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/hierarchy": {
            "get": {
                "tags": ["Progress"],
                "summary": "Curriculum hierarchy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/selection": {
            "get": {
                "tags": ["Progress"],
                "summary": "Current selection state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}}
                }
            }
        },
        "/progress/selection/school": {
            "put": {
                "tags": ["Progress"],
                "summary": "Select or clear the school filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}},
                    "403": {"description": "No access to the requested school"}
                }
            }
        },
        "/progress/selection/cohort": {
            "put": {
                "tags": ["Progress"],
                "summary": "Select or clear the cohort filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}}
                }
            }
        },
        "/progress/selection/student": {
            "put": {
                "tags": ["Progress"],
                "summary": "Select or clear the student filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}}
                }
            }
        },
        "/progress/selection/curriculum": {
            "put": {
                "tags": ["Progress"],
                "summary": "Select or clear the curriculum filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}}
                }
            }
        },
        "/progress/selection/collection": {
            "put": {
                "tags": ["Progress"],
                "summary": "Select or clear the collection filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}}
                }
            }
        },
        "/progress/selection/course": {
            "put": {
                "tags": ["Progress"],
                "summary": "Select or clear the course filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}}
                }
            }
        },
        "/progress/selection/chapter": {
            "put": {
                "tags": ["Progress"],
                "summary": "Select or clear the chapter filter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SelectionState"}}
                }
            }
        },
        "/progress/view": {
            "get": {
                "tags": ["Progress"],
                "summary": "Resolved progress view for the current selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProgressView"}}
                }
            }
        },
        "/progress/options": {
            "get": {
                "tags": ["Progress"],
                "summary": "Selectable filter options for the current selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/export": {
            "get": {
                "tags": ["Progress"],
                "summary": "Export the current progress view",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "400": {"description": "Nothing selected or unsupported format"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "SelectRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "x-nullable": true}
            }
        },
        "SelectionState": {
            "type": "object",
            "properties": {
                "schoolId": {"type": "string", "x-nullable": true},
                "cohortId": {"type": "string", "x-nullable": true},
                "studentId": {"type": "string", "x-nullable": true},
                "curriculumId": {"type": "string", "x-nullable": true},
                "collectionId": {"type": "string", "x-nullable": true},
                "courseId": {"type": "string", "x-nullable": true},
                "chapterId": {"type": "string", "x-nullable": true}
            }
        },
        "ProgressView": {
            "type": "object",
            "properties": {
                "hasData": {"type": "boolean"},
                "title": {"type": "string"},
                "totalLessons": {"type": "integer"},
                "totalCompleted": {"type": "integer"},
                "requiredLessons": {"type": "integer"},
                "requiredCompleted": {"type": "integer"},
                "totalPercentage": {"type": "integer"},
                "requiredPercentage": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
