package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Athro Study API",
        "description": "Confidence-weighted study planning and calendar backend for GCSE students",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Plans", "description": "Weekly study plan generation and confirmation"},
        {"name": "Calendar", "description": "Merged calendar view, event CRUD and ICS feed"},
        {"name": "Preferences", "description": "Subject confidence and study slot preferences"},
        {"name": "Onboarding", "description": "Onboarding progress"},
        {"name": "Tutor", "description": "AI tutoring proxy"},
        {"name": "Analytics", "description": "Study analytics and staff overviews"},
        {"name": "Exports", "description": "Asynchronous timetable exports"},
        {"name": "Presence", "description": "Multi-tab heartbeat"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated user's profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke all refresh tokens",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/plans/generate": {
            "post": {
                "tags": ["Plans"],
                "summary": "Generate a weekly study plan proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GeneratePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failure"}
                }
            }
        },
        "/api/v1/plans/confirm": {
            "post": {
                "tags": ["Plans"],
                "summary": "Materialize a generated proposal into calendar events",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmPlanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "207": {"description": "Partially created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/plans/current": {
            "get": {
                "tags": ["Plans"],
                "summary": "Return the active study plan and its sessions",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active plan"}
                }
            }
        },
        "/api/v1/plans/{id}": {
            "delete": {
                "tags": ["Plans"],
                "summary": "Delete a study plan and its generated events",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/calendar/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List merged calendar events for a window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Create a calendar event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar/events/{id}": {
            "put": {
                "tags": ["Calendar"],
                "summary": "Update a calendar event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Calendar"],
                "summary": "Delete a calendar event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/calendar/day": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List merged events on one civil date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "tz", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar/suggested": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Stage a suggested event without persisting it",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar/suggested/{id}/accept": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Accept a suggested event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Suggestion expired or unknown"}
                }
            }
        },
        "/api/v1/calendar/suggested/{id}": {
            "delete": {
                "tags": ["Calendar"],
                "summary": "Dismiss a suggested event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/calendar/feed.ics": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Download study sessions as an ICS calendar",
                "security": [{"BearerAuth": []}],
                "produces": ["text/calendar"],
                "responses": {
                    "200": {"description": "ICS payload"}
                }
            }
        },
        "/api/v1/preferences/subjects": {
            "get": {
                "tags": ["Preferences"],
                "summary": "List subject confidence preferences",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Replace subject confidence preferences",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PutSubjectPreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/preferences/slots": {
            "get": {
                "tags": ["Preferences"],
                "summary": "List preferred study slots",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Replace preferred study slots",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PutStudySlotsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/onboarding": {
            "get": {
                "tags": ["Onboarding"],
                "summary": "Return the user's onboarding state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Onboarding"],
                "summary": "Advance the user's onboarding state",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateOnboardingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tutor/chat": {
            "post": {
                "tags": ["Tutor"],
                "summary": "Send a chat turn to the study tutor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TutorChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upstream failure"}
                }
            }
        },
        "/api/v1/tutor/ocr": {
            "post": {
                "tags": ["Tutor"],
                "summary": "Recognize handwritten maths from an image",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TutorOCRRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upstream failure"}
                }
            }
        },
        "/api/v1/analytics/summary": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Return the user's study summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/analytics/students": {
            "get": {
                "tags": ["Analytics"],
                "summary": "List per-student overviews (staff only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/v1/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Return aggregate system metrics (staff only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/v1/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a timetable export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Poll an export job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export with a signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File payload"},
                    "401": {"description": "Token invalid or expired"}
                }
            }
        },
        "/api/v1/presence/heartbeat": {
            "post": {
                "tags": ["Presence"],
                "summary": "Record a browser tab heartbeat",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/HeartbeatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "GeneratePlanRequest": {
            "type": "object",
            "required": ["subjects"],
            "properties": {
                "subjects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectConfidenceInput"}
                },
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/StudySlotInput"}
                },
                "pomodoro": {"type": "boolean"},
                "timezone": {"type": "string"}
            }
        },
        "SubjectConfidenceInput": {
            "type": "object",
            "required": ["subject"],
            "properties": {
                "subject": {"type": "string"},
                "label": {"type": "string", "enum": ["low", "medium", "high"]},
                "level": {"type": "integer", "minimum": 1, "maximum": 10}
            }
        },
        "StudySlotInput": {
            "type": "object",
            "required": ["slot_count", "slot_duration_minutes"],
            "properties": {
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "slot_count": {"type": "integer", "minimum": 1, "maximum": 8},
                "slot_duration_minutes": {"type": "integer", "minimum": 15, "maximum": 180},
                "preferred_start_hour": {"type": "integer", "minimum": 0, "maximum": 22}
            }
        },
        "ConfirmPlanRequest": {
            "type": "object",
            "required": ["proposal_id"],
            "properties": {
                "proposal_id": {"type": "string"},
                "replace_existing": {"type": "boolean"}
            }
        },
        "CreateEventRequest": {
            "type": "object",
            "required": ["title", "event_type", "start_time", "end_time"],
            "properties": {
                "title": {"type": "string"},
                "subject": {"type": "string"},
                "topic": {"type": "string"},
                "description": {"type": "string"},
                "event_type": {"type": "string", "enum": ["study_session", "blocked", "exam", "reminder"]},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "recurrence_rule": {"type": "string"}
            }
        },
        "PutSubjectPreferencesRequest": {
            "type": "object",
            "properties": {
                "subjects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectConfidenceInput"}
                }
            }
        },
        "PutStudySlotsRequest": {
            "type": "object",
            "properties": {
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/StudySlotInput"}
                },
                "availability": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AvailabilityInput"}
                }
            }
        },
        "AvailabilityInput": {
            "type": "object",
            "properties": {
                "day_of_week": {"type": "integer"},
                "start_hour": {"type": "integer"},
                "end_hour": {"type": "integer"}
            }
        },
        "UpdateOnboardingRequest": {
            "type": "object",
            "required": ["current_step"],
            "properties": {
                "current_step": {"type": "string", "enum": ["subjects", "availability", "review", "done"]},
                "subjects_done": {"type": "boolean"},
                "availability_done": {"type": "boolean"}
            }
        },
        "TutorChatRequest": {
            "type": "object",
            "required": ["messages"],
            "properties": {
                "subject": {"type": "string"},
                "messages": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "role": {"type": "string", "enum": ["system", "user", "assistant"]},
                            "content": {"type": "string"}
                        }
                    }
                }
            }
        },
        "TutorOCRRequest": {
            "type": "object",
            "required": ["src"],
            "properties": {
                "src": {"type": "string"}
            }
        },
        "CreateExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "HeartbeatRequest": {
            "type": "object",
            "required": ["tab_id"],
            "properties": {
                "tab_id": {"type": "string"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
