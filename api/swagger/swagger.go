package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy Ops API",
        "description": "Admissions operations backend: consultation slots, workflow checklist and enrolled student lifecycle",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Slots", "description": "Consultation slots and bookings"},
        {"name": "Applicants", "description": "Applicant pipeline and status changes"},
        {"name": "Checklist", "description": "Admission workflow checklist"},
        {"name": "Students", "description": "Enrolled student lifecycle reviews"},
        {"name": "Ops", "description": "Operational counters"}
    ],
    "paths": {
        "/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List consultation slots",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "campus", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK; meta.cache_hit reports a cached listing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Slots"],
                "summary": "Open a consultation slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/{id}/book": {
            "post": {
                "tags": ["Slots"],
                "summary": "Book a slot for an applicant, superseding any previous reservation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "Booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Slot or applicant not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Slot closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Applicant no longer bookable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/{id}/open": {
            "post": {
                "tags": ["Slots"],
                "summary": "Open or close a slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants": {
            "get": {
                "tags": ["Applicants"],
                "summary": "List the applicant pipeline",
                "parameters": [
                    {"name": "campus", "in": "query", "type": "string"},
                    {"name": "stage", "in": "query", "type": "string", "enum": ["waiting", "reserved", "consulted", "documents", "payment", "enrolled", "rejected"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Applicants"],
                "summary": "Register an applicant in the waiting state",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateApplicantRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants/export": {
            "get": {
                "tags": ["Applicants"],
                "summary": "Export the pipeline",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "campus", "in": "query", "type": "string"},
                    {"name": "stage", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants/{id}": {
            "get": {
                "tags": ["Applicants"],
                "summary": "Get one pipeline entry",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants/{id}/status": {
            "post": {
                "tags": ["Applicants"],
                "summary": "Apply a staff status transition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Status changed concurrently", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants/{id}/reservation": {
            "delete": {
                "tags": ["Applicants"],
                "summary": "Release the applicant's reservation",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants/{id}/checklist": {
            "get": {
                "tags": ["Checklist"],
                "summary": "Get the workflow checklist",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants/{id}/checklist/{stepKey}": {
            "put": {
                "tags": ["Checklist"],
                "summary": "Check or uncheck a workflow step and run its side effects",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "stepKey", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetChecklistItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown step", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List enrolled students",
                "parameters": [
                    {"name": "campus", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get an enrolled student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/leave-review": {
            "post": {
                "tags": ["Students"],
                "summary": "Request a leave of absence review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LeaveReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Status conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/withdrawal-review": {
            "post": {
                "tags": ["Students"],
                "summary": "Request a withdrawal review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WithdrawalReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Status conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/review/confirm": {
            "post": {
                "tags": ["Students"],
                "summary": "Confirm the pending review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReviewDecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No pending review", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/review/cancel": {
            "post": {
                "tags": ["Students"],
                "summary": "Cancel the pending review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReviewDecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No pending review", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/return": {
            "post": {
                "tags": ["Students"],
                "summary": "Return a student from leave",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReviewDecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not on leave", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ops/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Booking, workflow, cache and gateway counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSlotRequest": {
            "type": "object",
            "required": ["campus", "date", "time", "capacity"],
            "properties": {
                "campus": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "time": {"type": "string", "example": "09:30"},
                "capacity": {"type": "integer", "minimum": 1},
                "isOpen": {"type": "boolean"}
            }
        },
        "BookSlotRequest": {
            "type": "object",
            "required": ["applicantId"],
            "properties": {"applicantId": {"type": "string"}}
        },
        "ToggleSlotRequest": {
            "type": "object",
            "required": ["isOpen"],
            "properties": {"isOpen": {"type": "boolean"}}
        },
        "CreateApplicantRequest": {
            "type": "object",
            "required": ["name", "phone", "campus"],
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "parentPhone": {"type": "string"},
                "campus": {"type": "string"},
                "birthDate": {"type": "string", "format": "date"},
                "gender": {"type": "string", "enum": ["M", "F"]}
            }
        },
        "TransitionStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"},
                "reason": {"type": "string"},
                "actor": {"type": "string"}
            }
        },
        "SetChecklistItemRequest": {
            "type": "object",
            "required": ["checked"],
            "properties": {
                "checked": {"type": "boolean"},
                "actor": {"type": "string"}
            }
        },
        "LeaveReviewRequest": {
            "type": "object",
            "required": ["reason", "effectiveDate"],
            "properties": {
                "reason": {"type": "string"},
                "effectiveDate": {"type": "string", "format": "date"},
                "actor": {"type": "string"}
            }
        },
        "WithdrawalReviewRequest": {
            "type": "object",
            "required": ["reason", "effectiveDate"],
            "properties": {
                "reason": {"type": "string"},
                "effectiveDate": {"type": "string", "format": "date"},
                "refundRequested": {"type": "boolean"},
                "actor": {"type": "string"}
            }
        },
        "ReviewDecisionRequest": {
            "type": "object",
            "properties": {"actor": {"type": "string"}}
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
                "status": {"type": "integer"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
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

// Doc is the registered OpenAPI 2.0 document served under /docs.
type Doc struct{}

// ReadDoc returns the document.
func (Doc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, Doc{})
}
