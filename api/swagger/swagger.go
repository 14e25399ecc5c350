package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Research Repository API",
        "description": "Student research repository: submissions, review workflow, adviser assignment",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Admin and federated login"},
        {"name": "Research", "description": "Submission and review workflow"},
        {"name": "Instructor", "description": "Managed students and adviser requests"},
        {"name": "AdviserRequests", "description": "Admin decision queue"},
        {"name": "Accounts", "description": "Account administration and profiles"},
        {"name": "Reports", "description": "Aggregations and exports"},
        {"name": "Dashboard", "description": "Admin dashboard statistics"},
        {"name": "Notifications", "description": "Workflow event feed"},
        {"name": "EditMode", "description": "Shared edit-mode lease"}
    ],
    "paths": {
        "/auth/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Inactive account"}
                }
            }
        },
        "/auth/federated/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate student or instructor via verified federated identity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FederatedLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Signup closed or domain not allowed"}
                }
            }
        },
        "/profile": {
            "get": {
                "tags": ["Accounts"],
                "summary": "Get the caller's profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Accounts"],
                "summary": "Update the caller's profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {"204": {"description": "Updated"}}
            }
        },
        "/research": {
            "get": {
                "tags": ["Research"],
                "summary": "List the caller's research submissions",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Research"],
                "summary": "Submit a research artifact",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "title", "in": "formData", "type": "string", "required": true},
                    {"name": "abstract", "in": "formData", "type": "string"},
                    {"name": "authors", "in": "formData", "type": "string", "required": true},
                    {"name": "keywords", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/research/{id}": {
            "get": {
                "tags": ["Research"],
                "summary": "Get a research submission",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not visible to caller"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Research"],
                "summary": "Edit or resubmit an owned submission while editable",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "title", "in": "formData", "type": "string", "required": true},
                    {"name": "abstract", "in": "formData", "type": "string"},
                    {"name": "authors", "in": "formData", "type": "string", "required": true},
                    {"name": "keywords", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Submission locked after decision"}
                }
            }
        },
        "/research/{id}/status": {
            "put": {
                "tags": ["Research"],
                "summary": "Record a review decision",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResearchStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller may not review"},
                    "409": {"description": "Decision is final"}
                }
            }
        },
        "/research/{id}/download-token": {
            "get": {
                "tags": ["Research"],
                "summary": "Issue a signed download token",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/research/{id}/file": {
            "get": {
                "tags": ["Research"],
                "summary": "Download the artifact via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Artifact bytes"},
                    "403": {"description": "Token does not match"}
                }
            }
        },
        "/instructor/submissions": {
            "get": {
                "tags": ["Instructor"],
                "summary": "List submissions by managed students",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/instructor/students": {
            "get": {
                "tags": ["Instructor"],
                "summary": "List managed students",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "search", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Instructor"],
                "summary": "Claim a student into the caller's section",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddManagedStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student number"},
                    "409": {"description": "Already managed"}
                }
            }
        },
        "/instructor/students/{studentNumber}": {
            "delete": {
                "tags": ["Instructor"],
                "summary": "Release a managed student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "studentNumber", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Released"},
                    "403": {"description": "Not managed by caller"}
                }
            }
        },
        "/instructor/available-research": {
            "get": {
                "tags": ["Instructor"],
                "summary": "List pending research without an adviser",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/instructor/adviser-requests": {
            "get": {
                "tags": ["Instructor"],
                "summary": "List own adviser requests",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Instructor"],
                "summary": "Request to advise a research submission",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdviserRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Adviser set or duplicate pending request"}
                }
            }
        },
        "/admin/adviser-requests": {
            "get": {
                "tags": ["AdviserRequests"],
                "summary": "List all adviser requests",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/adviser-requests/stats": {
            "get": {
                "tags": ["AdviserRequests"],
                "summary": "Request queue statistics",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/adviser-requests/{id}/status": {
            "put": {
                "tags": ["AdviserRequests"],
                "summary": "Approve or reject an adviser request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecideAdviserRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "409": {"description": "Already decided or adviser taken"}
                }
            }
        },
        "/admin/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "Generate a report over accepted research",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["submissions", "status", "course"]},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "course", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export a report as csv, xlsx or pdf",
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["submissions", "status", "course"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "xlsx", "pdf"]},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "course", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Report file"}}
            }
        },
        "/admin/courses": {
            "get": {
                "tags": ["Reports"],
                "summary": "Course names available as a report filter",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/edit-mode": {
            "get": {
                "tags": ["EditMode"],
                "summary": "Current edit-mode lease state",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["EditMode"],
                "summary": "Enable or disable edit mode",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditModeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Lease held by another admin"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications/{id}/status": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read or acted on",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NotificationStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "AdminLoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "FederatedLoginRequest": {
            "type": "object",
            "required": ["kind", "display_name", "email", "external_uid"],
            "properties": {
                "kind": {"type": "string", "enum": ["Student", "Instructor"]},
                "display_name": {"type": "string"},
                "email": {"type": "string"},
                "external_uid": {"type": "string"}
            }
        },
        "UpdateProfileRequest": {
            "type": "object",
            "required": ["name", "email"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "course": {"type": "string"}
            }
        },
        "ResearchStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["Pending", "Accepted", "Rejected", "Revision"]},
                "comments": {"type": "string"}
            }
        },
        "AddManagedStudentRequest": {
            "type": "object",
            "required": ["student_number", "section"],
            "properties": {
                "student_number": {"type": "string"},
                "section": {"type": "string"}
            }
        },
        "CreateAdviserRequestRequest": {
            "type": "object",
            "required": ["research_id"],
            "properties": {
                "research_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "DecideAdviserRequestRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["approved", "rejected"]}
            }
        },
        "EditModeRequest": {
            "type": "object",
            "required": ["enabled"],
            "properties": {
                "enabled": {"type": "boolean"}
            }
        },
        "NotificationStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["READ", "APPROVED", "REJECTED"]}
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
