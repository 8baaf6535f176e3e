package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Portal Gateway",
        "description": "Session-authenticated gateway in front of the school backend: pass-through routes plus computed gradebook, attendance and report endpoints.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "SessionCookie": {"type": "apiKey", "in": "header", "name": "Cookie"}
    },
    "security": [{"SessionCookie": []}],
    "tags": [
        {"name": "Session", "description": "Caller identity from the session cookie"},
        {"name": "Gradebook", "description": "Result sheets, score saving, spreadsheet import and export"},
        {"name": "Attendance", "description": "Daily marks and term day counts"},
        {"name": "Reports", "description": "Report-card statistics"},
        {"name": "GradeSetting", "description": "Grading components, relayed and cached"},
        {"name": "Proxy", "description": "Backend routes relayed unchanged"}
    ],
    "paths": {
        "/v1/session": {
            "get": {
                "tags": ["Session"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/session/logout": {
            "post": {
                "tags": ["Session"],
                "summary": "End the session",
                "security": [],
                "responses": {"204": {"description": "Cookie cleared"}}
            }
        },
        "/v1/gradebook/{school}/{class}/{subject}": {
            "get": {
                "tags": ["Gradebook"],
                "summary": "Class result sheet, or a csv/pdf/xlsx download with format",
                "parameters": [
                    {"name": "school", "in": "path", "required": true, "type": "string"},
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "subject", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Gradebook"],
                "summary": "Save class scores",
                "parameters": [
                    {"name": "school", "in": "path", "required": true, "type": "string"},
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "subject", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveScoresRequest"}}
                ],
                "responses": {
                    "200": {"description": "Created and updated counts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid or unchanged scores", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/v1/gradebook/{school}/{class}/students/{student}": {
            "patch": {
                "tags": ["Gradebook"],
                "summary": "Save one student's scores",
                "parameters": [
                    {"name": "school", "in": "path", "required": true, "type": "string"},
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "student", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveStudentScoresRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/v1/gradebook/{school}/{class}/{subject}/import": {
            "post": {
                "tags": ["Gradebook"],
                "summary": "Import scores from an xlsx workbook",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "school", "in": "path", "required": true, "type": "string"},
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "subject", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/v1/attendance/daily/{school}/{session}/{term}/{class}/{date}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Daily attendance sheet",
                "parameters": [
                    {"$ref": "#/parameters/school"}, {"$ref": "#/parameters/session"}, {"$ref": "#/parameters/term"}, {"$ref": "#/parameters/class"},
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Attendance"],
                "summary": "Submit daily attendance",
                "parameters": [
                    {"$ref": "#/parameters/school"}, {"$ref": "#/parameters/session"}, {"$ref": "#/parameters/term"}, {"$ref": "#/parameters/class"},
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DailyAttendanceRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/v1/attendance/manual/{school}/{session}/{term}/{class}": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit term attendance counts",
                "parameters": [
                    {"$ref": "#/parameters/school"}, {"$ref": "#/parameters/session"}, {"$ref": "#/parameters/term"}, {"$ref": "#/parameters/class"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualAttendanceRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/v1/reports/class-stats": {
            "post": {
                "tags": ["Reports"],
                "summary": "Term statistics of a report card",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassStatsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/v1/reports/session-stats": {
            "post": {
                "tags": ["Reports"],
                "summary": "Session statistics of a report card",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionStatsRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/grade_setting/{path}": {
            "get": {
                "tags": ["GradeSetting"],
                "summary": "Read grading components; X-Cache reports HIT or MISS",
                "parameters": [{"name": "path", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Backend body", "schema": {"$ref": "#/definitions/GradingSetting"}}}
            },
            "put": {
                "tags": ["GradeSetting"],
                "summary": "Replace grading components",
                "parameters": [
                    {"name": "path", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradingSetting"}}
                ],
                "responses": {
                    "200": {"description": "Backend body"},
                    "400": {"description": "Invalid components", "schema": {"$ref": "#/definitions/Message"}}
                }
            }
        },
        "/proxy/{path}": {
            "get": {
                "tags": ["Proxy"],
                "summary": "Generic pass-through limited to allowed backend prefixes",
                "parameters": [{"name": "path", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Backend body"},
                    "404": {"description": "Prefix not allowed", "schema": {"$ref": "#/definitions/Message"}}
                }
            }
        }
    },
    "parameters": {
        "school": {"name": "school", "in": "path", "required": true, "type": "string"},
        "session": {"name": "session", "in": "path", "required": true, "type": "string"},
        "term": {"name": "term", "in": "path", "required": true, "type": "string"},
        "class": {"name": "class", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "SaveScoresRequest": {
            "type": "object",
            "properties": {
                "scores": {
                    "type": "object",
                    "additionalProperties": {"type": "object", "additionalProperties": {"type": "number"}}
                }
            },
            "required": ["scores"]
        },
        "SaveStudentScoresRequest": {
            "type": "object",
            "properties": {
                "scores": {"type": "object", "additionalProperties": {"type": "number"}}
            },
            "required": ["scores"]
        },
        "DailyAttendanceRequest": {
            "type": "object",
            "properties": {
                "present": {"type": "object", "additionalProperties": {"type": "boolean"}}
            }
        },
        "ManualAttendanceRequest": {
            "type": "object",
            "properties": {
                "records": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 0}},
                "total_school_days": {"type": "integer", "minimum": 0}
            },
            "required": ["records"]
        },
        "SubjectResult": {
            "type": "object",
            "properties": {
                "subject_name": {"type": "string"},
                "total_score": {"type": "number", "minimum": 0},
                "grading_total": {"type": "number", "minimum": 0}
            }
        },
        "ClassStatsRequest": {
            "type": "object",
            "properties": {
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectResult"}}
            }
        },
        "SessionStatsRequest": {
            "type": "object",
            "properties": {
                "terms": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "term_name": {"type": "string"},
                            "scores": {"type": "array", "items": {"$ref": "#/definitions/SubjectResult"}}
                        }
                    }
                }
            }
        },
        "GradingSetting": {
            "type": "object",
            "properties": {
                "components": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "name": {"type": "string"},
                            "weight": {"type": "number"}
                        },
                        "required": ["name", "weight"]
                    }
                }
            },
            "required": ["components"]
        },
        "Message": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
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
