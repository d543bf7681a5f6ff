// Package swagger holds the OpenAPI document served under /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "Vertex Maintainers",
			"url": "https://github.com/raysh454/vertex"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/healthz": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"system"
				],
				"summary": "Liveness probe",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/scans": {
			"post": {
				"description": "Scans a URL (static or rendered) or inline HTML and stores the report.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"scans"
				],
				"summary": "Scan a page",
				"parameters": [
					{
						"description": "What to scan",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/server.ScanRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/server.ReportResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					},
					"500": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			}
		},
		"/reports": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "List stored reports",
				"parameters": [
					{
						"type": "integer",
						"description": "Maximum number of reports, newest first",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/reportstore.Summary"
							}
						}
					}
				}
			}
		},
		"/reports/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Get a report",
				"parameters": [
					{
						"type": "string",
						"description": "Report ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "type, severity or fixable",
						"name": "sort",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Issue type filter",
						"name": "type",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Severity filter",
						"name": "severity",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Only fixable issues",
						"name": "fixable",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/server.ReportResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			}
		},
		"/reports/{id}/export": {
			"get": {
				"produces": [
					"text/html"
				],
				"tags": [
					"reports"
				],
				"summary": "Export a report as a standalone HTML page",
				"parameters": [
					{
						"type": "string",
						"description": "Report ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "type, severity or fixable",
						"name": "sort",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Issue type filter",
						"name": "type",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Severity filter",
						"name": "severity",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Only fixable issues",
						"name": "fixable",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "string"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			}
		},
		"/reports/{id}/compare/{otherID}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Compare two reports",
				"parameters": [
					{
						"type": "string",
						"description": "Base report ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Head report ID",
						"name": "otherID",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/report.Delta"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			}
		},
		"/reports/{id}/highlight": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Highlight or focus an element of a scanned page",
				"parameters": [
					{
						"type": "string",
						"description": "Report ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Element path from an issue",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/server.PathRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/server.PointResponse"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			}
		},
		"/reports/{id}/focus": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Highlight or focus an element of a scanned page",
				"parameters": [
					{
						"type": "string",
						"description": "Report ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Element path from an issue",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/server.PathRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/server.PointResponse"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			}
		},
		"/jobs/scan": {
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"jobs"
				],
				"summary": "Start a background scan",
				"parameters": [
					{
						"description": "What to scan",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/server.ScanRequest"
						}
					}
				],
				"responses": {
					"202": {
						"description": "Accepted",
						"schema": {
							"$ref": "#/definitions/app.Job"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			}
		},
		"/jobs": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"jobs"
				],
				"summary": "List jobs",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/app.Job"
							}
						}
					}
				}
			}
		},
		"/jobs/{jobID}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"jobs"
				],
				"summary": "Get a job",
				"parameters": [
					{
						"type": "string",
						"description": "Job ID",
						"name": "jobID",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/app.Job"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/server.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"jobs"
				],
				"summary": "Cancel a job",
				"parameters": [
					{
						"type": "string",
						"description": "Job ID",
						"name": "jobID",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					}
				}
			}
		}
	},
	"definitions": {
		"scanner.Issue": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"type": {
					"type": "string",
					"example": "Images"
				},
				"severity": {
					"type": "string",
					"example": "high"
				},
				"message": {
					"type": "string"
				},
				"snippet": {
					"type": "string"
				},
				"tip": {
					"type": "string"
				},
				"path": {
					"type": "string"
				},
				"fixable": {
					"type": "boolean"
				}
			}
		},
		"server.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string",
					"example": "report not found"
				}
			}
		},
		"server.PathRequest": {
			"type": "object",
			"properties": {
				"path": {
					"type": "string",
					"example": "main > img:nth-of-type(2)"
				}
			}
		},
		"server.PointResponse": {
			"type": "object",
			"properties": {
				"ok": {
					"type": "boolean",
					"example": true
				},
				"found": {
					"type": "boolean",
					"example": true
				}
			}
		},
		"server.ScanRequest": {
			"type": "object",
			"properties": {
				"url": {
					"type": "string",
					"example": "http://localhost:9999/images"
				},
				"html": {
					"type": "string",
					"example": "<html><body><img src=\"a.png\"></body></html>"
				},
				"source": {
					"type": "string",
					"example": "pasted"
				},
				"mode": {
					"type": "string",
					"example": "static"
				}
			}
		},
		"server.ReportResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"source": {
					"type": "string"
				},
				"mode": {
					"type": "string"
				},
				"scanned_at": {
					"type": "string"
				},
				"tier": {
					"type": "string",
					"example": "AA"
				},
				"checked": {
					"type": "integer"
				},
				"passed": {
					"type": "integer"
				},
				"score": {
					"type": "number"
				},
				"counts": {
					"type": "object",
					"additionalProperties": {
						"type": "integer"
					}
				},
				"issues": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/scanner.Issue"
					}
				},
				"error": {
					"type": "string"
				}
			}
		},
		"reportstore.Summary": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"source": {
					"type": "string"
				},
				"mode": {
					"type": "string"
				},
				"scanned_at": {
					"type": "string"
				},
				"score": {
					"type": "number"
				},
				"checked": {
					"type": "integer"
				},
				"passed": {
					"type": "integer"
				},
				"issues": {
					"type": "integer"
				},
				"error": {
					"type": "string"
				}
			}
		},
		"report.Chunk": {
			"type": "object",
			"properties": {
				"type": {
					"type": "string",
					"example": "added"
				},
				"content": {
					"type": "string"
				}
			}
		},
		"report.Delta": {
			"type": "object",
			"properties": {
				"base_id": {
					"type": "string"
				},
				"head_id": {
					"type": "string"
				},
				"base_score": {
					"type": "number"
				},
				"head_score": {
					"type": "number"
				},
				"score_delta": {
					"type": "number"
				},
				"new": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/scanner.Issue"
					}
				},
				"resolved": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/scanner.Issue"
					}
				},
				"unchanged": {
					"type": "integer"
				},
				"chunks": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/report.Chunk"
					}
				}
			}
		},
		"app.Job": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"type": {
					"type": "string",
					"example": "scan"
				},
				"target": {
					"type": "string"
				},
				"mode": {
					"type": "string"
				},
				"status": {
					"type": "string",
					"example": "running"
				},
				"error": {
					"type": "string"
				},
				"started_at": {
					"type": "string"
				},
				"ended_at": {
					"type": "string"
				},
				"report_id": {
					"type": "string"
				},
				"summary": {
					"$ref": "#/definitions/reportstore.Summary"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Vertex API",
	Description:      "Accessibility scans of web pages: scan, inspect, export and compare reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
