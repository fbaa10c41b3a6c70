package handler

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/infra/buildinfo"
)

func schemaRef(n int) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + domain.SchemaName(n)}
}

func errorResponse(description string) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}
}

// openAPIDocument describes the stream API. The fixed-size field schemas
// come from domain.Schemas so the published bounds match the decoder.
func openAPIDocument() map[string]any {
	schemas := map[string]any{
		"Message": map[string]any{
			"type":     "object",
			"required": []string{"signature", "data"},
			"properties": map[string]any{
				"signature": schemaRef(domain.SignatureSize),
				"data":      schemaRef(domain.DataSize),
			},
		},
		"StreamMessages": map[string]any{
			"type":     "object",
			"required": []string{"id", "messages"},
			"properties": map[string]any{
				"id": schemaRef(domain.StreamAddressSize),
				"messages": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/components/schemas/Message"},
				},
			},
		},
		"Error": map[string]any{
			"type":     "object",
			"required": []string{"code", "message", "request_id", "timestamp"},
			"properties": map[string]any{
				"code":       map[string]any{"type": "string"},
				"message":    map[string]any{"type": "string"},
				"request_id": map[string]any{"type": "string"},
				"timestamp":  map[string]any{"type": "integer", "format": "int64"},
				"details":    map[string]any{"type": "string"},
			},
		},
	}
	for _, s := range domain.Schemas() {
		schemas[s.Name] = map[string]any{
			"type":        "string",
			"format":      "base64url",
			"minLength":   s.Pattern.MinLength,
			"maxLength":   s.Pattern.MaxLength,
			"pattern":     s.Pattern.Regexp(),
			"description": s.Name,
		}
	}

	idParam := map[string]any{
		"name":        "id",
		"in":          "path",
		"required":    true,
		"description": "Stream address, base64url, padding optional.",
		"schema":      schemaRef(domain.StreamAddressSize),
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "sigstream",
			"version": buildinfo.Version,
		},
		"paths": map[string]any{
			"/streams/{id}/messages": map[string]any{
				"get": map[string]any{
					"operationId": "listMessages",
					"parameters": []any{
						idParam,
						map[string]any{
							"name":        "offset",
							"in":          "query",
							"description": "Index of the first message. Defaults to 0.",
							"schema":      map[string]any{"type": "integer", "minimum": 0, "maximum": uint32(math.MaxUint32)},
						},
						map[string]any{
							"name": "limit",
							"in":   "query",
							"description": "Index of the last message, inclusive. This is a stop index, " +
								"not a count. Defaults to 100.",
							"schema": map[string]any{"type": "integer", "minimum": 0, "maximum": math.MaxUint8},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Messages in insertion order.",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{"$ref": "#/components/schemas/StreamMessages"},
								},
							},
						},
						"404": errorResponse("Malformed stream address."),
						"500": errorResponse("Store failure or corrupt record."),
					},
				},
				"post": map[string]any{
					"operationId": "appendMessage",
					"parameters":  []any{idParam},
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{"$ref": "#/components/schemas/Message"},
							},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{"description": "Appended."},
						"404": errorResponse("Malformed stream address."),
						"422": errorResponse("Malformed message field or body."),
						"500": errorResponse("Store failure."),
					},
				},
			},
		},
		"components": map[string]any{"schemas": schemas},
	}
}

func buildOpenAPI() []byte {
	b, err := json.Marshal(openAPIDocument())
	if err != nil {
		panic("handler: openapi document: " + err.Error())
	}
	return b
}

// handleOpenAPI handles GET /openapi.json.
func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(h.openapi)
}
