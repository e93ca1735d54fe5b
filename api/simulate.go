package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SimulateRequest is the body accepted by POST /api/simulate
type SimulateRequest struct {
	Input string `json:"input"`
}

// SimulateResponse is the success body of POST /api/simulate
type SimulateResponse struct {
	Result string `json:"result"`
}

// Issue describes one schema violation in a simulate request
type Issue struct {
	Code    string        `json:"code"`
	Path    []interface{} `json:"path"`
	Message string        `json:"message"`
}

// ProblemResponse is the 400 body for requests that are not a usable
// {"input": "..."} object. Received echoes the raw body.
type ProblemResponse struct {
	Error    string  `json:"error"`
	Issues   []Issue `json:"issues,omitempty"`
	Received string  `json:"received"`
}

// InvalidJSONResponse is returned when the body is not JSON at all
func InvalidJSONResponse(received string) *ProblemResponse {
	return &ProblemResponse{
		Error:    "Invalid or missing JSON input.",
		Received: received,
	}
}

func invalidFormat(received string, issue Issue) *ProblemResponse {
	return &ProblemResponse{
		Error:    "Invalid input format",
		Issues:   []Issue{issue},
		Received: received,
	}
}

// decodeSimulateRequest extracts the mission text from a raw request body.
// A nil problem means input is ready for the parser.
func decodeSimulateRequest(raw []byte) (string, *ProblemResponse) {
	received := string(raw)

	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", InvalidJSONResponse(received)
	}

	obj, ok := body.(map[string]interface{})
	if !ok {
		return "", invalidFormat(received, Issue{
			Code:    "invalid_type",
			Path:    []interface{}{},
			Message: fmt.Sprintf("Expected object, received %s", jsonKind(body)),
		})
	}

	value, present := obj["input"]
	if !present || value == nil {
		return "", invalidFormat(received, Issue{
			Code:    "invalid_type",
			Path:    []interface{}{"input"},
			Message: "Required",
		})
	}

	input, ok := value.(string)
	if !ok {
		return "", invalidFormat(received, Issue{
			Code:    "invalid_type",
			Path:    []interface{}{"input"},
			Message: fmt.Sprintf("Expected string, received %s", jsonKind(value)),
		})
	}

	if strings.TrimSpace(input) == "" {
		return "", invalidFormat(received, Issue{
			Code:    "too_small",
			Path:    []interface{}{"input"},
			Message: "String must contain at least 1 character(s)",
		})
	}

	return input, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	default:
		return "object"
	}
}
