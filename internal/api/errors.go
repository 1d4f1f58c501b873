package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"orion/internal/errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes an error as the JSON envelope, mapping OrionError
// codes to statuses.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Error: err.Error(),
		Code:  string(errors.InternalError),
	}

	var orionErr *errors.OrionError
	if stderrors.As(err, &orionErr) {
		resp.Error = orionErr.Message
		resp.Code = string(orionErr.Code)
		resp.Details = orionErr.Details
	}

	WriteJSON(w, resp, StatusForCode(errors.ErrorCode(resp.Code)))
}

// StatusForCode maps error codes to HTTP status codes.
func StatusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.QueryTooShort, errors.QueryTooLong:
		return http.StatusBadRequest // 400
	case errors.PolicyViolation, errors.UserBlocked:
		return http.StatusForbidden // 403
	case errors.RateLimited:
		return http.StatusTooManyRequests // 429
	case errors.UpstreamFailure:
		return http.StatusBadGateway // 502
	case errors.InternalError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, ErrorResponse{Error: message, Code: "BAD_REQUEST"}, http.StatusBadRequest)
}

func writeInternalError(w http.ResponseWriter, message string) {
	WriteJSON(w, ErrorResponse{Error: message, Code: string(errors.InternalError)}, http.StatusInternalServerError)
}
