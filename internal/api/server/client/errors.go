package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind classifies a caller-visible failure of a streaming call.
type Kind int

const (
	// KindTransport: the request could not be issued at all.
	KindTransport Kind = iota
	KindAuthentication
	KindRateLimit
	KindAPI
	// KindStreamRead: the response was accepted but reading its body failed.
	// Deltas may already have been delivered.
	KindStreamRead
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindAPI:
		return "api"
	case KindStreamRead:
		return "stream_read"
	default:
		return "unknown"
	}
}

const (
	MsgInvalidAPIKey = "Invalid API key, please check that your key is correct."
	MsgRateLimited   = "Too many API requests, please try again later."
	MsgStreamRead    = "Failed to read the data stream, please try again."
	MsgConnection    = "Network connection failed, please check your network connection."
	msgUnknownAPI    = "unknown error"
)

// Error is the terminal failure of a streaming call. Message is the
// human-readable text handed to callers.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// classifyResponse maps a non-2xx response to an Error. 401 and 429 have
// fixed messages; anything else surfaces error.message from a JSON body or
// falls back to the raw status.
func classifyResponse(response *http.Response) *Error {
	switch response.StatusCode {
	case http.StatusUnauthorized:
		return &Error{Kind: KindAuthentication, Status: response.StatusCode, Message: MsgInvalidAPIKey}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimit, Status: response.StatusCode, Message: MsgRateLimited}
	}

	var body *apiErrorBody
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil || body == nil {
		return &Error{
			Kind:    KindAPI,
			Status:  response.StatusCode,
			Message: fmt.Sprintf("HTTP error: %d", response.StatusCode),
			Err:     err,
		}
	}

	message := msgUnknownAPI
	if body.Error != nil && body.Error.Message != "" {
		message = body.Error.Message
	}
	return &Error{
		Kind:    KindAPI,
		Status:  response.StatusCode,
		Message: "API error: " + message,
	}
}
