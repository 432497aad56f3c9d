package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// Default messages for statuses the service answers with a JSON
// {"message": "..."} body.
const (
	msgBadRequest   = "Bad request"
	msgUnauthorized = "Invalid Application-ID or API-Key"
	msgNotFound     = "Resource does not exist"
)

// JSON parse failure messages, one per failure class.
const (
	msgJSONDepth     = "JSON parsing error: maximum stack depth exceeded"
	msgJSONCtrlChar  = "JSON parsing error: unexpected control character found"
	msgJSONSyntax    = "JSON parsing error: syntax error, malformed JSON"
	msgJSONUnderflow = "JSON parsing error: underflow or the modes mismatch"
	msgJSONUTF8      = "JSON parsing error: malformed UTF-8 characters, possibly incorrectly encoded"
)

// classify turns the result of one attempt into a response, a soft fail
// (nil, nil) or an [Error]. A soft fail means this host cannot serve the
// request right now and the next one should be tried.
func classify(r *resty.Response, err error) (*Response, *Error) {
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}

	status := r.StatusCode()
	body := r.Body()

	switch status {
	case 0, http.StatusServiceUnavailable:
		return nil, nil
	case http.StatusBadRequest:
		return nil, statusError(status, body, msgBadRequest, ErrBadRequest)
	case http.StatusForbidden:
		return nil, statusError(status, body, msgUnauthorized, ErrUnauthorized)
	case http.StatusNotFound:
		return nil, statusError(status, body, msgNotFound, ErrNotFound)
	case http.StatusOK, http.StatusCreated:
	default:
		return nil, &Error{Kind: KindTransport, StatusCode: status, Body: body, Err: ErrUnexpectedStatus}
	}

	data, parseErr := parseBody(body)
	if parseErr != nil {
		parseErr.StatusCode = status
		return nil, parseErr
	}

	// A JSON null carries no answer; the next host may have one.
	if data == nil {
		return nil, nil
	}

	return &Response{StatusCode: status, Body: json.RawMessage(body), Data: data}, nil
}

func statusError(status int, body []byte, fallback string, sentinel error) *Error {
	e := serviceError(serverMessage(body), sentinel)
	if e.Message == "" {
		e.Message = fallback
	}
	e.StatusCode = status

	return e
}

// serverMessage extracts the "message" field of a JSON error body. It
// returns "" when the body is not a JSON object with a string message.
func serverMessage(body []byte) string {
	var answer struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &answer); err != nil || answer.Message == nil {
		return ""
	}

	return *answer.Message
}

// maxJSONDepth is the deepest array or object nesting a response may use.
const maxJSONDepth = 512

// parseBody decodes a success body into generic JSON values.
func parseBody(body []byte) (any, *Error) {
	if !utf8.Valid(body) {
		return nil, serviceError(msgJSONUTF8, ErrMalformedResponse)
	}

	var data any
	err := json.Unmarshal(body, &data)

	if msg := parseFailureMessage(body, err); msg != "" {
		e := serviceError(msg, ErrMalformedResponse)
		if err != nil {
			e.Err = errors.Join(ErrMalformedResponse, err)
		}
		return nil, e
	}

	return data, nil
}

// parseFailureMessage names the failure class of a body, or returns "" when
// the body is acceptable. Structural problems found by scanBrackets win when
// they occur no later than the decoder's own error.
func parseFailureMessage(body []byte, err error) string {
	var syntaxErr *json.SyntaxError
	isSyntax := errors.As(err, &syntaxErr)

	if scan := scanBrackets(body); scan.offset >= 0 {
		if err == nil || !isSyntax || int64(scan.offset) < syntaxErr.Offset {
			return scan.message
		}
	}

	switch {
	case err == nil:
		return ""
	case !isSyntax:
		return msgJSONSyntax
	case strings.Contains(syntaxErr.Error(), "in string literal"):
		return msgJSONCtrlChar
	default:
		return msgJSONSyntax
	}
}

type bracketScan struct {
	offset  int
	message string
}

// scanBrackets walks the array and object delimiters of body outside string
// literals. It reports the offset of the first closing delimiter that does
// not match its opener, or of the first opener nested deeper than
// maxJSONDepth. offset is -1 when neither occurs.
func scanBrackets(body []byte) bracketScan {
	var stack []byte
	inString, escaped := false, false

	for i, c := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			stack = append(stack, c)
			if len(stack) > maxJSONDepth {
				return bracketScan{offset: i, message: msgJSONDepth}
			}
		case ']', '}':
			opener := byte('[')
			if c == '}' {
				opener = '{'
			}
			if len(stack) == 0 || stack[len(stack)-1] != opener {
				return bracketScan{offset: i, message: msgJSONUnderflow}
			}
			stack = stack[:len(stack)-1]
		}
	}

	return bracketScan{offset: -1}
}
