package services

import (
	"errors"
	"fmt"
	"net/http"

	"loto/internal/lotoapi"
)

// ErrorKind classifies a failed ticket submission. The set is closed.
type ErrorKind int

const (
	ValidationError ErrorKind = iota + 1
	AuthError
	BadRequestError
	ServerError
	UnknownError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation_error"
	case AuthError:
		return "auth_error"
	case BadRequestError:
		return "bad_request_error"
	case ServerError:
		return "server_error"
	case UnknownError:
		return "unknown_error"
	default:
		return fmt.Sprintf("error_kind(%d)", int(k))
	}
}

// User-visible messages.
const (
	MsgOwnerIDRequired = "Molimo unesite broj osobne iskaznice ili putovnice"
	MsgNumbersRequired = "Molimo unesite brojeve odvojene zarezom"
	MsgNotLoggedIn     = "Niste prijavljeni. Molimo prijavite se ponovno."
	MsgInvalidNumbers  = "Neispravni podaci. Provjerite unesene brojeve."
	MsgSubmitFailed    = "Greška pri uplati listića. Pokušajte ponovno."
)

// SubmissionError is the classified outcome of a failed submission.
// Message is what the user sees; Err keeps the underlying cause for logs.
type SubmissionError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a *SubmissionError in err's chain, or UnknownError.
func KindOf(err error) ErrorKind {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Kind
	}
	return UnknownError
}

func validationError(field string) *SubmissionError {
	msg := MsgOwnerIDRequired
	if field == "numbers" {
		msg = MsgNumbersRequired
	}
	return &SubmissionError{Kind: ValidationError, Message: msg}
}

func tokenError(err error) *SubmissionError {
	return &SubmissionError{Kind: AuthError, Message: MsgNotLoggedIn, Err: err}
}

// classifySubmitError maps a transport failure from the ticket endpoint onto the error taxonomy.
func classifySubmitError(err error) *SubmissionError {
	var apiErr *lotoapi.APIError
	if !errors.As(err, &apiErr) {
		return &SubmissionError{Kind: UnknownError, Message: MsgSubmitFailed, Err: err}
	}

	se := &SubmissionError{Status: apiErr.Status, Err: err}
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		se.Kind, se.Message = AuthError, MsgNotLoggedIn
	case apiErr.Status == http.StatusBadRequest:
		se.Kind, se.Message = BadRequestError, MsgInvalidNumbers
		if apiErr.Detail != "" {
			se.Message = apiErr.Detail
		}
	case apiErr.Detail != "":
		se.Kind, se.Message = ServerError, apiErr.Detail
	default:
		se.Kind, se.Message = UnknownError, MsgSubmitFailed
	}
	return se
}
