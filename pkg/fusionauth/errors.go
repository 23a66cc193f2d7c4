package fusionauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies a failure into a user-facing category.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidCredentials
	KindServiceUnavailable
	KindNetwork
	KindTokenExpiredOrInvalid
	KindInvalidResponse
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindNetwork:
		return "network_error"
	case KindTokenExpiredOrInvalid:
		return "token_expired_or_invalid"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Label is the wire form of k: String for failures, empty for KindNone.
func (k Kind) Label() string {
	if k == KindNone {
		return ""
	}
	return k.String()
}

// ParseKind is the inverse of Kind.Label. Unrecognised labels map to
// KindUnknown and the empty string to KindNone.
func ParseKind(s string) Kind {
	for k := KindNone; k < KindUnknown; k++ {
		if k.String() == s {
			return k
		}
	}
	if s == "" {
		return KindNone
	}
	return KindUnknown
}

// Step names a stage of the login walk.
type Step string

const (
	StepValidate         Step = "validate"
	StepSessionInit      Step = "session_init"
	StepExecutionFetch   Step = "execution_fetch"
	StepCredentialSubmit Step = "credential_submit"
	StepTokenExchange    Step = "token_exchange"
	StepBarcode          Step = "barcode"
)

// User-facing messages.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgUsernameRequired   = "Username is required"
	MsgPasswordRequired   = "Password is required"
	MsgNetwork            = "Network error. Please check your connection and try again."
	MsgServiceUnavailable = "Authentication service is unavailable. Please try again later."
	MsgTokenExpired       = "Your session has expired. Please sign in again."
	MsgInvalidResponse    = "Received an unexpected response. Please try again."
	MsgUnknown            = "Something went wrong. Please try again."
	MsgBarcodeRetry       = "Unable to load barcode. Tap refresh to try again."
)

// Error is the single error type returned by this package.
type Error struct {
	Kind    Kind
	Step    Step
	Message string // optional detail, shown for KindUnknown
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Step != "" {
		msg = string(e.Step) + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by Kind, and by Step when the sentinel names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.sentinel() {
		return false
	}
	if t.Step != "" && t.Step != e.Step {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) sentinel() bool {
	return e.Message == "" && e.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials}
	ErrServiceUnavailable    = &Error{Kind: KindServiceUnavailable}
	ErrNetwork               = &Error{Kind: KindNetwork}
	ErrTokenExpiredOrInvalid = &Error{Kind: KindTokenExpiredOrInvalid}
	ErrInvalidResponse       = &Error{Kind: KindInvalidResponse}
	ErrUnknown               = &Error{Kind: KindUnknown}

	// ErrExtraction means the CAS page had no usable execution field.
	ErrExtraction = &Error{Kind: KindServiceUnavailable, Step: StepExecutionFetch}

	// ErrTokenExchange means login-finish answered without a token header.
	ErrTokenExchange = &Error{Kind: KindServiceUnavailable, Step: StepTokenExchange}
)

func newError(kind Kind, step Step, format string, args ...any) *Error {
	return &Error{Kind: kind, Step: step, Message: fmt.Sprintf(format, args...)}
}

// transportError classifies a failure returned by http.Client.Do.
func transportError(step Step, err error) *Error {
	return &Error{Kind: KindNetwork, Step: step, Err: err}
}

// classify maps any error onto the package taxonomy so that callers never see
// a raw transport error.
func classify(step Step, err error) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	var (
		netErr net.Error
		urlErr *url.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr),
		errors.As(err, &urlErr):
		return transportError(step, err)
	}

	return &Error{Kind: KindUnknown, Step: step, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err, KindNone for nil and KindUnknown for
// errors from outside this package.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// UserMessage maps err to a string that is safe to show an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var fe *Error
	if !errors.As(err, &fe) {
		return MsgUnknown
	}

	switch fe.Kind {
	case KindInvalidCredentials:
		if fe.Step == StepValidate && fe.Message != "" {
			return fe.Message
		}
		return MsgInvalidCredentials
	case KindNetwork:
		return MsgNetwork
	case KindServiceUnavailable:
		return MsgServiceUnavailable
	case KindTokenExpiredOrInvalid:
		return MsgTokenExpired
	case KindInvalidResponse:
		return MsgInvalidResponse
	default:
		if fe.Message != "" {
			return fe.Message
		}
		return MsgUnknown
	}
}

// barcodeMessage collapses barcode failures into the retry message, keeping
// network failures distinct.
func barcodeMessage(err error) string {
	if KindOf(err) == KindNetwork {
		return MsgNetwork
	}
	return MsgBarcodeRetry
}
