package types

import (
	"errors"
	"strings"
)

// Java exception class names reported by the namenode.
const (
	SubjectAccessDenied  = "org.apache.hadoop.security.AccessControlException"
	SubjectAlreadyExists = "org.apache.hadoop.fs.FileAlreadyExistsException"
	SubjectNotFound      = "java.io.FileNotFoundException"
	SubjectStandby       = "org.apache.hadoop.ipc.StandbyException"
	SubjectIO            = "java.io.IOException"
)

// Kind is the category of a failure surfaced to the user.
type Kind int

const (
	// KindUnknown is any error that is not a RemoteError.
	KindUnknown Kind = iota

	// KindNotFound indicates the target path does not exist.
	KindNotFound

	// KindAccessDenied indicates a permission failure.
	KindAccessDenied

	// KindAlreadyExists indicates a creation conflict.
	KindAlreadyExists

	// KindGenericRemoteFailure is any other classified remote error.
	KindGenericRemoteFailure

	// KindInvariantViolation is a programming error.
	KindInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindAccessDenied:
		return "AccessDenied"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindGenericRemoteFailure:
		return "GenericRemoteFailure"
	case KindInvariantViolation:
		return "InvariantViolation"
	default:
		return "Unknown"
	}
}

// oneLiners are the subjects whose errors print only the first body line.
var oneLiners = map[string]Kind{
	SubjectAccessDenied:  KindAccessDenied,
	SubjectAlreadyExists: KindAlreadyExists,
	SubjectNotFound:      KindNotFound,
}

// ErrInvariantViolation marks programming errors such as normalizing a
// relative path.
var ErrInvariantViolation = errors.New("invariant violation")

// RemoteError is a classified failure: a short subject (an exception class
// name) and an optional multi-line body.
type RemoteError struct {
	Subject string
	Body    string

	// kind overrides the subject-derived kind for locally raised errors.
	kind Kind
}

// NewNotFound builds the error raised when a required path is absent.
func NewNotFound(path string) *RemoteError {
	return &RemoteError{
		Subject: "File/directory does not exist: " + path,
		kind:    KindNotFound,
	}
}

// Error renders the message the user sees.
func (e *RemoteError) Error() string {
	if _, ok := oneLiners[e.Subject]; ok {
		line, _, _ := strings.Cut(e.Body, "\n")
		return line
	}
	if e.Body == "" {
		return e.Subject
	}
	return e.Subject + "\n" + e.Body
}

// Kind classifies the error.
func (e *RemoteError) Kind() Kind {
	if e.kind != KindUnknown {
		return e.kind
	}
	if k, ok := oneLiners[e.Subject]; ok {
		return k
	}
	return KindGenericRemoteFailure
}

// KindOf classifies any error, unwrapping to the first RemoteError.
func KindOf(err error) Kind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind()
	}
	if errors.Is(err, ErrInvariantViolation) {
		return KindInvariantViolation
	}
	return KindUnknown
}

// IsAccessDenied reports whether err carries the access-denied subject.
func IsAccessDenied(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Subject == SubjectAccessDenied
}

// Render returns the single message printed for err at the process
// boundary. Wrapping context is dropped for classified remote errors.
func Render(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Error()
	}
	return err.Error()
}
