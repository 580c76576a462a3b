package composite

import "fmt"

// Kind classifies an error raised anywhere in the composite device event
// loop into one of a small, enumerated set, the way apitypes.ApiError
// enumerates a closed set of problem statuses rather than letting raw
// error strings leak to callers. The event loop never unwinds on an
// error; it always narrows the error to a Kind first and decides locally
// whether to log-and-continue, drop the offending source/target, or
// escalate to a full composite-device shutdown.
type Kind int

const (
	// KindTransientIO is a one-off I/O hiccup (EAGAIN, a short read) that
	// is expected to resolve on the next loop iteration.
	KindTransientIO Kind = iota
	// KindDeviceGone means the source or target's underlying fd/node
	// disappeared (ENODEV, ENOENT) — unrecoverable for that device, but
	// not for the composite device as a whole.
	KindDeviceGone
	// KindProtocol means the peer sent something the wire decoder
	// couldn't parse (a malformed uhid event, an unexpected report
	// length) — the device is still present but out of sync.
	KindProtocol
	// KindFatal means the composite device itself can no longer make
	// progress (e.g. its event bus channel was closed).
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindTransientIO:
		return "transient-io"
	case KindDeviceGone:
		return "device-gone"
	case KindProtocol:
		return "protocol"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ClassifiedError pairs an error with its Kind so the event loop can
// switch on Kind without re-deriving it from the error text.
type ClassifiedError struct {
	Kind Kind
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classify wraps err with the given Kind. A nil err returns nil, so call
// sites can write `return Classify(KindDeviceGone, err)` unconditionally
// after an operation that may or may not have failed.
func Classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindFatal for any
// error that was never classified — an unclassified error reaching the
// event loop is itself a bug, and treating it as fatal surfaces that
// loudly instead of silently downgrading it to "transient".
func KindOf(err error) Kind {
	var ce *ClassifiedError
	if asClassifiedError(err, &ce) {
		return ce.Kind
	}
	return KindFatal
}

func asClassifiedError(err error, target **ClassifiedError) bool {
	for err != nil {
		if ce, ok := err.(*ClassifiedError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
