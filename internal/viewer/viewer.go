// Package viewer turns an incoming share link into either the decrypted
// secret or exactly one terminal error.
//
// A Viewer walks Loading → Decrypting → Displayed, dropping into Failed as
// soon as a step cannot continue. Both Displayed and Failed are terminal: a
// Viewer is used for a single page load and never retries.
package viewer

import (
	"errors"
	"net/url"
	"sync"

	"github.com/atinyakov/GophShare/internal/envelope"
	"github.com/atinyakov/GophShare/internal/share"
	"go.uber.org/zap"
)

var (
	// ErrMissingData means the link has no "d" parameter.
	ErrMissingData = errors.New("missing data")
	// ErrMissingKey means the link has no fragment.
	ErrMissingKey = errors.New("missing key")
	// ErrCorruptedLink means "d" could not be decoded into a payload.
	ErrCorruptedLink = errors.New("corrupted link")
	// ErrDecryptionFailed means the payload decoded but the key did not open it.
	ErrDecryptionFailed = envelope.ErrDecryptionFailed
)

// OneTimeNotice is shown next to secrets created with burn-after-view.
const OneTimeNotice = "This is a one-time secret"

// State is a step of the viewer state machine.
type State int

const (
	Loading State = iota
	Decrypting
	Displayed
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Decrypting:
		return "decrypting"
	case Displayed:
		return "displayed"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == Displayed || s == Failed
}

// Result is the outcome of a page load. Plaintext is only set when State is
// Displayed; Err is only set when State is Failed.
type Result struct {
	State         State
	Title         string
	Plaintext     string
	BurnAfterView bool
	Err           error
}

// Message returns the text shown to the recipient for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingData):
		return "Invalid secret link - missing data"
	case errors.Is(err, ErrMissingKey):
		return "Missing encryption key in URL"
	case errors.Is(err, ErrCorruptedLink):
		return "Failed to decode secret data. The link may be corrupted."
	case errors.Is(err, ErrDecryptionFailed):
		return "Failed to decrypt secret. The key may be invalid."
	default:
		return "Unable to display secret"
	}
}

// Viewer runs the state machine for one page load.
type Viewer struct {
	log    *zap.Logger
	mu     sync.Mutex
	state  State
	result Result
}

// New returns a Viewer in the Loading state.
func New(log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{log: log, state: Loading}
}

// State returns the current state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// OpenURL extracts "d" and the fragment from rawURL and calls Open.
func (v *Viewer) OpenURL(rawURL string) Result {
	u, err := url.Parse(rawURL)
	if err != nil {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.state.Terminal() {
			return v.result
		}
		return v.fail(ErrCorruptedLink)
	}
	return v.Open(u.Query().Get(share.DataParam), u.Fragment)
}

// Open runs the state machine on the raw "d" value and fragment key. Once a
// terminal state is reached later calls return the same Result.
func (v *Viewer) Open(data, key string) Result {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state.Terminal() {
		return v.result
	}

	if data == "" {
		return v.fail(ErrMissingData)
	}
	if key == "" {
		return v.fail(ErrMissingKey)
	}
	payload, ok := share.Decode(data)
	if !ok {
		return v.fail(ErrCorruptedLink)
	}

	v.transition(Decrypting)
	plaintext, err := envelope.Decrypt(payload.Envelope, key)
	if err != nil {
		return v.fail(ErrDecryptionFailed)
	}

	v.transition(Displayed)
	v.result = Result{
		State:         Displayed,
		Title:         payload.Title,
		Plaintext:     plaintext,
		BurnAfterView: payload.BurnAfterView,
	}
	return v.result
}

// Open is a convenience wrapper running a fresh Viewer on rawURL.
func Open(rawURL string) Result {
	return New(nil).OpenURL(rawURL)
}

func (v *Viewer) fail(err error) Result {
	v.transition(Failed)
	v.log.Debug("secret link rejected", zap.String("reason", err.Error()))
	v.result = Result{State: Failed, Err: err}
	return v.result
}

func (v *Viewer) transition(to State) {
	v.log.Debug("viewer transition", zap.Stringer("from", v.state), zap.Stringer("to", to))
	v.state = to
}
