package mailbox

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID is a best-effort identifier for the calling goroutine,
// used only to detect a handler re-entering its own mailbox with a
// blocking call. It is not a supported Go API; if the stack trace
// format ever changes, goroutineID degrades to returning 0, which just
// disables reentrancy detection rather than misbehaving.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if idx := bytes.IndexByte(b, ' '); idx >= 0 {
		b = b[:idx]
	}

	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
