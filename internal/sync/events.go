package sync

// ProgressEvent reports one processed item during a folder-tracking walk.
// Events with a non-nil Err describe items that were skipped; the walk
// continues past them.
type ProgressEvent struct {
	ID       string
	Name     string
	RelPath  string
	IsFolder bool
	Err      error
}

// Notifier receives asynchronous progress events from long-running engine
// operations. Implementations must not block for long; the engine calls
// Progress inline from the operation's goroutine.
type Notifier interface {
	Progress(ProgressEvent)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Progress implements Notifier.
func (NopNotifier) Progress(ProgressEvent) {}
