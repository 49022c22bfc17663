package entities

// Default matching thresholds. They were tuned empirically to suppress false
// positives and must stay as they are for matching to behave the same.
const (
	DefaultTitleMaxLen      = 80
	DefaultTitleKeep        = 77
	DefaultSessionKeyLen    = 30
	DefaultSessionMinKeyLen = 25
	DefaultMinNameLen       = 6
)

type options struct {
	titleMaxLen      int
	titleKeep        int
	sessionKeyLen    int
	sessionMinKeyLen int
	minNameLen       int
}

// Option tunes an Index.
type Option func(*options)

func defaultOptions() options {
	return options{
		titleMaxLen:      DefaultTitleMaxLen,
		titleKeep:        DefaultTitleKeep,
		sessionKeyLen:    DefaultSessionKeyLen,
		sessionMinKeyLen: DefaultSessionMinKeyLen,
		minNameLen:       DefaultMinNameLen,
	}
}

// WithTitleTruncation sets the title length above which only the first keep
// characters are matched on.
func WithTitleTruncation(maxLen, keep int) Option {
	return func(o *options) {
		if maxLen > 0 && keep > 0 && keep <= maxLen {
			o.titleMaxLen = maxLen
			o.titleKeep = keep
		}
	}
}

// WithSessionKey sets the session match key length and the shortest key
// still allowed to match.
func WithSessionKey(length, minLength int) Option {
	return func(o *options) {
		if length > 0 && minLength > 0 && minLength <= length {
			o.sessionKeyLen = length
			o.sessionMinKeyLen = minLength
		}
	}
}

// WithMinNameLen sets the shortest speaker or exhibitor name that can match.
func WithMinNameLen(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minNameLen = n
		}
	}
}
