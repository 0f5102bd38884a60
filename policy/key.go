package policy

// KeyPolicy controls whether the user key itself travels with the
// request or only its digest.
type KeyPolicy int

const (
	// KeyDigestOnly sends the 20-byte digest and nothing else. The
	// server cannot reconstruct the original key.
	KeyDigestOnly KeyPolicy = iota

	// KeySend attaches the user key alongside the digest so the server
	// can store it with the record.
	KeySend
)

// String returns the string representation of the key policy.
func (p KeyPolicy) String() string {
	switch p {
	case KeyDigestOnly:
		return "digest"
	case KeySend:
		return "send"
	default:
		return ""
	}
}
