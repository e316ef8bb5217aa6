package models

// Store key and channel layout. These strings are shared with existing
// deployments and must not change.
const (
	pollKeyPrefix         = "poll:"
	PublicIndexKey        = "poll:index:public"
	fingerprintLockPrefix = "poll:vote:fp:"
	originLockPrefix      = "poll:vote:ip:"
	pollEventsPrefix      = "poll:events:"
	PollEventsPattern     = pollEventsPrefix + "*"
	PublicListChannel     = "poll:list:events"
)

// PollKey is where the poll document lives.
func PollKey(id string) string {
	return pollKeyPrefix + id
}

// FingerprintLockKey is the vote lock in the fingerprint namespace.
func FingerprintLockKey(pollID, fingerprintHash string) string {
	return fingerprintLockPrefix + pollID + ":" + fingerprintHash
}

// OriginLockKey is the vote lock in the network-origin namespace.
func OriginLockKey(pollID, originHash string) string {
	return originLockPrefix + pollID + ":" + originHash
}

// PollEventsChannel is the per-poll live update channel.
func PollEventsChannel(pollID string) string {
	return pollEventsPrefix + pollID
}

// PollIDFromChannel extracts the poll id from a per-poll channel name.
func PollIDFromChannel(channel string) (string, bool) {
	if len(channel) <= len(pollEventsPrefix) || channel[:len(pollEventsPrefix)] != pollEventsPrefix {
		return "", false
	}
	return channel[len(pollEventsPrefix):], true
}
