package models

import "strings"

// Key layout shared with every deployment of the store.
const (
	createKeyPrefix = "poll:rate:create:"
	voteKeyPrefix   = "poll:rate:vote:"
)

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// to prevent key collision attacks where caller-controlled identifiers containing
// ':' could manipulate adjacent rate limit counters.
//
// Example: An identifier "abc:def" would become "abc_def", preventing
// it from being interpreted as a separate key segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// CreateKey is the poll-creation burst counter for one origin hash.
func CreateKey(originHash string) string {
	return createKeyPrefix + SanitizeKeySegment(originHash)
}

// VoteKey is the vote-attempt counter for one origin hash on one poll.
func VoteKey(pollID, originHash string) string {
	return voteKeyPrefix + SanitizeKeySegment(pollID) + ":" + SanitizeKeySegment(originHash)
}
