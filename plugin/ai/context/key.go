package context

import (
	"net/url"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/hrygo/emocontext/plugin/ai/memory"
)

const (
	cacheKeyPrefix = "emoctx"
	defaultGoal    = "default"
)

// Fingerprint identifies a record set by its size and newest timestamp.
// Any record added or replaced with a later timestamp changes it.
func Fingerprint(records []memory.Record) string {
	var newest int64
	for i := range records {
		if ts := records[i].Timestamp.UnixNano(); i == 0 || ts > newest {
			newest = ts
		}
	}
	buf := strconv.AppendInt(nil, int64(len(records)), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, newest, 10)
	return strconv.FormatUint(xxhash.Sum64(buf), 16)
}

// CacheKey builds emoctx:<participant>:<goal>:<detail>[-<maxTokens>]:<fingerprint>.
// The participant is escaped so it cannot contain the separator or wildcard.
func CacheKey(participantID, goal string, level DetailLevel, maxTokens int, fingerprint string) string {
	if goal == "" {
		goal = defaultGoal
	}
	detail := string(level.normalized())
	if maxTokens > 0 {
		detail += "-" + strconv.Itoa(maxTokens)
	}
	return cacheKeyPrefix + ":" + url.QueryEscape(participantID) + ":" + url.QueryEscape(goal) + ":" + detail + ":" + fingerprint
}

// ParticipantPattern matches every cached bundle of a participant.
func ParticipantPattern(participantID string) string {
	return cacheKeyPrefix + ":" + url.QueryEscape(participantID) + ":*"
}
