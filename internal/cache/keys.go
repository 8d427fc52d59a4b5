package cache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// NamespacePregen prefixes precomputed-batch keys.
	NamespacePregen = "pregen"
	// NamespaceStatus prefixes generation-status keys.
	NamespaceStatus = "status"
)

// Contract-violation errors. These are the only errors the cache layer
// propagates to callers; everything backend-related is swallowed.
var (
	ErrInvalidKey  = errors.New("topic and user ids must be positive")
	ErrInvalidTTL  = errors.New("ttl must be positive")
	ErrEmptyStatus = errors.New("status must not be empty")
)

// Key identifies one cache entry: a namespace ("pregen" or "status")
// plus the (topic, user) pair. The string form is injective because
// both ids are decimal integers and the separator never appears in
// them.
type Key struct {
	Namespace string
	TopicID   int64
	UserID    int64
}

// String renders the final store key: <namespace>:<topic_id>:<user_id>.
func (k Key) String() string {
	return k.Namespace + ":" + strconv.FormatInt(k.TopicID, 10) + ":" + strconv.FormatInt(k.UserID, 10)
}

// Validate rejects non-positive ids before any backend interaction.
func (k Key) Validate() error {
	if k.TopicID <= 0 || k.UserID <= 0 {
		return fmt.Errorf("%w: topic=%d user=%d", ErrInvalidKey, k.TopicID, k.UserID)
	}
	return nil
}

func pregenKey(topicID, userID int64) Key {
	return Key{Namespace: NamespacePregen, TopicID: topicID, UserID: userID}
}

func statusKey(topicID, userID int64) Key {
	return Key{Namespace: NamespaceStatus, TopicID: topicID, UserID: userID}
}

// parseKey is the inverse of Key.String, used by the logging decorator
// to attach structured fields without threading the parts through.
func parseKey(key string) (Key, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return Key{}, false
	}
	topicID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Key{}, false
	}
	userID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Key{}, false
	}
	return Key{Namespace: parts[0], TopicID: topicID, UserID: userID}, true
}
