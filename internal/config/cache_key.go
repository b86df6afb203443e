package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StaffSessionKey returns the cache key for a staff user's login session JTI.
func (r *CacheKeyStruct) StaffSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// OAuthStateKey returns the cache key for a pending OAuth state value.
func (r *CacheKeyStruct) OAuthStateKey(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}

// OAuthCodeKey returns the cache key marking an authorization code as consumed.
func (r *CacheKeyStruct) OAuthCodeKey(codeHash string) string {
	return fmt.Sprintf("oauth:code:%s", codeHash)
}

// SessionContextKey returns the cache key binding a test session to the first
// client context that accessed it.
func (r *CacheKeyStruct) SessionContextKey(sessionID int) string {
	return fmt.Sprintf("test:session:%d:context", sessionID)
}

// ChatChannel returns the Redis PubSub channel name for a chat between two
// staff users. The lower ID always comes first so both sides subscribe to
// the same channel.
func (r *CacheKeyStruct) ChatChannel(userA, userB int) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("chat:%d:%d", userA, userB)
}

var CacheKey = NewCacheKeyStruct()
