package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey returns "<stage>:<sha256>" over the JSON form of parts. Option
// values that JSON cannot encode, such as infinities, are hashed through
// their fmt form instead, which prints maps in key order.
func hashKey(stage string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = fmt.Appendf(nil, "%#v", parts)
	}
	return stage + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Graph and layout hashes that feed
// the keys are computed with it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
