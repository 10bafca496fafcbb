package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString produces the cache key for embedding and report lookups.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
