package blob

import (
	"fmt"
	"strings"
)

// Path identifies one blob in the store. It is the mounted file path with
// the leading slash removed.
type Path string

// ParsePath converts a path under the mount root into a blob path.
// The store namespace is flat, so the root itself and nested paths are rejected.
func ParsePath(mountPath string) (Path, error) {
	id := strings.TrimPrefix(mountPath, "/")
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, mountPath)
	}
	return Path(id), nil
}

func (p Path) String() string {
	return string(p)
}
