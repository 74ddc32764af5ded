package index

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Cache is a persisted Map as read from disk.
type Cache struct {
	Classes Map
	// Location is the sentinel value recorded at build time. HasMarker is
	// false when the file carried no sentinel at all.
	Location  string
	HasMarker bool
	ModTime   time.Time
}

// Load reads the cache file at path. sentinelKey is removed from the
// returned Classes and reported through Location.
//
// A missing file yields an error satisfying errors.Is(err, fs.ErrNotExist);
// a file that is not a JSON object of strings yields ErrInvalidCache.
func Load(path, sentinelKey string) (*Cache, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat cache %s: %w", path, err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read cache %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidCache, path, err)
	}

	c := &Cache{Classes: make(Map, len(raw)), ModTime: st.ModTime()}
	for name, file := range raw {
		if name == sentinelKey {
			c.Location = file
			c.HasMarker = true
			continue
		}
		c.Classes[name] = file
	}
	return c, nil
}
