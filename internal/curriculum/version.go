package curriculum

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// ErrStaleVersion is returned when a reload would move the curriculum to an
// older version.
var ErrStaleVersion = errors.New("curriculum version is older than the loaded one")

// CheckUpgrade reports whether next may replace cur. Reinstalling the same
// version is allowed; a nil cur accepts anything.
func CheckUpgrade(cur, next *Catalog) error {
	if cur != nil && semver.Compare(next.Version(), cur.Version()) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrStaleVersion, next.Version(), cur.Version())
	}
	return nil
}
