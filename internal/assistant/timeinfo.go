package assistant

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	humanTimeLayout = "Monday, January 2, 2006 at 03:04:05 PM MST"
	isoLayout       = "2006-01-02T15:04:05.000Z07:00"
)

// localtimePath is the link the system zone is read from when TZ is unset.
var localtimePath = "/etc/localtime"

// CurrentTimeInfo renders the time context block that heads every assistant answer.
//
//	Current time: Monday, January 15, 2024 at 09:05:03 AM UTC
//	ISO format: 2024-01-15T09:05:03.000Z
//	Timezone: UTC
func CurrentTimeInfo(now time.Time) string {
	return fmt.Sprintf("Current time: %s\nISO format: %s\nTimezone: %s",
		now.Format(humanTimeLayout),
		now.UTC().Format(isoLayout),
		now.Location().String(),
	)
}

// LocalLocation returns the process time zone under its IANA name. time.Local
// is named "Local", so the name is recovered from TZ or the /etc/localtime
// link. time.Local is returned when neither names a loadable zone.
func LocalLocation() *time.Location {
	for _, name := range []string{tzFromEnv(), tzFromLink(localtimePath)} {
		if name == "" || name == "Local" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.Local
}

func tzFromEnv() string {
	return strings.TrimPrefix(os.Getenv("TZ"), ":")
}

// tzFromLink extracts "Area/City" from a link into a zoneinfo directory.
func tzFromLink(path string) string {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	_, name, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/")
	if !ok {
		return ""
	}
	return name
}
