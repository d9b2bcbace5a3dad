package repository

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	folioMu         sync.Mutex
	lastFolioMillis int64
)

// GenerateFolio returns the next human-facing quote reference code:
// "F" followed by the millisecond timestamp in upper-case base36.
//
// Within a process the clock value is bumped when two calls land on the
// same millisecond, so the sequence is strictly increasing and a
// unique-conflict retry always produces a fresh code. Collisions across
// processes are caught by the unique index on quotes.folio.
func GenerateFolio() string {
	folioMu.Lock()
	defer folioMu.Unlock()

	millis := time.Now().UnixMilli()
	if millis <= lastFolioMillis {
		millis = lastFolioMillis + 1
	}
	lastFolioMillis = millis

	return "F" + strings.ToUpper(strconv.FormatInt(millis, 36))
}
