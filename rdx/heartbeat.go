package rdx

import (
	"time"

	"tillpoint/globals"
)

// Register freshness: the POS client polls register status every few
// seconds; each poll refreshes a short-lived key so other tills can see
// whether a register is live.

const heartbeatTTL = 15 * time.Second

func RegisterHeartbeat(registerID string) error {
	return RdxSetWithTTL("register_seen:"+registerID, time.Now().UTC().Format(time.RFC3339), heartbeatTTL)
}

func RegisterSeen(registerID string) bool {
	n, err := Conn.Exists(globals.Ctx, "register_seen:"+registerID).Result()
	return err == nil && n > 0
}
