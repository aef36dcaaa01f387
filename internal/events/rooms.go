package events

import (
	"fmt"

	"github.com/google/uuid"
)

// PersonalRoom is the address of one user on one channel. The main
// channel's personal room backs presence.
func PersonalRoom(ch Channel, userID uuid.UUID) string {
	return fmt.Sprintf("%s:user:%s", ch, userID)
}

func ChatRoom(relationshipID int64) string {
	return fmt.Sprintf("chat:%d", relationshipID)
}

func CallRoom(relationshipID int64) string {
	return fmt.Sprintf("call:%d", relationshipID)
}
