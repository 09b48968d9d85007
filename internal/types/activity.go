package types

import "time"

// ActivityEntry is an append-only audit record stored under
// users/{userId}/activity_log/{id}. Entries are never mutated or deleted;
// they record what was actually sent, independent of the user's nudgeStatus.
type ActivityEntry struct {
	ID      string    `firestore:"-" json:"id"`
	Type    string    `firestore:"type" json:"type"`
	SentAt  time.Time `firestore:"sentAt" json:"sentAt"`
	Channel string    `firestore:"channel" json:"channel"`
	Context string    `firestore:"context" json:"context"`
}
