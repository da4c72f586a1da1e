package model

import "time"

// Watch is a registration to observe the video-generation job identified by a
// (user, script, version) triple. The task id is not known at registration
// time; it is filled in by the first successful find and may change if the
// user retries the job, which resets milestone tracking.
type Watch struct {
	ID        string
	UserID    string
	ScriptID  string
	VersionID string

	// TaskID is the last task id observed for this triple, empty until the
	// first find succeeds.
	TaskID string

	// TokenEnc is the user's pipeline bearer token, AES-GCM encrypted at rest.
	TokenEnc string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewWatch(id, userID, scriptID, versionID, tokenEnc string) *Watch {
	now := time.Now()
	return &Watch{
		ID:        id,
		UserID:    userID,
		ScriptID:  scriptID,
		VersionID: versionID,
		TokenEnc:  tokenEnc,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
