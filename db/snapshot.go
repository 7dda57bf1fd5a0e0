package db

import (
	"roster-server-go/models"
)

// checkSnapshot rejects loaded state that would break the store's invariants.
func checkSnapshot(op string, snapshot models.Snapshot) error {
	classes := make(map[string]struct{}, len(snapshot.Classes))
	for _, c := range snapshot.Classes {
		if _, dup := classes[c]; dup {
			return newError(op, ErrCorruptState, "duplicate class %q in saved state", c)
		}
		classes[c] = struct{}{}
	}
	ids := make(map[string]struct{}, len(snapshot.Students))
	for i, st := range snapshot.Students {
		if st.ID == "" {
			return newError(op, ErrCorruptState, "student #%d has no ID", i+1)
		}
		if _, dup := ids[st.ID]; dup {
			return newError(op, ErrCorruptState, "duplicate student ID %q in saved state", st.ID)
		}
		ids[st.ID] = struct{}{}
	}
	return nil
}

// normalize replaces nil slices so the snapshot always encodes as lists.
func normalize(snapshot models.Snapshot) models.Snapshot {
	if snapshot.Students == nil {
		snapshot.Students = []models.Student{}
	}
	if snapshot.Classes == nil {
		snapshot.Classes = []string{}
	}
	return snapshot
}
