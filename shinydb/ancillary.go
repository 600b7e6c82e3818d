package shinydb

import (
	"encoding/json"

	"github.com/shinydb/shinydb-go/shinyerr"
)

// Role is the closed set of roles AuthResult.Role can hold.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleReadWrite Role = "read_write"
	RoleReadOnly  Role = "read_only"
	RoleNone      Role = "none"
)

// AuthResult is the ancillary reply shape for authenticate/authenticate_api_key
// Missing fields default to empty strings / RoleNone.
type AuthResult struct {
	SessionID string `json:"session_id"`
	APIKey    string `json:"api_key"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
}

// ParseAuthResult decodes raw into an AuthResult, defaulting an absent or
// unrecognized role to RoleNone.
func ParseAuthResult(raw []byte) (AuthResult, error) {
	var out AuthResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return AuthResult{}, shinyerr.ErrInvalidResponse
	}
	switch out.Role {
	case RoleAdmin, RoleReadWrite, RoleReadOnly:
	default:
		out.Role = RoleNone
	}
	return out, nil
}

// BackupMetadata is the ancillary reply shape backup/restore operations
// return. Every field is required; a missing one is
// InvalidResponse.
type BackupMetadata struct {
	BackupPath string `json:"backup_path"`
	Timestamp  int64  `json:"timestamp"`
	SizeBytes  uint64 `json:"size_bytes"`
	VlogCount  uint16 `json:"vlog_count"`
	EntryCount uint64 `json:"entry_count"`
}

// ParseBackupMetadata decodes raw into a BackupMetadata, requiring every
// field to be present.
func ParseBackupMetadata(raw []byte) (BackupMetadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return BackupMetadata{}, shinyerr.ErrInvalidResponse
	}
	for _, key := range []string{"backup_path", "timestamp", "size_bytes", "vlog_count", "entry_count"} {
		if _, ok := fields[key]; !ok {
			return BackupMetadata{}, shinyerr.ErrInvalidResponse
		}
	}

	var out BackupMetadata
	if err := json.Unmarshal(raw, &out); err != nil {
		return BackupMetadata{}, shinyerr.ErrInvalidResponse
	}
	return out, nil
}
