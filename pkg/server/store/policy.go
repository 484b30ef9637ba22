package store

import (
	"errors"
	"time"
)

// ErrPolicyVersionNotFound is returned when a policy version doesn't exist
var ErrPolicyVersionNotFound = errors.New("policy version not found")

// PolicyVersion represents a policy version
type PolicyVersion struct {
	Version      int
	CreatedAt    time.Time
	PolicySHA256 string
	Source       string
	PolicyText   string
}

// PolicyStore abstracts policy version storage operations
type PolicyStore interface {
	// RecordPolicyVersion stores a loaded policy document and returns its version.
	// Recording the digest of the newest version again returns that version.
	RecordPolicyVersion(text, sha256, source string) (int, error)

	// GetPolicyVersion retrieves a specific policy version
	GetPolicyVersion(version int) (*PolicyVersion, error)

	// ListPolicyVersions returns all versions, newest first, without their text
	ListPolicyVersions() ([]PolicyVersion, error)
}
