package gorm

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/miguelmarques1/church-web/pkg/model"
	"github.com/miguelmarques1/church-web/pkg/server/store"
)

// Ensure PolicyStore implements store.PolicyStore
var _ store.PolicyStore = (*PolicyStore)(nil)

// PolicyStore provides policy version operations using GORM
type PolicyStore struct {
	db *gorm.DB
}

// NewPolicyStore creates a new PolicyStore
func NewPolicyStore(db *gorm.DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// RecordPolicyVersion stores a loaded policy document and returns its version.
// A document whose digest matches the newest recorded version is not stored
// again; that version is returned instead.
func (s *PolicyStore) RecordPolicyVersion(text, sha256, source string) (int, error) {
	var latest struct {
		Version      int    `gorm:"column:version"`
		PolicySHA256 string `gorm:"column:policy_sha256"`
	}
	err := s.db.Raw(`
		SELECT version, policy_sha256
		FROM policy_versions
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&latest).Error
	if err != nil {
		return 0, err
	}
	if latest.Version != 0 && latest.PolicySHA256 == sha256 {
		return latest.Version, nil
	}

	var version int
	row := s.db.Raw(`
		INSERT INTO policy_versions (policy_text, policy_sha256, source)
		VALUES (?, ?, ?)
		RETURNING version
	`, text, sha256, source).Row()
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// GetPolicyVersion retrieves a specific policy version
func (s *PolicyStore) GetPolicyVersion(version int) (*store.PolicyVersion, error) {
	var pv model.PolicyVersion
	result := s.db.Where("version = ?", version).First(&pv)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrPolicyVersionNotFound
		}
		return nil, result.Error
	}

	return &store.PolicyVersion{
		Version:      pv.Version,
		CreatedAt:    pv.CreatedAt,
		PolicySHA256: pv.PolicySHA256,
		Source:       pv.Source,
		PolicyText:   pv.PolicyText,
	}, nil
}

// ListPolicyVersions returns all versions, newest first, without their text
func (s *PolicyStore) ListPolicyVersions() ([]store.PolicyVersion, error) {
	type versionRow struct {
		Version      int
		CreatedAt    time.Time
		PolicySHA256 string
		Source       string
	}
	var rows []versionRow
	err := s.db.Raw(`
		SELECT version, created_at, policy_sha256, source
		FROM policy_versions
		ORDER BY version DESC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	versions := make([]store.PolicyVersion, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, store.PolicyVersion{
			Version:      row.Version,
			CreatedAt:    row.CreatedAt,
			PolicySHA256: row.PolicySHA256,
			Source:       row.Source,
		})
	}
	return versions, nil
}
