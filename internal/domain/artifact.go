package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InitialVersion is the version assigned to the first artifact of a file path.
const InitialVersion = "1.0.0"

// CodeArtifact is a versioned, immutable saved unit of generated content
// keyed by logical file path. Artifacts sharing a path form a linear version
// chain; prior versions are never overwritten or deleted.
type CodeArtifact struct {
	ID            string         `json:"artifact_id"`
	FilePath      string         `json:"file_path"`
	Content       string         `json:"content"`
	Language      string         `json:"language"`
	CreatedBy     string         `json:"created_by"`
	Version       string         `json:"version"`
	ParentVersion string         `json:"parent_version,omitempty"`
	CommitMessage string         `json:"commit_message"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewCodeArtifact creates the first artifact of a version chain.
func NewCodeArtifact(filePath, content, language, createdBy, commitMessage string, metadata map[string]any) *CodeArtifact {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &CodeArtifact{
		ID:            uuid.New().String(),
		FilePath:      filePath,
		Content:       content,
		Language:      language,
		CreatedBy:     createdBy,
		Version:       InitialVersion,
		CommitMessage: commitMessage,
		Metadata:      metadata,
		CreatedAt:     time.Now().UTC(),
	}
}

// NewVersion creates the next artifact in this chain: the patch component is
// incremented by one and the parent version is recorded as a back-reference.
func (a *CodeArtifact) NewVersion(content, commitMessage, createdBy string, metadata map[string]any) *CodeArtifact {
	if createdBy == "" {
		createdBy = a.CreatedBy
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &CodeArtifact{
		ID:            uuid.New().String(),
		FilePath:      a.FilePath,
		Content:       content,
		Language:      a.Language,
		CreatedBy:     createdBy,
		Version:       IncrementPatch(a.Version),
		ParentVersion: a.Version,
		CommitMessage: commitMessage,
		Metadata:      metadata,
		CreatedAt:     time.Now().UTC(),
	}
}

// ParseVersion splits a semantic major.minor.patch string into its numeric
// components. Malformed components parse as zero.
func ParseVersion(version string) (major, minor, patch int) {
	parts := strings.SplitN(version, ".", 3)
	read := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0
		}
		return n
	}
	return read(0), read(1), read(2)
}

// CompareVersions orders two version strings by numeric (major, minor, patch)
// tuple comparison. String comparison is wrong past patch 9 and must not be
// used for "latest version" lookups.
func CompareVersions(a, b string) int {
	amaj, amin, apat := ParseVersion(a)
	bmaj, bmin, bpat := ParseVersion(b)

	switch {
	case amaj != bmaj:
		return amaj - bmaj
	case amin != bmin:
		return amin - bmin
	default:
		return apat - bpat
	}
}

// IncrementPatch returns the version with its patch component incremented.
func IncrementPatch(version string) string {
	major, minor, patch := ParseVersion(version)
	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
}
