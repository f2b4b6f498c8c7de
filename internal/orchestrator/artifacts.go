package orchestrator

import (
	"fmt"
	"sort"

	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
)

// SaveCodeArtifact appends a new artifact version for the given file path.
// The first save of a path starts a chain at version 1.0.0; later saves
// increment the latest version's patch component and record the parent.
// Existing records are never mutated.
func (s *System) SaveCodeArtifact(filePath, content, language, createdBy, commitMessage string, metadata map[string]any) (*domain.CodeArtifact, error) {
	switch {
	case filePath == "":
		return nil, apperrors.NewValidation("file_path", "is required")
	case content == "":
		return nil, apperrors.NewValidation("content", "is required")
	case language == "":
		return nil, apperrors.NewValidation("language", "is required")
	case createdBy == "":
		return nil, apperrors.NewValidation("created_by", "is required")
	}

	s.artifactsMu.Lock()
	defer s.artifactsMu.Unlock()

	var artifact *domain.CodeArtifact
	if parent := s.latestArtifactLocked(filePath); parent != nil {
		if commitMessage == "" {
			commitMessage = fmt.Sprintf("Update by %s", createdBy)
		}
		artifact = parent.NewVersion(content, commitMessage, createdBy, metadata)
	} else {
		if commitMessage == "" {
			commitMessage = fmt.Sprintf("Initial commit by %s", createdBy)
		}
		artifact = domain.NewCodeArtifact(filePath, content, language, createdBy, commitMessage, metadata)
	}

	s.artifacts[artifact.ID] = artifact
	broadcast.EmitArtifactUpdate(s.emitter, artifact)
	return artifact, nil
}

// GetArtifactHistory returns every version saved for the file path, sorted
// ascending by creation time.
func (s *System) GetArtifactHistory(filePath string) []*domain.CodeArtifact {
	s.artifactsMu.RLock()
	defer s.artifactsMu.RUnlock()

	history := []*domain.CodeArtifact{}
	for _, artifact := range s.artifacts {
		if artifact.FilePath == filePath {
			history = append(history, artifact)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})
	return history
}

// GetArtifactVersion returns the exact version of an artifact when version is
// non-empty, otherwise the chain's highest version by numeric comparison.
func (s *System) GetArtifactVersion(filePath, version string) (*domain.CodeArtifact, error) {
	s.artifactsMu.RLock()
	defer s.artifactsMu.RUnlock()

	if version != "" {
		for _, artifact := range s.artifacts {
			if artifact.FilePath == filePath && artifact.Version == version {
				return artifact, nil
			}
		}
		return nil, apperrors.NewNotFound("artifact", fmt.Sprintf("%s@%s", filePath, version))
	}

	latest := s.latestArtifactLocked(filePath)
	if latest == nil {
		return nil, apperrors.NewNotFound("artifact", filePath)
	}
	return latest, nil
}

// latestArtifactLocked scans the store for the highest version of a path.
// Callers must hold artifactsMu.
func (s *System) latestArtifactLocked(filePath string) *domain.CodeArtifact {
	var latest *domain.CodeArtifact
	for _, artifact := range s.artifacts {
		if artifact.FilePath != filePath {
			continue
		}
		if latest == nil || domain.CompareVersions(artifact.Version, latest.Version) > 0 {
			latest = artifact
		}
	}
	return latest
}
