// Package lms describes external learning-management systems as
// assignment sources. No integration is implemented: each source reports
// whether the user's stored credentials are present (any non-empty key
// counts), and fetching always fails with apierr.ErrUnimplemented.
package lms

import (
	"context"
	"errors"

	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/domain/models"
)

// ErrNotConfigured is returned when the user has no credentials for a source.
var ErrNotConfigured = errors.New("lms: credentials not configured")

// SyncReadyMessage is returned by the sync endpoint in place of a real sync.
const SyncReadyMessage = "LMS sync ready. Integrate Learning Suite and Canvas API calls here."

// Source is an external system that can supply a user's assignments.
type Source interface {
	// Name is the assignment source tag, e.g. models.SourceCanvas.
	Name() string
	Configured(cfg models.LMSConfig) bool
	FetchAssignments(ctx context.Context, userID string, cfg models.LMSConfig) ([]models.Assignment, error)
}

// LearningSuite is BYU Learning Suite.
type LearningSuite struct{}

func (LearningSuite) Name() string { return models.SourceLearningSuite }

func (LearningSuite) Configured(cfg models.LMSConfig) bool {
	return cfg.LearningSuiteAPIKey != ""
}

func (s LearningSuite) FetchAssignments(_ context.Context, _ string, cfg models.LMSConfig) ([]models.Assignment, error) {
	if !s.Configured(cfg) {
		return nil, ErrNotConfigured
	}
	return nil, apierr.Unimplemented("Learning Suite integration is not implemented")
}

// Canvas is Instructure Canvas. CanvasDomain is optional until a real
// client exists.
type Canvas struct{}

func (Canvas) Name() string { return models.SourceCanvas }

func (Canvas) Configured(cfg models.LMSConfig) bool {
	return cfg.CanvasAPIKey != ""
}

func (s Canvas) FetchAssignments(_ context.Context, _ string, cfg models.LMSConfig) ([]models.Assignment, error) {
	if !s.Configured(cfg) {
		return nil, ErrNotConfigured
	}
	return nil, apierr.Unimplemented("Canvas integration is not implemented")
}

// Sources returns every known source.
func Sources() []Source {
	return []Source{LearningSuite{}, Canvas{}}
}

// Readiness reports, per source name, whether cfg carries its credentials.
func Readiness(cfg models.LMSConfig, sources ...Source) map[string]bool {
	if len(sources) == 0 {
		sources = Sources()
	}
	out := make(map[string]bool, len(sources))
	for _, s := range sources {
		out[s.Name()] = s.Configured(cfg)
	}
	return out
}
