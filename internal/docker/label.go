package docker

import (
	"time"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// Label keys applied to every build container. The shared "appenv."
// prefix keeps them clear of labels set by Compose or other tooling and
// makes `docker ps --filter label=appenv.managed-by=appenv` work.
const (
	// LabelPrefix is the common prefix for all appenv labels.
	LabelPrefix = "appenv."

	// LabelManagedBy identifies containers created by this tool.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelProject stores the absolute path of the project the build ran for.
	LabelProject = LabelPrefix + "project"

	// LabelMode stores the mode the environment was resolved for.
	LabelMode = LabelPrefix + "mode"

	// LabelCreatedAt stores the RFC3339 timestamp of container creation.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value of LabelManagedBy.
const ManagedByValue = "appenv"

// BuildLabels constructs the label set for a build container.
func BuildLabels(projectDir string, mode model.Mode, now time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelProject:   projectDir,
		LabelMode:      mode.String(),
		LabelCreatedAt: now.UTC().Format(time.RFC3339),
	}
}
