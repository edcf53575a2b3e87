package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/appenv/internal/model"
)

func TestBuildLabels(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	labels := BuildLabels("/home/dev/webapp", model.ModeProduction, now)

	assert.Equal(t, map[string]string{
		"appenv.managed-by": "appenv",
		"appenv.project":    "/home/dev/webapp",
		"appenv.mode":       "production",
		"appenv.created-at": "2026-08-31T12:00:00Z",
	}, labels)
}

func TestBuildLabels_TimeNormalizedToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2026, 8, 31, 14, 0, 0, 0, loc)

	labels := BuildLabels("/p", model.ModeDevelopment, now)
	assert.Equal(t, "2026-08-31T12:00:00Z", labels[LabelCreatedAt])
}

func TestDetectUnixSocket(t *testing.T) {
	_, err := detectUnixSocket([]string{"/nonexistent/docker.sock"})
	assert.Error(t, err)
}
