package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/appenv/internal/clientenv"
	"github.com/mmr-tortoise/appenv/internal/model"
)

// setupProject builds a project dir with env files and optional HTML,
// then resolves its environment. Returns findings from Check.
func runCheck(t *testing.T, envFiles map[string]string, htmlFiles map[string]string) []Finding {
	t.Helper()
	dir := t.TempDir()
	for name, content := range envFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	publicDir := filepath.Join(dir, "public")
	if len(htmlFiles) > 0 {
		require.NoError(t, os.MkdirAll(publicDir, 0o755))
		for name, content := range htmlFiles {
			require.NoError(t, os.WriteFile(filepath.Join(publicDir, name), []byte(content), 0o644))
		}
	}

	env, chain, err := clientenv.Resolve(clientenv.Options{
		Dir:     dir,
		Mode:    model.ModeDevelopment,
		Environ: []string{},
	})
	require.NoError(t, err)

	findings, err := Check(env, chain, publicDir)
	require.NoError(t, err)
	return findings
}

// rulesOf extracts the rule ids from findings for compact assertions.
func rulesOf(findings []Finding) []string {
	var rules []string
	for _, f := range findings {
		rules = append(rules, f.Rule)
	}
	return rules
}

func TestCheck_CleanProject(t *testing.T) {
	findings := runCheck(t,
		map[string]string{".env": "REACT_APP_API_URL=https://api.example.com\n"},
		map[string]string{"index.html": "<title>%REACT_APP_API_URL%</title>"},
	)
	assert.Empty(t, findings)
}

func TestCheck_UnprefixedVar(t *testing.T) {
	findings := runCheck(t,
		map[string]string{".env": "DATABASE_URL=postgres://localhost\n"},
		nil,
	)

	require.Len(t, findings, 1)
	assert.Equal(t, RuleUnprefixed, findings[0].Rule)
	assert.Equal(t, "DATABASE_URL", findings[0].Subject)
	assert.Equal(t, ".env", findings[0].File)
}

func TestCheck_PublicURLIsNotUnprefixed(t *testing.T) {
	findings := runCheck(t,
		map[string]string{".env": "PUBLIC_URL=/app\n"},
		nil,
	)
	assert.Empty(t, findings)
}

func TestCheck_SecretLookingClientVar(t *testing.T) {
	findings := runCheck(t,
		map[string]string{
			".env.local": "REACT_APP_STRIPE_SECRET_KEY=sk_live_abc\nREACT_APP_AUTH_TOKEN=xyz\n",
		},
		nil,
	)

	require.Len(t, findings, 2)
	assert.ElementsMatch(t,
		[]string{RuleSecret, RuleSecret},
		rulesOf(findings),
	)
}

func TestCheck_FindingsSortedWithinFile(t *testing.T) {
	// Definition order in the file deliberately differs from name order.
	findings := runCheck(t,
		map[string]string{".env": "ZED_URL=z\nAPP_PORT=8080\nMID_HOST=m\n"},
		nil,
	)

	require.Len(t, findings, 3)
	assert.Equal(t, "APP_PORT", findings[0].Subject)
	assert.Equal(t, "MID_HOST", findings[1].Subject)
	assert.Equal(t, "ZED_URL", findings[2].Subject)
}

func TestCheck_NodeEnvOverride(t *testing.T) {
	findings := runCheck(t,
		map[string]string{".env": "NODE_ENV=production\n"},
		nil,
	)

	require.Len(t, findings, 1)
	assert.Equal(t, RuleNodeEnvOverride, findings[0].Rule)
}

func TestCheck_UnresolvedToken(t *testing.T) {
	findings := runCheck(t,
		map[string]string{".env": "REACT_APP_TITLE=hi\n"},
		map[string]string{"index.html": "<title>%REACT_APP_TITLEE%</title>"},
	)

	require.Len(t, findings, 1)
	assert.Equal(t, RuleUnresolvedToken, findings[0].Rule)
	assert.Equal(t, "REACT_APP_TITLEE", findings[0].Subject)
	assert.Equal(t, "index.html", findings[0].File)
}

func TestCheck_MissingPublicDirIsNotAnError(t *testing.T) {
	findings := runCheck(t,
		map[string]string{".env": "REACT_APP_OK=1\n"},
		nil,
	)
	assert.Empty(t, findings)
}

func TestFinding_String(t *testing.T) {
	f := Finding{
		Rule:    RuleUnprefixed,
		Subject: "DB_URL",
		File:    ".env",
		Message: "missing prefix",
	}
	assert.Equal(t, ".env: unprefixed-var: DB_URL (missing prefix)", f.String())
}
