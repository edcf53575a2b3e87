// Package lint inspects a project's env files and HTML templates for
// mistakes that would otherwise fail silently at build time.
//
// The rules cover the three classic failure modes of build-time variable
// injection: a variable that never reaches the client because its name
// lacks the prefix, a secret that reaches the client because its name has
// the prefix, and an HTML token that nothing resolves.
package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmr-tortoise/appenv/internal/envfile"
	"github.com/mmr-tortoise/appenv/internal/inject"
	"github.com/mmr-tortoise/appenv/internal/model"
)

// Rule identifiers, included in findings so CI systems can filter.
const (
	// RuleUnprefixed fires for env file variables that will silently not
	// reach client code.
	RuleUnprefixed = "unprefixed-var"

	// RuleSecret fires for client variables whose names look like
	// credentials. Injected values are embedded in the build artifact and
	// readable by anyone, so secrets must never carry the client prefix.
	RuleSecret = "secret-in-client-var"

	// RuleNodeEnvOverride fires when an env file defines NODE_ENV, which
	// the resolver always ignores in favor of the run mode.
	RuleNodeEnvOverride = "node-env-override"

	// RuleUnresolvedToken fires for %TOKEN% references in HTML that no
	// resolved variable satisfies.
	RuleUnresolvedToken = "unresolved-token"
)

// Finding is a single lint diagnostic.
type Finding struct {
	// Rule is one of the Rule* identifiers.
	Rule string `json:"rule"`

	// Subject is the variable or token name the finding is about.
	Subject string `json:"subject"`

	// File is the env file or HTML file the finding was located in.
	File string `json:"file"`

	// Message is the human-readable explanation.
	Message string `json:"message"`
}

// String formats a finding as a single diagnostic line.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s (%s)", f.File, f.Rule, f.Subject, f.Message)
}

// secretMarkers are name fragments that indicate a variable probably
// holds a credential.
var secretMarkers = []string{
	"SECRET", "TOKEN", "PASSWORD", "PASSWD", "PRIVATE", "API_KEY", "APIKEY", "CREDENTIAL",
}

// Check runs every rule against the loaded chain, the resolved
// environment, and the HTML files under publicDir. Findings are returned
// in file order, sorted by name within a file; an empty slice means the
// project is clean.
func Check(env *model.ClientEnv, chain *envfile.Chain, publicDir string) ([]Finding, error) {
	var findings []Finding

	findings = append(findings, checkEnvFiles(env, chain)...)

	htmlFindings, err := checkHTML(env, publicDir)
	if err != nil {
		return nil, err
	}
	findings = append(findings, htmlFindings...)

	return findings, nil
}

// checkEnvFiles applies the variable-name rules to every definition in
// the chain, per file, so the finding points at the file that needs the
// fix. Names are sorted within each file to keep the output stable for
// CI diffing.
func checkEnvFiles(env *model.ClientEnv, chain *envfile.Chain) []Finding {
	var findings []Finding

	for _, file := range chain.Files {
		names := make([]string, 0, len(file.Vars))
		for name := range file.Vars {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			switch {
			case name == model.VarNodeEnv:
				findings = append(findings, Finding{
					Rule:    RuleNodeEnvOverride,
					Subject: name,
					File:    file.Name,
					Message: "NODE_ENV is always set from the run mode; this definition is ignored",
				})

			case strings.HasPrefix(name, env.Prefix):
				if marker := secretMarker(strings.TrimPrefix(name, env.Prefix)); marker != "" {
					findings = append(findings, Finding{
						Rule:    RuleSecret,
						Subject: name,
						File:    file.Name,
						Message: fmt.Sprintf("name contains %q; injected values are embedded in the build artifact and visible to every user", marker),
					})
				}

			case name != model.VarPublicURL:
				findings = append(findings, Finding{
					Rule:    RuleUnprefixed,
					Subject: name,
					File:    file.Name,
					Message: fmt.Sprintf("missing the %s prefix; this variable will not reach client code", env.Prefix),
				})
			}
		}
	}

	return findings
}

// secretMarker returns the first secret marker contained in name, or "".
func secretMarker(name string) string {
	upper := strings.ToUpper(name)
	for _, marker := range secretMarkers {
		if strings.Contains(upper, marker) {
			return marker
		}
	}
	return ""
}

// checkHTML scans every .html file under publicDir for tokens that do not
// resolve against env. A missing public directory yields no findings:
// projects without HTML templates are legitimate.
func checkHTML(env *model.ClientEnv, publicDir string) ([]Finding, error) {
	if _, err := os.Stat(publicDir); os.IsNotExist(err) {
		return nil, nil
	}

	var findings []Finding
	err := filepath.Walk(publicDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		_, _, unresolved := inject.HTML(content, env)
		rel, relErr := filepath.Rel(publicDir, path)
		if relErr != nil {
			rel = path
		}
		for _, name := range unresolved {
			findings = append(findings, Finding{
				Rule:    RuleUnresolvedToken,
				Subject: name,
				File:    rel,
				Message: "token does not match any resolved client variable and will be left as-is",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}
