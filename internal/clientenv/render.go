package clientenv

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// Output formats accepted by Render.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatDotenv = "dotenv"
)

// Render serializes a resolved environment in the requested format.
// Returns an ExitConfigInvalid CLIError for unknown formats so the CLI
// maps it to the right exit code without special-casing.
func Render(env *model.ClientEnv, format string) (string, error) {
	switch format {
	case FormatText, "":
		return renderText(env), nil
	case FormatJSON:
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case FormatYAML:
		data, err := yaml.Marshal(env.Map())
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatDotenv:
		return renderDotenv(env), nil
	default:
		return "", model.NewCLIError(
			model.ExitConfigInvalid,
			fmt.Sprintf("unknown format %q (valid: text, json, yaml, dotenv)", format),
		)
	}
}

// renderText produces the human-readable table: name, value, and the
// source the value was taken from, with names left-aligned.
func renderText(env *model.ClientEnv) string {
	width := 0
	for _, v := range env.Vars {
		if len(v.Name) > width {
			width = len(v.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Client environment (%s, prefix %s):\n", env.Mode, env.Prefix)
	for _, v := range env.Vars {
		fmt.Fprintf(&b, "  %-*s = %-20q  [%s]\n", width, v.Name, v.Value, v.Source)
	}
	return b.String()
}

// renderDotenv produces NAME=value lines suitable for feeding back into a
// dotenv parser. Values containing characters that a parser would treat
// specially are double-quoted.
func renderDotenv(env *model.ClientEnv) string {
	var b strings.Builder
	for _, v := range env.Vars {
		b.WriteString(v.Name)
		b.WriteByte('=')
		b.WriteString(quoteDotenv(v.Value))
		b.WriteByte('\n')
	}
	return b.String()
}

// quoteDotenv returns value double-quoted if it contains whitespace,
// quotes, or comment/expansion characters, and as-is otherwise.
func quoteDotenv(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\n\"'#$\\") {
		return value
	}
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		`$`, `\$`,
	)
	return `"` + replacer.Replace(value) + `"`
}
