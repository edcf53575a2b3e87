// Package clientenv resolves the client-visible environment for a project.
//
// Resolution combines three inputs, in priority order: the process
// environment, the dotenv file chain for the selected mode (see package
// envfile), and builtin values synthesized by the resolver itself. The
// result is then filtered down to the variables client code is allowed to
// see: names carrying the configured prefix plus the reserved names
// NODE_ENV and PUBLIC_URL.
//
// The prefix filter is the safety mechanism that keeps server-side
// secrets out of build artifacts — anything injected into a build ends up
// readable by anyone who loads the app, so exposure must be opt-in per
// variable.
package clientenv

import (
	"os"
	"strings"

	"github.com/mmr-tortoise/appenv/internal/envfile"
	"github.com/mmr-tortoise/appenv/internal/model"
)

// Options configures a Resolve call.
type Options struct {
	// Dir is the project root containing the env files.
	Dir string

	// Mode selects the env file chain and the forced NODE_ENV value.
	Mode model.Mode

	// Prefix is the client variable name prefix. Empty means
	// model.DefaultPrefix.
	Prefix string

	// PublicURLFallback is used for PUBLIC_URL when neither the shell nor
	// an env file defines it. Typically Config.PublicURL.
	PublicURLFallback string

	// Environ is the process environment in "NAME=value" form.
	// Nil means os.Environ(). Tests pass an explicit slice.
	Environ []string
}

// Resolve loads the env file chain for opts.Mode, merges it with the
// process environment, and filters the result down to the client-visible
// set. The loaded chain is returned alongside the environment so callers
// (the check command) can inspect what each file defined.
func Resolve(opts Options) (*model.ClientEnv, *envfile.Chain, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = model.DefaultPrefix
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}

	chain, err := envfile.Load(opts.Dir, opts.Mode)
	if err != nil {
		return nil, nil, err
	}

	merged := chain.Merge(environ)

	env := &model.ClientEnv{Mode: opts.Mode, Prefix: prefix}
	for name, v := range merged {
		// Reserved names are handled below regardless of prefix; a prefix
		// like "PUBLIC_" must not produce a second PUBLIC_URL entry here.
		if name == model.VarNodeEnv || name == model.VarPublicURL {
			continue
		}
		if strings.HasPrefix(name, prefix) && model.ValidVarName(name) {
			env.Vars = append(env.Vars, v)
		}
	}

	// NODE_ENV always reflects the mode. Definitions from the shell or
	// env files are deliberately ignored: a production build claiming
	// NODE_ENV=development (or vice versa) breaks framework dead-code
	// elimination in ways that are miserable to debug.
	env.Vars = append(env.Vars, model.Variable{
		Name:   model.VarNodeEnv,
		Value:  opts.Mode.String(),
		Source: model.SourceBuiltin,
	})

	// PUBLIC_URL is always defined, falling back to the project config
	// value (possibly empty) when nothing else provides it.
	if v, ok := merged[model.VarPublicURL]; ok {
		env.Vars = append(env.Vars, v)
	} else {
		env.Vars = append(env.Vars, model.Variable{
			Name:   model.VarPublicURL,
			Value:  opts.PublicURLFallback,
			Source: model.SourceBuiltin,
		})
	}

	env.Sort()
	return env, chain, nil
}
