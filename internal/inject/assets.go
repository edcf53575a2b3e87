package inject

import (
	"encoding/json"
	"fmt"

	"github.com/mmr-tortoise/appenv/internal/model"
)

// JSSnapshot renders the environment as a JavaScript module that assigns
// the variable map to window.__APP_ENV__. Serving this file next to the
// build output lets deployments swap environment values without a rebuild.
func JSSnapshot(env *model.ClientEnv) ([]byte, error) {
	data, err := json.MarshalIndent(env.Map(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode env snapshot: %w", err)
	}
	js := fmt.Sprintf("// Generated by appenv (%s). Do not edit.\nwindow.__APP_ENV__ = %s;\n",
		env.Mode, data)
	return []byte(js), nil
}

// JSONSnapshot renders the environment as a plain JSON object of
// name→value pairs.
func JSONSnapshot(env *model.ClientEnv) ([]byte, error) {
	data, err := json.MarshalIndent(env.Map(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode env snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteSnapshot writes a snapshot produced by JSSnapshot or JSONSnapshot
// to path atomically.
func WriteSnapshot(path string, data []byte) error {
	return writeAtomic(path, data)
}
