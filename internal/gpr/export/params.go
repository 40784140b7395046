package export

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/gpr.report/internal/fsutil"
	"github.com/banshee-data/gpr.report/internal/gpr/survey"
	"github.com/banshee-data/gpr.report/internal/version"
)

// ParamsDump is the JSON document written next to a run's outputs.
type ParamsDump struct {
	Version  string        `json:"version"`
	GitSHA   string        `json:"git_sha"`
	SurveyID string        `json:"survey_id,omitempty"`
	RunID    string        `json:"run_id,omitempty"`
	Params   survey.Params `json:"params"`
}

// NewParamsDump stamps params with the current build metadata.
func NewParamsDump(surveyID, runID string, params survey.Params) ParamsDump {
	return ParamsDump{
		Version:  version.Version,
		GitSHA:   version.GitSHA,
		SurveyID: surveyID,
		RunID:    runID,
		Params:   params,
	}
}

// WriteParamsJSON writes dump to path as indented JSON, replacing any
// previous file.
func WriteParamsJSON(fsys fsutil.FileSystem, path string, dump ParamsDump) error {
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create params file: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("write params: %w", err)
	}
	return f.Close()
}
