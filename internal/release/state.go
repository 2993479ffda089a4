package release

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Step is a release state. Steps advance strictly forward; each is a hard
// gate for the next.
type Step string

const (
	// StepPending: nothing has happened for this version.
	StepPending Step = "pending"
	// StepValidated: preconditions passed; no external state mutated yet.
	StepValidated Step = "validated"
	// StepTagged: the signed tag exists on the canonical remote. First
	// irreversible step.
	StepTagged Step = "tagged"
	// StepDocsPublished: docs for the version are committed and pushed to
	// the docs repository. Terminal for the publish flow.
	StepDocsPublished Step = "docs-published"
)

var stepOrder = map[Step]int{
	StepPending:       0,
	StepValidated:     1,
	StepTagged:        2,
	StepDocsPublished: 3,
}

// Reached reports whether s is at or past other.
func (s Step) Reached(other Step) bool {
	return stepOrder[s] >= stepOrder[other]
}

// State is the persisted release progress for one version. It lets a re-run
// after a partial failure resume instead of re-executing irreversible steps.
type State struct {
	Version   string    `toml:"version"`
	Step      Step      `toml:"step"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// advance validates and applies a single forward transition.
func (s *State) advance(to Step) error {
	if stepOrder[to] != stepOrder[s.Step]+1 {
		return fmt.Errorf("release %s: %s -> %s: %w", s.Version, s.Step, to, ErrInvalidTransition)
	}
	s.Step = to
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func statePath(dir, version string) string {
	return filepath.Join(dir, "release-"+version+".toml")
}

// LoadState reads the persisted state for a version. A missing file means
// the release has not started.
func LoadState(dir, version string) (*State, error) {
	data, err := os.ReadFile(statePath(dir, version))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Version: version, Step: StepPending}, nil
		}
		return nil, fmt.Errorf("reading release state: %w", err)
	}

	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing release state: %w", err)
	}
	if _, ok := stepOrder[st.Step]; !ok {
		return nil, fmt.Errorf("release state step %q: %w", st.Step, ErrInvalidTransition)
	}
	return &st, nil
}

// Save writes the state file atomically (write temp + rename).
func (s *State) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling release state: %w", err)
	}

	path := statePath(dir, s.Version)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing release state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming release state: %w", err)
	}
	return nil
}
