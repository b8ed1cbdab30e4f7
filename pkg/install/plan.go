package install

import (
	"github.com/matzehuels/stackpip/pkg/integrations/pypi"
	"github.com/matzehuels/stackpip/pkg/lock"
)

// Action is what a [Step] does with its distribution.
type Action string

const (
	ActionInstall Action = "install" // Install a wheel
	ActionBuild   Action = "build"   // Build from sdist, then install
	ActionSkip    Action = "skip"    // Already installed
)

// Step installs one locked distribution.
type Step struct {
	Name     string        `json:"name" bson:"name"`
	Version  string        `json:"version" bson:"version"`
	Action   Action        `json:"action" bson:"action"`
	Artifact pypi.Artifact `json:"artifact,omitzero" bson:"artifact,omitempty"`
	Hash     string        `json:"hash,omitempty" bson:"hash,omitempty"` // From the lock file when it lists the artifact
}

// Plan is the ordered list of steps for one task.
type Plan struct {
	Task   string `json:"task" bson:"task"`
	Python string `json:"python" bson:"python"`
	Steps  []Step `json:"steps" bson:"steps"`
}

// Pending returns the steps that install something.
func (p *Plan) Pending() []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Action != ActionSkip {
			out = append(out, s)
		}
	}
	return out
}

func newStep(pkg *lock.Package, rel *pypi.Release) Step {
	s := Step{Name: pkg.Name, Version: pkg.Version, Action: ActionInstall}
	if rel == nil {
		if !pkg.HasWheel() && len(pkg.Files) > 0 {
			s.Action = ActionBuild
		}
		return s
	}
	if a, ok := rel.Preferred(); ok {
		s.Artifact = a
		if !a.Wheel() {
			s.Action = ActionBuild
		}
		for _, f := range pkg.Files {
			if f.Name == a.Filename {
				s.Hash = f.Hash
				break
			}
		}
	}
	return s
}
