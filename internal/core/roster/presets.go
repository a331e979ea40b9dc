package roster

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

type presetSport struct {
	Sport `yaml:",inline"`
	Pool  []Player `yaml:"players"`
}

type presetFile struct {
	Sports []presetSport `yaml:"sports"`
}

// LoadPresets reads sport presets from path, or the embedded defaults when
// path is empty.
func LoadPresets(path string) ([]Sport, error) {
	data := defaultPresets
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read presets: %w", err)
		}
	}
	return ParsePresets(data)
}

func ParsePresets(data []byte) ([]Sport, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	out := make([]Sport, 0, len(f.Sports))
	for _, ps := range f.Sports {
		if ps.ID == "" {
			return nil, fmt.Errorf("parse presets: sport without id")
		}
		s := ps.Sport
		if len(ps.Pool) > 0 {
			if len(s.Teams) < 2 {
				return nil, fmt.Errorf("parse presets: %s has a player pool but fewer than two teams", s.ID)
			}
			home, away := SplitByParity(ps.Pool)
			s.Teams[0].Players = append(s.Teams[0].Players, home...)
			s.Teams[1].Players = append(s.Teams[1].Players, away...)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("parse presets: %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}
