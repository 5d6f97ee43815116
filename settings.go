package oneshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidSettings   = errors.New("oneshot: invalid settings")
	ErrUnsupportedFormat = errors.New("oneshot: unsupported settings format")
)

// Settings holds the tolerances of contact generation. The zero value is not
// usable, start from DefaultSettings.
type Settings struct {
	// FaceContactCos is the minimum alignment between the contact normal and
	// the reference face normal for a face contact; below it an edge contact is built
	FaceContactCos float64 `toml:"face_contact_cos" yaml:"face_contact_cos"`
	// FaceBias favours the reference face on A when both shapes align equally
	FaceBias float64 `toml:"face_bias" yaml:"face_bias"`
	// EdgeAxisBias is the margin by which an edge axis must beat the best face
	// axis in the box-box separating axis test
	EdgeAxisBias float64 `toml:"edge_axis_bias" yaml:"edge_axis_bias"`
	// EdgePruneTolerance is the thickness of the band above the deepest point
	// in which edge contacts are kept
	EdgePruneTolerance float64 `toml:"edge_prune_tolerance" yaml:"edge_prune_tolerance"`
	// MinContactSpacing merges contact points closer than this
	MinContactSpacing float64 `toml:"min_contact_spacing" yaml:"min_contact_spacing"`
	// ClipTolerance merges consecutive clipped vertices closer than this
	ClipTolerance float64 `toml:"clip_tolerance" yaml:"clip_tolerance"`
	// ParallelTolerance is the sine under which a capsule axis counts as
	// parallel to a face
	ParallelTolerance float64 `toml:"parallel_tolerance" yaml:"parallel_tolerance"`

	GJKMaxIterations int     `toml:"gjk_max_iterations" yaml:"gjk_max_iterations"`
	EPAMaxIterations int     `toml:"epa_max_iterations" yaml:"epa_max_iterations"`
	EPATolerance     float64 `toml:"epa_tolerance" yaml:"epa_tolerance"`

	// EnableStats installs a Stats tracer, combined with any tracer given through WithTracer
	EnableStats bool `toml:"enable_stats" yaml:"enable_stats"`
	// TraceDegenerate logs degenerate cases; only honoured by oneshotdebug builds
	TraceDegenerate bool `toml:"trace_degenerate" yaml:"trace_degenerate"`
}

func DefaultSettings() Settings {
	return Settings{
		FaceContactCos:     0.95,
		FaceBias:           1e-3,
		EdgeAxisBias:       1e-3,
		EdgePruneTolerance: 0.02,
		MinContactSpacing:  0.02,
		ClipTolerance:      1e-6,
		ParallelTolerance:  0.05,
		GJKMaxIterations:   32,
		EPAMaxIterations:   64,
		EPATolerance:       1e-6,
	}
}

// Validate reports the first out of range field.
func (s Settings) Validate() error {
	switch {
	case s.FaceContactCos <= 0 || s.FaceContactCos > 1:
		return fmt.Errorf("%w: face_contact_cos %v not in (0, 1]", ErrInvalidSettings, s.FaceContactCos)
	case s.FaceBias < 0:
		return fmt.Errorf("%w: face_bias %v < 0", ErrInvalidSettings, s.FaceBias)
	case s.EdgeAxisBias < 0:
		return fmt.Errorf("%w: edge_axis_bias %v < 0", ErrInvalidSettings, s.EdgeAxisBias)
	case s.EdgePruneTolerance < 0:
		return fmt.Errorf("%w: edge_prune_tolerance %v < 0", ErrInvalidSettings, s.EdgePruneTolerance)
	case s.MinContactSpacing < 0:
		return fmt.Errorf("%w: min_contact_spacing %v < 0", ErrInvalidSettings, s.MinContactSpacing)
	case s.ClipTolerance <= 0:
		return fmt.Errorf("%w: clip_tolerance %v <= 0", ErrInvalidSettings, s.ClipTolerance)
	case s.ParallelTolerance < 0 || s.ParallelTolerance >= 1:
		return fmt.Errorf("%w: parallel_tolerance %v not in [0, 1)", ErrInvalidSettings, s.ParallelTolerance)
	case s.GJKMaxIterations <= 0:
		return fmt.Errorf("%w: gjk_max_iterations %d <= 0", ErrInvalidSettings, s.GJKMaxIterations)
	case s.EPAMaxIterations <= 0:
		return fmt.Errorf("%w: epa_max_iterations %d <= 0", ErrInvalidSettings, s.EPAMaxIterations)
	case s.EPATolerance <= 0:
		return fmt.Errorf("%w: epa_tolerance %v <= 0", ErrInvalidSettings, s.EPATolerance)
	}
	return nil
}

// LoadSettings reads settings from a .toml, .yaml or .yml file. Keys missing
// from the file keep their default value.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings, err := ParseSettings(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return Settings{}, fmt.Errorf("load settings %s: %w", path, err)
	}
	return settings, nil
}

// ParseSettings decodes settings in the given format ("toml", "yaml" or "yml")
// on top of DefaultSettings and validates the result.
func ParseSettings(data []byte, format string) (Settings, error) {
	settings := DefaultSettings()

	var err error
	switch strings.ToLower(format) {
	case "toml":
		err = toml.Unmarshal(data, &settings)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &settings)
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", format, err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
