package types

// ConvertConfig holds settings for the conversion stage.
type ConvertConfig struct {
	// OutputDir is the base directory for converted books; each archive gets
	// a subdirectory named after its basename (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ScratchDir is the temporary extraction directory. It is reset before
	// every extraction and removed when the run ends (default ".laketmp").
	ScratchDir string `json:"scratch_dir" yaml:"scratch_dir"`

	// ArchiveExt is the recognized archive extension (default ".lakeb").
	ArchiveExt string `json:"archive_ext" yaml:"archive_ext"`
}

// ApplyDefaults fills unset fields with their default values.
func (c *ConvertConfig) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.ScratchDir == "" {
		c.ScratchDir = ".laketmp"
	}
	if c.ArchiveExt == "" {
		c.ArchiveExt = ".lakeb"
	}
}

// StoreConfig holds settings for the conversion ledger.
type StoreConfig struct {
	// Enabled controls whether runs are recorded in the ledger.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the ledger database location. Empty means
	// <output_dir>/lakebook2md.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Config groups all stage configurations for the converter.
type Config struct {
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
