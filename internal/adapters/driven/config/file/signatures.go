package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
)

// Ensure SignatureStore implements the interface.
var _ driven.SignatureStore = (*SignatureStore)(nil)

// SignatureStore loads slide signatures from a user-editable TOML file
// with fallback to embedded defaults.
//
// The store uses lazy initialisation - the file is only created when
// first accessed, not in the constructor. This makes testing easier and
// avoids unexpected I/O.
type SignatureStore struct {
	mu       sync.RWMutex
	filePath string
	cache    []domain.SlideSignature
	initOnce sync.Once
	initErr  error
}

// signatureFile is the TOML document shape.
type signatureFile struct {
	Signatures []signatureEntry `toml:"signatures"`
}

type signatureEntry struct {
	Type      string   `toml:"type"`
	Primary   []string `toml:"primary"`
	Secondary []string `toml:"secondary,omitempty"`
	Unique    []string `toml:"unique,omitempty"`
	Exclude   []string `toml:"exclude,omitempty"`
	Fallback  int      `toml:"fallback"`
	Group     string   `toml:"group"`
	Sequence  int      `toml:"sequence"`
}

// defaultSignatures is the built-in signature table for the standard
// proposal deck layout. Fallback positions are the slide numbers the
// deck uses when nobody has reordered it.
var defaultSignatures = []domain.SlideSignature{
	{
		Type:     domain.SlideCover,
		Primary:  []string{"Period of Insurance"},
		Fallback: 1,
		Group:    "cover",
		Sequence: 1,
	},
	{
		Type:      domain.SlideGTLOverview,
		Primary:   []string{"Group Term Life"},
		Secondary: []string{"Eligibility", "Basis of Cover", "Non-evidence Limit"},
		Unique:    []string{"Last Entry Age"},
		Exclude:   []string{"Schedule of Benefits"},
		Fallback:  8,
		Group:     "overview",
		Sequence:  1,
	},
	{
		Type:      domain.SlideGHSOverview,
		Primary:   []string{"Group Hospital & Surgical", "Group Hospital and Surgical"},
		Secondary: []string{"Eligibility", "Basis of Cover"},
		Unique:    []string{"Dependants"},
		Exclude:   []string{"Schedule of Benefits"},
		Fallback:  14,
		Group:     "overview",
		Sequence:  2,
	},
	{
		Type:      domain.SlideGTLSchedule,
		Primary:   []string{"Group Term Life"},
		Secondary: []string{"Schedule of Benefits", "Sum Assured"},
		Unique:    []string{"Death Benefit"},
		Fallback:  20,
		Group:     "schedule",
		Sequence:  1,
	},
	{
		Type:      domain.SlideGHSSchedule,
		Primary:   []string{"Group Hospital & Surgical", "Group Hospital and Surgical"},
		Secondary: []string{"Schedule of Benefits", "Room and Board"},
		Unique:    []string{"Intensive Care Unit"},
		Fallback:  22,
		Group:     "schedule",
		Sequence:  2,
	},
}

// NewSignatureStore creates a file-based signature store.
// If configDir is empty, defaults to ~/.slipdeck/signatures.toml.
//
// The constructor does not perform any I/O - directory creation and
// the default file write happen lazily on first Signatures() call.
func NewSignatureStore(configDir string) (*SignatureStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".slipdeck")
	}

	return &SignatureStore{
		filePath: filepath.Join(configDir, "signatures.toml"),
	}, nil
}

// Signatures returns the slide signature table.
// On first call, initialises the signature file with the embedded
// defaults if it does not exist. Falls back to the embedded defaults
// when the file cannot be written.
func (s *SignatureStore) Signatures() ([]domain.SlideSignature, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return defaultSignatures, nil
	}

	s.mu.RLock()
	if s.cache != nil {
		sigs := s.cache
		s.mu.RUnlock()
		return sigs, nil
	}
	s.mu.RUnlock()

	sigs, err := s.loadFromFile()
	if err != nil {
		return nil, fmt.Errorf("load signatures: %w", err)
	}

	s.mu.Lock()
	s.cache = sigs
	s.mu.Unlock()
	return sigs, nil
}

// Reload clears the cache, forcing a fresh load from disk.
func (s *SignatureStore) Reload() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Path returns the signature file path.
func (s *SignatureStore) Path() string {
	return s.filePath
}

// initialise creates the signature file with defaults if absent.
// Called once via sync.Once on first Signatures().
func (s *SignatureStore) initialise() {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		s.initErr = fmt.Errorf("create config directory: %w", err)
		return
	}
	if _, err := os.Stat(s.filePath); err == nil {
		return
	}

	doc := signatureFile{Signatures: make([]signatureEntry, len(defaultSignatures))}
	for i, sig := range defaultSignatures {
		doc.Signatures[i] = signatureEntry{
			Type:      string(sig.Type),
			Primary:   sig.Primary,
			Secondary: sig.Secondary,
			Unique:    sig.Unique,
			Exclude:   sig.Exclude,
			Fallback:  sig.Fallback,
			Group:     sig.Group,
			Sequence:  sig.Sequence,
		}
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		s.initErr = fmt.Errorf("marshal default signatures: %w", err)
		return
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		s.initErr = fmt.Errorf("write default signatures: %w", err)
	}
}

// loadFromFile reads and validates the signature file.
func (s *SignatureStore) loadFromFile() ([]domain.SlideSignature, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, err
	}

	var doc signatureFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	if len(doc.Signatures) == 0 {
		return nil, fmt.Errorf("%w: %s defines no signatures", domain.ErrInvalidInput, s.filePath)
	}

	sigs := make([]domain.SlideSignature, len(doc.Signatures))
	for i, e := range doc.Signatures {
		if e.Type == "" || len(e.Primary) == 0 || e.Fallback < 1 {
			return nil, fmt.Errorf("%w: signature %d needs a type, primary patterns and a fallback position",
				domain.ErrInvalidInput, i+1)
		}
		sigs[i] = domain.SlideSignature{
			Type:      domain.SlideType(e.Type),
			Primary:   e.Primary,
			Secondary: e.Secondary,
			Unique:    e.Unique,
			Exclude:   e.Exclude,
			Fallback:  e.Fallback,
			Group:     e.Group,
			Sequence:  e.Sequence,
		}
	}
	return sigs, nil
}
