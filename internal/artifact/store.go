package artifact

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
)

// Store keeps one artifact per method in a directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: slog.Default().With("component", "artifact-store"),
	}
}

// Path returns the artifact file for method.
func (s *Store) Path(method faq.Method) string {
	return filepath.Join(s.dir, "faq_index_"+method.String()+FileExtension)
}

// Save writes p under its method's path, replacing any previous artifact.
func (s *Store) Save(p *index.Payload) error {
	path := s.Path(p.Method)
	header, err := Write(path, p)
	if err != nil {
		return err
	}
	s.logger.Info("artifact saved",
		"method", p.Method,
		"path", path,
		"examples", header.ExampleCount,
		"bytes", header.BodyLen+uint64(HeaderSize),
	)
	return nil
}

// Load reads the artifact for method.
func (s *Store) Load(method faq.Method) (*index.Payload, error) {
	path := s.Path(method)
	p, header, err := Read(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("artifact loaded",
		"method", method,
		"path", path,
		"examples", header.ExampleCount,
		"created_at", header.Created(),
	)
	return p, nil
}

// Dir returns the directory artifacts are kept in.
func (s *Store) Dir() string { return s.dir }

// Trained lists the methods that have an artifact file, in faq.Methods
// order. It does not verify the files.
func (s *Store) Trained() []faq.Method {
	var trained []faq.Method
	for _, method := range faq.Methods() {
		if info, err := os.Stat(s.Path(method)); err == nil && info.Mode().IsRegular() {
			trained = append(trained, method)
		}
	}
	return trained
}
