// Package session holds the artifacts of one QA session and its event log.
package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
	"github.com/google/uuid"
)

// Store is the artifact store for one session. A successful generation
// overwrites the previous artifact of the same kind; a failed one is kept
// aside and never replaces good content.
//
// Store is not safe for concurrent use.
type Store struct {
	id          string
	requirement string

	artifacts map[models.ArtifactKind]models.Artifact
	failures  map[models.ArtifactKind]models.Outcome
	seq       int

	now func() time.Time
}

// NewStore creates an empty store with a fresh session ID.
func NewStore() *Store {
	return &Store{
		id:        uuid.NewString(),
		artifacts: map[models.ArtifactKind]models.Artifact{},
		failures:  map[models.ArtifactKind]models.Outcome{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ID returns the session ID.
func (s *Store) ID() string {
	return s.id
}

// SetRequirement replaces the requirement text.
func (s *Store) SetRequirement(text string) {
	s.requirement = text
}

// Requirement returns the current requirement text, or "".
func (s *Store) Requirement() string {
	return s.requirement
}

// Get returns the artifact stored under kind.
func (s *Store) Get(kind models.ArtifactKind) (models.Artifact, bool) {
	a, ok := s.artifacts[kind]
	return a, ok
}

// Put stores content under kind, overwriting any previous artifact, and
// clears any recorded failure for kind.
func (s *Store) Put(kind models.ArtifactKind, content string) (models.Artifact, error) {
	if _, err := models.ParseArtifactKind(string(kind)); err != nil {
		return models.Artifact{}, err
	}

	s.seq++
	a := models.Artifact{
		Kind:       kind,
		Content:    content,
		Seq:        s.seq,
		ProducedAt: s.now(),
	}
	s.artifacts[kind] = a
	delete(s.failures, kind)
	return a, nil
}

// Record stores the result of a generation for kind. A successful outcome is
// stored with Put; a failure is remembered for LastFailure and leaves the
// existing artifact untouched.
func (s *Store) Record(kind models.ArtifactKind, o models.Outcome) error {
	if o.OK() {
		_, err := s.Put(kind, o.Content)
		return err
	}

	if _, err := models.ParseArtifactKind(string(kind)); err != nil {
		return err
	}
	s.failures[kind] = o
	return nil
}

// LastFailure returns the failure recorded for kind since its last success.
func (s *Store) LastFailure(kind models.ArtifactKind) (models.Outcome, bool) {
	o, ok := s.failures[kind]
	return o, ok
}

// List returns every stored artifact in generation order.
func (s *Store) List() []models.Artifact {
	list := make([]models.Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		list = append(list, a)
	}
	slices.SortFunc(list, func(a, b models.Artifact) int {
		return a.Seq - b.Seq
	})
	return list
}

// Reset clears the requirement, artifacts and failures. The session ID is kept.
func (s *Store) Reset() {
	s.requirement = ""
	s.artifacts = map[models.ArtifactKind]models.Artifact{}
	s.failures = map[models.ArtifactKind]models.Outcome{}
	s.seq = 0
}

// Summary describes the store contents for logs.
func (s *Store) Summary() string {
	return fmt.Sprintf("session %s: %d artifact(s), %d failure(s)", s.id, len(s.artifacts), len(s.failures))
}
