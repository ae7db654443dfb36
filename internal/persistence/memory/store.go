// Package memory keeps every repository in process memory. It is used when no database is
// configured and by tests.
package memory

import (
	"sync"

	"replyflow/internal/core"
)

type externalKey struct {
	platform core.Platform
	id       string
}

type Store struct {
	mu sync.Mutex

	nextID uint

	posts         map[uint]core.Post
	postsByKey    map[externalKey]uint
	comments      map[uint]core.Comment
	commentsByKey map[externalKey]uint
	replies       map[uint]core.Reply
	settings      map[string]string
	metrics       []core.Metric
	crmActions    []core.CRMAction
}

func New() *Store {
	return &Store{
		posts:         map[uint]core.Post{},
		postsByKey:    map[externalKey]uint{},
		comments:      map[uint]core.Comment{},
		commentsByKey: map[externalKey]uint{},
		replies:       map[uint]core.Reply{},
		settings:      map[string]string{},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Posts() *Posts {
	return &Posts{store: s}
}

func (s *Store) Comments() *Comments {
	return &Comments{store: s}
}

func (s *Store) Replies() *Replies {
	return &Replies{store: s}
}

func (s *Store) Settings() *Settings {
	return &Settings{store: s}
}

func (s *Store) Analytics() *Analytics {
	return &Analytics{store: s}
}

func (s *Store) CRMActions() *CRMActions {
	return &CRMActions{store: s}
}

// Metrics returns a copy of every recorded metric.
func (s *Store) Metrics() []core.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]core.Metric(nil), s.metrics...)
}
