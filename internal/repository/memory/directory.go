package memory

import (
	"context"
	"sync"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

// Directory is an in-memory PersonDirectory.
type Directory struct {
	mu     sync.RWMutex
	people map[int64]*model.Person
}

func NewDirectory(people ...*model.Person) *Directory {
	d := &Directory{people: make(map[int64]*model.Person)}
	for _, p := range people {
		d.Put(p)
	}
	return d
}

func (d *Directory) Put(p *model.Person) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := *p
	d.people[p.ID] = &c
}

func (d *Directory) GetByID(_ context.Context, id int64) (*model.Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.people[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// Settings is an in-memory SettingsStore.
type Settings struct {
	mu    sync.RWMutex
	hours *model.OpeningHours
}

func NewSettings(hours *model.OpeningHours) *Settings {
	return &Settings{hours: hours}
}

func (s *Settings) OpeningHours(_ context.Context) (*model.OpeningHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hours == nil {
		return nil, nil
	}
	h := *s.hours
	return &h, nil
}

func (s *Settings) UpdateOpeningHours(_ context.Context, hours model.OpeningHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hours = &hours
	return nil
}
