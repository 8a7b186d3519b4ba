package store

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

const (
	defaultRole  = "Temp"
	defaultStart = "08:00"
	defaultEnd   = "16:00"
)

// RosterStore is the in-memory digital roster. It is safe for concurrent use.
type RosterStore struct {
	mu      sync.RWMutex
	entries []dto.RosterEntry
}

func NewRosterStore(seed []dto.RosterEntry) *RosterStore {
	return &RosterStore{entries: slices.Clone(seed)}
}

// LoadRosterFile reads a YAML list of roster entries.
func LoadRosterFile(path string) ([]dto.RosterEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var entries []dto.RosterEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}
	return entries, nil
}

func (s *RosterStore) List() []dto.RosterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

func (s *RosterStore) Get(id string) (dto.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return dto.RosterEntry{}, fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	return s.entries[i], nil
}

// Add appends a worker. Missing id, role and schedule are filled with
// defaults; the generated id is "TRB-<n>".
func (s *RosterStore) Add(entry dto.RosterEntry) (dto.RosterEntry, error) {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return dto.RosterEntry{}, fmt.Errorf("%w: name is required", dto.ErrInvalidRequest)
	}
	if entry.Role == "" {
		entry.Role = defaultRole
	}
	if entry.ScheduledStart == "" {
		entry.ScheduledStart = defaultStart
	}
	if entry.ScheduledEnd == "" {
		entry.ScheduledEnd = defaultEnd
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = s.nextID()
	} else if s.indexOf(entry.ID) >= 0 {
		return dto.RosterEntry{}, fmt.Errorf("worker %s: %w", entry.ID, ErrConflict)
	}

	s.entries = append(s.entries, entry)
	return entry, nil
}

// Update applies the non-nil fields of u to the worker with the given id.
func (s *RosterStore) Update(id string, u dto.RosterUpdate) (dto.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return dto.RosterEntry{}, fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}

	e := s.entries[i]
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return dto.RosterEntry{}, fmt.Errorf("%w: name cannot be empty", dto.ErrInvalidRequest)
		}
		e.Name = strings.TrimSpace(*u.Name)
	}
	setIfPresent(&e.Role, u.Role)
	setIfPresent(&e.ScheduledStart, u.ScheduledStart)
	setIfPresent(&e.ScheduledEnd, u.ScheduledEnd)
	setIfPresent(&e.GPSCheckIn, u.GPSCheckIn)
	setIfPresent(&e.GPSCheckOut, u.GPSCheckOut)
	setIfPresent(&e.Supervisor, u.Supervisor)
	if u.TrustScore != nil {
		e.TrustScore = *u.TrustScore
	}

	s.entries[i] = e
	return e, nil
}

func (s *RosterStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return nil
}

// Shifts projects the roster into today's digital shifts. A worker with a
// GPS check-in is COMPLETED, otherwise SCHEDULED.
func (s *RosterStore) Shifts() []dto.DigitalShift {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts := make([]dto.DigitalShift, 0, len(s.entries))
	for _, e := range s.entries {
		shift := dto.DigitalShift{
			ShiftID:        "SH-" + e.ID,
			WorkerID:       e.ID,
			WorkerName:     e.Name,
			ScheduledStart: e.ScheduledStart,
			ScheduledEnd:   e.ScheduledEnd,
			GPSCheckIn:     gpsValue(e.GPSCheckIn),
			GPSCheckOut:    gpsValue(e.GPSCheckOut),
			Status:         dto.ShiftScheduled,
			Supervisor:     e.Supervisor,
		}
		if shift.GPSCheckIn != nil {
			shift.Status = dto.ShiftCompleted
		}
		shifts = append(shifts, shift)
	}
	return shifts
}

func (s *RosterStore) indexOf(id string) int {
	return slices.IndexFunc(s.entries, func(e dto.RosterEntry) bool { return e.ID == id })
}

func (s *RosterStore) nextID() string {
	for n := len(s.entries) + 200; ; n++ {
		id := fmt.Sprintf("TRB-%d", n)
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// gpsValue treats "" and "-" as no signal.
func gpsValue(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" || v == "-" {
		return nil
	}
	return &v
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
