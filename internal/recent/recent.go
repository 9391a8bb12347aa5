// Package recent keeps the locally persisted list of recently visited rooms.
package recent

import (
	"encoding/json"
	"os"
	"path/filepath"

	"bubblechat/internal/utils"
)

// Capacity bounds the list; the oldest entry is evicted beyond it.
const Capacity = 5

const fileName = "chat-list.json"

// List is an ordered set of room ids, oldest first. Every mutation is
// written back to its file.
type List struct {
	path string
	ids  []string
}

// DefaultPath returns ~/.bubblechat/chat-list.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".bubblechat", fileName), nil
}

// Load restores the list from path. A missing, unreadable or malformed file
// yields an empty list, never an error: stale local state must not block
// startup.
func Load(path string) *List {
	l := &List{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return l
	}
	l.ids = ids
	return l
}

// IDs returns a copy of the list, oldest first.
func (l *List) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Contains reports whether id is in the list.
func (l *List) Contains(id string) bool {
	for _, v := range l.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id to the list. An id already present keeps its position (no
// promotion to most-recent). At capacity the oldest entry is dropped first.
func (l *List) Add(id string) error {
	if id == "" || l.Contains(id) {
		return nil
	}
	if len(l.ids) >= Capacity {
		l.ids = l.ids[len(l.ids)-Capacity+1:]
	}
	l.ids = append(l.ids, id)
	return l.save()
}

// Remove filters id out of the list. Choosing a fallback room when the
// active one is removed is the caller's job.
func (l *List) Remove(id string) error {
	kept := l.ids[:0]
	for _, v := range l.ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	l.ids = kept
	return l.save()
}

func (l *List) save() error {
	data, err := json.Marshal(l.ids)
	if err != nil {
		return utils.LocalStateError("marshal recent list").WithDetails(err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return utils.LocalStateError("create state dir").WithDetails(err.Error())
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return utils.LocalStateError("write recent list").WithDetails(err.Error())
	}
	return nil
}
