package locodb

import (
	"sort"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/track"
)

// Memory is an in-memory DB.
type Memory struct {
	lock    sync.RWMutex
	records map[Key]*Record
}

// NewMemory creates an empty Memory DB.
func NewMemory() *Memory {
	return &Memory{records: make(map[Key]*Record)}
}

func validAddr(kind Kind, addr int) bool {
	return addr >= 1 && addr <= kind.MaxAddress()
}

func cloneRecord(r *Record) Record {
	c := *r
	if r.Capabilities != nil {
		c.Capabilities = append([]byte(nil), r.Capabilities...)
	}
	return c
}

// Get implements DB.
func (m *Memory) Get(key Key) (Record, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	r, ok := m.records[key]
	if !ok {
		return Record{}, false
	}
	return cloneRecord(r), true
}

// Put implements DB.
func (m *Memory) Put(r Record) error {
	if !validAddr(r.Kind, r.Addr) {
		return ErrInvalidAddress
	}
	c := cloneRecord(&r)
	m.lock.Lock()
	m.records[r.Key()] = &c
	m.lock.Unlock()
	if glog.V(2) {
		glog.Infof("locodb: put %s %q", r.Key(), r.Name)
	}
	return nil
}

// Delete implements DB.
func (m *Memory) Delete(key Key) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.records[key]; !ok {
		return ErrNotFound
	}
	delete(m.records, key)
	return nil
}

// Update implements DB.
func (m *Memory) Update(key Key, fn func(*Record)) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	r, ok := m.records[key]
	if !ok {
		return ErrNotFound
	}
	c := cloneRecord(r)
	fn(&c)
	c.Kind, c.Addr = key.Kind, key.Addr
	m.records[key] = &c
	return nil
}

// FindByUID implements DB.
func (m *Memory) FindByUID(vendor uint16, uid uint32) (Record, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for _, r := range m.records {
		if r.VendorID == vendor && r.UID == uid && r.UID != 0 {
			return cloneRecord(r), true
		}
	}
	return Record{}, false
}

// FreeAddress implements DB.
func (m *Memory) FreeAddress(kind Kind, from int) (int, error) {
	if from < 1 {
		from = 1
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	for addr := from; addr <= kind.MaxAddress(); addr++ {
		if _, ok := m.records[Key{Kind: kind, Addr: addr}]; !ok {
			return addr, nil
		}
	}
	return 0, ErrFull
}

func (m *Memory) sortedKeys() []Key {
	keys := make([]Key, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Addr < keys[j].Addr
	})
	return keys
}

// Each implements DB.
func (m *Memory) Each(fn func(Record) bool) {
	m.lock.RLock()
	keys := m.sortedKeys()
	recs := make([]Record, len(keys))
	for i, k := range keys {
		recs[i] = cloneRecord(m.records[k])
	}
	m.lock.RUnlock()
	for _, r := range recs {
		if !fn(r) {
			return
		}
	}
}

// SetLive implements DB.
func (m *Memory) SetLive(addr int, live bool) error {
	return m.Update(Key{Kind: KindLoco, Addr: addr}, func(r *Record) { r.Live = live })
}

// NextLive implements DB.
func (m *Memory) NextLive(after int) (track.LocoState, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	var first, next *Record
	for k, r := range m.records {
		if k.Kind != KindLoco || !r.Live {
			continue
		}
		if first == nil || r.Addr < first.Addr {
			first = r
		}
		if r.Addr > after && (next == nil || r.Addr < next.Addr) {
			next = r
		}
	}
	if next == nil {
		next = first
	}
	if next == nil {
		return track.LocoState{}, false
	}
	return next.State(), true
}
