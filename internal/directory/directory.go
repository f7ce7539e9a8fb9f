// Package directory keeps point-in-time snapshots of the containers known to
// the runtime and resolves container identifiers against them.
package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/mo"

	"github.com/zorak1103/dockdeck/internal/engine"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
)

const snapshotKey = "snapshot"

// PublishedPort is one port mapping of a container.
type PublishedPort struct {
	IP          string            `json:"ip,omitempty"`
	PrivatePort uint16            `json:"private_port"`
	Protocol    string            `json:"protocol"`
	PublicPort  mo.Option[uint16] `json:"public_port"`
}

// ContainerRecord describes one container at the time its snapshot was taken.
type ContainerRecord struct {
	ID     string          `json:"id"`
	Names  []string        `json:"names"`
	Image  string          `json:"image"`
	State  string          `json:"state"`
	Status string          `json:"status"`
	Ports  []PublishedPort `json:"ports"`
}

// ShellName returns the first name without its leading path separator.
func (r ContainerRecord) ShellName() string {
	if len(r.Names) == 0 {
		return ""
	}
	return strings.TrimLeft(r.Names[0], "/")
}

// FirstPort returns the first published port entry, if any.
func (r ContainerRecord) FirstPort() mo.Option[PublishedPort] {
	if len(r.Ports) == 0 {
		return mo.None[PublishedPort]()
	}
	return mo.Some(r.Ports[0])
}

func (r ContainerRecord) clone() ContainerRecord {
	r.Names = append([]string(nil), r.Names...)
	r.Ports = append([]PublishedPort(nil), r.Ports...)
	return r
}

// Snapshot is an ordered, immutable list of records taken at one instant.
type Snapshot struct {
	records []ContainerRecord
	takenAt time.Time
}

// NewSnapshot builds a snapshot from records, keeping their order.
func NewSnapshot(records []ContainerRecord, takenAt time.Time) Snapshot {
	s := Snapshot{records: make([]ContainerRecord, len(records)), takenAt: takenAt}
	for i, r := range records {
		s.records[i] = r.clone()
	}
	return s
}

// Records returns copies of all records in runtime order.
func (s Snapshot) Records() []ContainerRecord {
	result := make([]ContainerRecord, len(s.records))
	for i, r := range s.records {
		result[i] = r.clone()
	}
	return result
}

// Len returns the number of records.
func (s Snapshot) Len() int {
	return len(s.records)
}

// TakenAt returns when the snapshot was taken.
func (s Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// Find returns the first record with exactly the given ID.
// A miss returns *apperrors.NotFoundError.
func (s Snapshot) Find(id string) (ContainerRecord, error) {
	for _, r := range s.records {
		if r.ID == id {
			return r.clone(), nil
		}
	}
	return ContainerRecord{}, &apperrors.NotFoundError{ContainerID: id}
}

// Option configures a Directory.
type Option func(*Directory)

// WithNamePattern restricts snapshots to containers whose name matches pattern.
func WithNamePattern(pattern string) Option {
	return func(d *Directory) {
		d.namePattern = pattern
	}
}

// WithSnapshotTTL reuses a snapshot for ttl instead of refreshing on every call.
// Reused snapshots may be stale by up to ttl.
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(d *Directory) {
		if ttl > 0 {
			d.cache = expirable.NewLRU[string, Snapshot](1, nil, ttl)
		}
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

// Directory produces snapshots from the runtime.
type Directory struct {
	lister      engine.Lister
	backend     string
	namePattern string
	cache       *expirable.LRU[string, Snapshot]
	now         func() time.Time
}

// New creates a Directory on top of the runtime lister.
func New(lister engine.Lister, opts ...Option) *Directory {
	d := &Directory{lister: lister, now: time.Now}
	if b, ok := lister.(interface{ Backend() string }); ok {
		d.backend = b.Backend()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Refresh lists every container visible to the runtime regardless of state.
// A runtime failure is returned as *apperrors.RuntimeConnectionError.
func (d *Directory) Refresh(ctx context.Context) (Snapshot, error) {
	if d.cache != nil {
		if snapshot, ok := d.cache.Get(snapshotKey); ok {
			return snapshot, nil
		}
	}

	containers, err := d.lister.ListContainers(ctx, engine.FilterOptions{
		IncludeAll:  true,
		NamePattern: d.namePattern,
	})
	if err != nil {
		var connErr *apperrors.RuntimeConnectionError
		if errors.As(err, &connErr) {
			return Snapshot{}, err
		}
		return Snapshot{}, &apperrors.RuntimeConnectionError{
			Backend:   d.backend,
			Operation: "ListContainers",
			Err:       err,
		}
	}

	records := make([]ContainerRecord, 0, len(containers))
	for _, c := range containers {
		records = append(records, newRecord(c))
	}
	snapshot := Snapshot{records: records, takenAt: d.now()}

	if d.cache != nil {
		d.cache.Add(snapshotKey, snapshot)
	}
	return snapshot, nil
}

// Lookup refreshes and resolves id in one step.
func (d *Directory) Lookup(ctx context.Context, id string) (ContainerRecord, error) {
	snapshot, err := d.Refresh(ctx)
	if err != nil {
		return ContainerRecord{}, err
	}
	return snapshot.Find(id)
}

// Invalidate drops a reused snapshot so the next Refresh hits the runtime.
func (d *Directory) Invalidate() {
	if d.cache != nil {
		d.cache.Purge()
	}
}

func newRecord(c engine.Container) ContainerRecord {
	ports := make([]PublishedPort, 0, len(c.Ports))
	for _, p := range c.Ports {
		public := mo.None[uint16]()
		if p.PublicPort != 0 {
			public = mo.Some(p.PublicPort)
		}
		ports = append(ports, PublishedPort{
			IP:          p.IP,
			PrivatePort: p.PrivatePort,
			Protocol:    p.Protocol,
			PublicPort:  public,
		})
	}

	return ContainerRecord{
		ID:     c.ID,
		Names:  append([]string(nil), c.Names...),
		Image:  c.Image,
		State:  c.State,
		Status: c.Status,
		Ports:  ports,
	}
}
