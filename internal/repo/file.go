package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"github.com/pkordes/dayplanner/internal/domain"
)

// FileStore keeps every day record and catalog entry as one JSON document
// under a base directory. Keys are slash-separated paths:
//
//	<tripID>/days/<dayNumber>
//	<tripID>/pois/<poiID>
//	<tripID>/transportations/<transportationID>
//	index/<dayID>  (holds the day's key)
//
// FileStore implements both DayRepo and Catalog.
type FileStore struct {
	d   *diskv.Diskv
	mu  sync.Mutex // serializes read-modify-write of day documents
	now func() time.Time
}

// NewFileStore opens (creating as needed) a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		now: time.Now,
	}
}

var (
	_ DayRepo = (*FileStore)(nil)
	_ Catalog = (*FileStore)(nil)
)

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1] + ".json",
	}
}

func pathToKey(pk *diskv.PathKey) string {
	name := strings.TrimSuffix(pk.FileName, ".json")
	return strings.Join(append(append([]string{}, pk.Path...), name), "/")
}

func dayKey(tripID uuid.UUID, dayNumber int) string {
	return tripID.String() + "/days/" + strconv.Itoa(dayNumber)
}

func indexKey(id uuid.UUID) string { return "index/" + id.String() }

func catalogKey(tripID uuid.UUID, kind, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: catalog id %q", domain.ErrValidation, id)
	}
	return tripID.String() + "/" + kind + "/" + id, nil
}

// fileDay is the on-disk document for a day. DayRecord itself carries no
// JSON tags; the document shape is fixed here.
type fileDay struct {
	ID                     uuid.UUID                    `json:"id"`
	TripID                 uuid.UUID                    `json:"tripId"`
	DayNumber              int                          `json:"dayNumber"`
	Date                   string                       `json:"date,omitempty"`
	LocationContext        string                       `json:"locationContext,omitempty"`
	AccommodationOptions   []domain.AccommodationOption `json:"accommodationOptions"`
	Activities             []domain.ActivityEntry       `json:"activities"`
	TransportationSegments []domain.TransportSegmentRef `json:"transportationSegments"`
	CreatedAt              time.Time                    `json:"createdAt"`
	UpdatedAt              time.Time                    `json:"updatedAt"`
}

func toFileDay(d domain.DayRecord) fileDay {
	return fileDay{
		ID:                     d.ID,
		TripID:                 d.TripID,
		DayNumber:              d.DayNumber,
		Date:                   d.Date,
		LocationContext:        d.LocationContext,
		AccommodationOptions:   nonNil(d.AccommodationOptions),
		Activities:             nonNil(d.Activities),
		TransportationSegments: nonNil(d.TransportationSegments),
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

func (f fileDay) record() domain.DayRecord {
	return domain.DayRecord{
		ID:                     f.ID,
		TripID:                 f.TripID,
		DayNumber:              f.DayNumber,
		Date:                   f.Date,
		LocationContext:        f.LocationContext,
		AccommodationOptions:   f.AccommodationOptions,
		Activities:             f.Activities,
		TransportationSegments: f.TransportationSegments,
		CreatedAt:              f.CreatedAt,
		UpdatedAt:              f.UpdatedAt,
	}
}

func (s *FileStore) readJSON(key string, v any) error {
	b, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(b, v)
}

func (s *FileStore) writeJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.d.Write(key, b)
}

func (s *FileStore) readDay(key string) (domain.DayRecord, error) {
	var f fileDay
	if err := s.readJSON(key, &f); err != nil {
		return domain.DayRecord{}, err
	}
	return f.record(), nil
}

func (s *FileStore) GetByTripAndNumber(_ context.Context, tripID uuid.UUID, dayNumber int) (domain.DayRecord, error) {
	d, err := s.readDay(dayKey(tripID, dayNumber))
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.GetByTripAndNumber: %w", err)
	}
	return d, nil
}

func (s *FileStore) GetByID(_ context.Context, id uuid.UUID) (domain.DayRecord, error) {
	d, err := s.getByID(id)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.GetByID: %w", err)
	}
	return d, nil
}

func (s *FileStore) getByID(id uuid.UUID) (domain.DayRecord, error) {
	var key string
	if err := s.readJSON(indexKey(id), &key); err != nil {
		return domain.DayRecord{}, err
	}
	return s.readDay(key)
}

func (s *FileStore) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error) {
	// Stops the key walker when the loop returns early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var days []domain.DayRecord
	for key := range s.d.KeysPrefix(tripID.String()+"/days/", ctx.Done()) {
		d, err := s.readDay(key)
		if err != nil {
			return nil, fmt.Errorf("repo.FileStore.ListByTrip: %s: %w", key, err)
		}
		days = append(days, d)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.FileStore.ListByTrip: %w", err)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days, nil
}

func (s *FileStore) Create(_ context.Context, day domain.DayRecord) (domain.DayRecord, error) {
	if err := validDate(day.Date); err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.Create: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(day.TripID, day.DayNumber)
	if existing, err := s.readDay(key); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.Create: %w", err)
	}

	now := s.now().UTC()
	day.ID = uuid.New()
	day.CreatedAt, day.UpdatedAt = now, now
	doc := toFileDay(day)
	if err := s.writeJSON(key, doc); err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.Create: %w", err)
	}
	if err := s.writeJSON(indexKey(day.ID), key); err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.Create: index: %w", err)
	}
	return doc.record(), nil
}

func (s *FileStore) Update(_ context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error) {
	if patch.Date != nil {
		if err := validDate(*patch.Date); err != nil {
			return domain.DayRecord{}, fmt.Errorf("repo.FileStore.Update: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getByID(id)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.Update: %w", err)
	}
	next := patch.Apply(current)
	next.UpdatedAt = s.now().UTC()
	doc := toFileDay(next)
	if err := s.writeJSON(dayKey(next.TripID, next.DayNumber), doc); err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.FileStore.Update: %w", err)
	}
	return doc.record(), nil
}

func (s *FileStore) ListPOIs(ctx context.Context, tripID uuid.UUID) ([]domain.POI, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var pois []domain.POI
	for key := range s.d.KeysPrefix(tripID.String()+"/pois/", ctx.Done()) {
		var p domain.POI
		if err := s.readJSON(key, &p); err != nil {
			return nil, fmt.Errorf("repo.FileStore.ListPOIs: %s: %w", key, err)
		}
		p.TripID = tripID
		pois = append(pois, p)
	}
	sort.Slice(pois, func(i, j int) bool { return pois[i].ID < pois[j].ID })
	return pois, nil
}

func (s *FileStore) ListTransportations(ctx context.Context, tripID uuid.UUID) ([]domain.Transportation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var out []domain.Transportation
	for key := range s.d.KeysPrefix(tripID.String()+"/transportations/", ctx.Done()) {
		var t domain.Transportation
		if err := s.readJSON(key, &t); err != nil {
			return nil, fmt.Errorf("repo.FileStore.ListTransportations: %s: %w", key, err)
		}
		t.TripID = tripID
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStore) PutPOI(_ context.Context, p domain.POI) error {
	key, err := catalogKey(p.TripID, "pois", p.ID)
	if err != nil {
		return fmt.Errorf("repo.FileStore.PutPOI: %w", err)
	}
	if err := s.writeJSON(key, p); err != nil {
		return fmt.Errorf("repo.FileStore.PutPOI: %w", err)
	}
	return nil
}

func (s *FileStore) PutTransportation(_ context.Context, t domain.Transportation) error {
	key, err := catalogKey(t.TripID, "transportations", t.ID)
	if err != nil {
		return fmt.Errorf("repo.FileStore.PutTransportation: %w", err)
	}
	t.Segments = nonNil(t.Segments)
	if err := s.writeJSON(key, t); err != nil {
		return fmt.Errorf("repo.FileStore.PutTransportation: %w", err)
	}
	return nil
}
