package core

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
)

const testCollection Collection = "test_tracker"

func init() {
	Register(CollectionDefinition{
		Info: CollectionInfo{Name: testCollection, Label: "Test Tracker"},
		FieldSpecs: []FieldSpec{
			{Name: ColumnOwner, Type: FieldUUID},
			{Name: "university_name", Type: FieldText, Required: true, MaxLength: 10},
			{Name: "deadline", Type: FieldDate},
			{Name: ColumnChecklist, Type: FieldText},
		},
		ListColumns: []string{ColumnChecklist},
	})
}

func testDefinition() CollectionDefinition {
	def, _ := Get(testCollection)
	return def
}

const (
	ownerA = "11111111-1111-1111-1111-111111111111"
	ownerB = "22222222-2222-2222-2222-222222222222"
)

type insertCall struct {
	collection Collection
	records    []Record
	mode       ImportMode
}

// fakeStore records calls. Rows whose university_name is in reject are
// reported as per-row failures; err fails every insert after the first
// errAfter calls as a whole.
type fakeStore struct {
	mu       sync.Mutex
	inserts  []insertCall
	reject   map[string]string
	err      error
	errAfter int
	block   chan struct{}
	entered chan struct{}

	selected []Record
	updated  map[string]Record
	found    bool
}

func (f *fakeStore) InsertRecords(ctx context.Context, collection Collection, records []Record, mode ImportMode) ([]InsertFailure, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.inserts = append(f.inserts, insertCall{collection, records, mode})
	if f.err != nil && len(f.inserts) > f.errAfter {
		return nil, f.err
	}

	var failures []InsertFailure
	for i, rec := range records {
		name, _ := rec["university_name"].(pgtype.Text)
		if reason, bad := f.reject[name.String]; bad {
			failures = append(failures, InsertFailure{Index: i, Reason: reason})
		}
	}
	return failures, nil
}

func (f *fakeStore) SelectRecords(ctx context.Context, collection Collection, ownerID string, limit int) ([]Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.selected) > limit {
		return f.selected[:limit], nil
	}
	return f.selected, nil
}

func (f *fakeStore) UpdateRecord(ctx context.Context, collection Collection, ownerID, id string, fields Record) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.updated == nil {
		f.updated = make(map[string]Record)
	}
	f.updated[id] = fields
	return f.found, nil
}

func (f *fakeStore) DeleteRecord(ctx context.Context, collection Collection, ownerID, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.found, nil
}

func (f *fakeStore) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserts)
}

func (f *fakeStore) allRecords() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Record
	for _, c := range f.inserts {
		out = append(out, c.records...)
	}
	return out
}
