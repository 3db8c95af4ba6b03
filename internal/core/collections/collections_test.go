package collections

import (
	"context"
	"testing"

	"github.com/JonMunkholm/gradabroad/internal/config"
	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCollections(t *testing.T) {
	tests := []struct {
		name core.Collection
		hint string
	}{
		{core.CollectionPrograms, "user_id, university_name, course_name, level, language, intake"},
		{core.CollectionShortlists, "user_id, university_name, course_name, deadline, status"},
		{core.CollectionApplicationTracker, "user_id, university_name, course_name, status, checklist"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			def, ok := core.Get(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.hint, def.Info.SchemaHint())

			for _, col := range []string{"university_name", "course_name"} {
				spec, ok := def.Spec(col)
				require.True(t, ok)
				assert.True(t, spec.Required)
				assert.Equal(t, MaxNameLength, spec.MaxLength)
			}
		})
	}
}

type captureStore struct {
	records []core.Record
}

func (c *captureStore) InsertRecords(ctx context.Context, collection core.Collection, records []core.Record, mode core.ImportMode) ([]core.InsertFailure, error) {
	c.records = append(c.records, records...)
	return nil, nil
}

func (c *captureStore) SelectRecords(context.Context, core.Collection, string, int) ([]core.Record, error) {
	return nil, nil
}

func (c *captureStore) UpdateRecord(context.Context, core.Collection, string, string, core.Record) (bool, error) {
	return false, nil
}

func (c *captureStore) DeleteRecord(context.Context, core.Collection, string, string) (bool, error) {
	return false, nil
}

func TestApplicationTrackerImport(t *testing.T) {
	store := &captureStore{}
	svc := core.NewService(store, config.ImportConfig{BatchSize: 100})

	text := "university_name,course_name,status,checklist\n" +
		"TU Munich,Informatics,applied,Passport; IELTS ; APS\n" +
		"RWTH,Physics,planned,\"['Passport','IELTS']\"\n" +
		"LMU,Biology,planned,\"[Passport, IELTS\"\n"

	res, err := svc.Import(context.Background(), core.Caller{OwnerID: "11111111-1111-1111-1111-111111111111"}, core.ImportRequest{
		Collection: core.CollectionApplicationTracker,
		Document:   core.ParseDocument(text),
	})
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 rows into application_tracker.", res.Message())

	require.Len(t, store.records, 3)
	assert.Equal(t, []string{"Passport", "IELTS", "APS"}, store.records[0]["checklist"])
	assert.Equal(t, []string{"Passport", "IELTS"}, store.records[1]["checklist"])
	assert.Equal(t, []string{"Passport", "IELTS"}, store.records[2]["checklist"])
}
