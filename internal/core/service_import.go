package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/JonMunkholm/gradabroad/internal/logging"
	"github.com/google/uuid"
)

// PreviewSampleSize is the number of rows echoed back by Preview.
const PreviewSampleSize = 5

// Preview is what an import would see, computed without touching the store.
type Preview struct {
	Collection Collection       `json:"collection"`
	SchemaHint string           `json:"schemaHint"`
	FileName   string           `json:"fileName,omitempty"`
	Headers    []string         `json:"headers"`
	RowCount   int              `json:"rowCount"`
	Sample     []Row            `json:"sample"`
	Validation ValidationReport `json:"validation"`
}

// Preview parses nothing itself; it validates doc against collection and
// reports headers, row count and problems.
func (s *Service) Preview(collection Collection, fileName string, doc Document) (*Preview, error) {
	def, err := Lookup(string(collection))
	if err != nil {
		return nil, err
	}

	sample := doc.Rows
	if len(sample) > PreviewSampleSize {
		sample = sample[:PreviewSampleSize]
	}

	return &Preview{
		Collection: collection,
		SchemaHint: def.Info.SchemaHint(),
		FileName:   fileName,
		Headers:    doc.Headers,
		RowCount:   len(doc.Rows),
		Sample:     sample,
		Validation: ValidateDocument(def, doc),
	}, nil
}

// Import validates req.Document and writes its rows for caller.
//
// Unknown collections, unauthenticated callers, empty documents, a caller
// with an import already running and bad headers are refused with an error
// before the store is contacted. Rows whose user_id names another owner
// fail unless the caller is trusted. Once rows are written the outcome is in the
// result: Inserted, per-row Failed entries, and Error holding the store's
// message verbatim when a write failed as a whole.
func (s *Service) Import(ctx context.Context, caller Caller, req ImportRequest) (*ImportResult, error) {
	def, err := Lookup(string(req.Collection))
	if err != nil {
		return nil, err
	}
	if !caller.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if len(req.Document.Rows) == 0 {
		return nil, ErrNoRows
	}

	mode := req.Mode
	if mode == "" {
		mode = ModePerRow
	}

	release, err := s.guard.Acquire(ctx, caller.OwnerID)
	if err != nil {
		return nil, err
	}
	defer release()

	report := ValidateDocument(def, req.Document)
	if err := report.HeaderError(); err != nil {
		return nil, err
	}

	result := &ImportResult{
		ImportID:   uuid.NewString(),
		Collection: req.Collection,
		FileName:   req.FileName,
		Mode:       mode,
		TotalRows:  len(req.Document.Rows),
	}

	log := logging.WithFields(ctx,
		"import_id", result.ImportID,
		"collection", req.Collection,
		"owner", caller.OwnerID,
		"mode", mode,
	)
	start := time.Now()

	invalid := report.invalidLines()
	records := make([]Record, 0, len(req.Document.Rows)-len(invalid))
	lines := make([]int, 0, cap(records))
	for i, row := range req.Document.Rows {
		line := i + 1
		if issues, bad := invalid[line]; bad {
			result.Failed = append(result.Failed, RowFailure{Line: line, Reason: issues.Reason()})
			continue
		}
		if owner := OwnerOf(row, caller.OwnerID); !caller.MayWriteFor(owner) {
			result.Failed = append(result.Failed, RowFailure{Line: line, Reason: ownershipReason(req.Collection)})
			continue
		}
		records = append(records, BuildRecord(def, row, caller.OwnerID, s.checklist))
		lines = append(lines, line)
	}

	switch {
	case len(records) == 0:
		// Every row was rejected; nothing to send.
	case mode == ModeAtomic && len(result.Failed) > 0:
		result.Error = fmt.Sprintf("%d rows were rejected; nothing was imported", len(result.Failed))
	case mode == ModeAtomic:
		if _, err := s.store.InsertRecords(ctx, req.Collection, records, ModeAtomic); err != nil {
			result.Error = err.Error()
		} else {
			result.Inserted = len(records)
		}
	default:
		s.insertBatches(ctx, req.Collection, records, lines, result)
	}

	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].Line < result.Failed[j].Line })

	if result.Error != "" {
		log.Warn("import failed",
			"error", result.Error,
			"inserted", result.Inserted,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		log.Info("import complete",
			"rows", result.TotalRows,
			"inserted", result.Inserted,
			"failed", len(result.Failed),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return result, nil
}

// ownershipReason is the failure reason for a row owned by someone other
// than the caller, worded like the database's row-level security error.
func ownershipReason(collection Collection) string {
	return fmt.Sprintf("new row violates row-level security policy for table %q", string(collection))
}

// insertBatches writes records batchSize at a time in per-row mode. A batch
// whose write fails as a whole stops the import; batches already written
// stay written.
func (s *Service) insertBatches(ctx context.Context, collection Collection, records []Record, lines []int, result *ImportResult) {
	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))

		failures, err := s.store.InsertRecords(ctx, collection, records[start:end], ModePerRow)
		if err != nil {
			result.Error = err.Error()
			return
		}

		for _, f := range failures {
			result.Failed = append(result.Failed, RowFailure{Line: lines[start+f.Index], Reason: f.Reason})
		}
		result.Inserted += end - start - len(failures)
	}
}
