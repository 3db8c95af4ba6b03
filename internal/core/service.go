package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/gradabroad/internal/config"
	"github.com/google/uuid"
)

// DefaultListLimit caps ListRecords when no limit is given.
const DefaultListLimit = 100

// Service provides the import pipeline and owner-scoped record access.
// It holds no session state; every call names its Caller.
type Service struct {
	store     Store
	guard     *ImportGuard
	checklist ChecklistParser
	batchSize int
}

// NewService creates a Service writing to store.
func NewService(store Store, cfg config.ImportConfig) *Service {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 500
	}
	return &Service{
		store:     store,
		guard:     NewImportGuard(cfg.MaxConcurrent, cfg.MaxWaitTime),
		checklist: NewChecklistParser(cfg.ChecklistDelimiter),
		batchSize: batch,
	}
}

// Checklist returns the parser used for list columns.
func (s *Service) Checklist() ChecklistParser {
	return s.checklist
}

// GuardStatus reports running imports.
func (s *Service) GuardStatus() ImportGuardStatus {
	return s.guard.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.guard.WaitForDrain(ctx)
}

// ListRecords returns the caller's rows in collection, newest first.
func (s *Service) ListRecords(ctx context.Context, caller Caller, collection Collection, limit int) ([]Record, error) {
	if _, err := Lookup(string(collection)); err != nil {
		return nil, err
	}
	if !caller.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	records, err := s.store.SelectRecords(ctx, collection, caller.OwnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	return records, nil
}

// UpdateRecord changes the given cells of one of the caller's rows.
// Cells are validated and converted like imported cells; the owner column
// cannot be changed.
func (s *Service) UpdateRecord(ctx context.Context, caller Caller, collection Collection, id string, fields Row) error {
	def, err := Lookup(string(collection))
	if err != nil {
		return err
	}
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields given", ErrInvalidRecord)
	}

	rec := make(Record, len(fields))
	var problems []string
	for col, raw := range fields {
		spec, ok := def.Spec(col)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s: unknown column", col))
			continue
		case spec.Name == ColumnOwner:
			problems = append(problems, fmt.Sprintf("%s: cannot be changed", col))
			continue
		}
		if err := ValidateCell(spec, raw); err != nil {
			problems = append(problems, ValidationError{Field: spec.Name, Message: err.Error()}.Error())
			continue
		}
		if def.isListColumn(spec.Name) {
			spec.Type = FieldList
		}
		rec[spec.Name] = ConvertCell(spec, raw, s.checklist)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, "; "))
	}

	found, err := s.store.UpdateRecord(ctx, collection, caller.OwnerID, id, rec)
	if err != nil {
		return fmt.Errorf("update %s: %w", collection, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// DeleteRecord removes one of the caller's rows.
func (s *Service) DeleteRecord(ctx context.Context, caller Caller, collection Collection, id string) error {
	if _, err := Lookup(string(collection)); err != nil {
		return err
	}
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	found, err := s.store.DeleteRecord(ctx, collection, caller.OwnerID, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
