// Package core provides the business logic for importing CSV files into
// the Gradabroad collections.
//
// The package holds all domain logic independent of any transport. It is
// used by the HTTP handlers, the csvimport CLI and tests without
// modification.
//
// # Pipeline
//
// An import runs in four steps:
//
//  1. [SplitLine] tokenizes one CSV line, honoring quotes and doubled quotes.
//  2. [ParseDocument] turns the whole text into headers and aligned [Row]s.
//     Spreadsheets go through [ReadSpreadsheet]; [DecodeFile] picks by name.
//  3. [ValidateDocument] checks headers and cells against the collection.
//  4. [Service.Import] attaches the owner, normalizes list columns with a
//     [ChecklistParser] and writes the rows through a [Store].
//
// # Collection Registry
//
// Collections are registered at init time using [Register]:
//
//	core.Register(core.CollectionDefinition{
//	    Info: core.CollectionInfo{Name: core.CollectionShortlists, Label: "Shortlists"},
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: core.ColumnOwner, Type: core.FieldUUID},
//	        {Name: "university_name", Type: core.FieldText, Required: true, MaxLength: 100},
//	        {Name: "deadline", Type: core.FieldDate},
//	    },
//	})
//
// Every collection has a user_id uuid column. The collections subpackage
// registers the built-in collections; import it for its side effect.
//
// # Ownership
//
// Every written row belongs to an owner. A row's own non-empty user_id cell
// wins; otherwise the importing [Caller]'s OwnerID is used. Imports from an
// unauthenticated caller, or without data rows, never reach the store.
//
// # Write Modes
//
// [ModePerRow] writes in batches and isolates each row, reporting rejected
// rows by line. [ModeAtomic] sends one bulk insert and reports the store's
// error verbatim if it fails.
//
// # Error Handling
//
// Errors are mapped to user-friendly messages via [MapError]. Each error has
// a code (e.g. "IMP002") for support reference.
package core
