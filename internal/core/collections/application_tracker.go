package collections

import "github.com/JonMunkholm/gradabroad/internal/core"

func registerApplicationTracker() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Name:  core.CollectionApplicationTracker,
			Label: "Application Tracker",
		},
		FieldSpecs: append(commonFields(),
			core.FieldSpec{Name: "status", Type: core.FieldText, MaxLength: 50},
			core.FieldSpec{Name: core.ColumnChecklist, Type: core.FieldList},
		),
		ListColumns: []string{core.ColumnChecklist},
	})
}
