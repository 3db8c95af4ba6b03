package collections

import "github.com/JonMunkholm/gradabroad/internal/core"

func registerShortlists() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Name:  core.CollectionShortlists,
			Label: "Shortlists",
		},
		FieldSpecs: append(commonFields(),
			core.FieldSpec{Name: "deadline", Type: core.FieldDate},
			core.FieldSpec{Name: "status", Type: core.FieldText, MaxLength: 50},
		),
	})
}
