package collections

import "github.com/JonMunkholm/gradabroad/internal/core"

func registerPrograms() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Name:  core.CollectionPrograms,
			Label: "Programs",
		},
		FieldSpecs: append(commonFields(),
			core.FieldSpec{Name: "level", Type: core.FieldText, MaxLength: 50},
			core.FieldSpec{Name: "language", Type: core.FieldText, MaxLength: 50},
			core.FieldSpec{Name: "intake", Type: core.FieldText, MaxLength: 50},
		),
	})
}
