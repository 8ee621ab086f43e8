package sections

import navsections "github.com/goliatone/go-navigation/sections"

type (
	Menu               = navsections.Menu
	Section            = navsections.Section
	SectionTranslation = navsections.SectionTranslation
)

const (
	SectionKindLink      = navsections.SectionKindLink
	SectionKindGroup     = navsections.SectionKindGroup
	SectionKindSeparator = navsections.SectionKindSeparator
)
