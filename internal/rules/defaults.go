package rules

// NewDefaultRegistry builds the built-in rule table in its canonical order.
// The returned registry is owned by the caller, who may add, remove or
// replace entries before handing it to the validator.
func NewDefaultRegistry(versions FormatVersions) *Registry {
	if versions == nil {
		versions = DefaultFormatVersions()
	}
	reg := NewRegistry()
	for _, r := range []Rule{
		{
			Key:         "manifest/has-modules",
			Severity:    SeverityError,
			Description: `The "modules" array must be present and non-empty in manifest.json`,
			Apply:       evalManifestHasModules,
		},
		{
			Key:         "manifest/has-description",
			Severity:    SeverityError,
			Description: `The manifest header "description" field must be present and non-empty`,
			Apply:       evalManifestHasDescription,
		},
		{
			Key:         "manifest/dependencies-exist",
			Severity:    SeverityWarning,
			Description: "Manifest dependencies should be valid UUIDs of packages present in the project",
			Apply:       evalManifestDependencies,
		},
		{
			Key:         "json/has-format-version",
			Severity:    SeverityError,
			Description: `Content documents must declare a "format_version"`,
			Apply:       evalHasFormatVersion,
		},
		{
			Key:         "json/valid-format-version",
			Severity:    SeverityWarning,
			Description: `The "format_version" should be a known safe version for the content type`,
			Apply:       formatVersionKnown(versions),
		},
		{
			Key:         "json/valid-top-level-key",
			Severity:    SeverityError,
			Description: `Content documents must carry their type's top-level key (e.g. "minecraft:item")`,
			Apply:       evalTopLevelKey,
		},
		{
			Key:         "json/not-empty-or-corrupt",
			Severity:    SeverityError,
			Description: "Content documents must be valid, non-empty JSON objects",
			Apply:       evalNotEmptyOrCorrupt,
		},
		{
			Key:         "id/valid-names",
			Severity:    SeverityError,
			Description: `Identifiers must follow "namespace:name" with lowercase letters, digits and underscores`,
			Apply:       evalIdentifierFormat,
		},
		{
			Key:         "id/no-duplicate-filenames",
			Severity:    SeverityError,
			Description: "Filenames in the same folder must be unique ignoring case",
			Apply:       evalNoDuplicateFilenames,
		},
		{
			Key:         "id/namespace-whitelist",
			Severity:    SeverityWarning,
			Description: "Identifiers should use the project namespace unless explicitly allowed",
			Apply:       evalNamespaceWhitelist,
		},
		{
			Key:         "texture/exists",
			Severity:    SeverityWarning,
			Description: "Referenced textures should exist in the resource package",
			Apply:       evalTextureReferences,
		},
		{
			Key:         "fs/no-junk-root-files",
			Severity:    SeverityWarning,
			Description: "OS and editor artifacts (.DS_Store, Thumbs.db, ...) should not sit in package roots",
			Apply:       evalNoJunkFiles,
		},
		{
			Key:         "fs/unexpected-top-level-files",
			Severity:    SeverityWarning,
			Description: "Unrecognized entries at the top level of a package should be reviewed",
			Apply:       evalUnexpectedTopLevel,
		},
		{
			Key:         "script/entry-not-empty",
			Severity:    SeverityWarning,
			Description: "The script entry file should contain at least one statement",
			Apply:       evalScriptNotEmpty,
		},
	} {
		reg.MustAdd(r)
	}
	return reg
}
