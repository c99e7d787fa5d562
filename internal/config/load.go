package config

// Load resolves BuildParameters for projectRoot: .gcbuild.kdl if
// present, else .gcbuild.toml, else the built-in Default — the same
// "first project file found, else defaults" layering the teacher's
// config.Load used for `.lci.kdl`.
func Load(projectRoot string) (*BuildParameters, error) {
	if p, err := LoadKDL(projectRoot); err != nil {
		return nil, err
	} else if p != nil {
		return p, nil
	}
	if p, err := LoadTOML(projectRoot); err != nil {
		return nil, err
	} else if p != nil {
		return p, nil
	}
	return Default(projectRoot), nil
}
