package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/gcbuild/internal/binder"
	"github.com/standardbeagle/gcbuild/internal/identity"
)

// KDLFileName is the conventional project config file name, the
// engine's counterpart to the teacher's `.lci.kdl`.
const KDLFileName = ".gcbuild.kdl"

// LoadKDL loads BuildParameters from <projectRoot>/.gcbuild.kdl. It
// returns (nil, nil) if the file does not exist, exactly as the
// teacher's LoadKDL signals "fall through to defaults" rather than
// treating a missing project config as an error.
func LoadKDL(projectRoot string) (*BuildParameters, error) {
	path := filepath.Join(projectRoot, KDLFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parseKDL(string(content), projectRoot)
}

func parseKDL(content, sourceDir string) (*BuildParameters, error) {
	p := Default(sourceDir)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("config: parsing KDL: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "source_dir":
			if s, ok := firstStringArg(n); ok {
				p.SourceDir = s
			}
		case "sheet_globs":
			if args := stringArgs(n); len(args) > 0 {
				p.SheetGlobs = args
			}
		case "exclude_globs":
			p.ExcludeGlobs = stringArgs(n)
		case "unknown_members":
			if s, ok := firstStringArg(n); ok {
				policy, err := parseUnknownMemberPolicy(s)
				if err != nil {
					return nil, err
				}
				p.UnknownMembers = policy
			}
		case "min_compress_size":
			if v, ok := firstIntArg(n); ok {
				p.MinCompressSize = v
			}
		case "schema_version":
			if v, ok := firstIntArg(n); ok {
				p.SchemaVersion = uint32(v)
			}
		case "experiment":
			args := stringArgs(n)
			if len(args) != 2 {
				return nil, fmt.Errorf("config: experiment node wants 2 arguments (experiment id, variant id), got %d", len(args))
			}
			p.Experiments = append(p.Experiments, identity.ExperimentVariantPair{ExperimentID: args[0], VariantID: args[1]})
		}
	}
	return p, nil
}

func parseUnknownMemberPolicy(s string) (binder.UnknownMemberPolicy, error) {
	switch s {
	case "ignore":
		return binder.Ignore, nil
	case "warn":
		return binder.Warn, nil
	case "error":
		return binder.Error, nil
	}
	return binder.Warn, fmt.Errorf("config: unknown_members must be one of ignore|warn|error, got %q", s)
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		iv, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return iv, true
	default:
		return 0, false
	}
}

func stringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
