package build

import (
	"fmt"

	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/syntaxtree"
)

// AppendOrderViolationError reports a variant-appended item (a key no
// baseline row has introduced yet) followed, later in sheet row order,
// by a baseline or replacing row of any key: every appended item has
// to come after all baseline and replacing items. Key and Location
// name the first appended row.
type AppendOrderViolationError struct {
	ItemType string
	Key      string
	Location location.SourceLocation
}

func (e *AppendOrderViolationError) Error() string {
	return fmt.Sprintf("%s: item %q is appended by a variant earlier in the sheet than a baseline or replacing item", e.ItemType, e.Key)
}

// checkAppendOrder walks roots in original sheet row order. A variant
// row for a key no baseline row has introduced yet is an append. Once
// an append has been seen, any later baseline row, or any later
// variant row for an already-introduced key (a replace), whatever its
// key, is a violation, reported against the first appended row.
func checkAppendOrder(itemType string, roots []*syntaxtree.RootObject) error {
	baselineIntroduced := make(map[string]bool, len(roots))
	var firstAppended *syntaxtree.RootObject

	for _, r := range roots {
		key := r.IDKey()
		if r.VariantID == "" {
			baselineIntroduced[key] = true
		} else if !baselineIntroduced[key] {
			if firstAppended == nil {
				firstAppended = r
			}
			continue
		}
		if firstAppended != nil {
			return &AppendOrderViolationError{ItemType: itemType, Key: firstAppended.IDKey(), Location: firstAppended.Loc}
		}
	}
	return nil
}
