package passes

import (
	"fmt"

	"github.com/slint-go/slint"
)

// assignUniqueIDs gives every anonymous element a stable generated id and
// fills DebugName with "component/id" provenance. Later passes and the
// flattened output rely on ids being unique within a component.
func assignUniqueIDs(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		seen := map[string]bool{}
		counter := 0
		c.VisitElements(func(e *slint.Element) {
			if e.ID == "" {
				base := e.BaseName
				if base == "" {
					base = "empty"
				}
				for {
					counter++
					id := fmt.Sprintf("%s-%d", lowerFirst(base), counter)
					if !seen[id] {
						e.ID = id
						break
					}
				}
			} else if seen[e.ID] {
				ctx.Diags.Errorf(e.Location, "Duplicate element id %q", e.ID)
			}
			seen[e.ID] = true
			e.DebugName = c.Name + "/" + e.ID
		})
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	ch := s[0]
	if ch >= 'A' && ch <= 'Z' {
		return string(ch+'a'-'A') + s[1:]
	}
	return s
}
