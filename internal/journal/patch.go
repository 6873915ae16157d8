package journal

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DescriptionPatch returns a patch in diff-match-patch text form that turns
// before into after. Equal inputs yield "".
func DescriptionPatch(before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(before, after))
}

// ApplyPatch applies a patch produced by DescriptionPatch to text.
func ApplyPatch(text, patch string) (string, error) {
	if patch == "" {
		return text, nil
	}
	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patch)
	if err != nil {
		return "", err
	}
	out, _ := dmp.PatchApply(patches, text)
	return out, nil
}

// Changes counts the characters inserted into and deleted from before.
func Changes(before, after string) (inserted, deleted int) {
	if before == after {
		return 0, 0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += utf8.RuneCountInString(d.Text)
		}
	}
	return inserted, deleted
}
