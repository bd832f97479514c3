package credit

import (
	"regexp"
	"strconv"
)

// imageMarkerRe matches the two markers rendered content uses to tag
// attachments: a wp-image-<id> class and a data-id attribute.
var imageMarkerRe = regexp.MustCompile(`wp-image-(\d+)|data-id=["']?(\d+)`)

// ExtractImageIDs returns the attachment ids referenced by content in order
// of first occurrence, without duplicates. A non-zero featured id always
// comes first.
func ExtractImageIDs(content string, featured int64) []int64 {
	var ids []int64
	seen := make(map[int64]struct{})
	add := func(id int64) {
		if id <= 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(featured)
	for _, m := range imageMarkerRe.FindAllStringSubmatch(content, -1) {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		add(id)
	}
	return ids
}
