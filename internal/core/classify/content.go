package classify

import (
	"fmt"

	"github.com/penwyp/go-codex-trace/internal/core/model"
)

// ContentBlocks emits one block per list item, labeled content[i] with a
// 1-based index. Object items carry their type in the label and render their
// text member when set, the whole item as JSON otherwise. A non-list yields
// nothing.
func ContentBlocks(list model.Value) []model.Block {
	items := list.Array()
	blocks := make([]model.Block, 0, len(items))
	for i, item := range items {
		idx := i + 1
		if !item.IsObject() {
			blocks = append(blocks, model.TextBlock(fmt.Sprintf("content[%d]", idx), item.Text()))
			continue
		}
		itemType := item.Get("type").TextOr("unknown")
		label := fmt.Sprintf("content[%d] (%s)", idx, itemType)
		text := item.Get("text")
		if text.IsNull() {
			blocks = append(blocks, model.TextBlock(label, item.JSON()))
			continue
		}
		blocks = append(blocks, model.TextBlock(label, text.Text()))
	}
	return blocks
}
