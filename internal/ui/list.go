package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/anidex/internal/models"
)

var (
	_ list.Item = seriesItem{}
	_ list.Item = changeItem{}
)

// seriesItem wraps [models.EnrichedItem] to implement [list.Item].
type seriesItem struct {
	item models.EnrichedItem
}

func (i seriesItem) FilterValue() string { return i.item.Title }
func (i seriesItem) Title() string       { return i.item.Title }
func (i seriesItem) Description() string {
	if i.item.Anilist == nil {
		return "not matched"
	}
	desc := i.item.Anilist.Status
	if len(i.item.Anilist.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, i.item.Anilist.Genres[0])
	}
	if i.item.Anilist.Episodes != nil {
		desc = fmt.Sprintf("%s • %d episodes", desc, *i.item.Anilist.Episodes)
	}
	return desc
}

// changeItem wraps [models.StatusChange] to implement [list.Item].
type changeItem struct {
	change models.StatusChange
}

func (i changeItem) FilterValue() string { return i.change.Title }
func (i changeItem) Title() string       { return i.change.Title }
func (i changeItem) Description() string {
	return fmt.Sprintf("%s → %s", i.change.OldStatus, i.change.NewStatus)
}
