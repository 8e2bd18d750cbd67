package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/tmori/ngx/internal/models"
)

var _ list.Item = taskItem{}

// taskItem wraps [models.TaskRecord] to implement [list.Item].
type taskItem struct {
	task models.TaskRecord
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string {
	parts := []string{}
	if i.task.Status != "" {
		parts = append(parts, i.task.Status)
	}
	if i.task.DueDate != "" {
		parts = append(parts, fmt.Sprintf("due %s", i.task.DueDate))
	}
	if len(i.task.Tags) > 0 {
		parts = append(parts, strings.Join(i.task.Tags, ", "))
	}
	if len(parts) == 0 {
		return "no details"
	}
	return strings.Join(parts, " • ")
}
